package vcf

import (
	"fmt"
	"strings"
)

// Column indexes of the fixed VCF fields.
const (
	ColChrom = iota
	ColPos
	ColID
	ColRef
	ColAlt
	ColQual
	ColFilter
	ColInfo
)

// MinColumns is the number of fixed columns every data line must have.
const MinColumns = ColInfo + 1

// IsHeader reports whether a raw line belongs to the header.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, "#")
}

// SplitTerminator separates a raw line from its line terminator.
func SplitTerminator(line string) (body, terminator string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// Record is a data line split into tab-separated fields. Fields beyond INFO
// (FORMAT and samples) are kept untouched.
type Record struct {
	Fields     []string
	Terminator string
}

// ParseRecord splits a raw data line. lineNumber is used for errors only.
func ParseRecord(line string, lineNumber int) (*Record, error) {
	body, term := SplitTerminator(line)
	fields := strings.Split(body, "\t")
	if len(fields) < MinColumns {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", MinColumns, len(fields)),
		}
	}
	return &Record{Fields: fields, Terminator: term}, nil
}

func (r *Record) Chrom() string { return r.Fields[ColChrom] }
func (r *Record) Pos() string   { return r.Fields[ColPos] }
func (r *Record) Info() string  { return r.Fields[ColInfo] }

// SetInfo replaces the INFO field.
func (r *Record) SetInfo(info string) {
	r.Fields[ColInfo] = info
}

// String renders the record with its original terminator.
func (r *Record) String() string {
	return strings.Join(r.Fields, "\t") + r.Terminator
}
