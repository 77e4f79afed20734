// Package hgvs parses HGVS protein-change notation (p.Arg140Ter) out of
// free text such as VCF records and ClinVar change strings.
package hgvs

import (
	"regexp"
	"strconv"
	"strings"
)

// ProteinMarker marks an HGVS protein-level change.
const ProteinMarker = "p."

// SynonymousMarker is VEP's percent-encoded synonymous notation.
const SynonymousMarker = "p.%3D"

// The alternate alternatives are tried in order: an 8-10 character
// frameshift/delins token, a 3-letter code, "=" and "?". The leading greedy
// ".*" makes the last qualifying occurrence in the text win.
var (
	recordPattern = regexp.MustCompile(`^.*(NP_\d+\.\d+):p\.([a-zA-Z_?-]+)(\d+)([\w+_?-]{8,10}|[a-zA-Z_?-]{3}|=|\?)([a-zA-Z]+)?`)
	changePattern = regexp.MustCompile(`^.*p\.([a-zA-Z_?-]+)(\d+)([\w+_?-]{8,10}|[a-zA-Z_?-]{3}|=|\?)([a-zA-Z]+)?`)
)

// Status is the tagged outcome of parsing a record.
type Status int

const (
	// StatusNotApplicable means the text carries no protein change.
	StatusNotApplicable Status = iota
	// StatusSynonymous means the protein change is synonymous.
	StatusSynonymous
	// StatusMalformed means a protein marker is present but the notation
	// does not match the expected structure (e.g. start-lost notation).
	StatusMalformed
	// StatusMatched means Result.Change holds a parsed change.
	StatusMatched
)

func (s Status) String() string {
	switch s {
	case StatusNotApplicable:
		return "not_applicable"
	case StatusSynonymous:
		return "synonymous"
	case StatusMalformed:
		return "malformed"
	case StatusMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// Kind is a coarse category of a parsed protein change.
type Kind int

const (
	KindOther Kind = iota
	KindMissense
	KindNonsense
	KindSynonymous
	KindUnknown
	KindFrameshift
)

func (k Kind) String() string {
	switch k {
	case KindMissense:
		return "missense"
	case KindNonsense:
		return "nonsense"
	case KindSynonymous:
		return "synonymous"
	case KindUnknown:
		return "unknown"
	case KindFrameshift:
		return "frameshift"
	default:
		return "other"
	}
}

// ProteinChange is a parsed HGVS protein change.
type ProteinChange struct {
	Transcript string // RefSeq protein accession (NP_000001.1), empty for catalog strings
	Ref        string // reference amino acid (Arg)
	Pos        int    // residue position
	Alt        string // alternate amino acid, "=", "?" or a frameshift/delins token
	Frameshift string // trailing letters after Alt, captured but not used for matching
}

// Result is the outcome of ParseRecord.
type Result struct {
	Status Status
	Change ProteinChange
}

// ParseRecord scans a variant record for a transcript-qualified protein change.
func ParseRecord(text string) Result {
	if !strings.Contains(text, ProteinMarker) {
		return Result{Status: StatusNotApplicable}
	}
	if strings.Contains(text, SynonymousMarker) {
		return Result{Status: StatusSynonymous}
	}

	m := recordPattern.FindStringSubmatch(text)
	if m == nil {
		return Result{Status: StatusMalformed}
	}
	pos, err := strconv.Atoi(m[3])
	if err != nil {
		return Result{Status: StatusMalformed}
	}

	pc := ProteinChange{
		Transcript: m[1],
		Ref:        m[2],
		Pos:        pos,
		Alt:        m[4],
		Frameshift: m[5],
	}
	if pc.Alt == SymbolSynonymous {
		return Result{Status: StatusSynonymous, Change: pc}
	}
	return Result{Status: StatusMatched, Change: pc}
}

// ParseChange parses a bare change string such as "p.Arg140Ter".
// The returned change has no Transcript.
func ParseChange(text string) (ProteinChange, bool) {
	m := changePattern.FindStringSubmatch(text)
	if m == nil {
		return ProteinChange{}, false
	}
	pos, err := strconv.Atoi(m[2])
	if err != nil {
		return ProteinChange{}, false
	}
	return ProteinChange{
		Ref:        m[1],
		Pos:        pos,
		Alt:        m[3],
		Frameshift: m[4],
	}, true
}

// SameResidue reports whether both changes hit the same reference residue.
func (pc ProteinChange) SameResidue(other ProteinChange) bool {
	return pc.Ref == other.Ref && pc.Pos == other.Pos
}

// Kind returns the category of the change.
func (pc ProteinChange) Kind() Kind {
	switch {
	case pc.Alt == SymbolSynonymous:
		return KindSynonymous
	case pc.Alt == SymbolUnknown:
		return KindUnknown
	case pc.Alt == SymbolStop:
		return KindNonsense
	case strings.Contains(pc.Alt, "fs") || strings.HasPrefix(pc.Frameshift, "fs"):
		return KindFrameshift
	case IsAminoAcid(pc.Alt):
		return KindMissense
	default:
		return KindOther
	}
}

// String formats the change as p.<Ref><Pos><Alt><Frameshift>.
func (pc ProteinChange) String() string {
	return ProteinMarker + pc.Ref + strconv.Itoa(pc.Pos) + pc.Alt + pc.Frameshift
}

// Short formats the change with single-letter codes (p.R140*).
func (pc ProteinChange) Short() string {
	return ProteinMarker + aaOne(pc.Ref) + strconv.Itoa(pc.Pos) + aaOne(pc.Alt) + pc.Frameshift
}
