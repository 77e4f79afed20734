package vcf

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/xi2/xz"
)

// Compression identifies how an input stream is encoded.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXZ
	CompressionBzip2
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionXZ:
		return "xz"
	case CompressionBzip2:
		return "bzip2"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

// DetectCompression inspects the leading bytes of a stream.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(head, bzip2Magic):
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// Reader reads raw lines from a VCF file. Lines are returned exactly as
// stored, terminator included, so they can be written back unchanged.
type Reader struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	compression Compression
	lineNumber  int
}

// Open opens a VCF file for reading. "-" reads standard input.
// Plain, gzip (including bgzip), xz and bzip2 inputs are detected from
// their magic bytes.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader creates a reader from an io.Reader, decompressing if needed.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	r := &Reader{compression: DetectCompression(head)}

	switch r.compression {
	case CompressionGzip:
		r.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	case CompressionXZ:
		xr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		r.reader = bufio.NewReader(xr)
	case CompressionBzip2:
		r.reader = bufio.NewReader(bzip2.NewReader(br))
	default:
		r.reader = br
	}

	return r, nil
}

// Compression returns the encoding detected on open.
func (r *Reader) Compression() Compression {
	return r.compression
}

// Next returns the next line including its terminator. A final line without
// a newline is returned as is. Returns "", io.EOF at the end of input.
func (r *Reader) Next() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", io.EOF
			}
		} else {
			return "", fmt.Errorf("read line %d: %w", r.lineNumber+1, err)
		}
	}
	r.lineNumber++
	return line, nil
}

// LineNumber returns the number of the line last returned by Next.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	var errs []error
	if r.gzipReader != nil {
		if err := r.gzipReader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gzip reader: %w", err))
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close vcf file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
