package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Writer writes VCF lines to a file or standard output. Paths ending in
// ".gz" are gzip-compressed.
type Writer struct {
	buf  *bufio.Writer
	gz   *gzip.Writer
	file *os.File
}

// Create opens path for writing. "" or "-" writes to standard output.
func Create(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return NewWriter(os.Stdout), nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := &Writer{file: file}
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(file)
		w.buf = bufio.NewWriter(w.gz)
	} else {
		w.buf = bufio.NewWriter(file)
	}
	return w, nil
}

// NewWriter wraps an uncompressed io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// WriteString writes a raw line, which should carry its own terminator.
func (w *Writer) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// Close flushes buffered output and closes the underlying file. The file is
// closed even when flushing fails.
func (w *Writer) Close() error {
	var errs []error
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush output: %w", err))
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gzip writer: %w", err))
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output file: %w", err))
		}
	}
	return errors.Join(errs...)
}
