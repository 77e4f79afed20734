// Package vcf reads and writes VCF text line by line.
package vcf

// LineSource is the interface for readers that yield raw VCF lines.
type LineSource interface {
	// Next returns the next line including its terminator.
	// Returns "", io.EOF when there are no more lines.
	Next() (string, error)

	// LineNumber returns the number of the line last returned.
	LineNumber() int
}
