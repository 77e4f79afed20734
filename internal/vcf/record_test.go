package vcf

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	line := "17\t7675088\t.\tC\tT\t.\tPASS\tDP=10\tGT\t0/1\r\n"
	rec, err := ParseRecord(line, 5)
	require.NoError(t, err)

	assert.Equal(t, "17", rec.Chrom())
	assert.Equal(t, "7675088", rec.Pos())
	assert.Equal(t, "DP=10", rec.Info())
	assert.Equal(t, "\r\n", rec.Terminator)
	assert.Equal(t, line, rec.String())

	rec.SetInfo("PS1=1;DP=10")
	assert.Equal(t, "17\t7675088\t.\tC\tT\t.\tPASS\tPS1=1;DP=10\tGT\t0/1\r\n", rec.String())
}

func TestParseRecord_TooFewColumns(t *testing.T) {
	_, err := ParseRecord("1\t100\t.\tA\tG\n", 9)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 9, pe.Line)
	assert.Contains(t, pe.Message, "found 5")
}

func TestSplitTerminator(t *testing.T) {
	tests := []struct{ in, body, term string }{
		{"a\tb\n", "a\tb", "\n"},
		{"a\tb\r\n", "a\tb", "\r\n"},
		{"a\tb", "a\tb", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		body, term := SplitTerminator(tt.in)
		assert.Equal(t, tt.body, body)
		assert.Equal(t, tt.term, term)
	}
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("##fileformat=VCFv4.2\n"))
	assert.True(t, IsHeader("#CHROM\tPOS\n"))
	assert.False(t, IsHeader("1\t100\n"))
	assert.False(t, IsHeader(""))
}

func TestCreate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.vcf.gz")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = w.WriteString("#CHROM\n")
	require.NoError(t, err)
	_, err = w.Write([]byte("1\t2\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "#CHROM\n1\t2\n", string(data))
}

func TestCreate_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.vcf")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = w.WriteString("#CHROM\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#CHROM\n", string(data))
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.WriteString("x\n")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	require.NoError(t, w.Close())
	assert.Equal(t, "x\n", buf.String())
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_CloseClosesFileWhenFlushFails(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.vcf"))
	require.NoError(t, err)

	w := &Writer{buf: bufio.NewWriter(errWriter{}), file: f}
	_, err = w.WriteString("#CHROM\n")
	require.NoError(t, err)

	err = w.Close()
	assert.ErrorContains(t, err, "flush output: disk full")
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}
