package vcf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.Next()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestOpen_Compressions(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)

	tests := []struct {
		file string
		want Compression
	}{
		{"sample.vcf", CompressionNone},
		{"sample.vcf.gz", CompressionGzip},
		{"sample.vcf.xz", CompressionXZ},
		{"sample.vcf.bz2", CompressionBzip2},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			r, err := Open(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, tt.want, r.Compression())
			lines := readAll(t, r)
			require.Len(t, lines, 6)
			assert.Equal(t, string(want), strings.Join(lines, ""))
			assert.Equal(t, 6, r.LineNumber())
		})
	}
}

func TestReader_KeepsTerminators(t *testing.T) {
	r, err := NewReader(strings.NewReader("#CHROM\n1\t2\r\nlast"))
	require.NoError(t, err)

	assert.Equal(t, []string{"#CHROM\n", "1\t2\r\n", "last"}, readAll(t, r))
}

func TestReader_Empty(t *testing.T) {
	r, err := NewReader(strings.NewReader(""))
	require.NoError(t, err)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, r.LineNumber())
}

func TestReader_ShortInput(t *testing.T) {
	r, err := NewReader(strings.NewReader("#\n"))
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, r.Compression())
	assert.Equal(t, []string{"#\n"}, readAll(t, r))
}

func TestReader_CorruptGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Repeat("#CHROM\tPOS\n", 100)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	data := buf.Bytes()[:buf.Len()-8]
	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	var readErr error
	for readErr == nil {
		_, readErr = r.Next()
	}
	assert.NotEqual(t, io.EOF, readErr)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.vcf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDetectCompression(t *testing.T) {
	assert.Equal(t, CompressionGzip, DetectCompression([]byte{0x1f, 0x8b, 0x08}))
	assert.Equal(t, CompressionXZ, DetectCompression([]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}))
	assert.Equal(t, CompressionBzip2, DetectCompression([]byte("BZh9")))
	assert.Equal(t, CompressionNone, DetectCompression([]byte("##fileformat")))
	assert.Equal(t, CompressionNone, DetectCompression(nil))
	assert.Equal(t, "xz", CompressionXZ.String())
}

func TestParseError(t *testing.T) {
	err := &ParseError{Line: 42, Message: "test error"}
	assert.Equal(t, "vcf parse error at line 42: test error", err.Error())
}

func TestReader_CloseGzip(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "sample.vcf.gz"))
	require.NoError(t, err)
	require.Equal(t, CompressionGzip, r.Compression())

	require.NoError(t, r.Close())
	_, err = r.file.Stat()
	assert.ErrorIs(t, err, os.ErrClosed)
}
