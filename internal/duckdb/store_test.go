package duckdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/clinanno/internal/catalog"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Add("NP_004976.2", &catalog.Entry{
		RecordID:             "12582",
		AAChange:             "p.Gly12Asp",
		GRCh38:               catalog.NewStringSet("NC_000012.12:g.25245350C>T"),
		GRCh37:               catalog.NewStringSet("NC_000012.11:g.25398284C>T"),
		MolecularConsequence: catalog.NewStringSet("missense variant", "non-coding transcript variant"),
	})
	c.Add("NP_004976.2", &catalog.Entry{
		RecordID:             "12578",
		AAChange:             "p.Gly12Cys",
		MolecularConsequence: catalog.NewStringSet("missense variant"),
	})
	c.Add("NP_000537.3", &catalog.Entry{
		RecordID: "12374",
		AAChange: "p.Arg175His",
	})
	return c
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestWriteAndLoadCatalog(t *testing.T) {
	s := openInMemory(t)
	want := sampleCatalog()

	require.NoError(t, s.WriteCatalog(want))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, want.Map(), got.Map())
}

func TestWriteCatalog_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCatalog(catalog.New()))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLookupTranscript(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCatalog(sampleCatalog()))

	entries, err := s.LookupTranscript("NP_004976.2")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "12578", entries[0].RecordID)
	assert.Equal(t, "12582", entries[1].RecordID)
	assert.Equal(t, catalog.StringSet{"missense variant", "non-coding transcript variant"}, entries[1].MolecularConsequence)

	entries, err = s.LookupTranscript("NP_999999.1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReplaceCatalog(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCatalog(sampleCatalog()))

	next := catalog.New()
	next.Add("NP_000537.3", &catalog.Entry{RecordID: "1", AAChange: "p.Arg248Gln"})
	meta := catalog.Meta{
		BuildID:     "b1",
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Source:      "clinvar",
		Chromosomes: []string{"17"},
	}
	require.NoError(t, s.ReplaceCatalog(next, meta))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok, err := s.ReadMeta()
	require.NoError(t, err)
	require.True(t, ok)
	meta.Transcripts = 1
	meta.Entries = 1
	assert.Equal(t, meta, got)
}

func TestReadMeta_Empty(t *testing.T) {
	s := openInMemory(t)
	_, ok, err := s.ReadMeta()
	require.NoError(t, err)
	assert.False(t, ok)
}
