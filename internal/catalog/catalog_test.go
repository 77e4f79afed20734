package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *Catalog {
	c := New()
	c.Add("NP_000001.1", &Entry{
		RecordID:             "224774",
		AAChange:             "p.Arg140Ter",
		GRCh38:               NewStringSet("NC_000001.11:g.20043503C>T"),
		GRCh37:               NewStringSet("NC_000001.10:g.20369996C>T"),
		MolecularConsequence: NewStringSet("nonsense"),
	})
	c.Add("NP_000001.1", &Entry{
		RecordID:             "9",
		AAChange:             "p.Arg140Gln",
		MolecularConsequence: NewStringSet("missense variant"),
	})
	c.Add("NP_000002.2", &Entry{
		RecordID: "224774",
		AAChange: "p.Arg98Ter",
	})
	return c
}

func TestStringSet(t *testing.T) {
	s := NewStringSet("b", "a", "b", "c")
	assert.Equal(t, StringSet{"a", "b", "c"}, s)
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("d"))
	assert.Equal(t, "a\tb\tc", s.Join("\t"))

	assert.Nil(t, NewStringSet())
	assert.False(t, NewStringSet().Contains("a"))
}

func TestCatalog_AddAndEntries(t *testing.T) {
	c := sampleCatalog()

	assert.Equal(t, 2, c.TranscriptCount())
	assert.Equal(t, 3, c.EntryCount())
	assert.Equal(t, []string{"NP_000001.1", "NP_000002.2"}, c.Transcripts())

	entries := c.Entries("NP_000001.1")
	require.Len(t, entries, 2)
	// numeric ids sort numerically, not lexically
	assert.Equal(t, "9", entries[0].RecordID)
	assert.Equal(t, "224774", entries[1].RecordID)

	assert.Nil(t, c.Entries("NP_999999.1"))
	assert.False(t, c.HasTranscript("NP_999999.1"))
}

func TestCatalog_RecordIDRecursAcrossTranscripts(t *testing.T) {
	c := sampleCatalog()

	a, ok := c.Entry("NP_000001.1", "224774")
	require.True(t, ok)
	b, ok := c.Entry("NP_000002.2", "224774")
	require.True(t, ok)
	assert.Equal(t, "p.Arg140Ter", a.AAChange)
	assert.Equal(t, "p.Arg98Ter", b.AAChange)
}

func TestCatalog_AddReplacesSameRecord(t *testing.T) {
	c := sampleCatalog()
	c.Add("NP_000001.1", &Entry{RecordID: "9", AAChange: "p.Arg140Leu"})

	entries := c.Entries("NP_000001.1")
	require.Len(t, entries, 2)
	assert.Equal(t, "p.Arg140Leu", entries[0].AAChange)
}

func TestCatalog_Merge(t *testing.T) {
	a := New()
	a.Add("NP_000001.1", &Entry{RecordID: "1", AAChange: "p.Gly12Cys"})

	b := New()
	b.Add("NP_000001.1", &Entry{RecordID: "2", AAChange: "p.Gly12Val"})
	b.Add("NP_000003.1", &Entry{RecordID: "3", AAChange: "p.Gly13Asp"})

	a.Merge(b)
	assert.Equal(t, 2, a.TranscriptCount())
	// a transcript present in both inputs keeps entries from both
	assert.Len(t, a.Entries("NP_000001.1"), 2)
}

func TestLessID(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9", "10", true},
		{"10", "9", false},
		{"100", "100", false},
		{"007", "8", true},
		{"12", "abc", true},
		{"abc", "12", false},
		{"abc", "abd", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lessID(tt.a, tt.b), "lessID(%q, %q)", tt.a, tt.b)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", DefaultFileName)
	c := sampleCatalog()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Save(path, c, Meta{
		BuildID:     "build-1",
		CreatedAt:   created,
		Source:      "test",
		Chromosomes: []string{"1", "X"},
	}))

	loaded, meta, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, c.Map(), loaded.Map())
	assert.Equal(t, c.Transcripts(), loaded.Transcripts())
	assert.Equal(t, "build-1", meta.BuildID)
	assert.True(t, created.Equal(meta.CreatedAt))
	assert.Equal(t, []string{"1", "X"}, meta.Chromosomes)
	assert.Equal(t, 2, meta.Transcripts)
	assert.Equal(t, 3, meta.Entries)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestLoad_Missing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob"), 0644))

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestCheckpoints(t *testing.T) {
	cp := NewCheckpoints(t.TempDir())
	assert.False(t, cp.Has("1"))

	require.NoError(t, cp.Save("1", sampleCatalog(), Meta{BuildID: "b"}))
	assert.True(t, cp.Has("1"))
	assert.Equal(t, filepath.Join(cp.Dir(), "clinvar_chr1.gob"), cp.Path("1"))

	c, err := cp.Load("1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.EntryCount())

	_, err = cp.Load("2")
	assert.Error(t, err)

	require.NoError(t, cp.Clear([]string{"1", "2"}))
	assert.False(t, cp.Has("1"))
}
