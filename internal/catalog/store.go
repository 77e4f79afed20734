package catalog

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FormatVersion is bumped whenever the on-disk layout changes.
const FormatVersion = 1

// DefaultFileName is the catalog file name inside the data directory.
const DefaultFileName = "clinvar_catalog.gob"

// Meta describes how a catalog was built.
type Meta struct {
	BuildID     string
	CreatedAt   time.Time
	Source      string
	Chromosomes []string
	Transcripts int
	Entries     int
}

// file is the gob-encoded layout of a catalog file.
type file struct {
	Version     int
	Meta        Meta
	Transcripts map[string]map[string]*Entry
}

// DefaultPath returns ~/.clinanno/clinvar_catalog.gob.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, ".clinanno", DefaultFileName)
}

// Save writes c with meta to path through a temporary file and rename.
func Save(path string, c *Catalog, meta Meta) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}

	meta.Transcripts = c.TranscriptCount()
	meta.Entries = c.EntryCount()

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}

	data := file{Version: FormatVersion, Meta: meta, Transcripts: c.Map()}
	if err := gob.NewEncoder(f).Encode(&data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close catalog: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename catalog: %w", err)
	}
	return nil
}

// Load reads a catalog written by Save. A missing file yields an error
// wrapping fs.ErrNotExist.
func Load(path string) (*Catalog, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var data file
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, Meta{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if data.Version != FormatVersion {
		return nil, Meta{}, fmt.Errorf("catalog %s has format version %d, want %d", path, data.Version, FormatVersion)
	}

	return FromMap(data.Transcripts), data.Meta, nil
}
