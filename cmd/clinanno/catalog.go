package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/duckdb"
)

// isDuckDBPath reports whether a catalog path names a DuckDB database.
func isDuckDBPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".duckdb", ".db":
		return true
	}
	return false
}

// checkCatalog fails with a build hint when the catalog file is missing.
func checkCatalog(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("catalog %s not found\nHint: build it with: clinanno build", path)
		}
		return fmt.Errorf("stat catalog: %w", err)
	}
	return nil
}

// loadCatalog reads a catalog from a gob file or a DuckDB export.
func loadCatalog(path string) (*catalog.Catalog, catalog.Meta, error) {
	if err := checkCatalog(path); err != nil {
		return nil, catalog.Meta{}, err
	}

	if !isDuckDBPath(path) {
		c, meta, err := catalog.Load(path)
		if err != nil {
			return nil, catalog.Meta{}, err
		}
		logCatalog(path, meta)
		return c, meta, nil
	}

	store, err := duckdb.Open(path)
	if err != nil {
		return nil, catalog.Meta{}, err
	}
	defer store.Close()

	c, err := store.LoadCatalog()
	if err != nil {
		return nil, catalog.Meta{}, err
	}
	meta, _, err := store.ReadMeta()
	if err != nil {
		return nil, catalog.Meta{}, err
	}
	logCatalog(path, meta)
	return c, meta, nil
}

func logCatalog(path string, meta catalog.Meta) {
	logger.Info("loaded catalog",
		zap.String("path", path),
		zap.String("build_id", meta.BuildID),
		zap.Time("created_at", meta.CreatedAt),
		zap.Int("transcripts", meta.Transcripts),
		zap.Int("entries", meta.Entries))
}
