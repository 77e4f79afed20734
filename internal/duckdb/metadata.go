package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inodb/clinanno/internal/catalog"
)

// WriteMeta replaces the stored catalog metadata.
func (s *Store) WriteMeta(meta catalog.Meta) error {
	if _, err := s.db.Exec("DELETE FROM catalog_meta"); err != nil {
		return fmt.Errorf("clear catalog meta: %w", err)
	}
	_, err := s.db.Exec(`INSERT INTO catalog_meta VALUES (?, ?, ?, ?, ?, ?)`,
		meta.BuildID, meta.CreatedAt.UTC(), meta.Source,
		strings.Join(meta.Chromosomes, ","), meta.Transcripts, meta.Entries)
	if err != nil {
		return fmt.Errorf("write catalog meta: %w", err)
	}
	return nil
}

// ReadMeta returns the stored catalog metadata. ok is false when the
// database holds no catalog yet.
func (s *Store) ReadMeta() (meta catalog.Meta, ok bool, err error) {
	var (
		chroms    string
		createdAt time.Time
	)
	err = s.db.QueryRow(`SELECT build_id, created_at, source, chromosomes, transcripts, entries
		FROM catalog_meta LIMIT 1`).Scan(
		&meta.BuildID, &createdAt, &meta.Source, &chroms, &meta.Transcripts, &meta.Entries)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Meta{}, false, nil
	}
	if err != nil {
		return catalog.Meta{}, false, fmt.Errorf("read catalog meta: %w", err)
	}

	meta.CreatedAt = createdAt.UTC()
	if chroms != "" {
		meta.Chromosomes = strings.Split(chroms, ",")
	}
	return meta, true, nil
}
