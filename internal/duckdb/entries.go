package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/clinanno/internal/catalog"
)

// setSep joins set-valued columns.
const setSep = "\t"

// WriteCatalog batch-inserts every catalog entry into clinvar_entries using
// the Appender API.
func (s *Store) WriteCatalog(c *catalog.Catalog) error {
	if c.EntryCount() == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "clinvar_entries")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, acc := range c.Transcripts() {
		for _, e := range c.Entries(acc) {
			if err := appender.AppendRow(
				acc, e.RecordID, e.AAChange,
				e.GRCh38.Join(setSep), e.GRCh37.Join(setSep), e.MolecularConsequence.Join(setSep),
			); err != nil {
				return fmt.Errorf("append entry %s/%s: %w", acc, e.RecordID, err)
			}
		}
	}

	return appender.Flush()
}

// ReplaceCatalog clears the database and stores c with its metadata.
func (s *Store) ReplaceCatalog(c *catalog.Catalog, meta catalog.Meta) error {
	if err := s.ClearEntries(); err != nil {
		return err
	}
	if err := s.WriteCatalog(c); err != nil {
		return err
	}
	meta.Transcripts = c.TranscriptCount()
	meta.Entries = c.EntryCount()
	return s.WriteMeta(meta)
}

// ClearEntries removes all catalog entries.
func (s *Store) ClearEntries() error {
	if _, err := s.db.Exec("DELETE FROM clinvar_entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM clinvar_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// LoadCatalog reads every stored entry back into a catalog.
func (s *Store) LoadCatalog() (*catalog.Catalog, error) {
	rows, err := s.db.Query(`SELECT transcript, record_id, aa_change, grch38, grch37, mol_consequence
		FROM clinvar_entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	c := catalog.New()
	for rows.Next() {
		acc, e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		c.Add(acc, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return c, nil
}

// LookupTranscript returns the entries of one transcript in record id order.
func (s *Store) LookupTranscript(accession string) ([]*catalog.Entry, error) {
	rows, err := s.db.Query(`SELECT transcript, record_id, aa_change, grch38, grch37, mol_consequence
		FROM clinvar_entries
		WHERE transcript=?`, accession)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	c := catalog.New()
	for rows.Next() {
		acc, e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		c.Add(acc, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript entries: %w", err)
	}
	return c.Entries(accession), nil
}

// scanEntry scans one clinvar_entries row.
func scanEntry(rows interface{ Scan(dest ...any) error }) (string, *catalog.Entry, error) {
	var acc, g38, g37, mc string
	e := &catalog.Entry{}
	if err := rows.Scan(&acc, &e.RecordID, &e.AAChange, &g38, &g37, &mc); err != nil {
		return "", nil, fmt.Errorf("scan entry: %w", err)
	}
	e.GRCh38 = splitSet(g38)
	e.GRCh37 = splitSet(g37)
	e.MolecularConsequence = splitSet(mc)
	return acc, e, nil
}

func splitSet(s string) catalog.StringSet {
	if s == "" {
		return nil
	}
	return catalog.NewStringSet(strings.Split(s, setSep)...)
}
