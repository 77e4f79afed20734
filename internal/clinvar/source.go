// Package clinvar builds the pathogenic variant catalog from ClinVar.
package clinvar

import (
	"context"
	"fmt"
	"strings"

	"github.com/inodb/clinanno/internal/catalog"
)

// HGVS types reported in ClinVar variation reports.
const (
	HGVSProteinRefSeq        = "HGVS, protein, RefSeq"
	HGVSGenomicTopLevel      = "HGVS, genomic, top level"
	HGVSGenomicTopLevelPrior = "HGVS, genomic, top level, previous"
)

// Chromosomes lists the chromosomes queried, in build order.
var Chromosomes = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
	"12", "13", "14", "15", "16", "17", "18", "19", "20", "21", "22",
	"X", "Y", "MT",
}

// Source is a remote ClinVar service.
type Source interface {
	// Search returns the variation ids flagged pathogenic or conflicting
	// pathogenic on a chromosome.
	Search(ctx context.Context, chrom string) ([]string, error)

	// Fetch retrieves full reports for ids and calls fn for each one.
	Fetch(ctx context.Context, ids []string, fn func(*Report) error) error
}

// HGVS is one HGVS expression of a report. Empty fields were absent.
type HGVS struct {
	Type             string
	AccessionVersion string
	Change           string
}

// Report is one ClinVar variation report.
type Report struct {
	VariationID           string
	HGVS                  []HGVS
	MolecularConsequences []string // Function attribute per element, "" if absent
}

// Placement is a catalog entry together with the transcript it belongs to.
type Placement struct {
	Transcript string
	Entry      *catalog.Entry
}

// FetchStats counts what was kept and skipped while extracting reports.
type FetchStats struct {
	Reports             int
	Entries             int
	SkippedReports      int // no VariationID
	SkippedHGVS         int // no Type, Change, or (protein) AccessionVersion
	SkippedConsequences int // no Function
}

// Add accumulates other into s.
func (s *FetchStats) Add(other FetchStats) {
	s.Reports += other.Reports
	s.Entries += other.Entries
	s.SkippedReports += other.SkippedReports
	s.SkippedHGVS += other.SkippedHGVS
	s.SkippedConsequences += other.SkippedConsequences
}

// Extract turns a report into one placement per RefSeq protein change.
// Elements missing an expected attribute are skipped and counted; they never
// invalidate the rest of the report.
func Extract(r *Report) ([]Placement, FetchStats) {
	var stats FetchStats
	if r.VariationID == "" {
		stats.SkippedReports++
		return nil, stats
	}
	stats.Reports++

	type protein struct{ accession, change string }
	var (
		proteins       []protein
		grch38, grch37 []string
		consequences   []string
	)

	for _, h := range r.HGVS {
		if h.Type == "" || h.Change == "" {
			stats.SkippedHGVS++
			continue
		}
		switch {
		case strings.Contains(h.Type, HGVSProteinRefSeq):
			if h.AccessionVersion == "" {
				stats.SkippedHGVS++
				continue
			}
			proteins = append(proteins, protein{h.AccessionVersion, h.Change})
		case h.Type == HGVSGenomicTopLevel:
			grch38 = append(grch38, h.Change)
		case h.Type == HGVSGenomicTopLevelPrior:
			grch37 = append(grch37, h.Change)
		}
	}

	for _, fn := range r.MolecularConsequences {
		if fn == "" {
			stats.SkippedConsequences++
			continue
		}
		consequences = append(consequences, fn)
	}

	if len(proteins) == 0 {
		return nil, stats
	}

	g38 := catalog.NewStringSet(grch38...)
	g37 := catalog.NewStringSet(grch37...)
	mc := catalog.NewStringSet(consequences...)

	placements := make([]Placement, 0, len(proteins))
	for _, p := range proteins {
		placements = append(placements, Placement{
			Transcript: p.accession,
			Entry: &catalog.Entry{
				RecordID:             r.VariationID,
				AAChange:             p.change,
				GRCh38:               g38,
				GRCh37:               g37,
				MolecularConsequence: mc,
			},
		})
	}
	stats.Entries = len(placements)
	return placements, stats
}

// RemoteError is a failed request to the remote source.
type RemoteError struct {
	Op     string // "esearch" or "efetch"
	Chrom  string
	Status int // HTTP status, 0 if the request did not complete
	Err    error
}

func (e *RemoteError) Error() string {
	msg := e.Op
	if e.Chrom != "" {
		msg += " chr" + e.Chrom
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
