// Package classify assigns ACMG PS1 and PM5 evidence by comparing a
// variant's protein change with known pathogenic changes at the same residue.
package classify

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/hgvs"
)

// Evidence codes.
const (
	CodePS1 = "PS1" // same amino acid change as a known pathogenic variant
	CodePM5 = "PM5" // different missense change at a known pathogenic residue
)

// missenseTerm must appear in an entry's consequences for PM5.
const missenseTerm = "missense"

// Result holds the matching ClinVar record ids per evidence code.
type Result struct {
	PS1 []string
	PM5 []string
}

// Empty reports whether no evidence was found.
func (r Result) Empty() bool {
	return len(r.PS1) == 0 && len(r.PM5) == 0
}

// Format renders the result as an INFO prefix: PS1=<id>;<id>;PM5=<id>;
// PS1 is written before PM5; empty codes are omitted.
func (r Result) Format() string {
	if r.Empty() {
		return ""
	}
	var b strings.Builder
	writeCode(&b, CodePS1, r.PS1)
	writeCode(&b, CodePM5, r.PM5)
	return b.String()
}

func writeCode(b *strings.Builder, code string, ids []string) {
	if len(ids) == 0 {
		return
	}
	b.WriteString(code)
	b.WriteByte('=')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(id)
	}
	b.WriteByte(';')
}

// Classifier looks up query changes in a catalog. It is safe for
// concurrent use.
type Classifier struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	skipped atomic.Int64
}

// New creates a classifier over an immutable catalog.
func New(c *catalog.Catalog) *Classifier {
	return &Classifier{
		catalog: c,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for skipped catalog entries.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// HasTranscript reports whether the catalog knows the transcript.
func (c *Classifier) HasTranscript(accession string) bool {
	return c.catalog.HasTranscript(accession)
}

// Skipped returns how many catalog entries failed to parse during lookups.
func (c *Classifier) Skipped() int64 {
	return c.skipped.Load()
}

// Classify compares q against every catalog entry on q's transcript.
func (c *Classifier) Classify(q hgvs.ProteinChange) Result {
	var res Result
	for _, e := range c.catalog.Entries(q.Transcript) {
		known, ok := hgvs.ParseChange(e.AAChange)
		if !ok {
			c.skipped.Add(1)
			c.logger.Debug("skipping catalog entry with unparseable change",
				zap.String("transcript", q.Transcript),
				zap.String("record_id", e.RecordID),
				zap.String("change", e.AAChange))
			continue
		}

		if !q.SameResidue(known) {
			continue
		}
		if q.Alt == known.Alt {
			res.PS1 = append(res.PS1, e.RecordID)
		} else if isMissense(e) {
			res.PM5 = append(res.PM5, e.RecordID)
		}
	}
	return res
}

func isMissense(e *catalog.Entry) bool {
	return strings.Contains(e.MolecularConsequence.Join("\t"), missenseTerm)
}
