// Package annotate rewrites VCF records with PS1/PM5 evidence.
package annotate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/classify"
	"github.com/inodb/clinanno/internal/hgvs"
	"github.com/inodb/clinanno/internal/vcf"
)

// Outcome is what happened to a single input line.
type Outcome int

const (
	OutcomeHeader Outcome = iota
	OutcomeNoProteinChange
	OutcomeSynonymous
	OutcomeUnparseable
	OutcomeMissingTranscript
	OutcomeNoMatch
	OutcomeAnnotated
	OutcomeAlreadyAnnotated
	OutcomeMalformedRecord

	outcomeCount
)

var outcomeNames = [outcomeCount]string{
	OutcomeHeader:            "header",
	OutcomeNoProteinChange:   "no_protein_change",
	OutcomeSynonymous:        "synonymous",
	OutcomeUnparseable:       "unparseable",
	OutcomeMissingTranscript: "missing_transcript",
	OutcomeNoMatch:           "no_match",
	OutcomeAnnotated:         "annotated",
	OutcomeAlreadyAnnotated:  "already_annotated",
	OutcomeMalformedRecord:   "malformed_record",
}

func (o Outcome) String() string {
	if o < 0 || o >= outcomeCount {
		return "unknown"
	}
	return outcomeNames[o]
}

// Outcomes lists every outcome in reporting order.
func Outcomes() []Outcome {
	out := make([]Outcome, outcomeCount)
	for i := range out {
		out[i] = Outcome(i)
	}
	return out
}

// Stats counts lines per outcome.
type Stats struct {
	Lines  int
	counts [outcomeCount]int
}

func (s *Stats) add(o Outcome) {
	s.Lines++
	s.counts[o]++
}

// Count returns the number of lines with outcome o.
func (s Stats) Count(o Outcome) int {
	if o < 0 || o >= outcomeCount {
		return 0
	}
	return s.counts[o]
}

// Records returns the number of non-header lines.
func (s Stats) Records() int {
	return s.Lines - s.counts[OutcomeHeader]
}

// Annotator annotates VCF lines against a classifier.
type Annotator struct {
	classifier *classify.Classifier
	workers    int
	logger     *zap.Logger
}

// NewAnnotator creates a new annotator with the given classifier.
func NewAnnotator(c *classify.Classifier) *Annotator {
	return &Annotator{
		classifier: c,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetWorkers sets the number of annotation goroutines. 0 uses runtime.NumCPU().
func (a *Annotator) SetWorkers(n int) {
	a.workers = n
}

// AnnotateLine annotates one raw line. The returned line is the input itself
// unless evidence was added to INFO; the terminator is always preserved.
func (a *Annotator) AnnotateLine(line string, lineNumber int) (string, Outcome) {
	if vcf.IsHeader(line) {
		return line, OutcomeHeader
	}

	body, _ := vcf.SplitTerminator(line)
	parsed := hgvs.ParseRecord(body)
	switch parsed.Status {
	case hgvs.StatusNotApplicable:
		return line, OutcomeNoProteinChange
	case hgvs.StatusSynonymous:
		return line, OutcomeSynonymous
	case hgvs.StatusMalformed:
		return line, OutcomeUnparseable
	}

	q := parsed.Change
	if !a.classifier.HasTranscript(q.Transcript) {
		return line, OutcomeMissingTranscript
	}

	res := a.classifier.Classify(q)
	if res.Empty() {
		return line, OutcomeNoMatch
	}

	rec, err := vcf.ParseRecord(line, lineNumber)
	if err != nil {
		a.logger.Warn("passing through malformed record", zap.Error(err))
		return line, OutcomeMalformedRecord
	}

	prefix := res.Format()
	if strings.HasPrefix(rec.Info(), prefix) {
		return line, OutcomeAlreadyAnnotated
	}

	rec.SetInfo(prefix + rec.Info())
	a.logger.Debug("annotated record",
		zap.Int("line", lineNumber),
		zap.String("chrom", rec.Chrom()),
		zap.String("pos", rec.Pos()),
		zap.String("transcript", q.Transcript),
		zap.String("change", q.String()),
		zap.Strings("ps1", res.PS1),
		zap.Strings("pm5", res.PM5))
	return rec.String(), OutcomeAnnotated
}
