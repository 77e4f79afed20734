package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/classify"
)

// testCatalog holds KRAS G12 and TP53 R175 entries.
func testCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Add("NP_004976.2", &catalog.Entry{
		RecordID:             "12578",
		AAChange:             "p.Gly12Cys",
		MolecularConsequence: catalog.NewStringSet("missense variant"),
	})
	c.Add("NP_004976.2", &catalog.Entry{
		RecordID:             "12582",
		AAChange:             "p.Gly12Asp",
		MolecularConsequence: catalog.NewStringSet("missense variant"),
	})
	c.Add("NP_000537.3", &catalog.Entry{
		RecordID:             "12374",
		AAChange:             "p.Arg175His",
		MolecularConsequence: catalog.NewStringSet("nonsense"),
	})
	return c
}

func newTestAnnotator(t *testing.T) *Annotator {
	cl := classify.New(testCatalog())
	a := NewAnnotator(cl)
	a.SetLogger(zaptest.NewLogger(t))
	return a
}

func record(info string) string {
	return "12\t25245350\t.\tC\tA\t.\tPASS\t" + info + "\tGT\t0/1\n"
}

func TestAnnotateLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		outcome Outcome
	}{
		{
			name:    "meta header",
			line:    "##INFO=<ID=CSQ,Description=\"NP_004976.2:p.Gly12Cys\">\n",
			outcome: OutcomeHeader,
		},
		{
			name:    "column header",
			line:    "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n",
			outcome: OutcomeHeader,
		},
		{
			name:    "no protein change",
			line:    record("DP=10"),
			outcome: OutcomeNoProteinChange,
		},
		{
			name:    "synonymous",
			line:    record("CSQ=NP_004976.2:p.%3D"),
			outcome: OutcomeSynonymous,
		},
		{
			name:    "unparseable",
			line:    record("CSQ=ENSP00000256078:p.Gly12Cys"),
			outcome: OutcomeUnparseable,
		},
		{
			name:    "missing transcript",
			line:    record("CSQ=NP_999999.1:p.Gly12Cys"),
			outcome: OutcomeMissingTranscript,
		},
		{
			name:    "no match at other residue",
			line:    record("CSQ=NP_004976.2:p.Gly13Asp"),
			outcome: OutcomeNoMatch,
		},
		{
			name:    "PS1 and PM5",
			line:    record("CSQ=NP_004976.2:p.Gly12Cys"),
			want:    record("PS1=12578;PM5=12582;CSQ=NP_004976.2:p.Gly12Cys"),
			outcome: OutcomeAnnotated,
		},
		{
			name:    "PM5 only",
			line:    record("CSQ=NP_004976.2:p.Gly12Val"),
			want:    record("PM5=12578;12582;CSQ=NP_004976.2:p.Gly12Val"),
			outcome: OutcomeAnnotated,
		},
		{
			name:    "different change without missense consequence",
			line:    "17\t7675088\t.\tC\tT\t.\tPASS\tCSQ=NP_000537.3:p.Arg175Leu\n",
			outcome: OutcomeNoMatch,
		},
		{
			name:    "already annotated",
			line:    record("PS1=12578;PM5=12582;CSQ=NP_004976.2:p.Gly12Cys"),
			outcome: OutcomeAlreadyAnnotated,
		},
		{
			name:    "crlf terminator kept on rewrite",
			line:    "17\t7675088\t.\tC\tT\t.\tPASS\tCSQ=NP_000537.3:p.Arg175His\r\n",
			want:    "17\t7675088\t.\tC\tT\t.\tPASS\tPS1=12374;CSQ=NP_000537.3:p.Arg175His\r\n",
			outcome: OutcomeAnnotated,
		},
		{
			name:    "no trailing newline",
			line:    "17\t7675088\t.\tC\tT\t.\tPASS\tCSQ=NP_000537.3:p.Arg175His",
			want:    "17\t7675088\t.\tC\tT\t.\tPASS\tPS1=12374;CSQ=NP_000537.3:p.Arg175His",
			outcome: OutcomeAnnotated,
		},
		{
			name:    "too few columns",
			line:    "17\t7675088\t.\tC\tT\tNP_000537.3:p.Arg175His\n",
			outcome: OutcomeMalformedRecord,
		},
	}

	a := newTestAnnotator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := a.AnnotateLine(tt.line, 1)
			want := tt.want
			if want == "" {
				want = tt.line
			}
			assert.Equal(t, want, got)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestAnnotateLine_Idempotent(t *testing.T) {
	a := newTestAnnotator(t)
	in := record("CSQ=NP_004976.2:p.Gly12Cys")

	once, outcome := a.AnnotateLine(in, 1)
	assert.Equal(t, OutcomeAnnotated, outcome)

	twice, outcome := a.AnnotateLine(once, 1)
	assert.Equal(t, OutcomeAlreadyAnnotated, outcome)
	assert.Equal(t, once, twice)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "annotated", OutcomeAnnotated.String())
	assert.Equal(t, "malformed_record", OutcomeMalformedRecord.String())
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.Len(t, Outcomes(), int(outcomeCount))
}
