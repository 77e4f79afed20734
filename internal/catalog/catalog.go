// Package catalog holds the ClinVar pathogenic variant catalog: known
// protein changes indexed by RefSeq protein accession, then by ClinVar
// variation id.
package catalog

import (
	"sort"
	"strings"
)

// StringSet is a sorted, de-duplicated list of strings.
type StringSet []string

// NewStringSet builds a set from the given items.
func NewStringSet(items ...string) StringSet {
	if len(items) == 0 {
		return nil
	}
	s := make(StringSet, len(items))
	copy(s, items)
	sort.Strings(s)

	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether v is in the set.
func (s StringSet) Contains(v string) bool {
	i := sort.SearchStrings(s, v)
	return i < len(s) && s[i] == v
}

// Join joins the set members with sep.
func (s StringSet) Join(sep string) string {
	return strings.Join(s, sep)
}

// Entry is one known pathogenic protein change on one transcript.
type Entry struct {
	RecordID             string    // ClinVar variation id
	AAChange             string    // protein change as reported, e.g. "p.Arg140Ter"
	GRCh38               StringSet // genomic HGVS, current assembly
	GRCh37               StringSet // genomic HGVS, previous assembly
	MolecularConsequence StringSet // e.g. "missense variant", "nonsense"
}

// transcript keeps entries both indexed and in record-id order.
type transcript struct {
	byID    map[string]*Entry
	ordered []*Entry
}

// Catalog maps transcript accession to the entries reported on it.
// It is populated with Add and Merge and must not be mutated once shared
// with readers.
type Catalog struct {
	transcripts map[string]*transcript
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{transcripts: make(map[string]*transcript)}
}

// Add inserts e under the given transcript, creating the transcript if
// needed. An entry with the same record id on that transcript is replaced.
func (c *Catalog) Add(accession string, e *Entry) {
	t, ok := c.transcripts[accession]
	if !ok {
		t = &transcript{byID: make(map[string]*Entry)}
		c.transcripts[accession] = t
	}

	if _, exists := t.byID[e.RecordID]; exists {
		for i, old := range t.ordered {
			if old.RecordID == e.RecordID {
				t.ordered[i] = e
				break
			}
		}
		t.byID[e.RecordID] = e
		return
	}

	i := sort.Search(len(t.ordered), func(i int) bool {
		return !lessID(t.ordered[i].RecordID, e.RecordID)
	})
	t.ordered = append(t.ordered, nil)
	copy(t.ordered[i+1:], t.ordered[i:])
	t.ordered[i] = e
	t.byID[e.RecordID] = e
}

// Merge adds every entry of other into c.
func (c *Catalog) Merge(other *Catalog) {
	for acc, t := range other.transcripts {
		for _, e := range t.ordered {
			c.Add(acc, e)
		}
	}
}

// HasTranscript reports whether the accession has any entries.
func (c *Catalog) HasTranscript(accession string) bool {
	_, ok := c.transcripts[accession]
	return ok
}

// Entries returns the entries of a transcript in record-id order.
// The returned slice must not be modified.
func (c *Catalog) Entries(accession string) []*Entry {
	t, ok := c.transcripts[accession]
	if !ok {
		return nil
	}
	return t.ordered
}

// Entry returns a single entry by transcript and record id.
func (c *Catalog) Entry(accession, recordID string) (*Entry, bool) {
	t, ok := c.transcripts[accession]
	if !ok {
		return nil, false
	}
	e, ok := t.byID[recordID]
	return e, ok
}

// Transcripts returns all transcript accessions, sorted.
func (c *Catalog) Transcripts() []string {
	accs := make([]string, 0, len(c.transcripts))
	for acc := range c.transcripts {
		accs = append(accs, acc)
	}
	sort.Strings(accs)
	return accs
}

// TranscriptCount returns the number of transcripts.
func (c *Catalog) TranscriptCount() int {
	return len(c.transcripts)
}

// EntryCount returns the number of (transcript, record id) entries.
func (c *Catalog) EntryCount() int {
	n := 0
	for _, t := range c.transcripts {
		n += len(t.ordered)
	}
	return n
}

// Map returns the catalog as a nested transcript → record id → entry map.
func (c *Catalog) Map() map[string]map[string]*Entry {
	m := make(map[string]map[string]*Entry, len(c.transcripts))
	for acc, t := range c.transcripts {
		inner := make(map[string]*Entry, len(t.byID))
		for id, e := range t.byID {
			inner[id] = e
		}
		m[acc] = inner
	}
	return m
}

// FromMap builds a catalog from a nested map. Transcripts without entries
// are dropped.
func FromMap(m map[string]map[string]*Entry) *Catalog {
	c := New()
	for acc, inner := range m {
		for id, e := range inner {
			if e.RecordID == "" {
				e.RecordID = id
			}
			c.Add(acc, e)
		}
	}
	return c
}

// lessID orders numeric ids numerically and everything else lexically,
// with numeric ids first.
func lessID(a, b string) bool {
	an, bn := isDigits(a), isDigits(b)
	switch {
	case an && bn:
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	case an:
		return true
	case bn:
		return false
	default:
		return a < b
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
