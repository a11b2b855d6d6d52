// Package codon provides genetic-code tables, the 64-codon mutation graph
// with memoized Nei site counts, and the classifier that reconstructs and
// labels the single-base steps between two codons.
package codon

import (
	"regexp"
	"strings"
)

// Granularity selects how an amino acid is named.
type Granularity int

const (
	// FullName is e.g. "Phenylalanine".
	FullName Granularity = iota
	// ThreeLetter is e.g. "Phe".
	ThreeLetter
	// OneLetter is e.g. "F".
	OneLetter
)

// Entry is one codon's record in a table.
type Entry struct {
	Codon    string `yaml:"codon" json:"codon"`
	Terminal bool   `yaml:"terminal" json:"terminal"`
	Start    bool   `yaml:"start" json:"start"`
	Name     string `yaml:"name" json:"name"`
	Abbrev   string `yaml:"abbrev" json:"abbrev"`
	Letter   string `yaml:"letter" json:"letter"`
}

// Table maps codons to amino acids.
type Table interface {
	// Name identifies the table, including in site-count caches.
	Name() string
	Lookup(codon string) (Entry, bool)
	AminoAcid(codon string, g Granularity) (string, bool)
	IsTerminal(codon string) bool
	IsStart(codon string) bool
	// AreSynonymous is true iff both codons map to the same one-letter code.
	AreSynonymous(a, b string) bool
	// FoldFamily counts the third-position bases, the codon's own included,
	// that keep the amino acid unchanged.
	FoldFamily(codon string) (int, bool)
}

var codonPattern = regexp.MustCompile(`^[ACGT]{3}$`)

// IsValid reports whether s is exactly three of A, C, G, T.
func IsValid(s string) bool {
	return codonPattern.MatchString(s)
}

// order is the canonical TCAG enumeration used by genetic-code listings.
const order = "TCAG"

// Codons lists all 64 codons in TCAG order.
func Codons() []string {
	out := make([]string, 0, 64)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				out = append(out, string([]byte{order[i], order[j], order[k]}))
			}
		}
	}
	return out
}

// entrySet implements Table over a codon map.
type entrySet struct {
	name    string
	byCodon map[string]Entry
	sig     string
}

func newEntrySet(name string, byCodon map[string]Entry) *entrySet {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(0)
	for _, c := range Codons() {
		e := byCodon[c]
		sb.WriteString(e.Letter)
		if e.Terminal {
			sb.WriteByte('!')
		}
		sb.WriteByte(',')
	}
	return &entrySet{name: name, byCodon: byCodon, sig: sb.String()}
}

// signature identifies the table by name and coding content, so that two
// tables sharing a name never share cached site counts.
func (s *entrySet) signature() string { return s.sig }

func (s *entrySet) Name() string { return s.name }

func (s *entrySet) Lookup(codon string) (Entry, bool) {
	e, ok := s.byCodon[codon]
	return e, ok
}

func (s *entrySet) AminoAcid(codon string, g Granularity) (string, bool) {
	e, ok := s.byCodon[codon]
	if !ok {
		return "", false
	}
	switch g {
	case FullName:
		return e.Name, true
	case ThreeLetter:
		return e.Abbrev, true
	default:
		return e.Letter, true
	}
}

func (s *entrySet) IsTerminal(codon string) bool {
	return s.byCodon[codon].Terminal
}

func (s *entrySet) IsStart(codon string) bool {
	return s.byCodon[codon].Start
}

func (s *entrySet) AreSynonymous(a, b string) bool {
	ea, ok := s.byCodon[a]
	if !ok {
		return false
	}
	eb, ok := s.byCodon[b]
	if !ok {
		return false
	}
	return ea.Letter == eb.Letter
}

func (s *entrySet) FoldFamily(codon string) (int, bool) {
	e, ok := s.byCodon[codon]
	if !ok {
		return 0, false
	}
	fold := 0
	for _, b := range []byte("ACGT") {
		other, ok := s.byCodon[codon[:2]+string(b)]
		if ok && other.Letter == e.Letter {
			fold++
		}
	}
	return fold, true
}

// entries returns the table's records in TCAG order.
func (s *entrySet) entries() []Entry {
	out := make([]Entry, 0, len(s.byCodon))
	for _, c := range Codons() {
		if e, ok := s.byCodon[c]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Translate converts a codon-aligned sequence to one-letter amino acids.
// Incomplete trailing codons are dropped and unmapped codons become 'X'.
func Translate(t Table, nts string) string {
	out := make([]byte, 0, len(nts)/3)
	for i := 0; i+3 <= len(nts); i += 3 {
		aa, ok := t.AminoAcid(nts[i:i+3], OneLetter)
		if !ok || aa == "" {
			out = append(out, 'X')
			continue
		}
		out = append(out, aa[0])
	}
	return string(out)
}
