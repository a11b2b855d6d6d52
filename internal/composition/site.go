// Package composition tallies the symbols observed in one alignment column,
// either single bases for non-coding sequence or whole codons for coding
// sequence, and classifies a column by comparing an ingroup with an
// outgroup.
package composition

import (
	"fmt"
	"math/bits"

	"github.com/aria-lang/popgen-go/internal/sequence"
)

// SiteType is the relationship between two groups at one column.
type SiteType int

const (
	// NoSite means one of the groups has nothing usable at the column.
	NoSite SiteType = iota
	// Monomorphic means both groups show the same single state.
	Monomorphic
	// PolymorphicFirst means the first group segregates and shares at
	// least one state with the second.
	PolymorphicFirst
	// PolymorphicSecond means only the second group segregates, sharing
	// the first group's state.
	PolymorphicSecond
	// Divergent means the groups share no state.
	Divergent
)

var siteTypeNames = [...]string{"none", "monomorphic", "polymorphic", "polymorphic-outgroup", "divergent"}

func (t SiteType) String() string {
	if t < 0 || int(t) >= len(siteTypeNames) {
		return fmt.Sprintf("SiteType(%d)", int(t))
	}
	return siteTypeNames[t]
}

// Site counts the symbols seen at one alignment column. A, C, G and T are
// counted separately; every ambiguity code and missing-data symbol goes to
// a single missing bucket, and gaps are counted on their own.
type Site struct {
	bases   [4]int
	missing int
	gaps    int
}

// NewSite returns a site holding the symbols of column.
func NewSite(column string) *Site {
	s := &Site{}
	s.AddColumn(column)
	return s
}

// Add records one symbol. Lower-case bases are accepted; any symbol that is
// neither a base nor a gap is counted as missing.
func (s *Site) Add(c byte) {
	if 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	switch {
	case sequence.IsGap(c):
		s.gaps++
	case sequence.IsBase(c):
		s.bases[sequence.BaseIndex(c)]++
	default:
		s.missing++
	}
}

// AddColumn records every symbol of column.
func (s *Site) AddColumn(column string) {
	for i := 0; i < len(column); i++ {
		s.Add(column[i])
	}
}

// Count returns how often base was seen.
func (s *Site) Count(base byte) int {
	i := sequence.BaseIndex(base)
	if i < 0 {
		return 0
	}
	return s.bases[i]
}

// Counts returns the A, C, G, T tallies.
func (s *Site) Counts() [4]int { return s.bases }

// Missing returns the number of ambiguous or missing symbols.
func (s *Site) Missing() int { return s.missing }

// Gaps returns the number of gap symbols.
func (s *Site) Gaps() int { return s.gaps }

// Valid returns the number of unambiguous bases: A, C, G and T. This is
// narrower than "every non-gap symbol": N and other ambiguity codes sit in
// the missing bucket and are not valid observations, so they never form a
// site or a polymorphism on their own.
func (s *Site) Valid() int {
	return s.bases[0] + s.bases[1] + s.bases[2] + s.bases[3]
}

// Total returns every symbol recorded, gaps and missing data included.
func (s *Site) Total() int {
	return s.Valid() + s.missing + s.gaps
}

// Observed returns the distinct bases seen, in ACGT order.
func (s *Site) Observed() []byte {
	var out []byte
	for i, n := range s.bases {
		if n > 0 {
			out = append(out, sequence.Bases[i])
		}
	}
	return out
}

// Polymorphisms returns the number of distinct bases if there are at least
// two, and 0 for a monomorphic or empty column.
func (s *Site) Polymorphisms() int {
	n := len(s.Observed())
	if n < 2 {
		return 0
	}
	return n
}

// IsPolymorphic reports whether at least two distinct bases were seen.
func (s *Site) IsPolymorphic() bool { return s.Polymorphisms() > 0 }

// Frequencies returns the A, C, G, T frequencies. When constantN is
// positive the counts are divided by it instead of by Valid, for callers
// that assume a fixed sample size.
func (s *Site) Frequencies(constantN int) [4]float64 {
	var f [4]float64
	d := constantN
	if d <= 0 {
		d = s.Valid()
	}
	if d == 0 {
		return f
	}
	for i, n := range s.bases {
		f[i] = float64(n) / float64(d)
	}
	return f
}

// Transitions counts the transition pairs (A/G and C/T) that are both
// present.
func (s *Site) Transitions() int {
	n := 0
	if s.bases[0] > 0 && s.bases[2] > 0 {
		n++
	}
	if s.bases[1] > 0 && s.bases[3] > 0 {
		n++
	}
	return n
}

// HasSingleton reports whether some base of a polymorphic column was seen
// exactly once.
func (s *Site) HasSingleton() bool {
	if !s.IsPolymorphic() {
		return false
	}
	for _, n := range s.bases {
		if n == 1 {
			return true
		}
	}
	return false
}

// Major returns the most frequent base. Ties go to the earlier base in
// ACGT order.
func (s *Site) Major() (byte, bool) {
	best := -1
	for i, n := range s.bases {
		if n > 0 && (best < 0 || n > s.bases[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return sequence.Bases[best], true
}

// HeterozygosityUnbiased returns n/(n-1) * (1 - sum p^2) over the valid
// bases, the expected pairwise difference at the column. It reports false
// with fewer than two valid bases.
func (s *Site) HeterozygosityUnbiased() (float64, bool) {
	n := s.Valid()
	if n < 2 {
		return 0, false
	}
	sum := 0.0
	for _, p := range s.Frequencies(0) {
		sum += p * p
	}
	return float64(n) / float64(n-1) * (1 - sum), true
}

// DerivedFrequency returns the fraction of the ingroup's valid bases that
// differ from the outgroup's base. The outgroup must be monomorphic and the
// ingroup must hold at least two valid bases.
func (s *Site) DerivedFrequency(out *Site) (float64, bool) {
	obs := out.Observed()
	if len(obs) != 1 {
		return 0, false
	}
	n := s.Valid()
	if n < 2 {
		return 0, false
	}
	return float64(n-s.Count(obs[0])) / float64(n), true
}

func (s *Site) mask() uint32 {
	var m uint32
	for i, n := range s.bases {
		if n > 0 {
			m |= 1 << i
		}
	}
	return m
}

// Merge returns a new site holding the tallies of both a and b.
func Merge(a, b *Site) *Site {
	out := &Site{
		missing: a.missing + b.missing,
		gaps:    a.gaps + b.gaps,
	}
	for i := range out.bases {
		out.bases[i] = a.bases[i] + b.bases[i]
	}
	return out
}

// Classify compares an ingroup column with an outgroup column.
//
// Either side without valid bases gives NoSite. Disjoint base sets give
// Divergent. Otherwise the groups share a base, and the column is
// PolymorphicFirst when the ingroup shows more than one base (whatever the
// outgroup shows), PolymorphicSecond when only the outgroup does, and
// Monomorphic when both show the same single base.
func Classify(pop, out *Site) SiteType {
	return classifyMasks(pop.mask(), out.mask())
}

func classifyMasks(pop, out uint32) SiteType {
	switch {
	case pop == 0 || out == 0:
		return NoSite
	case pop&out == 0:
		return Divergent
	case bits.OnesCount32(pop) > 1:
		return PolymorphicFirst
	case bits.OnesCount32(out) > 1:
		return PolymorphicSecond
	default:
		return Monomorphic
	}
}
