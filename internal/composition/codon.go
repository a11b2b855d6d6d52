package composition

import (
	"sort"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/sequence"
)

// CodonOptions controls how a codon column is tallied.
type CodonOptions struct {
	// ExcludeTerminal keeps stop codons out of the site counts. They are
	// still tallied, so they take part in paths and classification.
	ExcludeTerminal bool
	Sites           codon.SiteOptions
	Paths           codon.PathOptions
}

// CodonSite counts the codons seen at one triplet column of a coding
// alignment. A gap in any codon rejects the whole column. Codons with
// ambiguous bases and codons the table does not map are counted as missing.
type CodonSite struct {
	table   codon.Table
	opts    CodonOptions
	counts  map[string]int
	valid   int
	missing int
	gapped  bool
}

// NewCodonSite returns an empty codon column.
func NewCodonSite(t codon.Table, opts CodonOptions) *CodonSite {
	return &CodonSite{table: t, opts: opts, counts: make(map[string]int)}
}

// Add records one codon and reports whether it was counted as valid.
func (c *CodonSite) Add(triplet string) bool {
	if len(triplet) != 3 {
		c.missing++
		return false
	}
	b := []byte(triplet)
	for i := range b {
		if 'a' <= b[i] && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
		if sequence.IsGap(b[i]) {
			c.gapped = true
			return false
		}
	}
	s := string(b)
	if !codon.IsValid(s) {
		c.missing++
		return false
	}
	if _, ok := c.table.Lookup(s); !ok {
		c.missing++
		return false
	}
	c.counts[s]++
	c.valid++
	return true
}

// Rejected reports whether a gap was seen.
func (c *CodonSite) Rejected() bool { return c.gapped }

// Valid returns the number of usable codons, or 0 for a rejected column.
func (c *CodonSite) Valid() int {
	if c.gapped {
		return 0
	}
	return c.valid
}

// Missing returns the number of codons that were not counted.
func (c *CodonSite) Missing() int { return c.missing }

// Count returns how often triplet was counted.
func (c *CodonSite) Count(triplet string) int { return c.counts[triplet] }

// Codons returns the distinct codons by descending count, ties in
// lexicographic order. The first one is the column's major codon.
func (c *CodonSite) Codons() []string {
	if c.gapped {
		return nil
	}
	out := make([]string, 0, len(c.counts))
	for s := range c.counts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c.counts[out[i]] != c.counts[out[j]] {
			return c.counts[out[i]] > c.counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Major returns the most frequent codon.
func (c *CodonSite) Major() (string, bool) {
	cs := c.Codons()
	if len(cs) == 0 {
		return "", false
	}
	return cs[0], true
}

// Polymorphisms returns the number of distinct codons if there are at
// least two, else 0.
func (c *CodonSite) Polymorphisms() int {
	n := len(c.Codons())
	if n < 2 {
		return 0
	}
	return n
}

// AminoAcids returns the distinct one-letter amino acids observed, sorted.
func (c *CodonSite) AminoAcids() []string {
	seen := map[string]bool{}
	for _, s := range c.Codons() {
		if aa, ok := c.table.AminoAcid(s, codon.OneLetter); ok {
			seen[aa] = true
		}
	}
	out := make([]string, 0, len(seen))
	for aa := range seen {
		out = append(out, aa)
	}
	sort.Strings(out)
	return out
}

// excluded reports whether s is left out of the site counts.
func (c *CodonSite) excluded(s string) bool {
	return c.opts.ExcludeTerminal && c.table.IsTerminal(s)
}

// siteCodons returns how many counted codons contribute to site counts.
func (c *CodonSite) siteCodons() int {
	if c.gapped {
		return 0
	}
	n := 0
	for s, count := range c.counts {
		if !c.excluded(s) {
			n += count
		}
	}
	return n
}

// Sites returns the Nei site counts summed over every counted codon,
// leaving out stop codons under ExcludeTerminal.
func (c *CodonSite) Sites() (codon.SiteCounts, bool) {
	var total codon.SiteCounts
	if c.siteCodons() == 0 {
		return total, false
	}
	for s, n := range c.counts {
		if c.excluded(s) {
			continue
		}
		sc, ok := codon.Sites(s, c.table, c.opts.Sites)
		if !ok {
			return codon.SiteCounts{}, false
		}
		for i := 0; i < n; i++ {
			total.Add(sc)
		}
	}
	return total, true
}

// MeanSites returns the site counts averaged over the contributing codons.
func (c *CodonSite) MeanSites() (codon.SiteCounts, bool) {
	total, ok := c.Sites()
	if !ok {
		return total, false
	}
	n := float64(c.siteCodons())
	total.Syn /= n
	total.Nonsyn /= n
	for i := range total.ByPosition {
		total.ByPosition[i] /= n
	}
	return total, true
}

// Vector slots.
const (
	SynTotal = iota
	SynA
	SynC
	SynG
	SynT
	NonsynTotal
	NonsynA
	NonsynC
	NonsynG
	NonsynT
)

// Vector splits the column's sites into synonymous and nonsynonymous
// parts by the base found at each position, averaged over the counted
// codons. Slot SynTotal sums slots SynA..SynT and NonsynTotal sums
// NonsynA..NonsynT.
func (c *CodonSite) Vector() ([10]float64, bool) {
	var v [10]float64
	n := c.siteCodons()
	if n == 0 {
		return v, false
	}
	for s, count := range c.counts {
		if c.excluded(s) {
			continue
		}
		sc, ok := codon.Sites(s, c.table, c.opts.Sites)
		if !ok {
			return [10]float64{}, false
		}
		w := float64(count) / float64(n)
		for pos := 0; pos < 3; pos++ {
			bi := sequence.BaseIndex(s[pos])
			syn := sc.ByPosition[pos] * w
			non := (1 - sc.ByPosition[pos]) * w
			v[SynTotal] += syn
			v[SynA+bi] += syn
			v[NonsynTotal] += non
			v[NonsynA+bi] += non
		}
	}
	return v, true
}

// Paths connects the observed codons, starting from the major codon, and
// classifies every step. A monomorphic column gives no paths.
func (c *CodonSite) Paths() ([]codon.Path, bool) {
	if c.Valid() == 0 {
		return nil, false
	}
	return codon.Connect(c.table, c.Codons(), c.opts.Paths)
}

// PolymorphicSteps counts the synonymous and nonsynonymous steps needed to
// connect the observed codons.
func (c *CodonSite) PolymorphicSteps() (syn, nonsyn int, ok bool) {
	paths, ok := c.Paths()
	if !ok {
		return 0, 0, false
	}
	for _, p := range paths {
		syn += p.Synonymous()
		nonsyn += p.Nonsynonymous()
	}
	return syn, nonsyn, true
}

func (c *CodonSite) mask() uint32 {
	var m uint32
	for _, aa := range c.AminoAcids() {
		m |= aminoBit(aa)
	}
	return m
}

func aminoBit(letter string) uint32 {
	if len(letter) != 1 {
		return 0
	}
	switch l := letter[0]; {
	case l == '*':
		return 1 << 26
	case 'A' <= l && l <= 'Z':
		return 1 << (l - 'A')
	}
	return 0
}

// ClassifyCodons compares an ingroup codon column with an outgroup column
// by amino acid, with the same rules as Classify. Synonymous codon
// differences therefore never make a column divergent.
func ClassifyCodons(pop, out *CodonSite) SiteType {
	return classifyMasks(pop.mask(), out.mask())
}

// FixedPath returns the path between the major codons of two columns
// that share no codon. Columns sharing a codon give an empty path.
func FixedPath(pop, out *CodonSite) (codon.Path, bool) {
	a, ok := pop.Major()
	if !ok {
		return codon.Path{}, false
	}
	b, ok := out.Major()
	if !ok {
		return codon.Path{}, false
	}
	for s := range pop.counts {
		if out.counts[s] > 0 {
			return codon.Path{Codons: []string{a}}, true
		}
	}
	return codon.BestPath(pop.table, a, b, pop.opts.Paths)
}

// PairwiseDifferences returns the mean synonymous and nonsynonymous steps
// between two codons drawn without replacement from the column. Pairs of
// codons with no valid path are left out of the mean; a column where no
// pair is usable reports false.
func (c *CodonSite) PairwiseDifferences() (syn, nonsyn float64, ok bool) {
	if c.Valid() < 2 {
		return 0, 0, false
	}
	codons := c.Codons()
	pairs := 0.0
	for i, a := range codons {
		na := float64(c.counts[a])
		pairs += na * (na - 1) / 2
		for _, b := range codons[i+1:] {
			p, ok := codon.BestPath(c.table, a, b, c.opts.Paths)
			if !ok {
				continue
			}
			w := na * float64(c.counts[b])
			syn += w * float64(p.Synonymous())
			nonsyn += w * float64(p.Nonsynonymous())
			pairs += w
		}
	}
	if pairs == 0 {
		return 0, 0, false
	}
	return syn / pairs, nonsyn / pairs, true
}
