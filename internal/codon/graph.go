package codon

import (
	"sync"
)

// Codon is a node of the codon mutation graph. Each of the 64 nodes is a
// singleton created at package initialization, along with its neighbors.
type Codon struct {
	seq       string
	index     int
	neighbors [9]*Codon
}

var (
	graph   [64]*Codon
	byCodon = make(map[string]*Codon, 64)
)

func init() {
	for i, s := range Codons() {
		c := &Codon{seq: s, index: i}
		graph[i] = c
		byCodon[s] = c
	}
	for _, c := range graph {
		n := 0
		for pos := 0; pos < 3; pos++ {
			for _, b := range []byte("ACGT") {
				if c.seq[pos] == b {
					continue
				}
				alt := []byte(c.seq)
				alt[pos] = b
				c.neighbors[n] = byCodon[string(alt)]
				n++
			}
		}
	}
}

// Lookup returns the graph node for a codon. Anything that is not three
// of A, C, G, T, including codons with gaps, has no node.
func Lookup(seq string) (*Codon, bool) {
	c, ok := byCodon[seq]
	return c, ok
}

// All returns every node in TCAG order.
func All() []*Codon {
	out := make([]*Codon, len(graph))
	copy(out, graph[:])
	return out
}

// Seq returns the codon's bases.
func (c *Codon) Seq() string { return c.seq }

func (c *Codon) String() string { return c.seq }

// Neighbors returns the nine codons one substitution away, grouped by
// position and ordered A, C, G, T within a position.
func (c *Codon) Neighbors() []*Codon {
	out := make([]*Codon, len(c.neighbors))
	copy(out, c.neighbors[:])
	return out
}

// Differences lists the positions at which c and o differ.
func (c *Codon) Differences(o *Codon) []int {
	var out []int
	for i := 0; i < 3; i++ {
		if c.seq[i] != o.seq[i] {
			out = append(out, i)
		}
	}
	return out
}

// SiteOptions controls how Nei site counts are computed.
type SiteOptions struct {
	// IncludeTerminal counts substitutions to stop codons in the denominator.
	IncludeTerminal bool
	// SkipSecondPosition treats the middle position as fully nonsynonymous.
	SkipSecondPosition bool
}

// SiteCounts is a codon's Nei estimate of synonymous and nonsynonymous sites.
type SiteCounts struct {
	Syn        float64
	Nonsyn     float64
	ByPosition [3]float64 // synonymous fraction of each position
}

// Add accumulates o into s.
func (s *SiteCounts) Add(o SiteCounts) {
	s.Syn += o.Syn
	s.Nonsyn += o.Nonsyn
	for i := range s.ByPosition {
		s.ByPosition[i] += o.ByPosition[i]
	}
}

type siteKey struct {
	index int
	table string
	opts  SiteOptions
}

// cacheName keys the site-count cache. Tables from this package carry a
// content signature; other implementations are keyed by name alone.
func cacheName(t Table) string {
	if s, ok := t.(interface{ signature() string }); ok {
		return s.signature()
	}
	return t.Name()
}

var (
	siteMu    sync.Mutex
	siteCache = make(map[siteKey]SiteCounts)
)

// Sites returns the Nei site counts of the codon seq under t. It reports
// false for anything without a graph node (gaps, ambiguity codes) and for
// codons the table does not map.
func Sites(seq string, t Table, opts SiteOptions) (SiteCounts, bool) {
	c, ok := Lookup(seq)
	if !ok {
		return SiteCounts{}, false
	}
	return c.Sites(t, opts)
}

// Sites returns the memoized Nei site counts of c under t.
func (c *Codon) Sites(t Table, opts SiteOptions) (SiteCounts, bool) {
	if _, ok := t.Lookup(c.seq); !ok {
		return SiteCounts{}, false
	}
	key := siteKey{index: c.index, table: cacheName(t), opts: opts}

	siteMu.Lock()
	defer siteMu.Unlock()
	if sc, ok := siteCache[key]; ok {
		return sc, true
	}
	sc := c.computeSites(t, opts)
	siteCache[key] = sc
	return sc, true
}

func (c *Codon) computeSites(t Table, opts SiteOptions) SiteCounts {
	var sc SiteCounts
	for pos := 0; pos < 3; pos++ {
		if pos == 1 && opts.SkipSecondPosition {
			continue
		}
		syn, total := 0, 0
		for _, n := range c.neighbors[pos*3 : pos*3+3] {
			if t.IsTerminal(n.seq) && !opts.IncludeTerminal {
				continue
			}
			total++
			if t.AreSynonymous(c.seq, n.seq) {
				syn++
			}
		}
		if total > 0 {
			sc.ByPosition[pos] = float64(syn) / float64(total)
		}
		sc.Syn += sc.ByPosition[pos]
	}
	sc.Nonsyn = 3 - sc.Syn
	return sc
}
