// Package stats aggregates site compositions into population-genetic
// summaries.
//
// Columns are stratified by their valid sample size, since missing data
// changes n from column to column. Each stratum is a SitesBlock; Strata
// routes columns to blocks and combines them into nucleotide diversity,
// Watterson's theta and Tajima's D.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/aria-lang/popgen-go/internal/composition"
)

// SitesBlock accumulates the columns that share one valid sample size N.
type SitesBlock struct {
	N               int
	Sites           int
	Polymorphisms   int
	Singletons      int
	Transitions     int
	SumPi           float64
	SingletonCutoff float64
}

// NewSitesBlock returns an empty block for sample size n. A positive cutoff
// stops a base seen once from counting as a singleton when 1/n exceeds it.
func NewSitesBlock(n int, cutoff float64) *SitesBlock {
	return &SitesBlock{N: n, SingletonCutoff: cutoff}
}

// Add folds one column into the block. Columns whose valid count differs
// from N, or with fewer than two valid bases, are not sites and are
// rejected.
func (b *SitesBlock) Add(s *composition.Site) bool {
	n := s.Valid()
	if n != b.N || n < 2 {
		return false
	}
	h, _ := s.HeterozygosityUnbiased()

	b.Sites++
	b.SumPi += h
	if !s.IsPolymorphic() {
		return true
	}
	b.Polymorphisms++
	b.Transitions += s.Transitions()
	if s.HasSingleton() && b.singletonAllowed() {
		b.Singletons++
	}
	return true
}

func (b *SitesBlock) singletonAllowed() bool {
	if b.SingletonCutoff <= 0 {
		return true
	}
	return 1/float64(b.N) <= b.SingletonCutoff
}

// Pi returns the mean pairwise difference per site within the block.
func (b *SitesBlock) Pi() float64 {
	if b.Sites == 0 {
		return math.NaN()
	}
	return b.SumPi / float64(b.Sites)
}

// Theta returns Watterson's estimate per site within the block.
func (b *SitesBlock) Theta() float64 {
	if b.Sites == 0 {
		return math.NaN()
	}
	return float64(b.Polymorphisms) / Harmonic(b.N) / float64(b.Sites)
}

func (b *SitesBlock) String() string {
	return fmt.Sprintf(`SitesBlock {
  n: %d
  sites: %d
  polymorphisms: %d
  singletons: %d
  transitions: %d
  pi: %.5f
}`, b.N, b.Sites, b.Polymorphisms, b.Singletons, b.Transitions, b.Pi())
}

// Strata groups columns into SitesBlocks by valid sample size.
type Strata struct {
	cutoff float64
	blocks map[int]*SitesBlock
}

// NewStrata returns empty strata whose blocks use the given singleton
// cutoff.
func NewStrata(cutoff float64) *Strata {
	return &Strata{cutoff: cutoff, blocks: make(map[int]*SitesBlock)}
}

// Add routes a column to the block for its valid sample size. Columns with
// fewer than two valid bases are not sites.
func (st *Strata) Add(s *composition.Site) bool {
	n := s.Valid()
	if n < 2 {
		return false
	}
	b, ok := st.blocks[n]
	if !ok {
		b = NewSitesBlock(n, st.cutoff)
		st.blocks[n] = b
	}
	return b.Add(s)
}

// Blocks returns the non-empty blocks by ascending N.
func (st *Strata) Blocks() []*SitesBlock {
	out := make([]*SitesBlock, 0, len(st.blocks))
	for _, b := range st.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].N < out[j].N })
	return out
}

// Sites returns the number of sites over all blocks.
func (st *Strata) Sites() int {
	n := 0
	for _, b := range st.blocks {
		n += b.Sites
	}
	return n
}

// Polymorphisms returns the number of segregating sites over all blocks.
func (st *Strata) Polymorphisms() int {
	n := 0
	for _, b := range st.blocks {
		n += b.Polymorphisms
	}
	return n
}

// Singletons returns the number of singleton sites over all blocks.
func (st *Strata) Singletons() int {
	n := 0
	for _, b := range st.blocks {
		n += b.Singletons
	}
	return n
}

// Transitions returns the number of transition pairs over all blocks.
func (st *Strata) Transitions() int {
	n := 0
	for _, b := range st.blocks {
		n += b.Transitions
	}
	return n
}

// Pi returns nucleotide diversity per site over every block, optionally
// Jukes-Cantor corrected. It is NaN without sites.
func (st *Strata) Pi(jukesCantor bool) float64 {
	sites := st.Sites()
	if sites == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, b := range st.blocks {
		sum += b.SumPi
	}
	return correct(sum/float64(sites), jukesCantor)
}

// Theta returns Watterson's theta per site, each block's segregating sites
// scaled by the harmonic number of its own N.
func (st *Strata) Theta(jukesCantor bool) float64 {
	sites := st.Sites()
	if sites == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, b := range st.blocks {
		sum += float64(b.Polymorphisms) / Harmonic(b.N)
	}
	return correct(sum/float64(sites), jukesCantor)
}

// TajimaD returns Tajima's D over the blocks.
func (st *Strata) TajimaD() float64 { return TajimaD(st.Blocks()) }

// TajimaDPrime returns the normalized Tajima's D over the blocks.
func (st *Strata) TajimaDPrime() float64 { return TajimaDPrime(st.Blocks()) }

func correct(d float64, jukesCantor bool) float64 {
	if !jukesCantor {
		return d
	}
	return JukesCantor(d)
}
