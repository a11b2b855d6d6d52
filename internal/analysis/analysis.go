// Package analysis runs per-gene population-genetic analyses over a
// dataset: it slices each gene's strains into an ingroup and an optional
// outgroup, walks the aligned columns, and aggregates diversity,
// divergence and, for coding sequence, synonymous and nonsynonymous
// tallies.
package analysis

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/composition"
	"github.com/aria-lang/popgen-go/internal/config"
	"github.com/aria-lang/popgen-go/internal/dataset"
	"github.com/aria-lang/popgen-go/internal/stats"
)

// DerivedBins is the number of derived allele frequency classes.
const DerivedBins = 10

// Options controls a run.
type Options struct {
	Ingroup  string
	Outgroup string
	// RegionType restricts the analysis to regions of one type. Empty means
	// the complete sequence. Ignored when Coding is set.
	RegionType dataset.RegionType
	// Coding analyzes the concatenated Exon regions codon by codon.
	Coding          bool
	Table           codon.Table
	JukesCantor     bool
	SingletonCutoff float64
	ExcludeTerminal bool
	Sites           codon.SiteOptions
	Paths           codon.PathOptions
	// MinSamples is the fewest ingroup sequences a gene needs.
	MinSamples int
	Workers    int

	// Progress is called after each gene with the number finished so far.
	// Calls are serialized and done increases by one each time.
	Progress func(done, total int, gene string)
	// Logger receives skipped-gene notices. Nil discards them.
	Logger *log.Logger
}

// OptionsFromConfig builds run options, loading the custom codon table
// when one is configured.
func OptionsFromConfig(c config.Config) (Options, error) {
	opts := Options{
		Ingroup:         c.Ingroup,
		Outgroup:        c.Outgroup,
		Coding:          c.Coding,
		Table:           codon.Universal(),
		JukesCantor:     c.JukesCantor,
		SingletonCutoff: c.SingletonCutoff,
		ExcludeTerminal: c.ExcludeTerminal,
		Sites:           codon.SiteOptions{IncludeTerminal: c.IncludeTerminal},
		Paths:           codon.PathOptions{AllowTerminal: c.IncludeTerminal},
		MinSamples:      c.MinSamples,
		Workers:         c.Workers,
	}
	if c.RegionType != "" {
		opts.RegionType = dataset.ParseRegionType(c.RegionType)
	}
	if c.CodonTable != "" {
		t, err := codon.LoadTable(c.CodonTable)
		if err != nil {
			return Options{}, err
		}
		opts.Table = t
	}
	return opts, nil
}

// Result is the summary of one gene.
type Result struct {
	Gene     string
	Ingroup  int
	Outgroup int
	Length   int

	Sites          int
	Polymorphisms  int
	Singletons     int
	Transitions    int
	Pi             float64
	Theta          float64
	TajimaD        float64
	TajimaDPrime   float64
	Divergence     float64
	DivergentSites int
	Derived        [DerivedBins]int

	// Coding only.
	SynSites    float64
	NonsynSites float64
	PiS         float64
	PiN         float64
	Ps, Pn      int
	Ds, Dn      int
	NI          float64
}

// Runner analyzes genes with fixed options.
type Runner struct {
	opts Options
}

// NewRunner checks opts and fills in defaults.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Table == nil {
		opts.Table = codon.Universal()
	}
	if opts.MinSamples == 0 {
		opts.MinSamples = 2
	}
	if opts.MinSamples < 2 {
		return nil, fmt.Errorf("min samples %d: need at least 2", opts.MinSamples)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.SingletonCutoff < 0 || opts.SingletonCutoff > 1 {
		return nil, fmt.Errorf("singleton cutoff %g outside [0, 1]", opts.SingletonCutoff)
	}
	return &Runner{opts: opts}, nil
}

// Options returns the effective options.
func (r *Runner) Options() Options { return r.opts }

// Run analyzes every gene of d and returns the results of the genes that
// could be analyzed, in dataset order. Cancellation is checked between
// genes; the dataset must not be mutated while a run is in flight.
func (r *Runner) Run(ctx context.Context, d *dataset.Dataset) ([]Result, error) {
	genes := d.Genes()
	results := make([]Result, len(genes))
	ok := make([]bool, len(genes))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, gene := range genes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], ok[i] = r.Gene(gene)

			mu.Lock()
			defer mu.Unlock()
			done++
			if r.opts.Progress != nil {
				r.opts.Progress(done, len(genes), gene.Name())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(genes))
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	return out, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger.Printf(format, args...)
	}
}

// Gene analyzes a single gene. It reports false when the gene has too few
// ingroup sequences or its sequences are not aligned.
func (r *Runner) Gene(g *dataset.GeneEntry) (Result, bool) {
	res := Result{Gene: g.Name()}

	in, out := r.split(g)
	res.Ingroup, res.Outgroup = len(in), len(out)
	if len(in) < r.opts.MinSamples {
		r.logf("skipping %s: %d ingroup sequences", g.Name(), len(in))
		return res, false
	}
	length := len(in[0])
	for _, group := range [][]string{in, out} {
		for _, s := range group {
			if len(s) != length {
				r.logf("skipping %s: sequences are not aligned", g.Name())
				return res, false
			}
		}
	}
	res.Length = length

	r.nucleotides(&res, in, out)
	if r.opts.Coding {
		r.codons(&res, in, out)
	}
	return res, true
}

// split returns the ingroup and outgroup sequences. Strains in the
// outgroup are never part of the ingroup, and strains without sequence
// are dropped.
func (r *Runner) split(g *dataset.GeneEntry) (in, out []string) {
	for _, s := range g.Strains() {
		seq := r.sequenceOf(s)
		if seq == "" {
			continue
		}
		switch {
		case r.opts.Outgroup != "" && s.InPopulation(r.opts.Outgroup):
			out = append(out, seq)
		case s.InPopulation(r.opts.Ingroup):
			in = append(in, seq)
		}
	}
	return in, out
}

func (r *Runner) sequenceOf(s *dataset.StrainEntry) string {
	switch {
	case r.opts.Coding:
		return s.CodingSequence().String()
	case r.opts.RegionType != "":
		return s.SequenceOfType(r.opts.RegionType).String()
	default:
		return s.CompleteSequence().String()
	}
}

func column(seqs []string, i int) string {
	b := make([]byte, len(seqs))
	for j, s := range seqs {
		b[j] = s[i]
	}
	return string(b)
}

func (r *Runner) nucleotides(res *Result, in, out []string) {
	strata := stats.NewStrata(r.opts.SingletonCutoff)
	sumK, nK := 0.0, 0

	for i := 0; i < res.Length; i++ {
		pop := composition.NewSite(column(in, i))
		if pop.Valid() < r.opts.MinSamples {
			continue
		}
		strata.Add(pop)
		if len(out) == 0 {
			continue
		}

		og := composition.NewSite(column(out, i))
		if og.Valid() == 0 {
			continue
		}
		sumK += stats.K(pop, og)
		nK++
		if composition.Classify(pop, og) == composition.Divergent {
			res.DivergentSites++
		}
		if f, ok := pop.DerivedFrequency(og); ok && f > 0 && f < 1 {
			bin := int(f * DerivedBins)
			if bin >= DerivedBins {
				bin = DerivedBins - 1
			}
			res.Derived[bin]++
		}
	}

	res.Sites = strata.Sites()
	res.Polymorphisms = strata.Polymorphisms()
	res.Singletons = strata.Singletons()
	res.Transitions = strata.Transitions()
	res.Pi = strata.Pi(r.opts.JukesCantor)
	res.Theta = strata.Theta(r.opts.JukesCantor)
	res.TajimaD = strata.TajimaD()
	res.TajimaDPrime = strata.TajimaDPrime()
	res.Divergence = math.NaN()
	if nK > 0 {
		res.Divergence = sumK / float64(nK)
		if r.opts.JukesCantor {
			res.Divergence = stats.JukesCantor(res.Divergence)
		}
	}
}

func (r *Runner) codons(res *Result, in, out []string) {
	copts := composition.CodonOptions{
		ExcludeTerminal: r.opts.ExcludeTerminal,
		Sites:           r.opts.Sites,
		Paths:           r.opts.Paths,
	}
	sumSyn, sumNonsyn := 0.0, 0.0

	for i := 0; i+3 <= res.Length; i += 3 {
		pop := composition.NewCodonSite(r.opts.Table, copts)
		for _, s := range in {
			pop.Add(s[i : i+3])
		}
		if pop.Valid() < r.opts.MinSamples {
			continue
		}
		sites, ok := pop.MeanSites()
		if !ok {
			continue
		}
		res.SynSites += sites.Syn
		res.NonsynSites += sites.Nonsyn

		if syn, nonsyn, ok := pop.PolymorphicSteps(); ok {
			res.Ps += syn
			res.Pn += nonsyn
		}
		if syn, nonsyn, ok := pop.PairwiseDifferences(); ok {
			sumSyn += syn
			sumNonsyn += nonsyn
		}

		if len(out) == 0 {
			continue
		}
		og := composition.NewCodonSite(r.opts.Table, copts)
		for _, s := range out {
			og.Add(s[i : i+3])
		}
		if og.Valid() == 0 {
			continue
		}
		if p, ok := composition.FixedPath(pop, og); ok {
			res.Ds += p.Synonymous()
			res.Dn += p.Nonsynonymous()
		}
	}

	res.PiS = ratio(sumSyn, res.SynSites)
	res.PiN = ratio(sumNonsyn, res.NonsynSites)
	res.NI = NeutralityIndex(res.Ps, res.Pn, res.Ds, res.Dn)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// NeutralityIndex returns (Pn/Ps)/(Dn/Ds), NaN when any of Ps, Ds or Dn
// is zero.
func NeutralityIndex(ps, pn, ds, dn int) float64 {
	if ps == 0 || ds == 0 || dn == 0 {
		return math.NaN()
	}
	return (float64(pn) / float64(ps)) / (float64(dn) / float64(ds))
}
