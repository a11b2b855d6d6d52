package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/config"
	"github.com/aria-lang/popgen-go/internal/dataset"
)

func addGene(d *dataset.Dataset, name string, t dataset.RegionType, pop string, seqs ...string) {
	g := dataset.NewGeneEntry(name, "")
	for i, s := range seqs {
		st := dataset.NewStrainEntry("sp", name+"-"+string(rune('a'+i)))
		st.AddPopulation(pop)
		st.AddRegion(dataset.NewGeneRegion(t, 1, len(s), s))
		g.AddStrain(st)
	}
	d.AddGene(g)
}

func adhDataset() *dataset.Dataset {
	d := dataset.New()
	addGene(d, "adh", dataset.Exon, "north",
		"ATGTTTGGG",
		"ATGTTCGGG",
		"ATGTTTGGG",
		"ATGCTTGGG",
	)
	g := dataset.NewGeneEntry("adh", "")
	out := dataset.NewStrainEntry("sim", "sim1")
	out.AddPopulation("sim")
	out.AddRegion(dataset.NewGeneRegion(dataset.Exon, 1, 9, "ATGTTAGGA"))
	g.AddStrain(out)
	d.AddGene(g)
	return d
}

func TestGeneNucleotides(t *testing.T) {
	r, err := NewRunner(Options{Ingroup: "north", Outgroup: "sim"})
	require.NoError(t, err)

	g, _ := adhDataset().Lookup("adh")
	res, ok := r.Gene(g)
	require.True(t, ok)

	assert.Equal(t, 4, res.Ingroup)
	assert.Equal(t, 1, res.Outgroup)
	assert.Equal(t, 9, res.Length)
	assert.Equal(t, 9, res.Sites)
	assert.Equal(t, 2, res.Polymorphisms)
	assert.Equal(t, 2, res.Singletons)
	assert.Equal(t, 2, res.Transitions)
	assert.InDelta(t, 1.0/9, res.Pi, 1e-9)
	assert.InDelta(t, 4.0/33, res.Theta, 1e-9)
	assert.InDelta(t, -0.70989617, res.TajimaD, 1e-6)
	assert.InDelta(t, -1.0, res.TajimaDPrime, 1e-6)
	assert.InDelta(t, 0.25, res.Divergence, 1e-9)
	assert.Equal(t, 2, res.DivergentSites)
	assert.Equal(t, [DerivedBins]int{2: 1}, res.Derived)

	assert.Zero(t, res.SynSites)
	assert.Zero(t, res.Ps)
}

func TestGeneCoding(t *testing.T) {
	r, err := NewRunner(Options{Ingroup: "north", Outgroup: "sim", Coding: true})
	require.NoError(t, err)

	g, _ := adhDataset().Lookup("adh")
	res, ok := r.Gene(g)
	require.True(t, ok)

	assert.InDelta(t, 1.5, res.SynSites, 1e-9)
	assert.InDelta(t, 7.5, res.NonsynSites, 1e-9)
	assert.Equal(t, 1, res.Ps)
	assert.Equal(t, 1, res.Pn)
	assert.Equal(t, 1, res.Ds)
	assert.Equal(t, 1, res.Dn)
	assert.InDelta(t, 1.0/3, res.PiS, 1e-9)
	assert.InDelta(t, 1.0/15, res.PiN, 1e-9)
	assert.InDelta(t, 1.0, res.NI, 1e-9)
}

func TestGeneCodingPathlessColumn(t *testing.T) {
	d := dataset.New()
	// The middle column holds TGG and TAA, which no stop-free path joins.
	addGene(d, "trp", dataset.Exon, "north", "AAATGGCTG", "AAGTAACTA")
	r, err := NewRunner(Options{Ingroup: "north", Coding: true})
	require.NoError(t, err)

	g, _ := d.Lookup("trp")
	res, ok := r.Gene(g)
	require.True(t, ok)

	assert.Equal(t, 2, res.Ps)
	assert.Zero(t, res.Pn)
	assert.False(t, math.IsNaN(res.PiS))
	assert.False(t, math.IsNaN(res.PiN))
	assert.InDelta(t, 2/res.SynSites, res.PiS, 1e-9)
	assert.Zero(t, res.PiN)
}

func TestGeneJukesCantor(t *testing.T) {
	r, err := NewRunner(Options{Ingroup: "north", Outgroup: "sim", JukesCantor: true})
	require.NoError(t, err)

	g, _ := adhDataset().Lookup("adh")
	res, ok := r.Gene(g)
	require.True(t, ok)
	assert.Greater(t, res.Pi, 1.0/9)
	assert.Greater(t, res.Divergence, 0.25)
}

func TestGeneNoOutgroup(t *testing.T) {
	r, err := NewRunner(Options{})
	require.NoError(t, err)

	g, _ := adhDataset().Lookup("adh")
	res, ok := r.Gene(g)
	require.True(t, ok)
	assert.Equal(t, 5, res.Ingroup)
	assert.Equal(t, 0, res.Outgroup)
	assert.True(t, math.IsNaN(res.Divergence))
	assert.Equal(t, 0, res.DivergentSites)
}

func TestGeneSkipped(t *testing.T) {
	var logs bytes.Buffer
	r, err := NewRunner(Options{Logger: log.New(&logs, "", 0)})
	require.NoError(t, err)

	d := dataset.New()
	addGene(d, "single", dataset.Exon, "", "ACGT")
	addGene(d, "ragged", dataset.Exon, "", "ACGT", "ACG")
	for _, g := range d.Genes() {
		_, ok := r.Gene(g)
		assert.False(t, ok, g.Name())
	}
	assert.Contains(t, logs.String(), "skipping single: 1 ingroup sequences")
	assert.Contains(t, logs.String(), "skipping ragged: sequences are not aligned")
}

func TestRegionTypeFilter(t *testing.T) {
	d := dataset.New()
	g := dataset.NewGeneEntry("mixed", "")
	for i, pair := range [][2]string{{"ATG", "AAAA"}, {"ATG", "AACA"}, {"ATG", "AAGA"}} {
		st := dataset.NewStrainEntry("sp", string(rune('a'+i)))
		st.AddRegion(dataset.NewGeneRegion(dataset.Exon, 1, 3, pair[0]))
		st.AddRegion(dataset.NewGeneRegion(dataset.Intron, 4, 7, pair[1]))
		g.AddStrain(st)
	}
	d.AddGene(g)

	r, err := NewRunner(Options{RegionType: dataset.Intron})
	require.NoError(t, err)
	res, ok := r.Gene(g)
	require.True(t, ok)
	assert.Equal(t, 4, res.Length)
	assert.Equal(t, 1, res.Polymorphisms)

	r, err = NewRunner(Options{Coding: true})
	require.NoError(t, err)
	res, ok = r.Gene(g)
	require.True(t, ok)
	assert.Equal(t, 3, res.Length)
	assert.Equal(t, 0, res.Polymorphisms)
}

func TestRun(t *testing.T) {
	d := adhDataset()
	addGene(d, "tiny", dataset.Exon, "north", "AC")
	addGene(d, "est", dataset.Exon, "north", "AAAA", "AAAT", "AATT")

	var calls atomic.Int32
	r, err := NewRunner(Options{
		Ingroup:  "north",
		Outgroup: "sim",
		Workers:  3,
		Progress: func(done, total int, gene string) {
			calls.Add(1)
			assert.Equal(t, 3, total)
		},
	})
	require.NoError(t, err)

	results, err := r.Run(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "adh", results[0].Gene)
	assert.Equal(t, "est", results[1].Gene)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunProgressOrder(t *testing.T) {
	d := dataset.New()
	for i := 0; i < 40; i++ {
		addGene(d, fmt.Sprintf("g%02d", i), dataset.Exon, "north", "ACGT", "ACGA", "ACTT")
	}

	var seen []int
	r, err := NewRunner(Options{
		Ingroup: "north",
		Workers: 4,
		Progress: func(done, total int, gene string) {
			seen = append(seen, done)
			assert.Equal(t, 40, total)
		},
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, seen, 40)
	for i, done := range seen {
		assert.Equal(t, i+1, done)
	}
}

func TestRunCancelled(t *testing.T) {
	r, err := NewRunner(Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, adhDataset())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(Options{MinSamples: 1})
	assert.Error(t, err)
	_, err = NewRunner(Options{SingletonCutoff: 1.5})
	assert.Error(t, err)

	r, err := NewRunner(Options{})
	require.NoError(t, err)
	assert.Equal(t, codon.UniversalName, r.Options().Table.Name())
	assert.Equal(t, 2, r.Options().MinSamples)
	assert.Equal(t, 1, r.Options().Workers)
}

func TestOptionsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mito.yaml")
	mito, err := codon.Derive("mito", codon.Universal(),
		codon.Entry{Codon: "TGA", Name: "Tryptophan", Abbrev: "Trp", Letter: "W"})
	require.NoError(t, err)
	require.NoError(t, codon.SaveTable(path, mito))

	c := config.Default()
	c.Ingroup = "north"
	c.RegionType = "intron"
	c.IncludeTerminal = true
	c.CodonTable = path

	opts, err := OptionsFromConfig(c)
	require.NoError(t, err)
	assert.Equal(t, dataset.Intron, opts.RegionType)
	assert.Equal(t, "mito", opts.Table.Name())
	assert.True(t, opts.Sites.IncludeTerminal)
	assert.True(t, opts.Paths.AllowTerminal)

	c.CodonTable = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = OptionsFromConfig(c)
	assert.Error(t, err)
}

func TestNeutralityIndex(t *testing.T) {
	assert.InDelta(t, 2.0, NeutralityIndex(2, 4, 3, 3), 1e-12)
	assert.True(t, math.IsNaN(NeutralityIndex(0, 4, 3, 3)))
	assert.True(t, math.IsNaN(NeutralityIndex(2, 4, 3, 0)))
}

func TestWriteTSV(t *testing.T) {
	r, err := NewRunner(Options{Ingroup: "north", Outgroup: "sim", Coding: true})
	require.NoError(t, err)
	results, err := r.Run(context.Background(), adhDataset())
	require.NoError(t, err)

	out := FormatTSV(results, true)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	require.Equal(t, len(header), len(row))
	assert.Equal(t, Header(true), header)

	get := func(col string) string {
		for i, h := range header {
			if h == col {
				return row[i]
			}
		}
		t.Fatalf("no column %s", col)
		return ""
	}
	assert.Equal(t, "adh", get("gene"))
	assert.Equal(t, "0.111111", get("pi"))
	assert.Equal(t, "1.000000", get("NI"))
	assert.Equal(t, "1", get("daf_2"))

	noncoding := FormatTSV([]Result{{Gene: "x", Pi: math.NaN(), Divergence: math.Inf(1)}}, false)
	assert.Contains(t, noncoding, "x\t0\t0\t0\t0\t0\t0\t0\tNA\t0.000000")
	assert.Contains(t, noncoding, "\tInf\t")
	assert.NotContains(t, noncoding, "pi_s")
}
