package composition

import (
	"testing"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codonSite(opts CodonOptions, codons ...string) *CodonSite {
	c := NewCodonSite(codon.Universal(), opts)
	for _, s := range codons {
		c.Add(s)
	}
	return c
}

func TestCodonSiteAdd(t *testing.T) {
	c := NewCodonSite(codon.Universal(), CodonOptions{})
	assert.True(t, c.Add("ctg"))
	assert.True(t, c.Add("CTG"))
	assert.True(t, c.Add("CTA"))
	assert.False(t, c.Add("CNG"))
	assert.False(t, c.Add("CT"))

	assert.Equal(t, 3, c.Valid())
	assert.Equal(t, 2, c.Missing())
	assert.Equal(t, 2, c.Count("CTG"))
	assert.Equal(t, []string{"CTG", "CTA"}, c.Codons())
	assert.Equal(t, 2, c.Polymorphisms())
	assert.Equal(t, []string{"L"}, c.AminoAcids())

	major, ok := c.Major()
	require.True(t, ok)
	assert.Equal(t, "CTG", major)
}

func TestCodonSiteGapRejects(t *testing.T) {
	c := codonSite(CodonOptions{}, "CTG", "C-G", "CTG")
	assert.True(t, c.Rejected())
	assert.Equal(t, 0, c.Valid())
	assert.Empty(t, c.Codons())

	_, ok := c.Sites()
	assert.False(t, ok)
	_, ok = c.Vector()
	assert.False(t, ok)
	_, ok = c.Paths()
	assert.False(t, ok)
}

func TestCodonSiteExcludeTerminal(t *testing.T) {
	c := codonSite(CodonOptions{ExcludeTerminal: true}, "TAA", "TGG", "TGG")
	assert.Equal(t, 3, c.Valid())
	assert.Zero(t, c.Missing())
	assert.Equal(t, []string{"TGG", "TAA"}, c.Codons())
	assert.Equal(t, []string{"*", "W"}, c.AminoAcids())

	// Only the two TGG codons enter the site counts.
	sum, ok := c.Sites()
	require.True(t, ok)
	assert.InDelta(t, 6, sum.Syn+sum.Nonsyn, 1e-9)
	mean, ok := c.MeanSites()
	require.True(t, ok)
	assert.InDelta(t, 3, mean.Syn+mean.Nonsyn, 1e-9)
	v, ok := c.Vector()
	require.True(t, ok)
	assert.InDelta(t, 3, v[SynTotal]+v[NonsynTotal], 1e-9)

	stops := codonSite(CodonOptions{ExcludeTerminal: true}, "TAA", "TAG")
	assert.Equal(t, 2, stops.Valid())
	_, ok = stops.Sites()
	assert.False(t, ok)
	_, ok = stops.MeanSites()
	assert.False(t, ok)
	_, ok = stops.Vector()
	assert.False(t, ok)

	all, ok := codonSite(CodonOptions{}, "TAA", "TGG", "TGG").Sites()
	require.True(t, ok)
	assert.InDelta(t, 9, all.Syn+all.Nonsyn, 1e-9)
}

func TestCodonSiteSites(t *testing.T) {
	c := codonSite(CodonOptions{}, "TTT", "TTT", "CTG")

	sum, ok := c.Sites()
	require.True(t, ok)
	assert.InDelta(t, 1.0/3+1.0/3+4.0/3, sum.Syn, 1e-9)
	assert.InDelta(t, 9-sum.Syn, sum.Nonsyn, 1e-9)

	mean, ok := c.MeanSites()
	require.True(t, ok)
	assert.InDelta(t, 2.0/3, mean.Syn, 1e-9)
	assert.InDelta(t, 3, mean.Syn+mean.Nonsyn, 1e-9)
}

func TestCodonSiteVector(t *testing.T) {
	v, ok := codonSite(CodonOptions{}, "CTG").Vector()
	require.True(t, ok)

	// CTG: position 1 C is 1/3 synonymous, position 3 G fully synonymous.
	assert.InDelta(t, 4.0/3, v[SynTotal], 1e-9)
	assert.InDelta(t, 1.0/3, v[SynC], 1e-9)
	assert.InDelta(t, 1.0, v[SynG], 1e-9)
	assert.InDelta(t, 0, v[SynT], 1e-9)
	assert.InDelta(t, 5.0/3, v[NonsynTotal], 1e-9)
	assert.InDelta(t, 2.0/3, v[NonsynC], 1e-9)
	assert.InDelta(t, 1.0, v[NonsynT], 1e-9)
	assert.InDelta(t, 0, v[NonsynG], 1e-9)

	total := 0.0
	for _, x := range v[SynA : SynT+1] {
		total += x
	}
	assert.InDelta(t, v[SynTotal], total, 1e-9)
}

func TestCodonSitePolymorphicSteps(t *testing.T) {
	c := codonSite(CodonOptions{}, "AAA", "AAA", "AAC", "ACC")
	syn, nonsyn, ok := c.PolymorphicSteps()
	require.True(t, ok)
	assert.Equal(t, 0, syn)
	assert.Equal(t, 2, nonsyn)

	c = codonSite(CodonOptions{}, "CTG", "CTA", "CTG")
	syn, nonsyn, ok = c.PolymorphicSteps()
	require.True(t, ok)
	assert.Equal(t, 1, syn)
	assert.Equal(t, 0, nonsyn)

	syn, nonsyn, ok = codonSite(CodonOptions{}, "CTG").PolymorphicSteps()
	require.True(t, ok)
	assert.Zero(t, syn+nonsyn)
}

func TestClassifyCodons(t *testing.T) {
	opts := CodonOptions{}
	tests := []struct {
		name     string
		pop, out []string
		want     SiteType
	}{
		{"synonymous fixed difference", []string{"CTG", "CTG"}, []string{"CTA"}, Monomorphic},
		{"amino acid change", []string{"TTT", "TTC"}, []string{"CTG"}, Divergent},
		{"replacement polymorphism", []string{"TTT", "CTG"}, []string{"TTC"}, PolymorphicFirst},
		{"outgroup polymorphism", []string{"TTT"}, []string{"TTT", "TGG"}, PolymorphicSecond},
		{"empty", []string{"T-T"}, []string{"TTT"}, NoSite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCodons(codonSite(opts, tt.pop...), codonSite(opts, tt.out...))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixedPath(t *testing.T) {
	p, ok := FixedPath(codonSite(CodonOptions{}, "TTA", "TTA"), codonSite(CodonOptions{}, "CTG"))
	require.True(t, ok)
	assert.Equal(t, 2, p.Synonymous())
	assert.Equal(t, 0, p.Nonsynonymous())

	p, ok = FixedPath(codonSite(CodonOptions{}, "TTA", "CTG"), codonSite(CodonOptions{}, "CTG"))
	require.True(t, ok)
	assert.Empty(t, p.Steps)

	_, ok = FixedPath(codonSite(CodonOptions{}, "---"), codonSite(CodonOptions{}, "CTG"))
	assert.False(t, ok)
}

func TestPairwiseDifferences(t *testing.T) {
	// Pairs: (TTT,TTT) none, two (TTT,TTC) synonymous steps, one (TTT,CTT)
	// nonsynonymous step each, (TTC,CTT) one of each. Six pairs in total.
	c := codonSite(CodonOptions{}, "TTT", "TTT", "TTC", "CTT")
	syn, nonsyn, ok := c.PairwiseDifferences()
	require.True(t, ok)
	assert.InDelta(t, 3.0/6, syn, 1e-9)
	assert.InDelta(t, 3.0/6, nonsyn, 1e-9)

	syn, nonsyn, ok = codonSite(CodonOptions{}, "TTT", "TTT").PairwiseDifferences()
	require.True(t, ok)
	assert.Zero(t, syn)
	assert.Zero(t, nonsyn)

	_, _, ok = codonSite(CodonOptions{}, "TTT").PairwiseDifferences()
	assert.False(t, ok)
}

func TestPairwiseDifferencesNoPath(t *testing.T) {
	// TGG and TAA connect only through TAG or TGA.
	syn, nonsyn, ok := codonSite(CodonOptions{}, "TGG", "TAA").PairwiseDifferences()
	assert.False(t, ok)
	assert.Zero(t, syn)
	assert.Zero(t, nonsyn)

	// Usable pairs still count when another pair has no path.
	syn, nonsyn, ok = codonSite(CodonOptions{}, "TGG", "TGG", "TAA").PairwiseDifferences()
	require.True(t, ok)
	assert.Zero(t, syn)
	assert.Zero(t, nonsyn)
}
