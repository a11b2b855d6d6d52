package codon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairOf(t *testing.T) {
	tests := []struct {
		a, b       byte
		want       BasePair
		transition bool
	}{
		{'A', 'G', AG, true},
		{'G', 'A', AG, true},
		{'T', 'C', CT, true},
		{'A', 'C', AC, false},
		{'T', 'A', AT, false},
		{'G', 'C', CG, false},
		{'T', 'G', GT, false},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			p, ok := PairOf(tt.a, tt.b)
			require.True(t, ok)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.transition, p.IsTransition())
		})
	}

	_, ok := PairOf('A', 'A')
	assert.False(t, ok)
	_, ok = PairOf('A', 'N')
	assert.False(t, ok)
}

func TestBestPathSingleDifference(t *testing.T) {
	p, ok := BestPath(Universal(), "TTT", "TTC", PathOptions{})
	require.True(t, ok)
	assert.Equal(t, []string{"TTT", "TTC"}, p.Codons)
	require.Len(t, p.Steps, 1)
	assert.True(t, p.Steps[0].Synonymous)
	assert.Equal(t, CT, p.Steps[0].Pair)
	assert.Equal(t, 2, p.Steps[0].Position)
	assert.Equal(t, 1, p.Transitions())
}

func TestBestPathIdentical(t *testing.T) {
	p, ok := BestPath(Universal(), "ACG", "ACG", PathOptions{})
	require.True(t, ok)
	assert.Empty(t, p.Steps)
}

func TestBestPathRegression(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		opts     PathOptions
		codons   []string
		syn      []bool
		pairs    []BasePair
	}{
		{
			name:   "two synonymous orderings tie on first",
			from:   "TTA",
			to:     "CTG",
			codons: []string{"TTA", "CTA", "CTG"},
			syn:    []bool{true, true},
			pairs:  []BasePair{CT, AG},
		},
		{
			name:   "stop intermediate avoided",
			from:   "TAC",
			to:     "TGG",
			codons: []string{"TAC", "TGC", "TGG"},
			syn:    []bool{false, false},
			pairs:  []BasePair{AG, CG},
		},
		{
			name:   "three differences fewest nonsynonymous",
			from:   "AAA",
			to:     "CCC",
			codons: []string{"AAA", "CAA", "CCA", "CCC"},
			syn:    []bool{false, false, true},
			pairs:  []BasePair{AC, AC, AC},
		},
		{
			name:   "terminal intermediates allowed",
			from:   "TGG",
			to:     "TAA",
			opts:   PathOptions{AllowTerminal: true},
			codons: []string{"TGG", "TAG", "TAA"},
			syn:    []bool{false, true},
			pairs:  []BasePair{AG, AG},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				p, ok := BestPath(Universal(), tt.from, tt.to, tt.opts)
				require.True(t, ok)
				assert.Equal(t, tt.codons, p.Codons)
				require.Len(t, p.Steps, len(tt.syn))
				for j, s := range p.Steps {
					assert.Equal(t, tt.syn[j], s.Synonymous, "step %d", j)
					assert.Equal(t, tt.pairs[j], s.Pair, "step %d", j)
					assert.Equal(t, p.Codons[j], s.From)
					assert.Equal(t, p.Codons[j+1], s.To)
				}
			}
		})
	}
}

func TestBestPathBlockedByStops(t *testing.T) {
	_, ok := BestPath(Universal(), "TGG", "TAA", PathOptions{})
	assert.False(t, ok)
}

func TestBestPathInvalid(t *testing.T) {
	_, ok := BestPath(Universal(), "TG-", "TGG", PathOptions{})
	assert.False(t, ok)
	_, ok = BestPath(Universal(), "TGG", "NGG", PathOptions{})
	assert.False(t, ok)
}

func TestStepAtAndClassifyChange(t *testing.T) {
	p, ok := BestPath(Universal(), "AAA", "CCC", PathOptions{})
	require.True(t, ok)

	s, ok := p.StepAt(2)
	require.True(t, ok)
	assert.True(t, s.Synonymous)
	assert.Equal(t, "CCA", s.From)

	_, ok = p.StepAt(5)
	assert.False(t, ok)

	s, ok = ClassifyChange(Universal(), "CTA", 2, 'G')
	require.True(t, ok)
	assert.True(t, s.Synonymous)
	assert.Equal(t, AG, s.Pair)

	s, ok = ClassifyChange(Universal(), "CTA", 0, 'A')
	require.True(t, ok)
	assert.False(t, s.Synonymous)
	assert.Equal(t, AC, s.Pair)

	_, ok = ClassifyChange(Universal(), "CTA", 2, 'A')
	assert.False(t, ok)
	_, ok = ClassifyChange(Universal(), "CTA", 3, 'A')
	assert.False(t, ok)
}

func TestPermutationsOrder(t *testing.T) {
	assert.Equal(t, [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}, permutations([]int{0, 1, 2}))
	assert.Equal(t, [][]int{{1}}, permutations([]int{1}))
}

func TestConnect(t *testing.T) {
	paths, ok := Connect(Universal(), []string{"AAA", "ACC", "AAC"}, PathOptions{})
	require.True(t, ok)
	require.Len(t, paths, 2)
	assert.Equal(t, []string{"AAA", "AAC"}, paths[0].Codons)
	assert.Equal(t, []string{"AAC", "ACC"}, paths[1].Codons)
	assert.False(t, paths[0].Steps[0].Synonymous)

	paths, ok = Connect(Universal(), []string{"AAA"}, PathOptions{})
	assert.True(t, ok)
	assert.Empty(t, paths)

	_, ok = Connect(Universal(), []string{"AAA", "A-A"}, PathOptions{})
	assert.False(t, ok)
}
