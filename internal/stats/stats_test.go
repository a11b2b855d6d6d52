package stats

import (
	"math"
	"testing"

	"github.com/aria-lang/popgen-go/internal/composition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strataOf(cutoff float64, columns ...string) *Strata {
	st := NewStrata(cutoff)
	for _, c := range columns {
		st.Add(composition.NewSite(c))
	}
	return st
}

func TestSitesBlockAdd(t *testing.T) {
	b := NewSitesBlock(4, 0)

	assert.True(t, b.Add(composition.NewSite("AAAC")))
	assert.True(t, b.Add(composition.NewSite("AGAG")))
	assert.True(t, b.Add(composition.NewSite("TTTT")))
	assert.False(t, b.Add(composition.NewSite("AAC")))
	assert.False(t, b.Add(composition.NewSite("A---")))

	assert.Equal(t, 3, b.Sites)
	assert.Equal(t, 2, b.Polymorphisms)
	assert.Equal(t, 1, b.Singletons)
	assert.Equal(t, 1, b.Transitions)
	assert.InDelta(t, 0.5+2.0/3, b.SumPi, 1e-9)
}

func TestSingletonCutoff(t *testing.T) {
	b := NewSitesBlock(4, 0.2)
	b.Add(composition.NewSite("AAAC"))
	assert.Equal(t, 1, b.Polymorphisms)
	assert.Equal(t, 0, b.Singletons)

	b = NewSitesBlock(10, 0.2)
	b.Add(composition.NewSite("AAAAAAAAAC"))
	assert.Equal(t, 1, b.Singletons)
}

func TestStrataRouting(t *testing.T) {
	st := strataOf(0, "AAAC", "AACC", "AAA", "AGA", "A", "-N")

	blocks := st.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, 3, blocks[0].N)
	assert.Equal(t, 4, blocks[1].N)
	assert.Equal(t, 4, st.Sites())
	assert.Equal(t, 3, st.Polymorphisms())
	assert.Equal(t, 2, st.Singletons())
	assert.Equal(t, 1, st.Transitions())
}

func TestPiAndTheta(t *testing.T) {
	st := strataOf(0, "AAAC", "AACC", "AAAA", "AAAA")

	assert.InDelta(t, (0.5+2.0/3)/4, st.Pi(false), 1e-9)
	assert.InDelta(t, 2/Harmonic(4)/4, st.Theta(false), 1e-9)
	assert.InDelta(t, 0.27272727, st.Theta(false), 1e-6)

	assert.InDelta(t, JukesCantor(st.Pi(false)), st.Pi(true), 1e-12)
	assert.Greater(t, st.Pi(true), st.Pi(false))

	empty := NewStrata(0)
	assert.True(t, math.IsNaN(empty.Pi(false)))
	assert.True(t, math.IsNaN(empty.Theta(true)))
}

func TestTajimaD(t *testing.T) {
	st := strataOf(0, "AAAC", "AACC", "AAAA", "AAAA")
	assert.InDelta(t, 0.59158014, st.TajimaD(), 1e-6)
	assert.InDelta(t, 0.3125, st.TajimaDPrime(), 1e-6)
}

func TestTajimaDAllSingletons(t *testing.T) {
	st := strataOf(0, "AAAAC", "CCCCA", "GGGTG", "GGGGG")
	assert.InDelta(t, -1.04849308, st.TajimaD(), 1e-6)
	assert.InDelta(t, -1.0, st.TajimaDPrime(), 1e-6)
}

func TestTajimaDUndefined(t *testing.T) {
	assert.True(t, math.IsNaN(strataOf(0, "AAAA", "CCCC").TajimaD()))
	assert.True(t, math.IsNaN(TajimaD(nil)))
	// n = 2 has zero variance.
	assert.True(t, math.IsNaN(strataOf(0, "AC", "AA").TajimaD()))
	assert.True(t, math.IsNaN(strataOf(0, "AC").TajimaDPrime()))
}

func TestHarmonic(t *testing.T) {
	assert.Equal(t, 0.0, Harmonic(1))
	assert.InDelta(t, 1.0, Harmonic(2), 1e-12)
	assert.InDelta(t, 11.0/6, Harmonic(4), 1e-12)
	assert.InDelta(t, 1+0.25+1.0/9, Harmonic2(4), 1e-12)
}

func TestK(t *testing.T) {
	tests := []struct {
		pop, out string
		want     float64
	}{
		{"AAA", "A", 0},
		{"GG", "A", 1},
		{"AG", "A", 0.5},
		{"AG", "AG", 0.5},
		{"AAAC", "CC", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.pop+"/"+tt.out, func(t *testing.T) {
			got := K(composition.NewSite(tt.pop), composition.NewSite(tt.out))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
	assert.True(t, math.IsNaN(K(composition.NewSite("A"), composition.NewSite("-"))))
}

func TestJukesCantor(t *testing.T) {
	assert.InDelta(t, 0.0, JukesCantor(0), 1e-12)
	assert.InDelta(t, 0.107326, JukesCantor(0.1), 1e-6)

	prev := JukesCantor(0)
	for d := 0.01; d < 0.75; d += 0.01 {
		cur := JukesCantor(d)
		assert.Greater(t, cur, prev, "d=%.2f", d)
		assert.GreaterOrEqual(t, cur, d)
		prev = cur
	}

	assert.True(t, math.IsInf(JukesCantor(0.75), 1))
	assert.True(t, math.IsInf(JukesCantor(0.9), 1))
	assert.True(t, math.IsNaN(JukesCantor(-0.1)))
	assert.True(t, math.IsNaN(JukesCantor(math.NaN())))
}

func TestSitesBlockString(t *testing.T) {
	b := NewSitesBlock(4, 0)
	b.Add(composition.NewSite("AACC"))
	assert.Contains(t, b.String(), "polymorphisms: 1")
	assert.Contains(t, b.String(), "pi: 0.66667")
}

func BenchmarkStrataAdd(b *testing.B) {
	sites := []*composition.Site{
		composition.NewSite("AAAACAAAAG"),
		composition.NewSite("CCCCCCCCCC"),
		composition.NewSite("ACGTACGTAC"),
	}
	for i := 0; i < b.N; i++ {
		st := NewStrata(0)
		for _, s := range sites {
			st.Add(s)
		}
		_ = st.TajimaD()
	}
}
