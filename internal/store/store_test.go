package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/popgen-go/internal/analysis"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "popgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResults() []analysis.Result {
	adh := analysis.Result{
		Gene: "adh", Ingroup: 4, Outgroup: 1, Length: 9, Sites: 9,
		Polymorphisms: 2, Singletons: 2, Transitions: 2,
		Pi: 1.0 / 9, Theta: 4.0 / 33, TajimaD: -0.7099, TajimaDPrime: -1,
		Divergence: 0.25, DivergentSites: 2,
		SynSites: 1.5, NonsynSites: 7.5, PiS: 1.0 / 3, PiN: 1.0 / 15,
		Ps: 1, Pn: 1, Ds: 1, Dn: 1, NI: 1,
	}
	adh.Derived[2] = 1
	est := analysis.Result{
		Gene: "est", Ingroup: 3, Length: 4, Sites: 4,
		Pi: 0.25, Theta: 0.2, TajimaD: math.NaN(), TajimaDPrime: math.NaN(),
		Divergence: math.NaN(), PiS: math.NaN(), PiN: math.NaN(), NI: math.NaN(),
	}
	return []analysis.Result{adh, est}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, "adh north vs sim", true, sampleResults())
	require.NoError(t, err)

	run, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "adh north vs sim", run.Label)
	assert.True(t, run.Coding)
	assert.Equal(t, 2, run.Genes)
	assert.False(t, run.Created.IsZero())

	got, err := s.Results(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := sampleResults()
	assert.Equal(t, want[0], got[0])
	assert.Equal(t, "est", got[1].Gene)
	assert.InDelta(t, 0.25, got[1].Pi, 1e-12)
	assert.True(t, math.IsNaN(got[1].TajimaD))
	assert.True(t, math.IsNaN(got[1].NI))
}

func TestRunsNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, "first", false, nil)
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "second", false, sampleResults()[:1])
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, 0, runs[1].Genes)
}

func TestDeleteRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, "gone", false, sampleResults())
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, id))

	_, err = s.Run(ctx, id)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.Results(ctx, id)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, id), ErrRunNotFound)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popgen.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.SaveRun(context.Background(), "kept", false, sampleResults())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Results(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, path, s.Path())
}
