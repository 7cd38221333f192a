package rng_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/rng"
)

func TestLCGSequence(t *testing.T) {
	t.Parallel()
	g := rng.New(42)
	// (9301·42 + 49297) mod 233280 = 439939 mod 233280 = 206659
	require.InDelta(t, 206659.0/233280.0, g.Float64(), 0)
	// (9301·206659 + 49297) mod 233280
	next := (9301*206659 + 49297) % 233280
	require.InDelta(t, float64(next)/233280.0, g.Float64(), 0)
}

func TestLCGDeterministic(t *testing.T) {
	t.Parallel()
	a, b := rng.New(7), rng.New(7)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
	require.Equal(t, rng.New(1).Perm(20), rng.New(1).Perm(20))
	require.NotEqual(t, rng.New(1).Perm(20), rng.New(2).Perm(20))
}

func TestLCGRange(t *testing.T) {
	t.Parallel()
	g := rng.New(-5)
	for i := 0; i < 1000; i++ {
		v := g.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
		n := g.Intn(7)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 7)
	}
}

func TestPermIsPermutation(t *testing.T) {
	t.Parallel()
	p := rng.New(42).Perm(30)
	sorted := append([]int(nil), p...)
	sort.Ints(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v)
	}
}
