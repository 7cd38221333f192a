package loader_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/loader"
	"statml/pkg/result"
)

func TestTrainTestSplit(t *testing.T) {
	t.Parallel()
	s, err := loader.TrainTestSplit(10, loader.DefaultTestSize, loader.DefaultSeed)
	require.NoError(t, err)
	require.Equal(t, result.TypeSplit, s.Type)
	require.Equal(t, 2, s.TestSize)
	require.Equal(t, 8, s.TrainSize)
	require.Equal(t, 42, s.Seed)

	all := append(append([]int(nil), s.Train...), s.Test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}

	again, err := loader.TrainTestSplit(10, 0.2, 42)
	require.NoError(t, err)
	require.Equal(t, s, again)
}

func TestTrainTestSplitInvalid(t *testing.T) {
	t.Parallel()
	_, err := loader.TrainTestSplit(1, 0.2, 1)
	require.ErrorIs(t, err, loader.ErrInvalidSize)
	_, err = loader.TrainTestSplit(10, 1, 1)
	require.ErrorIs(t, err, loader.ErrInvalidSize)

	s, err := loader.TrainTestSplit(3, 0.1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, s.TestSize)
}

func TestSplitData(t *testing.T) {
	t.Parallel()
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 10, 20, 30, 40}
	XTr, XTe, yTr, yTe, err := loader.SplitData(X, y, 0.4, 7)
	require.NoError(t, err)
	require.Len(t, XTe, 2)
	require.Len(t, XTr, 3)
	for i := range XTr {
		require.Equal(t, XTr[i][0]*10, yTr[i])
	}
	for i := range XTe {
		require.Equal(t, XTe[i][0]*10, yTe[i])
	}

	_, _, _, _, err = loader.SplitData(X, y[:2], 0.4, 7)
	require.ErrorIs(t, err, loader.ErrLengthMismatch)
}

func TestKFold(t *testing.T) {
	t.Parallel()
	folds, err := loader.KFold(11, 3, true, 42)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	seen := map[int]int{}
	for _, f := range folds {
		require.Equal(t, 11, len(f.Train)+len(f.Test))
		for _, i := range f.Test {
			seen[i]++
			require.NotContains(t, f.Train, i)
		}
	}
	require.Len(t, seen, 11)
	for _, c := range seen {
		require.Equal(t, 1, c)
	}

	plain, err := loader.KFold(6, 3, false, 0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3}, plain[0].Test)
	require.Equal(t, []int{1, 4, 2, 5}, plain[0].Train)

	_, err = loader.KFold(3, 5, false, 0)
	require.ErrorIs(t, err, loader.ErrInvalidSize)
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	a := loader.Bootstrap(50, 3)
	require.Equal(t, a, loader.Bootstrap(50, 3))
	require.NotEqual(t, a, loader.Bootstrap(50, 4))
	distinct := map[int]bool{}
	for _, i := range a {
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, 50)
		distinct[i] = true
	}
	// sampling with replacement repeats indices
	require.Less(t, len(distinct), 50)
}
