package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"statml/pkg/result"
	"statml/pkg/stats"
)

var sample = []float64{2.5, 3.1, 4.7, 1.2, 9.8, 5.5, 6.1, 3.3, 7.2, 4.4}

func TestMeanSeed(t *testing.T) {
	t.Parallel()
	got, err := stats.Compute("mean", []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, result.Statistic{Type: result.TypeStatistic, Name: "mean", N: 5, Value: 3}, got)
}

func TestMeanEqualsSumOverLen(t *testing.T) {
	t.Parallel()
	require.Equal(t, stats.Sum(sample)/float64(len(sample)), stats.Mean(sample))
}

func TestBoundaryNaN(t *testing.T) {
	t.Parallel()
	assert.True(t, math.IsNaN(stats.Mean(nil)))
	assert.True(t, math.IsNaN(stats.Variance([]float64{1})))
	assert.True(t, math.IsNaN(stats.Std([]float64{1})))
	assert.True(t, math.IsNaN(stats.Skewness([]float64{1, 2})))
	assert.True(t, math.IsNaN(stats.Kurtosis([]float64{1, 2, 3})))
	assert.True(t, math.IsNaN(stats.Pearson([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(stats.Median(nil)))
	assert.True(t, math.IsNaN(stats.Min(nil)))
}

func TestMomentsAgainstGonum(t *testing.T) {
	t.Parallel()
	require.InDelta(t, stat.Mean(sample, nil), stats.Mean(sample), 1e-12)
	require.InDelta(t, stat.Variance(sample, nil), stats.Variance(sample), 1e-12)
	require.InDelta(t, math.Sqrt(stat.Variance(sample, nil)), stats.Std(sample), 1e-12)
	require.InDelta(t, stat.PopVariance(sample, nil), stats.PopVariance(sample), 1e-12)
	require.InDelta(t, stat.Skew(sample, nil), stats.Skewness(sample), 1e-9)
	require.InDelta(t, stat.ExKurtosis(sample, nil), stats.Kurtosis(sample), 1e-9)
	require.GreaterOrEqual(t, stats.Variance(sample), 0.0)
}

func TestNonFiniteFiltered(t *testing.T) {
	t.Parallel()
	x := []float64{1, math.NaN(), 2, math.Inf(1), 3}
	c, dropped := stats.Clean(x)
	require.Equal(t, stats.CleanSequence{1, 2, 3}, c)
	require.Equal(t, 2, dropped)
	require.Equal(t, 2.0, stats.Mean(x))

	got, err := stats.Compute("mean", x)
	require.NoError(t, err)
	require.Equal(t, 3, got.N)
}

func TestQuantile(t *testing.T) {
	t.Parallel()
	x := []float64{5, 1, 4, 2, 3}
	cases := []struct {
		q, want float64
	}{
		{0, 1}, {1, 5}, {0.5, 3}, {0.25, 2}, {0.1, 1.4},
	}
	for _, c := range cases {
		got, err := stats.Quantile(x, c.q)
		require.NoError(t, err)
		require.InDelta(t, c.want, got, 1e-12, "q=%v", c.q)
	}
	even, err := stats.Quantile([]float64{1, 2, 3, 4}, 0.5)
	require.NoError(t, err)
	require.Equal(t, 2.5, even)

	_, err = stats.Quantile(x, 1.5)
	require.True(t, errors.Is(err, stats.ErrQuantileRange))
	_, err = stats.Quantile(x, -0.1)
	require.ErrorIs(t, err, stats.ErrQuantileRange)

	q0, _ := stats.Quantile(sample, 0)
	q1, _ := stats.Quantile(sample, 1)
	require.Equal(t, stats.Min(sample), q0)
	require.Equal(t, stats.Max(sample), q1)
	require.Equal(t, 3.0, stats.Median(x))
	require.Equal(t, 2.0, stats.Percentile(x, 25))
}

func TestRanksMidrank(t *testing.T) {
	t.Parallel()
	require.Equal(t, []float64{1, 2.5, 2.5, 4}, stats.Ranks([]float64{10, 20, 20, 30}))
	require.Equal(t, []float64{3, 1, 2}, stats.Ranks([]float64{9, 1, 5}))
	require.Equal(t, []float64{2, 2, 2}, stats.Ranks([]float64{7, 7, 7}))
}

func TestCorrelations(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	r, err := stats.Correlate("pearson", x, y)
	require.NoError(t, err)
	require.Greater(t, r.Value, 0.99)
	require.Equal(t, "pearson", r.Name)

	require.InDelta(t, 1.0, stats.Pearson(sample, sample), 1e-12)
	other := []float64{1, 3, 2, 5, 4, 7, 6, 9, 8, 10}
	require.InDelta(t, stat.Correlation(sample, other, nil), stats.Pearson(sample, other), 1e-12)

	cubes := []float64{1, 8, 27, 64, 125}
	require.InDelta(t, 1.0, stats.Spearman(x, cubes), 1e-12)
	require.InDelta(t, -1.0, stats.Spearman(x, []float64{5, 4, 3, 2, 1}), 1e-12)

	require.InDelta(t, 4.0/6.0, stats.KendallTau([]float64{1, 2, 3, 4}, []float64{1, 3, 2, 4}), 1e-12)

	_, err = stats.Correlate("pearson", x, y[:3])
	require.ErrorIs(t, err, stats.ErrLengthMismatch)
	_, err = stats.Correlate("distance", x, y)
	require.ErrorIs(t, err, stats.ErrUnknownStatistic)
}

func TestCorrelationMatrix(t *testing.T) {
	t.Parallel()
	m, err := stats.CorrelationMatrix("pearson", [][]float64{{1, 2, 3}, {2, 4, 6}, {3, 2, 1}})
	require.NoError(t, err)
	require.InDelta(t, 1.0, m[0][1], 1e-12)
	require.InDelta(t, -1.0, m[0][2], 1e-12)
	require.Equal(t, m[1][2], m[2][1])
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	s := stats.Describe([]float64{1, 2, 3, 4, 5, math.NaN()})
	require.Equal(t, 5, s.N)
	require.Equal(t, 1, s.Dropped)
	require.Equal(t, 3.0, s.Mean)
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 2.0, s.Q1)
	require.Equal(t, 3.0, s.Median)
	require.Equal(t, 4.0, s.Q3)
	require.Equal(t, 5.0, s.Max)
	require.InDelta(t, 0.0, s.Skewness, 1e-12)
}

func TestComputeUnknown(t *testing.T) {
	t.Parallel()
	_, err := stats.Compute("entropy", sample)
	require.ErrorIs(t, err, stats.ErrUnknownStatistic)
	m, err := stats.Compute("mode", []float64{1, 2, 2, 3, 3})
	require.NoError(t, err)
	require.Equal(t, 2.0, m.Value)
}
