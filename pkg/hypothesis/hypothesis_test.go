package hypothesis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"statml/pkg/hypothesis"
	"statml/pkg/result"
)

func tTwoSided(t, df float64) float64 {
	return 2 * (1 - distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(math.Abs(t)))
}

func zTwoSided(z float64) float64 {
	return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
}

func TestTTestIndependentSeed(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.TTestIndependent([]float64{10, 12, 9, 11, 10}, []float64{8, 7, 9, 10, 8})
	require.NoError(t, err)
	require.Equal(t, result.TypeHypothesisTest, h.Type)
	require.Equal(t, "independent_t_test", h.Name)
	require.Equal(t, 8.0, h.DF)
	require.Greater(t, h.PValue, 0.0)
	require.Less(t, h.PValue, 1.0)
	require.InDelta(t, 2.7735009811, h.Statistic, 1e-9)
	require.InDelta(t, tTwoSided(h.Statistic, 8), h.PValue, 1e-6)
	require.True(t, h.Significant(0.05))
	require.Equal(t, "pooled", h.Note)
}

func TestTTestIndependentWelch(t *testing.T) {
	t.Parallel()
	x := []float64{20.1, 22.3, 19.8, 25.0, 21.7, 23.4}
	y := []float64{18.2, 17.9, 19.5, 16.4}
	h, err := hypothesis.TTestIndependent(x, y, hypothesis.WithWelch())
	require.NoError(t, err)
	require.InDelta(t, 3.938354770, h.Statistic, 1e-8)
	require.InDelta(t, 7.997827661, h.DF, 1e-8)
	require.InDelta(t, tTwoSided(h.Statistic, h.DF), h.PValue, 1e-6)
	require.Equal(t, "welch", h.Note)
}

func TestTTestIndependentErrors(t *testing.T) {
	t.Parallel()
	_, err := hypothesis.TTestIndependent([]float64{1}, []float64{1, 2, 3})
	require.ErrorIs(t, err, hypothesis.ErrInsufficientData)
	_, err = hypothesis.TTestIndependent([]float64{2, 2, 2}, []float64{2, 2})
	require.ErrorIs(t, err, hypothesis.ErrZeroVariance)
}

func TestTTestPairedAndOneSample(t *testing.T) {
	t.Parallel()
	before := []float64{12, 15, 11, 14, 13, 16}
	after := []float64{14, 16, 13, 15, 15, 18}
	h, err := hypothesis.TTestPaired(before, after)
	require.NoError(t, err)
	require.Equal(t, "paired_t_test", h.Name)
	require.InDelta(t, -7.905694150, h.Statistic, 1e-8)
	require.Equal(t, 5.0, h.DF)
	require.InDelta(t, tTwoSided(h.Statistic, 5), h.PValue, 1e-6)
	require.InDelta(t, -5.0/3.0, h.Extra["mean_difference"], 1e-12)

	_, err = hypothesis.TTestPaired(before, after[:3])
	require.ErrorIs(t, err, hypothesis.ErrInvalidInput)

	// the paired test is the one-sample test on the differences
	one, err := hypothesis.TTestOneSample([]float64{-2, -1, -2, -1, -2, -2}, 0)
	require.NoError(t, err)
	require.InDelta(t, h.Statistic, one.Statistic, 1e-12)
	require.InDelta(t, h.PValue, one.PValue, 1e-12)
	require.Equal(t, "one_sample_t_test", one.Name)
}

func TestZTestOneSample(t *testing.T) {
	t.Parallel()
	x := []float64{5.1, 4.9, 5.6, 5.8, 6.0, 5.2, 5.4}
	h, err := hypothesis.ZTestOneSample(x, 5, hypothesis.WithSigma(0.5))
	require.NoError(t, err)
	mean := (5.1 + 4.9 + 5.6 + 5.8 + 6.0 + 5.2 + 5.4) / 7
	z := (mean - 5) / (0.5 / math.Sqrt(7))
	require.InDelta(t, z, h.Statistic, 1e-12)
	require.InDelta(t, zTwoSided(z), h.PValue, 1e-6)
	require.Zero(t, h.DF)

	h2, err := hypothesis.ZTestOneSample(x, 5)
	require.NoError(t, err)
	require.NotEqual(t, 0.5, h2.Extra["sigma"])

	_, err = hypothesis.ZTestOneSample(x, 5, hypothesis.WithSigma(-1))
	require.ErrorIs(t, err, hypothesis.ErrInvalidInput)
	_, err = hypothesis.ZTestOneSample([]float64{1}, 0)
	require.ErrorIs(t, err, hypothesis.ErrInsufficientData)
}

func TestChiSquare(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.ChiSquareIndependence([][]float64{{10, 20}, {30, 40}})
	require.NoError(t, err)
	require.Equal(t, "chi_square_independence", h.Name)
	require.InDelta(t, 0.7936507937, h.Statistic, 1e-9)
	require.Equal(t, 1.0, h.DF)
	require.InDelta(t, 1-distuv.ChiSquared{K: 1}.CDF(h.Statistic), h.PValue, 1e-6)

	_, err = hypothesis.ChiSquareIndependence([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, hypothesis.ErrInvalidInput)
	_, err = hypothesis.ChiSquareIndependence([][]float64{{1, 0}, {3, 0}})
	require.ErrorIs(t, err, hypothesis.ErrZeroVariance)

	g, err := hypothesis.ChiSquareGoodnessOfFit([]float64{18, 22, 20, 25, 15}, nil)
	require.NoError(t, err)
	require.InDelta(t, 2.9, g.Statistic, 1e-12)
	require.Equal(t, 4.0, g.DF)
	require.InDelta(t, 1-distuv.ChiSquared{K: 4}.CDF(2.9), g.PValue, 1e-6)

	// expected proportions are rescaled to the observed total
	g2, err := hypothesis.ChiSquareGoodnessOfFit([]float64{18, 22, 20, 25, 15}, []float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	require.InDelta(t, g.Statistic, g2.Statistic, 1e-12)

	_, err = hypothesis.ChiSquareGoodnessOfFit([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, hypothesis.ErrInvalidInput)
}

func TestANOVAAndKruskalWallis(t *testing.T) {
	t.Parallel()
	g1, g2, g3 := []float64{4, 5, 6}, []float64{6, 7, 8}, []float64{9, 10, 11}
	h, err := hypothesis.ANOVAOneWay(g1, g2, g3)
	require.NoError(t, err)
	require.Equal(t, "one_way_anova", h.Name)
	require.InDelta(t, 19.0, h.Statistic, 1e-9)
	require.Equal(t, 2.0, h.DF)
	require.Equal(t, 6.0, h.DF2)
	require.InDelta(t, 38.0, h.Extra["ss_between"], 1e-9)
	require.InDelta(t, 6.0, h.Extra["ss_within"], 1e-9)
	require.InDelta(t, 1-distuv.F{D1: 2, D2: 6}.CDF(19), h.PValue, 1e-6)

	kw, err := hypothesis.KruskalWallis(g1, g2, g3)
	require.NoError(t, err)
	require.InDelta(t, 6.8222222222, kw.Statistic, 1e-9)
	require.Equal(t, 2.0, kw.DF)
	require.InDelta(t, 1-distuv.ChiSquared{K: 2}.CDF(kw.Statistic), kw.PValue, 1e-6)

	_, err = hypothesis.ANOVAOneWay(g1)
	require.ErrorIs(t, err, hypothesis.ErrInsufficientData)
}

func TestLevene(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.Levene([]float64{2, 4, 6, 8}, []float64{1, 2, 3, 4, 10}, []float64{5, 5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, "levene", h.Name)
	require.InDelta(t, 0.7340690252, h.Statistic, 1e-9)
	require.Equal(t, 2.0, h.DF)
	require.Equal(t, 10.0, h.DF2)
	require.InDelta(t, 1-distuv.F{D1: 2, D2: 10}.CDF(h.Statistic), h.PValue, 1e-6)
}

func TestMannWhitneyU(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.MannWhitneyU([]float64{1.1, 2.3, 3.0, 4.8, 5.2, 6.9}, []float64{3.5, 7.2, 8.1, 9.4, 10.0})
	require.NoError(t, err)
	require.Equal(t, 3.0, h.Statistic)
	require.Equal(t, 3.0, h.Extra["u1"])
	require.Equal(t, 27.0, h.Extra["u2"])
	require.InDelta(t, -2.1908902300, h.Extra["z"], 1e-9)
	require.InDelta(t, zTwoSided(-2.1908902300), h.PValue, 1e-6)
}

func TestWilcoxonSignedRank(t *testing.T) {
	t.Parallel()
	x := []float64{1.83, 0.50, 1.62, 2.48, 1.68, 1.88, 1.55, 3.06, 1.30}
	y := []float64{0.878, 0.647, 0.598, 2.05, 1.06, 1.29, 1.06, 3.14, 1.29}
	h, err := hypothesis.WilcoxonSignedRank(x, y)
	require.NoError(t, err)
	require.InDelta(t, 40.0, h.Statistic, 1e-12)
	require.InDelta(t, 5.0, h.Extra["w_minus"], 1e-12)
	require.InDelta(t, 2.0732210722, h.Extra["z"], 1e-9)
	require.InDelta(t, zTwoSided(h.Extra["z"]), h.PValue, 1e-6)

	// zero differences are dropped
	h2, err := hypothesis.WilcoxonSignedRank(append(x, 4), append(y, 4))
	require.NoError(t, err)
	require.Equal(t, h.Statistic, h2.Statistic)
	require.Equal(t, 9.0, h2.Extra["n"])

	_, err = hypothesis.WilcoxonSignedRank([]float64{1, 2}, []float64{1, 2})
	require.ErrorIs(t, err, hypothesis.ErrInsufficientData)
}

func TestShapiroWilk(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.ShapiroWilk([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)
	require.Equal(t, "shapiro_wilk", h.Name)
	require.InDelta(t, 0.97016, h.Statistic, 1e-4)
	require.InDelta(t, 0.8924, h.PValue, 1e-3)
	require.NotEmpty(t, h.Note)

	skewed, err := hypothesis.ShapiroWilk([]float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236})
	require.NoError(t, err)
	require.InDelta(t, 0.7888, skewed.Statistic, 1e-3)
	require.Less(t, skewed.PValue, 0.01)

	large, err := hypothesis.ShapiroWilk([]float64{2.1, 3.4, 1.9, 5.6, 4.4, 3.3, 2.8, 3.9, 4.1, 3.0, 3.6, 2.5, 4.8, 3.7, 3.2})
	require.NoError(t, err)
	require.Greater(t, large.PValue, 0.5)
	require.LessOrEqual(t, large.Statistic, 1.0)

	three, err := hypothesis.ShapiroWilk([]float64{1, 2, 4})
	require.NoError(t, err)
	require.InDelta(t, 0.9642857, three.Statistic, 1e-6)
	require.InDelta(t, 0.6369, three.PValue, 1e-3)

	_, err = hypothesis.ShapiroWilk([]float64{1, 2})
	require.ErrorIs(t, err, hypothesis.ErrInsufficientData)
	_, err = hypothesis.ShapiroWilk(make([]float64, 5001))
	require.ErrorIs(t, err, hypothesis.ErrInvalidInput)
	_, err = hypothesis.ShapiroWilk([]float64{3, 3, 3, 3})
	require.ErrorIs(t, err, hypothesis.ErrZeroVariance)
}

func TestJarqueBera(t *testing.T) {
	t.Parallel()
	h, err := hypothesis.JarqueBera([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 20, 40})
	require.NoError(t, err)
	require.Equal(t, "jarque_bera", h.Name)
	require.InDelta(t, 14.4791994224, h.Statistic, 1e-8)
	require.Equal(t, 2.0, h.DF)
	require.InDelta(t, 0.00071759895, h.PValue, 1e-8)
}
