package hypothesis

import (
	"fmt"
	"math"
	"sort"

	"statml/pkg/dist"
	"statml/pkg/result"
	"statml/pkg/stats"
)

const (
	shapiroMinN = 3
	shapiroMaxN = 5000
)

// Royston (1992) polynomial coefficients.
var (
	swAn   = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swAn1  = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swG    = []float64{-2.273, 0.459}
	swMuS  = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swSigS = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swMuL  = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swSigL = []float64{-0.4803, -0.082676, 0.0030302}
)

func poly(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

// normalScore is the exact standard normal quantile used for the expected
// order statistics.
func normalScore(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// shapiroCoefficients returns the upper half of the antisymmetric weight
// vector a, largest order statistic first.
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}
	m := make([]float64, half)
	mm := 0.0
	for i := 0; i < half; i++ {
		m[i] = normalScore((float64(n-i) - 0.375) / (float64(n) + 0.25))
		mm += 2 * m[i] * m[i]
	}
	u := 1 / math.Sqrt(float64(n))
	a[0] = m[0]/math.Sqrt(mm) + poly(swAn, u)
	first := 1
	var phi float64
	if n > 5 {
		a[1] = m[1]/math.Sqrt(mm) + poly(swAn1, u)
		phi = (mm - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a[0]*a[0] - 2*a[1]*a[1])
		first = 2
	} else {
		phi = (mm - 2*m[0]*m[0]) / (1 - 2*a[0]*a[0])
	}
	for i := first; i < half; i++ {
		a[i] = m[i] / math.Sqrt(phi)
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		return 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
	}
	fn := float64(n)
	lw := math.Log1p(-w)
	var z float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if lw >= gamma {
			return 0
		}
		z = (-math.Log(gamma-lw) - poly(swMuS, fn)) / math.Exp(poly(swSigS, fn))
	} else {
		ln := math.Log(fn)
		z = (lw - poly(swMuL, ln)) / math.Exp(poly(swSigL, ln))
	}
	return 1 - dist.StdNormal.CDF(z)
}

// ShapiroWilk tests normality for 3 ≤ n ≤ 5000 using Royston's
// approximation for the weights and the p-value.
func ShapiroWilk(x []float64) (result.HypothesisTest, error) {
	const name = "shapiro_wilk"
	c, _ := stats.Clean(x)
	n := len(c)
	if err := need(name, n, shapiroMinN); err != nil {
		return result.HypothesisTest{}, err
	}
	if n > shapiroMaxN {
		return result.HypothesisTest{}, fmt.Errorf("%s accepts at most %d values, got %d: %w", name, shapiroMaxN, n, ErrInvalidInput)
	}
	s := append([]float64(nil), c...)
	sort.Float64s(s)
	m := stats.Mean(s)
	ss := 0.0
	for _, v := range s {
		ss += (v - m) * (v - m)
	}
	if ss == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	b := 0.0
	for i, ai := range shapiroCoefficients(n) {
		b += ai * (s[n-1-i] - s[i])
	}
	w := math.Min(b*b/ss, 1)
	h := newTest(name, w, shapiroPValue(w, n))
	h.Note = "royston approximation"
	return h, nil
}

// JarqueBera tests normality from sample skewness and excess kurtosis:
// JB = n/6·(S² + K²/4) against χ²(2).
func JarqueBera(x []float64) (result.HypothesisTest, error) {
	const name = "jarque_bera"
	c, _ := stats.Clean(x)
	if err := need(name, len(c), 3); err != nil {
		return result.HypothesisTest{}, err
	}
	skew, kurt := stats.MomentShape(c)
	if math.IsNaN(skew) {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	n := float64(len(c))
	jb := n / 6 * (skew*skew + kurt*kurt/4)
	h := newTest(name, jb, dist.ChiSquareSF(jb, 2))
	h.DF = 2
	h.Extra = map[string]float64{"skewness": skew, "kurtosis": kurt}
	return h, nil
}
