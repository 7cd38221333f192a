package dist

import (
	"math"

	"statml/pkg/special"
)

// TCDF is the Student's t CDF with df degrees of freedom.
func TCDF(x, df float64) float64 {
	if !(df > 0) || math.IsNaN(x) {
		return math.NaN()
	}
	switch {
	case math.IsInf(x, 1):
		return 1
	case math.IsInf(x, -1):
		return 0
	case x == 0:
		return 0.5
	}
	ib := special.BetaInc(df/(df+x*x), df/2, 0.5)
	if x > 0 {
		return 1 - 0.5*ib
	}
	return 0.5 * ib
}

// TTwoSided returns the two-sided tail probability P(|T| ≥ |t|).
func TTwoSided(t, df float64) float64 {
	if math.IsNaN(t) || !(df > 0) {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	return special.BetaInc(df/(df+t*t), df/2, 0.5)
}

// ChiSquareCDF is the χ² CDF with df degrees of freedom.
func ChiSquareCDF(x, df float64) float64 {
	if !(df > 0) || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}
	return special.GammaIncLower(df/2, x/2)
}

// ChiSquareSF is the χ² upper tail 1 − CDF.
func ChiSquareSF(x, df float64) float64 {
	if !(df > 0) || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return special.GammaIncUpper(df/2, x/2)
}

// FCDF is the F(d1, d2) CDF.
func FCDF(x, d1, d2 float64) float64 {
	if !(d1 > 0) || !(d2 > 0) || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return special.BetaInc(d1*x/(d1*x+d2), d1/2, d2/2)
}

// FSF is the F(d1, d2) upper tail, computed directly from the complementary
// incomplete beta to keep small p-values accurate.
func FSF(x, d1, d2 float64) float64 {
	if !(d1 > 0) || !(d2 > 0) || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return special.BetaInc(d2/(d2+d1*x), d2/2, d1/2)
}

const (
	bisectIter = 200
	bisectTol  = 1e-12
)

// bisect finds x in [lo, hi] with cdf(x) = p for a non-decreasing cdf,
// growing hi until it brackets p.
func bisect(cdf func(float64) float64, p, lo, hi float64) float64 {
	for i := 0; cdf(hi) < p && i < 64; i++ {
		lo = hi
		hi *= 2
	}
	for i := 0; i < bisectIter && hi-lo > bisectTol*math.Max(1, math.Abs(hi)); i++ {
		mid := 0.5 * (lo + hi)
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// TPPF is the Student's t quantile, found by bisection on TCDF.
func TPPF(p, df float64) float64 {
	switch {
	case !(df > 0) || math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	case p == 0.5:
		return 0
	case p < 0.5:
		return -TPPF(1-p, df)
	}
	return bisect(func(x float64) float64 { return TCDF(x, df) }, p, 0, 8)
}

// ChiSquarePPF is the χ² quantile, found by bisection on ChiSquareCDF.
func ChiSquarePPF(p, df float64) float64 {
	switch {
	case !(df > 0) || math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return 0
	case p == 1:
		return math.Inf(1)
	}
	return bisect(func(x float64) float64 { return ChiSquareCDF(x, df) }, p, 0, math.Max(2*df, 8))
}

// FPPF is the F(d1, d2) quantile, found by bisection on FCDF.
func FPPF(p, d1, d2 float64) float64 {
	switch {
	case !(d1 > 0) || !(d2 > 0) || math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return 0
	case p == 1:
		return math.Inf(1)
	}
	return bisect(func(x float64) float64 { return FCDF(x, d1, d2) }, p, 0, 8)
}
