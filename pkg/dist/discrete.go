package dist

import (
	"fmt"
	"math"

	"statml/pkg/result"
	"statml/pkg/special"
)

// maxFactorial is the largest k whose factorial fits in a float64.
const maxFactorial = 170

// BinomialCoefficient returns C(n, k) using C(n, k) = C(n, n−k) to shorten
// the product loop.
func BinomialCoefficient(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 1; i <= k; i++ {
		c = c * float64(n-k+i) / float64(i)
	}
	return c
}

// Factorial returns k! by the product loop; +Inf past 170.
func Factorial(k int) float64 {
	if k < 0 {
		return math.NaN()
	}
	f := 1.0
	for i := 2; i <= k; i++ {
		f *= float64(i)
	}
	return f
}

// Binomial is the number of successes in N trials of probability P.
type Binomial struct {
	N int
	P float64
}

func (d Binomial) validate() error {
	if d.N < 0 || !(d.P >= 0 && d.P <= 1) {
		return fmt.Errorf("binomial(n=%d, p=%g): %w", d.N, d.P, ErrInvalidParameter)
	}
	return nil
}

// PMF is P(X = k).
func (d Binomial) PMF(k int) float64 {
	if k < 0 || k > d.N {
		return 0
	}
	switch d.P {
	case 0:
		if k == 0 {
			return 1
		}
		return 0
	case 1:
		if k == d.N {
			return 1
		}
		return 0
	}
	c := BinomialCoefficient(d.N, k)
	if math.IsInf(c, 0) {
		lc := special.LogGamma(float64(d.N)+1) - special.LogGamma(float64(k)+1) - special.LogGamma(float64(d.N-k)+1)
		return math.Exp(lc + float64(k)*math.Log(d.P) + float64(d.N-k)*math.Log1p(-d.P))
	}
	return c * math.Pow(d.P, float64(k)) * math.Pow(1-d.P, float64(d.N-k))
}

// CDF is P(X ≤ k), the PMF summed from 0 to k.
func (d Binomial) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	if k >= d.N {
		return 1
	}
	s := 0.0
	for i := 0; i <= k; i++ {
		s += d.PMF(i)
	}
	return math.Min(s, 1)
}

func (d Binomial) params() map[string]float64 {
	return map[string]float64{"n": float64(d.N), "p": d.P}
}

// maxExp bounds the exponents evaluated directly by Poisson.PMF.
const maxExp = 700

// Poisson counts events with rate Lambda.
type Poisson struct {
	Lambda float64
}

func (d Poisson) validate() error {
	if !(d.Lambda > 0) || math.IsInf(d.Lambda, 0) {
		return fmt.Errorf("poisson(lambda=%g): %w", d.Lambda, ErrInvalidParameter)
	}
	return nil
}

// PMF is λᵏe^{−λ}/k!. The log form is used once k!, λᵏ or e^{λ} leaves the
// float64 range.
func (d Poisson) PMF(k int) float64 {
	if k < 0 {
		return 0
	}
	if k > maxFactorial || d.Lambda > maxExp || float64(k)*math.Log(d.Lambda) > maxExp {
		return math.Exp(float64(k)*math.Log(d.Lambda) - d.Lambda - special.LogGamma(float64(k)+1))
	}
	return math.Pow(d.Lambda, float64(k)) * math.Exp(-d.Lambda) / Factorial(k)
}

// CDF is P(X ≤ k).
func (d Poisson) CDF(k int) float64 {
	s := 0.0
	for i := 0; i <= k; i++ {
		s += d.PMF(i)
	}
	return math.Min(s, 1)
}

func (d Poisson) params() map[string]float64 {
	return map[string]float64{"lambda": d.Lambda}
}

func evaluateInt(name string, params map[string]float64, ks []int, f func(int) float64) result.Distribution {
	xs := make([]float64, len(ks))
	values := make([]float64, len(ks))
	for i, k := range ks {
		xs[i] = float64(k)
		values[i] = f(k)
	}
	return result.Distribution{
		Type:   result.TypeDistribution,
		Name:   name,
		Params: params,
		X:      xs,
		Values: values,
	}
}

// BinomialPMF evaluates the binomial PMF at every k.
func BinomialPMF(ks []int, n int, p float64) (result.Distribution, error) {
	d := Binomial{N: n, P: p}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluateInt("binomial_pmf", d.params(), ks, d.PMF), nil
}

// BinomialCDF evaluates the binomial CDF at every k.
func BinomialCDF(ks []int, n int, p float64) (result.Distribution, error) {
	d := Binomial{N: n, P: p}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluateInt("binomial_cdf", d.params(), ks, d.CDF), nil
}

// PoissonPMF evaluates the Poisson PMF at every k.
func PoissonPMF(ks []int, lambda float64) (result.Distribution, error) {
	d := Poisson{Lambda: lambda}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluateInt("poisson_pmf", d.params(), ks, d.PMF), nil
}

// PoissonCDF evaluates the Poisson CDF at every k.
func PoissonCDF(ks []int, lambda float64) (result.Distribution, error) {
	d := Poisson{Lambda: lambda}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluateInt("poisson_cdf", d.params(), ks, d.CDF), nil
}
