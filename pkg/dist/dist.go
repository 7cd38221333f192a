// Package dist evaluates the probability distributions used across statml:
// normal, binomial and Poisson PMF/PDF/CDF/PPF, and the t, χ² and F
// distributions that hypothesis tests read their p-values from.
package dist

import (
	"errors"
	"fmt"
	"math"

	"statml/pkg/result"
	"statml/pkg/special"
)

// ErrInvalidParameter is returned for parameters outside a distribution's domain.
var ErrInvalidParameter = errors.New("dist: invalid parameter")

// Normal is the normal distribution N(Mu, Sigma²).
type Normal struct {
	Mu, Sigma float64
}

// StdNormal is N(0, 1).
var StdNormal = Normal{Mu: 0, Sigma: 1}

func (d Normal) validate() error {
	if !(d.Sigma > 0) || math.IsNaN(d.Mu) || math.IsInf(d.Mu, 0) || math.IsInf(d.Sigma, 0) {
		return fmt.Errorf("normal(mu=%g, sigma=%g): %w", d.Mu, d.Sigma, ErrInvalidParameter)
	}
	return nil
}

// PDF is the normal density at x.
func (d Normal) PDF(x float64) float64 {
	z := (x - d.Mu) / d.Sigma
	return math.Exp(-0.5*z*z) / (d.Sigma * math.Sqrt(2*math.Pi))
}

// CDF is the normal cumulative distribution at x.
func (d Normal) CDF(x float64) float64 {
	return special.NormalCDF((x - d.Mu) / d.Sigma)
}

// PPF is the normal quantile at probability p.
func (d Normal) PPF(p float64) float64 {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN()
	}
	return d.Mu + d.Sigma*special.NormalPPF(p)
}

func (d Normal) params() map[string]float64 {
	return map[string]float64{"mu": d.Mu, "sigma": d.Sigma}
}

func evaluate(name string, params map[string]float64, xs []float64, f func(float64) float64) result.Distribution {
	values := make([]float64, len(xs))
	for i, x := range xs {
		values[i] = f(x)
	}
	x := make([]float64, len(xs))
	copy(x, xs)
	return result.Distribution{
		Type:   result.TypeDistribution,
		Name:   name,
		Params: params,
		X:      x,
		Values: values,
	}
}

// NormalPDF evaluates the N(mu, sigma²) density at every x.
func NormalPDF(xs []float64, mu, sigma float64) (result.Distribution, error) {
	d := Normal{Mu: mu, Sigma: sigma}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluate("normal_pdf", d.params(), xs, d.PDF), nil
}

// NormalCDF evaluates the N(mu, sigma²) CDF at every x.
func NormalCDF(xs []float64, mu, sigma float64) (result.Distribution, error) {
	d := Normal{Mu: mu, Sigma: sigma}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	return evaluate("normal_cdf", d.params(), xs, d.CDF), nil
}

// NormalPPF evaluates the N(mu, sigma²) quantile at every probability.
// Probabilities outside [0, 1] are an error.
func NormalPPF(ps []float64, mu, sigma float64) (result.Distribution, error) {
	d := Normal{Mu: mu, Sigma: sigma}
	if err := d.validate(); err != nil {
		return result.Distribution{}, err
	}
	for _, p := range ps {
		if !(p >= 0 && p <= 1) {
			return result.Distribution{}, fmt.Errorf("probability %g: %w", p, ErrInvalidParameter)
		}
	}
	return evaluate("normal_ppf", d.params(), ps, d.PPF), nil
}
