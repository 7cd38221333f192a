package hypothesis

import (
	"fmt"
	"math"

	"statml/pkg/dist"
	"statml/pkg/result"
	"statml/pkg/stats"
)

// DefaultConfidence is used when a confidence level of 0 is passed.
const DefaultConfidence = 0.95

// Proportion interval methods.
const (
	ProportionWald   = "wald"
	ProportionWilson = "wilson"
)

func confidenceLevel(c float64) (float64, error) {
	if c == 0 {
		return DefaultConfidence, nil
	}
	if !(c > 0 && c < 1) {
		return 0, fmt.Errorf("confidence %g: %w", c, ErrInvalidInput)
	}
	return c, nil
}

func newInterval(parameter, method string, confidence, estimate, lower, upper float64, n int) result.ConfidenceInterval {
	return result.ConfidenceInterval{
		Type:       result.TypeConfidenceInterval,
		Parameter:  parameter,
		Method:     method,
		Confidence: confidence,
		Estimate:   estimate,
		Lower:      lower,
		Upper:      upper,
		Margin:     (upper - lower) / 2,
		N:          n,
	}
}

// MeanCI is the t interval m ± t·s/√n for the population mean.
func MeanCI(x []float64, confidence float64) (result.ConfidenceInterval, error) {
	conf, err := confidenceLevel(confidence)
	if err != nil {
		return result.ConfidenceInterval{}, err
	}
	c, _ := stats.Clean(x)
	if err := need("mean interval", len(c), 2); err != nil {
		return result.ConfidenceInterval{}, err
	}
	n := float64(len(c))
	m := stats.Mean(c)
	margin := dist.TPPF((1+conf)/2, n-1) * stats.Std(c) / math.Sqrt(n)
	return newInterval("mean", "t", conf, m, m-margin, m+margin, len(c)), nil
}

// ProportionCI bounds a binomial proportion. Method is ProportionWald or
// ProportionWilson; empty means Wilson. Bounds are clipped to [0, 1].
func ProportionCI(successes, trials int, confidence float64, method string) (result.ConfidenceInterval, error) {
	conf, err := confidenceLevel(confidence)
	if err != nil {
		return result.ConfidenceInterval{}, err
	}
	if trials <= 0 {
		return result.ConfidenceInterval{}, fmt.Errorf("proportion interval with %d trials: %w", trials, ErrInsufficientData)
	}
	if successes < 0 || successes > trials {
		return result.ConfidenceInterval{}, fmt.Errorf("%d successes of %d: %w", successes, trials, ErrInvalidInput)
	}
	n := float64(trials)
	p := float64(successes) / n
	z := dist.StdNormal.PPF((1 + conf) / 2)
	var lo, hi float64
	switch method {
	case ProportionWald:
		m := z * math.Sqrt(p*(1-p)/n)
		lo, hi = p-m, p+m
	case ProportionWilson, "":
		method = ProportionWilson
		d := 1 + z*z/n
		center := (p + z*z/(2*n)) / d
		m := z / d * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))
		lo, hi = center-m, center+m
	default:
		return result.ConfidenceInterval{}, fmt.Errorf("proportion method %q: %w", method, ErrInvalidInput)
	}
	return newInterval("proportion", method, conf, p, math.Max(0, lo), math.Min(1, hi), trials), nil
}

// VarianceCI is the χ² interval [(n−1)s²/χ²_hi, (n−1)s²/χ²_lo].
func VarianceCI(x []float64, confidence float64) (result.ConfidenceInterval, error) {
	conf, err := confidenceLevel(confidence)
	if err != nil {
		return result.ConfidenceInterval{}, err
	}
	c, _ := stats.Clean(x)
	if err := need("variance interval", len(c), 2); err != nil {
		return result.ConfidenceInterval{}, err
	}
	df := float64(len(c) - 1)
	v := stats.Variance(c)
	alpha := 1 - conf
	lo := df * v / dist.ChiSquarePPF(1-alpha/2, df)
	hi := df * v / dist.ChiSquarePPF(alpha/2, df)
	return newInterval("variance", "chi_square", conf, v, lo, hi, len(c)), nil
}

// MeanDifferenceCI bounds mean(x) − mean(y). Pooled variance is used unless
// WithWelch is given.
func MeanDifferenceCI(x, y []float64, confidence float64, opts ...Option) (result.ConfidenceInterval, error) {
	conf, err := confidenceLevel(confidence)
	if err != nil {
		return result.ConfidenceInterval{}, err
	}
	o := applyOptions(opts)
	cx, _ := stats.Clean(x)
	cy, _ := stats.Clean(y)
	s, err := compareMeans("mean difference interval", cx, cy, o.welch)
	if err != nil {
		return result.ConfidenceInterval{}, err
	}
	method := "pooled"
	if o.welch {
		method = "welch"
	}
	d := s.meanX - s.meanY
	margin := dist.TPPF((1+conf)/2, s.df) * s.se
	return newInterval("mean_difference", method, conf, d, d-margin, d+margin, len(cx)+len(cy)), nil
}
