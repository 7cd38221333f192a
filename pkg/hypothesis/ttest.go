// Package hypothesis implements parametric and non-parametric significance
// tests and confidence intervals. Every test returns a result.HypothesisTest
// with a two-sided p-value unless the test is one-sided by construction.
package hypothesis

import (
	"fmt"
	"math"

	"statml/pkg/dist"
	"statml/pkg/result"
	"statml/pkg/stats"
)

// Option tunes a test or interval.
type Option func(*options)

type options struct {
	welch    bool
	sigma    float64
	hasSigma bool
}

// WithWelch switches two-sample procedures from the pooled variance to
// Welch's unequal-variance form with Welch–Satterthwaite df.
func WithWelch() Option { return func(o *options) { o.welch = true } }

// WithSigma fixes the known population standard deviation for the z-test.
func WithSigma(sigma float64) Option {
	return func(o *options) { o.sigma, o.hasSigma = sigma, true }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func need(name string, n, minN int) error {
	if n < minN {
		return fmt.Errorf("%s needs at least %d values, got %d: %w", name, minN, n, ErrInsufficientData)
	}
	return nil
}

func newTest(name string, statistic, p float64) result.HypothesisTest {
	return result.HypothesisTest{
		Type:      result.TypeHypothesisTest,
		Name:      name,
		Statistic: statistic,
		PValue:    clampP(p),
	}
}

func clampP(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

func normalTwoSided(z float64) float64 {
	return 2 * (1 - dist.StdNormal.CDF(math.Abs(z)))
}

// twoSample holds the spread of a two-sample mean comparison.
type twoSample struct {
	meanX, meanY float64
	se, df       float64
}

func compareMeans(name string, x, y stats.CleanSequence, welch bool) (twoSample, error) {
	if err := need(name, len(x), 2); err != nil {
		return twoSample{}, err
	}
	if err := need(name, len(y), 2); err != nil {
		return twoSample{}, err
	}
	n1, n2 := float64(len(x)), float64(len(y))
	v1, v2 := stats.Variance(x), stats.Variance(y)
	s := twoSample{meanX: stats.Mean(x), meanY: stats.Mean(y)}
	if welch {
		a, b := v1/n1, v2/n2
		s.se = math.Sqrt(a + b)
		s.df = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
	} else {
		sp := ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
		s.se = math.Sqrt(sp * (1/n1 + 1/n2))
		s.df = n1 + n2 - 2
	}
	if s.se == 0 || math.IsNaN(s.se) {
		return twoSample{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	return s, nil
}

// TTestIndependent compares the means of two independent samples. The
// pooled-variance form is used unless WithWelch is given.
func TTestIndependent(x, y []float64, opts ...Option) (result.HypothesisTest, error) {
	const name = "independent_t_test"
	o := applyOptions(opts)
	cx, _ := stats.Clean(x)
	cy, _ := stats.Clean(y)
	s, err := compareMeans(name, cx, cy, o.welch)
	if err != nil {
		return result.HypothesisTest{}, err
	}
	t := (s.meanX - s.meanY) / s.se
	h := newTest(name, t, dist.TTwoSided(t, s.df))
	h.DF = s.df
	h.Extra = map[string]float64{"mean_x": s.meanX, "mean_y": s.meanY, "std_err": s.se}
	if o.welch {
		h.Note = "welch"
	} else {
		h.Note = "pooled"
	}
	return h, nil
}

// TTestPaired tests whether the mean paired difference x−y is zero. Zero
// differences are kept.
func TTestPaired(x, y []float64) (result.HypothesisTest, error) {
	const name = "paired_t_test"
	cx, cy, err := stats.CleanPairs(x, y)
	if err != nil {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrInvalidInput)
	}
	d := make([]float64, len(cx))
	for i := range cx {
		d[i] = cx[i] - cy[i]
	}
	h, err := oneSampleT(name, d, 0)
	if err != nil {
		return result.HypothesisTest{}, err
	}
	h.Extra["mean_difference"] = h.Extra["mean"]
	delete(h.Extra, "mean")
	return h, nil
}

// TTestOneSample tests whether the mean of x equals mu0.
func TTestOneSample(x []float64, mu0 float64) (result.HypothesisTest, error) {
	c, _ := stats.Clean(x)
	return oneSampleT("one_sample_t_test", c, mu0)
}

func oneSampleT(name string, x []float64, mu0 float64) (result.HypothesisTest, error) {
	if err := need(name, len(x), 2); err != nil {
		return result.HypothesisTest{}, err
	}
	n := float64(len(x))
	m, sd := stats.Mean(x), stats.Std(x)
	se := sd / math.Sqrt(n)
	if se == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	t := (m - mu0) / se
	h := newTest(name, t, dist.TTwoSided(t, n-1))
	h.DF = n - 1
	h.Extra = map[string]float64{"mean": m, "std_err": se}
	return h, nil
}

// ZTestOneSample tests whether the mean of x equals mu0 against the normal
// distribution. Without WithSigma the sample standard deviation is used.
func ZTestOneSample(x []float64, mu0 float64, opts ...Option) (result.HypothesisTest, error) {
	const name = "one_sample_z_test"
	o := applyOptions(opts)
	c, _ := stats.Clean(x)
	minN := 2
	if o.hasSigma {
		minN = 1
		if !(o.sigma > 0) {
			return result.HypothesisTest{}, fmt.Errorf("%s: sigma %g: %w", name, o.sigma, ErrInvalidInput)
		}
	}
	if err := need(name, len(c), minN); err != nil {
		return result.HypothesisTest{}, err
	}
	sigma := o.sigma
	if !o.hasSigma {
		sigma = stats.Std(c)
	}
	se := sigma / math.Sqrt(float64(len(c)))
	if se == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	m := stats.Mean(c)
	z := (m - mu0) / se
	h := newTest(name, z, normalTwoSided(z))
	h.Extra = map[string]float64{"mean": m, "sigma": sigma, "std_err": se}
	return h, nil
}
