package stats

import (
	"fmt"
	"math"

	"statml/pkg/result"
)

// Summary is the descriptive profile of one sequence.
type Summary struct {
	Type     result.Type `json:"type"`
	Name     string      `json:"name"`
	N        int         `json:"n"`
	Dropped  int         `json:"dropped"`
	Mean     float64     `json:"mean"`
	Std      float64     `json:"std"`
	Min      float64     `json:"min"`
	Q1       float64     `json:"q1"`
	Median   float64     `json:"median"`
	Q3       float64     `json:"q3"`
	Max      float64     `json:"max"`
	Skewness float64     `json:"skewness"`
	Kurtosis float64     `json:"kurtosis"`
}

// Describe computes a Summary of x. Non-finite entries are dropped and
// counted in Dropped.
func Describe(x []float64) Summary {
	c, dropped := Clean(x)
	s := Summary{
		Type:     result.TypeStatistic,
		Name:     "describe",
		N:        len(c),
		Dropped:  dropped,
		Mean:     Mean(c),
		Std:      Std(c),
		Min:      math.NaN(),
		Q1:       math.NaN(),
		Median:   math.NaN(),
		Q3:       math.NaN(),
		Max:      math.NaN(),
		Skewness: Skewness(c),
		Kurtosis: Kurtosis(c),
	}
	if len(c) > 0 {
		sc := sorted(c)
		s.Min, s.Max = sc[0], sc[len(sc)-1]
		s.Q1 = quantileSorted(sc, 0.25)
		s.Median = quantileSorted(sc, 0.5)
		s.Q3 = quantileSorted(sc, 0.75)
	}
	return s
}

var statistics = map[string]func([]float64) float64{
	"mean":                Mean,
	"median":              Median,
	"mode":                Mode,
	"sum":                 Sum,
	"min":                 Min,
	"max":                 Max,
	"variance":            Variance,
	"population_variance": PopVariance,
	"std":                 Std,
	"population_std":      PopStd,
	"skewness":            Skewness,
	"kurtosis":            Kurtosis,
	"iqr":                 IQR,
	"range": func(x []float64) float64 {
		lo, hi := MinMax(x)
		return hi - lo
	},
}

// Compute evaluates the named statistic and returns it as a tagged value.
// N counts the finite values that entered the computation.
func Compute(name string, x []float64) (result.Statistic, error) {
	fn, ok := statistics[name]
	if !ok {
		return result.Statistic{}, fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
	}
	c := clean(x)
	return result.NewStatistic(name, len(c), fn(c)), nil
}

// QuantileStat is the tagged form of Quantile.
func QuantileStat(x []float64, q float64) (result.Statistic, error) {
	v, err := Quantile(x, q)
	if err != nil {
		return result.Statistic{}, err
	}
	return result.NewStatistic(fmt.Sprintf("quantile_%g", q), len(clean(x)), v), nil
}

var correlations = map[string]func(x, y []float64) float64{
	"pearson":  Pearson,
	"spearman": Spearman,
	"kendall":  KendallTau,
}

// Correlate computes the named correlation (pearson, spearman, kendall)
// over the finite pairs of x and y.
func Correlate(method string, x, y []float64) (result.Statistic, error) {
	fn, ok := correlations[method]
	if !ok {
		return result.Statistic{}, fmt.Errorf("%w: %q", ErrUnknownStatistic, method)
	}
	cx, cy, err := CleanPairs(x, y)
	if err != nil {
		return result.Statistic{}, fmt.Errorf("correlate %s: %w", method, err)
	}
	return result.NewStatistic(method, len(cx), fn(cx, cy)), nil
}

// CorrelationMatrix returns the pairwise correlations of the given columns.
func CorrelationMatrix(method string, columns [][]float64) ([][]float64, error) {
	fn, ok := correlations[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatistic, method)
	}
	k := len(columns)
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		out[i][i] = 1
		for j := i + 1; j < k; j++ {
			if len(columns[i]) != len(columns[j]) {
				return nil, fmt.Errorf("columns %d and %d: %w", i, j, ErrLengthMismatch)
			}
			r := fn(columns[i], columns[j])
			out[i][j], out[j][i] = r, r
		}
	}
	return out, nil
}
