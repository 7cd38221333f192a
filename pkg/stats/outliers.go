package stats

import (
	"math"

	"statml/pkg/result"
)

// DetectOutliersIQR flags values outside [Q1 − k·IQR, Q3 + k·IQR].
// k <= 0 selects the conventional 1.5.
func DetectOutliersIQR(x []float64, k float64) (result.OutlierDetection, error) {
	if k <= 0 {
		k = 1.5
	}
	c := sorted(x)
	if len(c) == 0 {
		return result.OutlierDetection{}, ErrEmpty
	}
	q1, q3 := quantileSorted(c, 0.25), quantileSorted(c, 0.75)
	iqr := q3 - q1
	return flag(x, "iqr", q1-k*iqr, q3+k*iqr), nil
}

// DetectOutliersZScore flags values whose |z| exceeds threshold (default 3),
// using the sample mean and standard deviation.
func DetectOutliersZScore(x []float64, threshold float64) (result.OutlierDetection, error) {
	if threshold <= 0 {
		threshold = 3
	}
	c := clean(x)
	if len(c) < 2 {
		return result.OutlierDetection{}, ErrEmpty
	}
	m, s := Mean(c), Std(c)
	if s == 0 {
		return flag(x, "zscore", m, m), nil
	}
	return flag(x, "zscore", m-threshold*s, m+threshold*s), nil
}

func flag(x []float64, method string, lower, upper float64) result.OutlierDetection {
	out := result.OutlierDetection{
		Type:    result.TypeOutlierDetection,
		Method:  method,
		Lower:   lower,
		Upper:   upper,
		Indices: []int{},
		Values:  []float64{},
	}
	for i, v := range x {
		if !finite(v) {
			continue
		}
		out.N++
		if v < lower || v > upper {
			out.Indices = append(out.Indices, i)
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// ClipOutliers clips values in each column to the given lower and upper percentiles.
func ClipOutliers(X [][]float64, lower, upper float64) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	rows, cols := len(X), len(X[0])
	out := make([][]float64, rows)
	lows := make([]float64, cols)
	highs := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = X[i][j]
		}
		lows[j] = Percentile(col, lower)
		highs[j] = Percentile(col, upper)
	}
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = math.Min(math.Max(X[i][j], lows[j]), highs[j])
		}
	}
	return out
}
