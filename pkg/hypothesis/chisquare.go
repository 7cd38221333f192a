package hypothesis

import (
	"fmt"
	"math"

	"statml/pkg/dist"
	"statml/pkg/result"
)

// ChiSquareIndependence runs Pearson's χ² test on an r×c contingency table
// of observed counts. Expected counts come from the row and column totals.
func ChiSquareIndependence(observed [][]float64) (result.HypothesisTest, error) {
	const name = "chi_square_independence"
	r := len(observed)
	if r < 2 {
		return result.HypothesisTest{}, fmt.Errorf("%s needs at least 2 rows: %w", name, ErrInsufficientData)
	}
	c := len(observed[0])
	if c < 2 {
		return result.HypothesisTest{}, fmt.Errorf("%s needs at least 2 columns: %w", name, ErrInsufficientData)
	}
	rows := make([]float64, r)
	cols := make([]float64, c)
	total := 0.0
	for i, row := range observed {
		if len(row) != c {
			return result.HypothesisTest{}, fmt.Errorf("%s: row %d has %d cells, want %d: %w", name, i, len(row), c, ErrInvalidInput)
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return result.HypothesisTest{}, fmt.Errorf("%s: cell (%d,%d) = %g: %w", name, i, j, v, ErrInvalidInput)
			}
			rows[i] += v
			cols[j] += v
			total += v
		}
	}
	chi := 0.0
	for i := range observed {
		for j, o := range observed[i] {
			e := rows[i] * cols[j] / total
			if e == 0 {
				return result.HypothesisTest{}, fmt.Errorf("%s: empty row or column: %w", name, ErrZeroVariance)
			}
			chi += (o - e) * (o - e) / e
		}
	}
	df := float64((r - 1) * (c - 1))
	h := newTest(name, chi, dist.ChiSquareSF(chi, df))
	h.DF = df
	h.Extra = map[string]float64{"n": total}
	return h, nil
}

// ChiSquareGoodnessOfFit compares observed category counts with expected
// counts. A nil expected slice means a uniform split of the observed total;
// otherwise expected is rescaled to the observed total.
func ChiSquareGoodnessOfFit(observed, expected []float64) (result.HypothesisTest, error) {
	const name = "chi_square_goodness_of_fit"
	k := len(observed)
	if err := need(name, k, 2); err != nil {
		return result.HypothesisTest{}, err
	}
	if expected != nil && len(expected) != k {
		return result.HypothesisTest{}, fmt.Errorf("%s: %d observed vs %d expected: %w", name, k, len(expected), ErrInvalidInput)
	}
	total := 0.0
	for i, v := range observed {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return result.HypothesisTest{}, fmt.Errorf("%s: observed[%d] = %g: %w", name, i, v, ErrInvalidInput)
		}
		total += v
	}
	exp := make([]float64, k)
	if expected == nil {
		for i := range exp {
			exp[i] = total / float64(k)
		}
	} else {
		et := 0.0
		for i, v := range expected {
			if !(v > 0) || math.IsInf(v, 0) {
				return result.HypothesisTest{}, fmt.Errorf("%s: expected[%d] = %g: %w", name, i, v, ErrInvalidInput)
			}
			et += v
		}
		for i, v := range expected {
			exp[i] = v * total / et
		}
	}
	if total == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: no observations: %w", name, ErrInsufficientData)
	}
	chi := 0.0
	for i, o := range observed {
		chi += (o - exp[i]) * (o - exp[i]) / exp[i]
	}
	df := float64(k - 1)
	h := newTest(name, chi, dist.ChiSquareSF(chi, df))
	h.DF = df
	return h, nil
}
