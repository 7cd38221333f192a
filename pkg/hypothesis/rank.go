package hypothesis

import (
	"fmt"
	"math"

	"statml/pkg/result"
	"statml/pkg/stats"
)

// MannWhitneyU compares two independent samples by rank. The statistic is
// min(U₁, U₂); the p-value uses the large-sample normal approximation.
func MannWhitneyU(x, y []float64) (result.HypothesisTest, error) {
	const name = "mann_whitney_u"
	cx, _ := stats.Clean(x)
	cy, _ := stats.Clean(y)
	if err := need(name, len(cx), 1); err != nil {
		return result.HypothesisTest{}, err
	}
	if err := need(name, len(cy), 1); err != nil {
		return result.HypothesisTest{}, err
	}
	n1, n2 := float64(len(cx)), float64(len(cy))
	r1 := pooledRanks(cx, cy)[0]
	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	u := math.Min(u1, u2)
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)
	z := (u - mu) / sigma
	h := newTest(name, u, normalTwoSided(z))
	h.Extra = map[string]float64{"u1": u1, "u2": u2, "z": z}
	return h, nil
}

// WilcoxonSignedRank tests paired samples on the ranks of |x−y|. Zero
// differences are dropped before ranking. The statistic is W⁺.
func WilcoxonSignedRank(x, y []float64) (result.HypothesisTest, error) {
	const name = "wilcoxon_signed_rank"
	cx, cy, err := stats.CleanPairs(x, y)
	if err != nil {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrInvalidInput)
	}
	var d, abs []float64
	for i := range cx {
		if v := cx[i] - cy[i]; v != 0 {
			d = append(d, v)
			abs = append(abs, math.Abs(v))
		}
	}
	if err := need(name, len(d), 1); err != nil {
		return result.HypothesisTest{}, err
	}
	r := stats.Ranks(abs)
	wPlus := 0.0
	for i, v := range d {
		if v > 0 {
			wPlus += r[i]
		}
	}
	n := float64(len(d))
	wMinus := n*(n+1)/2 - wPlus
	mu := n * (n + 1) / 4
	sigma := math.Sqrt(n * (n + 1) * (2*n + 1) / 24)
	z := (wPlus - mu) / sigma
	h := newTest(name, wPlus, normalTwoSided(z))
	h.Extra = map[string]float64{"w_plus": wPlus, "w_minus": wMinus, "z": z, "n": n}
	return h, nil
}
