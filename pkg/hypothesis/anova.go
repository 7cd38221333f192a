package hypothesis

import (
	"fmt"
	"math"

	"statml/pkg/dist"
	"statml/pkg/result"
	"statml/pkg/stats"
)

func cleanGroups(name string, groups [][]float64, minEach int) ([]stats.CleanSequence, int, error) {
	if len(groups) < 2 {
		return nil, 0, fmt.Errorf("%s needs at least 2 groups, got %d: %w", name, len(groups), ErrInsufficientData)
	}
	out := make([]stats.CleanSequence, len(groups))
	total := 0
	for i, g := range groups {
		c, _ := stats.Clean(g)
		if len(c) < minEach {
			return nil, 0, fmt.Errorf("%s: group %d has %d values, want %d: %w", name, i, len(c), minEach, ErrInsufficientData)
		}
		out[i] = c
		total += len(c)
	}
	if total <= len(groups) {
		return nil, 0, fmt.Errorf("%s: %d values over %d groups: %w", name, total, len(groups), ErrInsufficientData)
	}
	return out, total, nil
}

// fRatio is the one-way ANOVA F statistic over already-cleaned groups.
func fRatio(groups []stats.CleanSequence, total int) (f, ssb, ssw float64) {
	grand := 0.0
	for _, g := range groups {
		grand += stats.Sum(g)
	}
	grand /= float64(total)
	for _, g := range groups {
		m := stats.Mean(g)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}
	k := float64(len(groups))
	return (ssb / (k - 1)) / (ssw / (float64(total) - k)), ssb, ssw
}

// ANOVAOneWay compares the means of k independent groups with F = MSB/MSW.
func ANOVAOneWay(groups ...[]float64) (result.HypothesisTest, error) {
	const name = "one_way_anova"
	gs, total, err := cleanGroups(name, groups, 1)
	if err != nil {
		return result.HypothesisTest{}, err
	}
	f, ssb, ssw := fRatio(gs, total)
	if ssw == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	df1, df2 := float64(len(gs)-1), float64(total-len(gs))
	h := newTest(name, f, dist.FSF(f, df1, df2))
	h.DF, h.DF2 = df1, df2
	h.Extra = map[string]float64{
		"ss_between": ssb,
		"ss_within":  ssw,
		"ms_between": ssb / df1,
		"ms_within":  ssw / df2,
	}
	return h, nil
}

// Levene tests equality of variances using absolute deviations from each
// group's median (the Brown–Forsythe variant).
func Levene(groups ...[]float64) (result.HypothesisTest, error) {
	const name = "levene"
	gs, total, err := cleanGroups(name, groups, 2)
	if err != nil {
		return result.HypothesisTest{}, err
	}
	dev := make([]stats.CleanSequence, len(gs))
	for i, g := range gs {
		med := stats.Median(g)
		dev[i] = make(stats.CleanSequence, len(g))
		for j, v := range g {
			dev[i][j] = math.Abs(v - med)
		}
	}
	w, _, ssw := fRatio(dev, total)
	if ssw == 0 {
		return result.HypothesisTest{}, fmt.Errorf("%s: %w", name, ErrZeroVariance)
	}
	df1, df2 := float64(len(gs)-1), float64(total-len(gs))
	h := newTest(name, w, dist.FSF(w, df1, df2))
	h.DF, h.DF2 = df1, df2
	h.Note = "median-centered"
	return h, nil
}

// pooledRanks ranks the concatenation of groups and returns the rank sum of
// each group.
func pooledRanks(groups ...[]float64) []float64 {
	var all []float64
	for _, g := range groups {
		all = append(all, g...)
	}
	r := stats.Ranks(all)
	sums := make([]float64, len(groups))
	pos := 0
	for i, g := range groups {
		for range g {
			sums[i] += r[pos]
			pos++
		}
	}
	return sums
}

// KruskalWallis is the rank-based one-way ANOVA. No tie correction is applied.
func KruskalWallis(groups ...[]float64) (result.HypothesisTest, error) {
	const name = "kruskal_wallis"
	gs, total, err := cleanGroups(name, groups, 1)
	if err != nil {
		return result.HypothesisTest{}, err
	}
	raw := make([][]float64, len(gs))
	for i, g := range gs {
		raw[i] = g
	}
	sums := pooledRanks(raw...)
	n := float64(total)
	s := 0.0
	for i, r := range sums {
		s += r * r / float64(len(gs[i]))
	}
	hStat := 12/(n*(n+1))*s - 3*(n+1)
	df := float64(len(gs) - 1)
	h := newTest(name, hStat, dist.ChiSquareSF(hStat, df))
	h.DF = df
	return h, nil
}
