package model

import (
	"sort"

	"statml/pkg/result"
)

// TreeImportance counts the internal nodes splitting on each feature and
// normalises the counts to sum to 1. A tree without splits scores every
// feature 0.
func TreeImportance(m *DecisionTree) (result.FeatureImportance, error) {
	if m == nil || !m.valid() {
		return result.FeatureImportance{}, ErrInvalidModel
	}
	return featureImportance(m.Type, splitShare(m.Tree, m.P)), nil
}

// ForestImportance averages the per-tree importances, rescaled to sum to 1
// when any tree splits.
func ForestImportance(m *RandomForest) (result.FeatureImportance, error) {
	if m == nil || !m.valid() {
		return result.FeatureImportance{}, ErrInvalidModel
	}
	avg := make([]float64, m.P)
	total := 0.0
	for _, t := range m.Trees {
		for j, v := range splitShare(t, m.P) {
			avg[j] += v / float64(len(m.Trees))
			total += v / float64(len(m.Trees))
		}
	}
	if total > 0 {
		for j := range avg {
			avg[j] /= total
		}
	}
	return featureImportance(m.Type, avg), nil
}

func splitShare(root *Node, p int) []float64 {
	counts := make([]float64, p)
	var visit func(nd *Node)
	visit = func(nd *Node) {
		if nd.Leaf {
			return
		}
		counts[nd.Feature]++
		visit(nd.Left)
		visit(nd.Right)
	}
	visit(root)
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total > 0 {
		for j := range counts {
			counts[j] /= total
		}
	}
	return counts
}

// featureImportance ranks features by decreasing importance, lower index
// first on ties.
func featureImportance(kind Kind, imp []float64) result.FeatureImportance {
	ranking := make([]int, len(imp))
	for j := range ranking {
		ranking[j] = j
	}
	sort.SliceStable(ranking, func(a, b int) bool { return imp[ranking[a]] > imp[ranking[b]] })
	return result.FeatureImportance{
		Type:        result.TypeFeatureImportance,
		Model:       string(kind),
		Importances: imp,
		Ranking:     ranking,
	}
}
