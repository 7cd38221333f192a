package model

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"statml/pkg/loader"
)

type RandomForestOptions struct {
	NEstimators     int    `json:"n_estimators"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	Criterion       string `json:"criterion"`
	// Seed 0 selects loader.DefaultSeed. Tree i bootstraps with Seed+i.
	Seed int64 `json:"seed"`

	Logger *zap.Logger `json:"-"`
}

func DefaultRandomForestOptions() RandomForestOptions {
	return RandomForestOptions{NEstimators: 10, MaxDepth: 5, MinSamplesSplit: 2, Seed: loader.DefaultSeed}
}

func (o RandomForestOptions) withDefaults() (RandomForestOptions, error) {
	d := DefaultRandomForestOptions()
	if o.NEstimators == 0 {
		o.NEstimators = d.NEstimators
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.NEstimators < 0 {
		return o, fmt.Errorf("random forest: %w", ErrInvalidOption)
	}
	return o, nil
}

func (o RandomForestOptions) treeOptions(regression bool) (DecisionTreeOptions, error) {
	return DecisionTreeOptions{
		MaxDepth:        o.MaxDepth,
		MinSamplesSplit: o.MinSamplesSplit,
		Criterion:       o.Criterion,
	}.withDefaults(regression)
}

// RandomForestClassifier returns a Trainer for TrainRandomForestClassifierContext.
func RandomForestClassifier(opts RandomForestOptions) Trainer {
	return TrainerFunc(func(ctx context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainRandomForestClassifierContext(ctx, X, y, opts)
	})
}

// RandomForestRegressor returns a Trainer for TrainRandomForestRegressorContext.
func RandomForestRegressor(opts RandomForestOptions) Trainer {
	return TrainerFunc(func(ctx context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainRandomForestRegressorContext(ctx, X, y, opts)
	})
}

// RandomForest is a bag of CART trees. Trees[i] was grown on the bootstrap
// sample drawn with seed Seed+i, so equal options and data give equal trees.
type RandomForest struct {
	Type       Kind      `json:"type"`
	Trees      []*Node   `json:"trees"`
	NTrees     int       `json:"n_trees"`
	MaxDepth   int       `json:"max_depth"`
	MinSamples int       `json:"min_samples"`
	Criterion  string    `json:"criterion,omitempty"`
	Classes    []float64 `json:"classes,omitempty"`
	Seed       int64     `json:"seed"`
	N          int       `json:"n"`
	P          int       `json:"p"`
}

func (m *RandomForest) Kind() Kind {
	if m == nil {
		return ""
	}
	return m.Type
}
func (*RandomForest) isModel() {}

func TrainRandomForestClassifier(X [][]float64, y []float64, opts RandomForestOptions) (*RandomForest, error) {
	return trainForest(context.Background(), KindRandomForestClassifier, X, y, opts)
}

func TrainRandomForestClassifierContext(ctx context.Context, X [][]float64, y []float64, opts RandomForestOptions) (*RandomForest, error) {
	return trainForest(ctx, KindRandomForestClassifier, X, y, opts)
}

func TrainRandomForestRegressor(X [][]float64, y []float64, opts RandomForestOptions) (*RandomForest, error) {
	return trainForest(context.Background(), KindRandomForestRegressor, X, y, opts)
}

func TrainRandomForestRegressorContext(ctx context.Context, X [][]float64, y []float64, opts RandomForestOptions) (*RandomForest, error) {
	return trainForest(ctx, KindRandomForestRegressor, X, y, opts)
}

// trainForest grows the trees concurrently; each tree only depends on its
// own bootstrap seed.
func trainForest(ctx context.Context, kind Kind, X [][]float64, y []float64, opts RandomForestOptions) (*RandomForest, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	regression := kind == KindRandomForestRegressor
	to, err := o.treeOptions(regression)
	if err != nil {
		return nil, err
	}
	log := nopIfNil(o.Logger)

	var classes []float64
	if !regression {
		classes = Labels(y)
	}
	trees := make([]*Node, o.NEstimators)
	var wg sync.WaitGroup
	for i := 0; i < o.NEstimators; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sample := loader.Bootstrap(n, o.Seed+int64(i))
			trees[i] = newTreeBuilder(X, y, to, regression, classes).build(sample, 0)
			log.Debug("forest tree trained", zap.Int("tree", i), zap.Int("leaves", len(trees[i].Leaves())))
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &RandomForest{
		Type:       kind,
		Trees:      trees,
		NTrees:     o.NEstimators,
		MaxDepth:   to.MaxDepth,
		MinSamples: to.MinSamplesSplit,
		Criterion:  to.Criterion,
		Classes:    classes,
		Seed:       o.Seed,
		N:          n,
		P:          p,
	}, nil
}

func (m *RandomForest) valid() bool {
	if m.Type != KindRandomForestClassifier && m.Type != KindRandomForestRegressor {
		return false
	}
	if len(m.Trees) == 0 {
		return false
	}
	for _, t := range m.Trees {
		if !t.valid(m.P) {
			return false
		}
	}
	return true
}

// Predict takes the majority vote of the trees, ties going to the smallest
// label, or their mean for a regressor.
func (m *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	votes := make([]float64, len(m.Trees))
	for i, x := range X {
		for t, tree := range m.Trees {
			votes[t] = tree.route(x).Prediction
		}
		if m.Type == KindRandomForestRegressor {
			s := 0.0
			for _, v := range votes {
				s += v
			}
			out[i] = s / float64(len(votes))
			continue
		}
		out[i] = sortedMajority(votes)
	}
	return out, nil
}

// sortedMajority returns the most frequent value; among equally frequent
// values the smallest wins.
func sortedMajority(votes []float64) float64 {
	sorted := append([]float64(nil), votes...)
	sort.Float64s(sorted)
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}

// PredictProba averages the leaf class distributions of all trees.
func (m *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if !m.valid() || m.Type != KindRandomForestClassifier || len(m.Classes) == 0 {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		acc := make([]float64, len(m.Classes))
		for _, tree := range m.Trees {
			for c, v := range leafProba(tree.route(x), m.Classes) {
				acc[c] += v / float64(len(m.Trees))
			}
		}
		out[i] = acc
	}
	return out, nil
}
