// Package loader produces the deterministic index sets used for resampling:
// train/test splits, k-fold partitions and bootstrap samples. All of them
// draw from rng.LCG so a seed reproduces the same indices everywhere.
package loader

import (
	"errors"
	"fmt"

	"statml/pkg/result"
	"statml/pkg/rng"
)

const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
	DefaultFolds    = 5
)

var (
	ErrInvalidSize    = errors.New("loader: invalid size")
	ErrLengthMismatch = errors.New("loader: length mismatch")
)

// TrainTestSplit shuffles 0..n−1 and assigns the first ⌊n·testSize⌋ indices,
// at least one, to the test side.
func TrainTestSplit(n int, testSize float64, seed int64) (result.Split, error) {
	if n < 2 {
		return result.Split{}, fmt.Errorf("split of %d rows: %w", n, ErrInvalidSize)
	}
	if !(testSize > 0 && testSize < 1) {
		return result.Split{}, fmt.Errorf("test size %g: %w", testSize, ErrInvalidSize)
	}
	indices := rng.New(seed).Perm(n)
	nTest := int(float64(n) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	test := append([]int(nil), indices[:nTest]...)
	train := append([]int(nil), indices[nTest:]...)
	return result.Split{
		Type:      result.TypeSplit,
		Train:     train,
		Test:      test,
		TrainSize: len(train),
		TestSize:  len(test),
		Seed:      int(seed),
	}, nil
}

// Take gathers the rows of X and y at idx.
func Take(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	XOut := make([][]float64, len(idx))
	var yOut []float64
	if y != nil {
		yOut = make([]float64, len(idx))
	}
	for i, j := range idx {
		XOut[i] = X[j]
		if y != nil {
			yOut[i] = y[j]
		}
	}
	return XOut, yOut
}

// SplitData applies TrainTestSplit to X and y.
func SplitData(X [][]float64, y []float64, testSize float64, seed int64) (XTrain, XTest [][]float64, yTrain, yTest []float64, err error) {
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("%d rows vs %d targets: %w", len(X), len(y), ErrLengthMismatch)
	}
	s, err := TrainTestSplit(len(X), testSize, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	XTrain, yTrain = Take(X, y, s.Train)
	XTest, yTest = Take(X, y, s.Test)
	return XTrain, XTest, yTrain, yTest, nil
}

// ShuffleData shuffles X and y in unison.
func ShuffleData(X [][]float64, y []float64, seed int64) ([][]float64, []float64) {
	return Take(X, y, rng.New(seed).Perm(len(X)))
}

// Fold is one train/test partition of a k-fold split.
type Fold struct {
	Train []int
	Test  []int
}

// KFold partitions 0..n−1 into k folds; index i of the (optionally shuffled)
// order goes to fold i mod k.
func KFold(n, k int, shuffle bool, seed int64) ([]Fold, error) {
	if k < 2 || k > n {
		return nil, fmt.Errorf("%d folds over %d rows: %w", k, n, ErrInvalidSize)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng.New(seed).Shuffle(order)
	}
	tests := make([][]int, k)
	for i := 0; i < n; i++ {
		tests[i%k] = append(tests[i%k], order[i])
	}
	folds := make([]Fold, k)
	for f := range folds {
		folds[f].Test = tests[f]
		for g := range tests {
			if g != f {
				folds[f].Train = append(folds[f].Train, tests[g]...)
			}
		}
	}
	return folds, nil
}

// Bootstrap draws n indices from 0..n−1 with replacement.
func Bootstrap(n int, seed int64) []int {
	g := rng.New(seed)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = g.Intn(n)
	}
	return idx
}
