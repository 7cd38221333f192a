// Package model trains and evaluates the statml models. Every trained model
// is an immutable value whose JSON form carries a "type" tag; Predict, Vote
// and the codec dispatch on that tag instead of on dynamic method sets.
package model

import (
	"context"

	"go.uber.org/zap"
)

// Kind is the tag stored in a model's "type" field.
type Kind string

const (
	KindLinearRegression       Kind = "linear_regression"
	KindLogisticRegression     Kind = "logistic_regression"
	KindKNNClassifier          Kind = "knn_classifier"
	KindKNNRegressor           Kind = "knn_regressor"
	KindDecisionTreeClassifier Kind = "decision_tree_classifier"
	KindDecisionTreeRegressor  Kind = "decision_tree_regressor"
	KindRandomForestClassifier Kind = "random_forest_classifier"
	KindRandomForestRegressor  Kind = "random_forest_regressor"
	KindNaiveBayes             Kind = "naive_bayes"
	KindStandardScaler         Kind = "standard_scaler"
	KindMinMaxScaler           Kind = "minmax_scaler"
	KindPCA                    Kind = "pca"
	KindKMeans                 Kind = "kmeans"
)

// Classifier reports whether models of this kind predict class labels.
func (k Kind) Classifier() bool {
	switch k {
	case KindLogisticRegression, KindKNNClassifier, KindDecisionTreeClassifier,
		KindRandomForestClassifier, KindNaiveBayes:
		return true
	}
	return false
}

// Regressor reports whether models of this kind predict continuous values.
func (k Kind) Regressor() bool {
	switch k {
	case KindLinearRegression, KindKNNRegressor, KindDecisionTreeRegressor, KindRandomForestRegressor:
		return true
	}
	return false
}

// Model is the closed union of trained model values. Only types in this
// package implement it.
type Model interface {
	Kind() Kind
	isModel()
}

// Trainer fits a supervised model. Every option struct of a supervised
// model implements it, which lets cross-validation forward options verbatim.
type Trainer interface {
	Train(ctx context.Context, X [][]float64, y []float64) (Model, error)
}

// TrainerFunc adapts a training function to Trainer. Models with both a
// classifier and a regressor form share one option struct and are wrapped
// this way.
type TrainerFunc func(ctx context.Context, X [][]float64, y []float64) (Model, error)

func (f TrainerFunc) Train(ctx context.Context, X [][]float64, y []float64) (Model, error) {
	return f(ctx, X, y)
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// checkX validates that X is a non-empty rectangular matrix and returns its shape.
func checkX(X [][]float64) (n, p int, err error) {
	n = len(X)
	if n == 0 {
		return 0, 0, ErrEmpty
	}
	p = len(X[0])
	if p == 0 {
		return 0, 0, ErrEmpty
	}
	for i, row := range X {
		if len(row) != p {
			return 0, 0, &ShapeError{Row: i, Got: len(row), Want: p}
		}
	}
	return n, p, nil
}

// checkXY is checkX plus a matching target length.
func checkXY(X [][]float64, y []float64) (n, p int, err error) {
	n, p, err = checkX(X)
	if err != nil {
		return 0, 0, err
	}
	if len(y) != n {
		return 0, 0, &LengthError{Rows: n, Targets: len(y)}
	}
	return n, p, nil
}

// checkWidth validates X against the feature count p a model was trained on.
func checkWidth(X [][]float64, p int) error {
	for i, row := range X {
		if len(row) != p {
			return &ShapeError{Row: i, Got: len(row), Want: p}
		}
	}
	return nil
}
