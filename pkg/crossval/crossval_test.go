package crossval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"statml/pkg/crossval"
	"statml/pkg/loader"
	"statml/pkg/model"
	"statml/pkg/result"
)

// skewed has one feature in the units and one in the hundreds, so an
// unscaled distance is dominated by the second column.
func skewed() ([][]float64, []float64) {
	X := make([][]float64, 30)
	y := make([]float64, 30)
	for i := range X {
		a := float64(i % 6)
		b := float64((i*7)%13) * 100
		X[i] = []float64{a, b}
		if a >= 3 {
			y[i] = 1
		}
	}
	return X, y
}

func TestRunMatchesManualLoop(t *testing.T) {
	t.Parallel()
	X, y := skewed()
	trainer := model.KNNClassifier(model.KNNOptions{K: 3})

	cv, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{Normalize: true, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.Equal(t, result.TypeCrossValidation, cv.Type)
	require.Equal(t, "knn_classifier", cv.Model)
	require.Equal(t, crossval.MetricAccuracy, cv.Metric)
	require.True(t, cv.Normalize)
	require.Equal(t, 5, cv.KFolds)

	folds, err := loader.KFold(len(X), 5, true, loader.DefaultSeed)
	require.NoError(t, err)
	want := make([]float64, len(folds))
	for i, f := range folds {
		XTrain, yTrain := loader.Take(X, y, f.Train)
		XTest, yTest := loader.Take(X, y, f.Test)
		s, err := model.FitStandardScaler(XTrain)
		require.NoError(t, err)
		tr, err := s.Transform(XTrain)
		require.NoError(t, err)
		te, err := s.Transform(XTest)
		require.NoError(t, err)
		m, err := model.TrainKNNClassifier(tr.Data, yTrain, model.KNNOptions{K: 3})
		require.NoError(t, err)
		pred, err := m.Predict(te.Data)
		require.NoError(t, err)
		want[i] = model.Accuracy(yTest, pred)
	}
	require.Equal(t, want, cv.Scores)
}

func TestRunRegression(t *testing.T) {
	t.Parallel()
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		X[i] = []float64{float64(i), float64(i * i % 7)}
		y[i] = 3 + 2*X[i][0] - X[i][1]
	}
	trainer := model.LinearRegressionOptions{Solver: model.SolverNormal}
	cv, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{KFolds: 4})
	require.NoError(t, err)
	require.Equal(t, "linear_regression", cv.Model)
	require.Equal(t, crossval.MetricR2, cv.Metric)
	require.Len(t, cv.Scores, 4)
	for _, s := range cv.Scores {
		require.InDelta(t, 1, s, 1e-6)
	}
	require.InDelta(t, 1, cv.Mean, 1e-6)
	require.InDelta(t, 0, cv.Std, 1e-6)

	mse, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{KFolds: 4, Metric: crossval.MetricMSE, Normalize: true, Scaler: crossval.ScalerMinMax})
	require.NoError(t, err)
	require.Equal(t, crossval.MetricMSE, mse.Metric)
	require.InDelta(t, 0, mse.Mean, 1e-6)
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()
	X, y := skewed()
	trainer := model.DecisionTreeClassifier(model.DecisionTreeOptions{MaxDepth: 2})
	a, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{})
	require.NoError(t, err)
	b, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{Seed: 42})
	require.NoError(t, err)
	require.Equal(t, a, b)

	off := false
	ordered, err := crossval.Run(context.Background(), X, y, trainer, crossval.Options{Shuffle: &off, Metric: crossval.MetricF1})
	require.NoError(t, err)
	require.Len(t, ordered.Scores, 5)
	require.Equal(t, crossval.MetricF1, ordered.Metric)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	X, y := skewed()
	ctx := context.Background()
	trainer := model.KNNClassifier(model.KNNOptions{})

	_, err := crossval.Run(ctx, X, y, nil, crossval.Options{})
	require.ErrorIs(t, err, crossval.ErrInvalidOption)
	_, err = crossval.Run(ctx, X, y[:3], trainer, crossval.Options{})
	require.ErrorIs(t, err, model.ErrLengthMismatch)
	_, err = crossval.Run(ctx, X, y, trainer, crossval.Options{KFolds: 1})
	require.ErrorIs(t, err, loader.ErrInvalidSize)
	_, err = crossval.Run(ctx, X, y, trainer, crossval.Options{Metric: "auc"})
	require.ErrorIs(t, err, crossval.ErrUnknownMetric)
	_, err = crossval.Run(ctx, X, y, trainer, crossval.Options{Scaler: "robust"})
	require.ErrorIs(t, err, crossval.ErrInvalidOption)

	multi := append([]float64(nil), y...)
	multi[0] = 2
	_, err = crossval.Run(ctx, X, multi, model.LogisticRegressionOptions{}, crossval.Options{})
	require.ErrorIs(t, err, model.ErrNotBinary)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = crossval.Run(cancelled, X, y, trainer, crossval.Options{})
	require.ErrorIs(t, err, context.Canceled)
}
