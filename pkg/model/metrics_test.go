package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/model"
	"statml/pkg/result"
)

func TestRegressionMetrics(t *testing.T) {
	t.Parallel()
	yTrue := []float64{3, -0.5, 2, 7}
	yPred := []float64{2.5, 0, 2, 8}
	m, err := model.RegressionMetrics(yTrue, yPred)
	require.NoError(t, err)
	require.Equal(t, result.TypeMetric, m.Type)
	require.InDelta(t, 0.375, m.Details["mse"], 1e-12)
	require.InDelta(t, 0.5, m.Details["mae"], 1e-12)
	require.InDelta(t, 0.6123724356957945, m.Details["rmse"], 1e-12)
	require.InDelta(t, 0.9486081370449679, m.Value, 1e-12)
	require.Equal(t, m.Value, m.Details["r2"])

	require.Equal(t, 0.0, model.R2([]float64{4, 4, 4}, []float64{1, 2, 3}))

	_, err = model.RegressionMetrics(nil, nil)
	require.ErrorIs(t, err, model.ErrEmpty)
	_, err = model.RegressionMetrics(yTrue, yPred[:2])
	require.ErrorIs(t, err, model.ErrLengthMismatch)
}

func TestClassificationMetricsBinary(t *testing.T) {
	t.Parallel()
	yTrue := []float64{1, 1, 1, 1, 0, 0}
	yPred := []float64{1, 1, 1, 0, 1, 0}
	m, err := model.ClassificationMetrics(yTrue, yPred, "")
	require.NoError(t, err)
	require.Equal(t, model.AverageBinary, m.Average)
	require.InDelta(t, 4.0/6, m.Value, 1e-12)
	require.Equal(t, 3.0, m.Details["tp"])
	require.Equal(t, 1.0, m.Details["fp"])
	require.Equal(t, 1.0, m.Details["fn"])
	require.Equal(t, 1.0, m.Details["tn"])
	for _, k := range []string{"precision", "recall", "f1"} {
		require.InDelta(t, 0.75, m.Details[k], 1e-12, k)
	}

	none, err := model.ClassificationMetrics([]float64{0, 0}, []float64{0, 0}, model.AverageBinary)
	require.NoError(t, err)
	require.Equal(t, 0.0, none.Details["precision"])
	require.Equal(t, 1.0, none.Value)
}

func TestClassificationMetricsMulticlass(t *testing.T) {
	t.Parallel()
	yTrue := []float64{0, 0, 1, 1, 2, 2}
	yPred := []float64{0, 1, 1, 2, 2, 2}

	labels, cm, err := model.ConfusionMatrix(yTrue, yPred)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2}, labels)
	require.Equal(t, [][]int{{1, 1, 0}, {0, 1, 1}, {0, 0, 2}}, cm)

	macro, err := model.ClassificationMetrics(yTrue, yPred, "")
	require.NoError(t, err)
	require.Equal(t, model.AverageMacro, macro.Average)
	require.InDelta(t, 0.7222222, macro.Details["precision"], 1e-6)
	require.InDelta(t, 0.6666667, macro.Details["recall"], 1e-6)
	require.InDelta(t, 0.6555556, macro.Details["f1"], 1e-6)

	weighted, err := model.ClassificationMetrics(yTrue, yPred, model.AverageWeighted)
	require.NoError(t, err)
	require.InDelta(t, macro.Details["f1"], weighted.Details["f1"], 1e-12)

	micro, err := model.ClassificationMetrics(yTrue, yPred, model.AverageMicro)
	require.NoError(t, err)
	require.InDelta(t, 2.0/3, micro.Details["precision"], 1e-12)
	require.InDelta(t, micro.Value, micro.Details["f1"], 1e-12)

	_, err = model.ClassificationMetrics(yTrue, yPred, model.AverageBinary)
	require.ErrorIs(t, err, model.ErrNotBinary)
	_, err = model.ClassificationMetrics(yTrue, yPred, "samples")
	require.ErrorIs(t, err, model.ErrInvalidOption)
}

func TestScalers(t *testing.T) {
	t.Parallel()
	X := [][]float64{{1, 10}, {2, 10}, {3, 10}}

	std, err := model.FitStandardScaler(X)
	require.NoError(t, err)
	require.Equal(t, []model.MeanStd{{Mean: 2, Std: 1}, {Mean: 10, Std: 1}}, std.Params)
	scaled, err := std.Transform(X)
	require.NoError(t, err)
	require.Equal(t, result.TypeScaledData, scaled.Type)
	require.Equal(t, "standard_scaler", scaled.Scaler)
	require.Equal(t, [][]float64{{-1, 0}, {0, 0}, {1, 0}}, scaled.Data)
	back, err := std.InverseTransform(scaled.Data)
	require.NoError(t, err)
	require.Equal(t, X, back)

	mm, err := model.FitMinMaxScaler(X)
	require.NoError(t, err)
	scaled, err = mm.Transform([][]float64{{1, 10}, {2, 10}, {5, 10}})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0, 0}, {0.5, 0}, {2, 0}}, scaled.Data)
	back, err = mm.InverseTransform(scaled.Data)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 10}, {2, 10}, {5, 10}}, back)

	var s model.Scaler = mm
	_, err = s.Transform([][]float64{{1}})
	require.ErrorIs(t, err, model.ErrDimensionMismatch)
	_, err = (&model.StandardScaler{P: 2}).Transform(X)
	require.ErrorIs(t, err, model.ErrInvalidModel)
}
