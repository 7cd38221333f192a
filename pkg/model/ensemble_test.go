package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/model"
	"statml/pkg/result"
)

func stubKNN(labels ...float64) *model.KNN {
	return &model.KNN{
		Type: model.KindKNNClassifier,
		K:    1,
		X:    [][]float64{{0}, {10}},
		Y:    labels,
		N:    2,
		P:    1,
	}
}

func TestPredictDispatch(t *testing.T) {
	t.Parallel()
	lin := &model.LinearRegression{Type: model.KindLinearRegression, Weights: []float64{1, 2}, P: 1}
	pred, err := model.Predict(lin, [][]float64{{3}})
	require.NoError(t, err)
	require.Equal(t, result.TypePrediction, pred.Type)
	require.Equal(t, "linear_regression", pred.Model)
	require.Equal(t, []float64{7}, pred.Values)

	logit := &model.LogisticRegression{Type: model.KindLogisticRegression, Weights: []float64{0, 1}, P: 1}
	proba, err := model.PredictProba(logit, [][]float64{{0}, {100}})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, proba.Values)
	require.Equal(t, []float64{0.5, 0.5}, proba.Probabilities[0])

	scaler, err := model.FitStandardScaler(lineX)
	require.NoError(t, err)
	_, err = model.Predict(scaler, lineX)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.PredictProba(lin, lineX)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Predict(&model.LinearRegression{Type: model.KindKMeans, Weights: []float64{1, 2}, P: 1}, lineX)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	var nilTree *model.DecisionTree
	_, err = model.Predict(nilTree, lineX)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Predict(nil, lineX)
	require.ErrorIs(t, err, model.ErrInvalidModel)

	km, err := model.TrainKMeans(kmX, model.KMeansOptions{K: 2})
	require.NoError(t, err)
	pred, err = model.Predict(km, [][]float64{{9, 10}})
	require.NoError(t, err)
	require.Equal(t, []float64{1}, pred.Values)
}

func TestVoteClassifiers(t *testing.T) {
	t.Parallel()
	X := [][]float64{{0}, {10}}
	v, err := model.Vote([]model.Model{stubKNN(0, 1), stubKNN(1, 0), stubKNN(1, 1)}, X)
	require.NoError(t, err)
	require.Equal(t, result.TypeEnsemblePrediction, v.Type)
	require.Equal(t, model.VoteHard, v.Method)
	require.Equal(t, 3, v.NModels)
	require.Equal(t, []float64{1, 1}, v.Values)
	require.Equal(t, [][]float64{{0, 1}, {1, 0}, {1, 1}}, v.ByModel)

	tie, err := model.Vote([]model.Model{stubKNN(0, 1), stubKNN(1, 0)}, X)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, tie.Values)
}

func TestVoteRegressors(t *testing.T) {
	t.Parallel()
	a := &model.LinearRegression{Type: model.KindLinearRegression, Weights: []float64{0, 1}, P: 1}
	b := &model.LinearRegression{Type: model.KindLinearRegression, Weights: []float64{2, 1}, P: 1}
	v, err := model.Vote([]model.Model{a, b}, [][]float64{{1}, {4}})
	require.NoError(t, err)
	require.Equal(t, model.VoteMean, v.Method)
	require.Equal(t, []float64{2, 5}, v.Values)
}

func TestVoteErrors(t *testing.T) {
	t.Parallel()
	lin := &model.LinearRegression{Type: model.KindLinearRegression, Weights: []float64{0, 1}, P: 1}
	km := &model.KMeans{Type: model.KindKMeans}
	X := [][]float64{{1}}

	_, err := model.Vote(nil, X)
	require.ErrorIs(t, err, model.ErrEmpty)
	_, err = model.Vote([]model.Model{lin, stubKNN(0, 1)}, X)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Vote([]model.Model{km}, X)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Vote([]model.Model{lin, nil}, X)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Vote([]model.Model{lin}, [][]float64{{1, 2}})
	require.ErrorIs(t, err, model.ErrDimensionMismatch)
}
