package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"statml/pkg/model"
)

type codecCase struct {
	name  string
	model model.Model
	rows  [][]float64
}

func trainedModels(t *testing.T) []codecCase {
	t.Helper()
	lin, err := model.TrainLinearRegression(lineX, lineY, model.LinearRegressionOptions{Iterations: 50})
	require.NoError(t, err)
	logit, err := model.TrainLogisticRegression(gapX, gapY, model.LogisticRegressionOptions{Iterations: 50})
	require.NoError(t, err)
	knn, err := model.TrainKNNClassifier(blobX, blobY, model.KNNOptions{K: 3, Metric: model.MetricMinkowski, Power: 3})
	require.NoError(t, err)
	tree, err := model.TrainDecisionTreeRegressor(gapX, []float64{1, 1, 1, 5, 5, 5}, model.DecisionTreeOptions{})
	require.NoError(t, err)
	forest, err := model.TrainRandomForestClassifier(gapX, gapY, model.RandomForestOptions{NEstimators: 4})
	require.NoError(t, err)
	nb, err := model.TrainNaiveBayes(blobX, blobY, model.NaiveBayesOptions{})
	require.NoError(t, err)
	km, err := model.TrainKMeans(kmX, model.KMeansOptions{K: 2})
	require.NoError(t, err)

	return []codecCase{
		{"linear", lin, [][]float64{{0}, {7.5}}},
		{"logistic", logit, [][]float64{{2}, {9}}},
		{"knn", knn, [][]float64{{0.5, 0.5}, {5, 5.5}}},
		{"tree", tree, [][]float64{{0}, {11}}},
		{"forest", forest, [][]float64{{2}, {11}}},
		{"bayes", nb, [][]float64{{0.5, 0.5}, {5, 5.5}}},
		{"kmeans", km, [][]float64{{0, 0}, {10, 10}}},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()
	for _, f := range []model.Format{model.FormatJSON, model.FormatGob, model.FormatProto} {
		for _, tc := range trainedModels(t) {
			data, err := model.Encode(tc.model, f)
			require.NoError(t, err, "%s/%s", f, tc.name)
			back, err := model.Decode(data, f)
			require.NoError(t, err, "%s/%s", f, tc.name)
			require.Equal(t, tc.model.Kind(), back.Kind())

			want, err := model.Predict(tc.model, tc.rows)
			require.NoError(t, err)
			got, err := model.Predict(back, tc.rows)
			require.NoError(t, err, "%s/%s", f, tc.name)
			require.Equal(t, want.Values, got.Values, "%s/%s", f, tc.name)
		}
	}
}

func TestCodecTransforms(t *testing.T) {
	t.Parallel()
	pca, err := model.FitPCA(pcaX, model.PCAOptions{NComponents: 1})
	require.NoError(t, err)
	std, err := model.FitStandardScaler(pcaX)
	require.NoError(t, err)
	mm, err := model.FitMinMaxScaler(pcaX)
	require.NoError(t, err)

	for _, f := range []model.Format{model.FormatJSON, model.FormatGob, model.FormatProto} {
		data, err := model.Encode(pca, f)
		require.NoError(t, err)
		back, err := model.Decode(data, f)
		require.NoError(t, err)
		want, err := pca.Transform(pcaX)
		require.NoError(t, err)
		got, err := back.(*model.PCA).Transform(pcaX)
		require.NoError(t, err)
		require.Equal(t, want, got)

		for _, s := range []model.Scaler{std, mm} {
			data, err := model.Encode(s, f)
			require.NoError(t, err)
			back, err := model.Decode(data, f)
			require.NoError(t, err)
			want, err := s.Transform(pcaX)
			require.NoError(t, err)
			got, err := back.(model.Scaler).Transform(pcaX)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}
}

func TestCodecJSONShape(t *testing.T) {
	t.Parallel()
	lin := &model.LinearRegression{Type: model.KindLinearRegression, Weights: []float64{1, 2}, N: 3, P: 1}
	data, err := model.Encode(lin, model.FormatJSON)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, model.FormatVersion, doc["format_version"])
	require.Equal(t, "linear_regression", doc["type"])
	require.Equal(t, []any{1.0, 2.0}, doc["weights"])
}

func TestDecodeWithoutVersion(t *testing.T) {
	t.Parallel()
	m, err := model.Decode([]byte(`{"type":"linear_regression","weights":[1,2],"n":3,"p":1}`), model.FormatJSON)
	require.NoError(t, err)
	pred, err := model.Predict(m, [][]float64{{3}})
	require.NoError(t, err)
	require.Equal(t, []float64{7}, pred.Values)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	bad := []string{
		`not json`,
		`{"type":"svm","weights":[1]}`,
		`{"type":"linear_regression","weights":[1,2],"p":1,"format_version":"2.0.0"}`,
		`{"type":"linear_regression","format_version":"one"}`,
		`{"type":"linear_regression","weights":"heavy"}`,
	}
	for _, s := range bad {
		_, err := model.Decode([]byte(s), model.FormatJSON)
		require.ErrorIs(t, err, model.ErrInvalidModelText, s)
	}

	_, err := model.Decode([]byte("garbage"), model.FormatGob)
	require.ErrorIs(t, err, model.ErrInvalidModelText)

	untyped, err := structpb.NewStruct(map[string]any{"weights": []any{1.0}})
	require.NoError(t, err)
	data, err := proto.Marshal(untyped)
	require.NoError(t, err)
	_, err = model.Decode(data, model.FormatProto)
	require.ErrorIs(t, err, model.ErrInvalidModelText)

	_, err = model.Decode([]byte(`{}`), "xml")
	require.ErrorIs(t, err, model.ErrInvalidOption)
	_, err = model.Encode(nil, model.FormatJSON)
	require.ErrorIs(t, err, model.ErrInvalidModel)
	_, err = model.Encode(&model.LinearRegression{Type: model.KindLinearRegression}, "xml")
	require.ErrorIs(t, err, model.ErrInvalidOption)
}

func TestDecodedRaggedKNNIsInvalid(t *testing.T) {
	t.Parallel()
	for _, s := range []string{
		`{"type":"knn_classifier","k":1,"X":[[1],[2]],"y":[0,1],"n":2,"p":2}`,
		`{"type":"knn_regressor","k":1,"X":[[1,2],[3]],"y":[0,1],"n":2,"p":2}`,
		`{"type":"knn_classifier","k":1,"X":[[],[]],"y":[0,1],"n":2,"p":0}`,
	} {
		m, err := model.Decode([]byte(s), model.FormatJSON)
		require.NoError(t, err, s)
		_, err = model.Predict(m, [][]float64{{1, 2}})
		require.ErrorIs(t, err, model.ErrInvalidModel, s)
	}
}
