package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"statml/pkg/crossval"
	"statml/pkg/loader"
	"statml/pkg/model"
	"statml/pkg/rng"
)

// generateBinaryData creates a two-feature dataset in [-1, 1]²; the label is
// 1 when x1·x2 > 0.
func generateBinaryData(n int, seed int64) ([][]float64, []float64) {
	g := rng.New(seed)
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		x1, x2 := g.Float64()*2-1, g.Float64()*2-1
		X[i] = []float64{x1, x2}
		if x1*x2 > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func newLogger(verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}

func main() {
	n := flag.Int("n", 1000, "number of samples")
	trees := flag.Int("trees", 50, "number of trees in the forest")
	depth := flag.Int("depth", 5, "maximum tree depth")
	seed := flag.Int64("seed", loader.DefaultSeed, "seed for data, split and bootstrap")
	verbose := flag.Bool("v", false, "development logging (debug level)")
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync() //nolint:errcheck
	ctx := context.Background()

	X, y := generateBinaryData(*n, *seed)
	XTrain, XTest, yTrain, yTest, err := loader.SplitData(X, y, 0.3, *seed)
	if err != nil {
		logger.Fatal("split", zap.Error(err))
	}
	logger.Info("dataset", zap.Int("train", len(XTrain)), zap.Int("test", len(XTest)))

	treeOpts := model.DecisionTreeOptions{MaxDepth: *depth, Logger: logger}
	tree, err := model.TrainDecisionTreeClassifier(XTrain, yTrain, treeOpts)
	if err != nil {
		logger.Fatal("decision tree", zap.Error(err))
	}
	forestOpts := model.RandomForestOptions{NEstimators: *trees, MaxDepth: *depth, Seed: *seed, Logger: logger}
	forest, err := model.TrainRandomForestClassifierContext(ctx, XTrain, yTrain, forestOpts)
	if err != nil {
		logger.Fatal("random forest", zap.Error(err))
	}
	knn, err := model.TrainKNNClassifier(XTrain, yTrain, model.KNNOptions{K: 7, Weighted: true, Logger: logger})
	if err != nil {
		logger.Fatal("knn", zap.Error(err))
	}

	for _, m := range []model.Model{tree, forest, knn} {
		pred, err := model.Predict(m, XTest)
		if err != nil {
			logger.Fatal("predict", zap.String("model", string(m.Kind())), zap.Error(err))
		}
		metric, err := model.ClassificationMetrics(yTest, pred.Values, "")
		if err != nil {
			logger.Fatal("metrics", zap.Error(err))
		}
		logger.Info("test scores",
			zap.String("model", pred.Model),
			zap.Float64("accuracy", metric.Value),
			zap.Float64("f1", metric.Details["f1"]))
	}

	vote, err := model.Vote([]model.Model{tree, forest, knn}, XTest)
	if err != nil {
		logger.Fatal("vote", zap.Error(err))
	}
	logger.Info("ensemble", zap.String("method", vote.Method), zap.Float64("accuracy", model.Accuracy(yTest, vote.Values)))

	imp, err := model.ForestImportance(forest)
	if err != nil {
		logger.Fatal("importance", zap.Error(err))
	}
	logger.Info("feature importance", zap.Float64s("importances", imp.Importances), zap.Ints("ranking", imp.Ranking))

	cv, err := crossval.Run(ctx, X, y, model.RandomForestClassifier(forestOpts), crossval.Options{Seed: *seed, Logger: logger})
	if err != nil {
		logger.Fatal("cross-validation", zap.Error(err))
	}
	logger.Info("cross-validation",
		zap.Int("folds", cv.KFolds), zap.Float64s("scores", cv.Scores),
		zap.Float64("mean", cv.Mean), zap.Float64("std", cv.Std))

	for _, f := range []model.Format{model.FormatJSON, model.FormatGob, model.FormatProto} {
		data, err := model.Encode(forest, f)
		if err != nil {
			logger.Fatal("encode", zap.String("format", string(f)), zap.Error(err))
		}
		back, err := model.Decode(data, f)
		if err != nil {
			logger.Fatal("decode", zap.String("format", string(f)), zap.Error(err))
		}
		pred, err := model.Predict(back, XTest[:5])
		if err != nil {
			logger.Fatal("predict decoded", zap.Error(err))
		}
		logger.Info("codec round trip", zap.String("format", string(f)), zap.Int("bytes", len(data)), zap.Float64s("first predictions", pred.Values))
	}
	fmt.Printf("forest of %d trees: test accuracy %.3f, cv mean %.3f\n", forest.NTrees, model.Accuracy(yTest, mustValues(forest.Predict(XTest))), cv.Mean)
}

func mustValues(v []float64, err error) []float64 {
	if err != nil {
		log.Fatal(err)
	}
	return v
}
