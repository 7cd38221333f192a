// Package crossval scores a model.Trainer by k-fold cross-validation. Fold
// indices come from loader.KFold, so a seed reproduces the same partition
// as every other resampling helper in statml.
package crossval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"statml/pkg/loader"
	"statml/pkg/model"
	"statml/pkg/result"
	"statml/pkg/stats"
)

// Scoring metrics. The empty metric scores classifiers by accuracy and
// regressors by R².
const (
	MetricAccuracy = "accuracy"
	MetricF1       = "f1"
	MetricR2       = "r2"
	MetricMSE      = "mse"
	MetricMAE      = "mae"
	MetricRMSE     = "rmse"
)

// Scalers accepted by Options.Scaler.
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

var (
	ErrInvalidOption = errors.New("crossval: invalid option")
	ErrUnknownMetric = errors.New("crossval: unknown metric")
)

type Options struct {
	KFolds int `json:"k_folds"`
	// Shuffle defaults to true when nil.
	Shuffle   *bool  `json:"shuffle,omitempty"`
	Normalize bool   `json:"normalize"`
	Scaler    string `json:"scaler,omitempty"`
	Seed      int64  `json:"seed"`
	Metric    string `json:"metric,omitempty"`

	Logger *zap.Logger `json:"-"`
}

func DefaultOptions() Options {
	shuffle := true
	return Options{
		KFolds:  loader.DefaultFolds,
		Shuffle: &shuffle,
		Scaler:  ScalerStandard,
		Seed:    loader.DefaultSeed,
	}
}

func (o Options) withDefaults() (Options, error) {
	d := DefaultOptions()
	if o.KFolds == 0 {
		o.KFolds = d.KFolds
	}
	if o.Shuffle == nil {
		o.Shuffle = d.Shuffle
	}
	if o.Scaler == "" {
		o.Scaler = d.Scaler
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	switch o.Scaler {
	case ScalerStandard, ScalerMinMax:
	default:
		return o, fmt.Errorf("scaler %q: %w", o.Scaler, ErrInvalidOption)
	}
	switch o.Metric {
	case "", MetricAccuracy, MetricF1, MetricR2, MetricMSE, MetricMAE, MetricRMSE:
	default:
		return o, fmt.Errorf("metric %q: %w", o.Metric, ErrUnknownMetric)
	}
	return o, nil
}

// Run trains on k−1 folds and scores on the held-out fold, k times. With
// Normalize set, the scaler is fitted on the training fold alone and then
// applied to both folds. Scores are in fold order; Std is the population
// standard deviation of the scores.
func Run(ctx context.Context, X [][]float64, y []float64, trainer model.Trainer, opts Options) (result.CrossValidation, error) {
	if trainer == nil {
		return result.CrossValidation{}, fmt.Errorf("nil trainer: %w", ErrInvalidOption)
	}
	if len(X) != len(y) {
		return result.CrossValidation{}, fmt.Errorf("%d rows vs %d targets: %w", len(X), len(y), model.ErrLengthMismatch)
	}
	o, err := opts.withDefaults()
	if err != nil {
		return result.CrossValidation{}, err
	}
	folds, err := loader.KFold(len(X), o.KFolds, *o.Shuffle, o.Seed)
	if err != nil {
		return result.CrossValidation{}, err
	}

	cv := result.CrossValidation{
		Type:      result.TypeCrossValidation,
		KFolds:    o.KFolds,
		Scores:    make([]float64, 0, len(folds)),
		Normalize: o.Normalize,
	}
	for i, f := range folds {
		if err := ctx.Err(); err != nil {
			return result.CrossValidation{}, err
		}
		XTrain, yTrain := loader.Take(X, y, f.Train)
		XTest, yTest := loader.Take(X, y, f.Test)
		if o.Normalize {
			XTrain, XTest, err = scale(o.Scaler, XTrain, XTest)
			if err != nil {
				return result.CrossValidation{}, fmt.Errorf("fold %d: %w", i, err)
			}
		}
		m, err := trainer.Train(ctx, XTrain, yTrain)
		if err != nil {
			return result.CrossValidation{}, fmt.Errorf("fold %d: %w", i, err)
		}
		pred, err := model.Predict(m, XTest)
		if err != nil {
			return result.CrossValidation{}, fmt.Errorf("fold %d: %w", i, err)
		}
		metric := o.Metric
		if metric == "" {
			metric = MetricR2
			if m.Kind().Classifier() {
				metric = MetricAccuracy
			}
		}
		s, err := score(metric, yTest, pred.Values)
		if err != nil {
			return result.CrossValidation{}, fmt.Errorf("fold %d: %w", i, err)
		}
		cv.Model, cv.Metric = string(m.Kind()), metric
		cv.Scores = append(cv.Scores, s)
		o.Logger.Debug("cross-validation fold",
			zap.Int("fold", i), zap.Int("train", len(f.Train)), zap.Int("test", len(f.Test)),
			zap.String("metric", metric), zap.Float64("score", s))
	}
	cv.Mean = stats.Mean(cv.Scores)
	cv.Std = stats.PopStd(cv.Scores)
	o.Logger.Debug("cross-validation done",
		zap.String("model", cv.Model), zap.Float64("mean", cv.Mean), zap.Float64("std", cv.Std))
	return cv, nil
}

// scale fits the named scaler on train and transforms both sets with it.
func scale(kind string, train, test [][]float64) ([][]float64, [][]float64, error) {
	var (
		s   model.Scaler
		err error
	)
	if kind == ScalerMinMax {
		s, err = model.FitMinMaxScaler(train)
	} else {
		s, err = model.FitStandardScaler(train)
	}
	if err != nil {
		return nil, nil, err
	}
	tr, err := s.Transform(train)
	if err != nil {
		return nil, nil, err
	}
	te, err := s.Transform(test)
	if err != nil {
		return nil, nil, err
	}
	return tr.Data, te.Data, nil
}

func score(metric string, yTrue, yPred []float64) (float64, error) {
	switch metric {
	case MetricAccuracy:
		return model.Accuracy(yTrue, yPred), nil
	case MetricF1:
		m, err := model.ClassificationMetrics(yTrue, yPred, "")
		if err != nil {
			return 0, err
		}
		return m.Details["f1"], nil
	case MetricR2:
		return model.R2(yTrue, yPred), nil
	case MetricMSE:
		return model.MSE(yTrue, yPred), nil
	case MetricMAE:
		return model.MAE(yTrue, yPred), nil
	case MetricRMSE:
		return model.RMSE(yTrue, yPred), nil
	}
	return 0, fmt.Errorf("metric %q: %w", metric, ErrUnknownMetric)
}
