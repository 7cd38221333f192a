package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"statml/pkg/core"
	"statml/pkg/nn"
	"statml/pkg/optim"
)

// LogisticRegressionOptions configures TrainLogisticRegression.
type LogisticRegressionOptions struct {
	LearningRate float64 `json:"learning_rate"`
	Iterations   int     `json:"iterations"`
	L2           float64 `json:"l2"`
	Threshold    float64 `json:"threshold"`

	Logger *zap.Logger `json:"-"`
}

func DefaultLogisticRegressionOptions() LogisticRegressionOptions {
	return LogisticRegressionOptions{LearningRate: 0.1, Iterations: 1000, Threshold: 0.5}
}

func (o LogisticRegressionOptions) withDefaults() (LogisticRegressionOptions, error) {
	d := DefaultLogisticRegressionOptions()
	if o.LearningRate == 0 {
		o.LearningRate = d.LearningRate
	}
	if o.Iterations == 0 {
		o.Iterations = d.Iterations
	}
	if o.Threshold == 0 {
		o.Threshold = d.Threshold
	}
	if o.LearningRate < 0 || o.Iterations < 0 || o.L2 < 0 || o.Threshold <= 0 || o.Threshold >= 1 {
		return o, fmt.Errorf("logistic regression: %w", ErrInvalidOption)
	}
	return o, nil
}

// Train implements Trainer.
func (o LogisticRegressionOptions) Train(ctx context.Context, X [][]float64, y []float64) (Model, error) {
	return TrainLogisticRegressionContext(ctx, X, y, o)
}

// LogisticRegression is a binary classifier P(y=1|x) = σ(w₀ + Σⱼ wⱼxⱼ).
type LogisticRegression struct {
	Type      Kind      `json:"type"`
	Weights   []float64 `json:"weights"`
	Accuracy  float64   `json:"accuracy"`
	N         int       `json:"n"`
	P         int       `json:"p"`
	L2        float64   `json:"l2,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
}

func (*LogisticRegression) Kind() Kind { return KindLogisticRegression }
func (*LogisticRegression) isModel()   {}

// TrainLogisticRegression fits by gradient descent on the log-loss starting
// from zero weights. Labels must be 0 or 1.
func TrainLogisticRegression(X [][]float64, y []float64, opts LogisticRegressionOptions) (*LogisticRegression, error) {
	return TrainLogisticRegressionContext(context.Background(), X, y, opts)
}

func TrainLogisticRegressionContext(ctx context.Context, X [][]float64, y []float64, opts LogisticRegressionOptions) (*LogisticRegression, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("y[%d] = %g: %w", i, v, ErrNotBinary)
		}
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := nopIfNil(o.Logger)
	pen := optim.PenaltyNone
	if o.L2 > 0 {
		pen = optim.PenaltyL2
	}
	w, err := gradientDescent(ctx, log, core.AugmentBias(X).ToSlice(), y, o.Iterations, optim.NewGD(o.LearningRate, pen, o.L2), logisticScore)
	if err != nil {
		return nil, err
	}
	m := &LogisticRegression{Type: KindLogisticRegression, Weights: w, N: n, P: p, L2: o.L2, Threshold: o.Threshold}
	pred, _ := m.Predict(X)
	m.Accuracy = Accuracy(y, pred)
	log.Debug("logistic regression trained", zap.Int("n", n), zap.Float64("accuracy", m.Accuracy))
	return m, nil
}

// PredictProba returns P(y=1) for every row.
func (m *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
	if len(m.Weights) != m.P+1 {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := linearPredict(m.Weights, X)
	for i, s := range out {
		out[i] = nn.Sigmoid(s)
	}
	return out, nil
}

// Predict thresholds PredictProba; the default threshold is 0.5.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	thr := m.Threshold
	if thr == 0 {
		thr = 0.5
	}
	return BinaryPredFromProba(proba, thr), nil
}
