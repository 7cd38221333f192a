package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"statml/pkg/core"
	"statml/pkg/nn"
	"statml/pkg/optim"
)

// Linear regression solvers.
const (
	SolverGD     = "gd"
	SolverNormal = "normal"
)

// progressEvery is how often gradient descent checks ctx and logs its loss.
const progressEvery = 100

// LinearRegressionOptions configures TrainLinearRegression. Zero values take
// the defaults of DefaultLinearRegressionOptions.
type LinearRegressionOptions struct {
	LearningRate   float64 `json:"learning_rate"`
	Iterations     int     `json:"iterations"`
	Regularization string  `json:"regularization"`
	Lambda         float64 `json:"lambda"`
	// L2 is shorthand for Regularization "l2" with Lambda L2.
	L2     float64 `json:"l2"`
	Solver string  `json:"solver"`

	Logger *zap.Logger `json:"-"`
}

func DefaultLinearRegressionOptions() LinearRegressionOptions {
	return LinearRegressionOptions{
		LearningRate:   0.01,
		Iterations:     1000,
		Regularization: string(optim.PenaltyNone),
		Solver:         SolverGD,
	}
}

func (o LinearRegressionOptions) withDefaults() (LinearRegressionOptions, optim.Penalty, error) {
	d := DefaultLinearRegressionOptions()
	if o.LearningRate == 0 {
		o.LearningRate = d.LearningRate
	}
	if o.Iterations == 0 {
		o.Iterations = d.Iterations
	}
	if o.Solver == "" {
		o.Solver = d.Solver
	}
	if o.L2 != 0 && (o.Regularization == "" || o.Regularization == string(optim.PenaltyL2)) {
		o.Regularization, o.Lambda = string(optim.PenaltyL2), o.L2
	}
	pen, err := optim.ParsePenalty(o.Regularization)
	if err != nil {
		return o, "", fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	o.Regularization = string(pen)
	switch {
	case o.LearningRate < 0, o.Iterations < 0, o.Lambda < 0:
		return o, "", fmt.Errorf("linear regression: %w", ErrInvalidOption)
	case o.Solver != SolverGD && o.Solver != SolverNormal:
		return o, "", fmt.Errorf("linear regression solver %q: %w", o.Solver, ErrInvalidOption)
	case o.Solver == SolverNormal && pen == optim.PenaltyL1:
		return o, "", fmt.Errorf("normal equations cannot apply l1: %w", ErrInvalidOption)
	}
	return o, pen, nil
}

// Train implements Trainer.
func (o LinearRegressionOptions) Train(ctx context.Context, X [][]float64, y []float64) (Model, error) {
	return TrainLinearRegressionContext(ctx, X, y, o)
}

// LinearRegression is y ≈ w₀ + Σⱼ wⱼxⱼ. Weights[0] is the bias.
type LinearRegression struct {
	Type           Kind      `json:"type"`
	Weights        []float64 `json:"weights"`
	MSE            float64   `json:"mse"`
	R2             float64   `json:"r2"`
	N              int       `json:"n"`
	P              int       `json:"p"`
	Regularization string    `json:"regularization,omitempty"`
	Lambda         float64   `json:"lambda,omitempty"`
	Solver         string    `json:"solver,omitempty"`
}

func (*LinearRegression) Kind() Kind { return KindLinearRegression }
func (*LinearRegression) isModel()   {}

// TrainLinearRegression fits by batch gradient descent on the mean squared
// error, or by ridge normal equations when Solver is "normal".
func TrainLinearRegression(X [][]float64, y []float64, opts LinearRegressionOptions) (*LinearRegression, error) {
	return TrainLinearRegressionContext(context.Background(), X, y, opts)
}

// TrainLinearRegressionContext is TrainLinearRegression with cancellation
// checked every 100 iterations.
func TrainLinearRegressionContext(ctx context.Context, X [][]float64, y []float64, opts LinearRegressionOptions) (*LinearRegression, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	o, pen, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := nopIfNil(o.Logger)
	Xb := core.AugmentBias(X)

	var w []float64
	if o.Solver == SolverNormal {
		w, err = solveNormal(Xb, y, pen, o.Lambda)
	} else {
		w, err = gradientDescent(ctx, log, Xb.ToSlice(), y, o.Iterations, optim.NewGD(o.LearningRate, pen, o.Lambda), linearScore)
	}
	if err != nil {
		return nil, err
	}
	m := &LinearRegression{
		Type:           KindLinearRegression,
		Weights:        w,
		N:              n,
		P:              p,
		Regularization: o.Regularization,
		Lambda:         o.Lambda,
		Solver:         o.Solver,
	}
	pred, _ := m.Predict(X)
	m.MSE, m.R2 = MSE(y, pred), R2(y, pred)
	log.Debug("linear regression trained",
		zap.Int("n", n), zap.Int("p", p), zap.Float64("mse", m.MSE), zap.Float64("r2", m.R2))
	return m, nil
}

// solveNormal computes w = (XᵀX + λI)⁻¹Xᵀy. Without a penalty the default
// ridge keeps XᵀX invertible.
func solveNormal(Xb *core.Matrix, y []float64, pen optim.Penalty, lambda float64) ([]float64, error) {
	ridge := core.DefaultRidge
	if pen == optim.PenaltyL2 && lambda > 0 {
		ridge = lambda
	}
	pinv, err := core.PseudoInverse(Xb, ridge)
	if err != nil {
		return nil, err
	}
	return core.MulVec(pinv, y)
}

// scoreFunc turns the linear scores Xw into predictions and returns the
// loss and its gradient with respect to the scores.
type scoreFunc func(y, scores []float64) (float64, []float64)

func linearScore(y, scores []float64) (float64, []float64) {
	return nn.MSE(y, scores)
}

func logisticScore(y, scores []float64) (float64, []float64) {
	p := make([]float64, len(scores))
	for i, s := range scores {
		p[i] = nn.Sigmoid(s)
	}
	return nn.BCE(y, p)
}

// gradientDescent runs full-batch descent from zero weights over the
// bias-augmented rows Xb.
func gradientDescent(ctx context.Context, log *zap.Logger, Xb [][]float64, y []float64, iterations int, opt *optim.GD, score scoreFunc) ([]float64, error) {
	w := make([]float64, len(Xb[0]))
	scores := make([]float64, len(Xb))
	for it := 0; it < iterations; it++ {
		for i, row := range Xb {
			s := 0.0
			for j, v := range row {
				s += w[j] * v
			}
			scores[i] = s
		}
		loss, g := score(y, scores)
		opt.Step(w, nn.Backprop(Xb, g))
		if it%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			log.Debug("gradient descent",
				zap.Int("iteration", it), zap.Float64("loss", loss+opt.Cost(w)), zap.Float64("learning_rate", opt.LearningRate))
		}
	}
	return w, nil
}

// Predict evaluates w₀ + Σⱼ wⱼxⱼ for every row.
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if len(m.Weights) != m.P+1 {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	return linearPredict(m.Weights, X), nil
}

func linearPredict(w []float64, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		s := w[0]
		for j, v := range row {
			s += w[j+1] * v
		}
		out[i] = s
	}
	return out
}
