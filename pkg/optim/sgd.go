// Package optim implements the batch gradient-descent step used to train the
// linear and logistic models.
package optim

import (
	"errors"
	"fmt"
)

// Penalty selects the regularization applied to non-bias weights.
type Penalty string

const (
	PenaltyNone Penalty = "none"
	PenaltyL1   Penalty = "l1"
	PenaltyL2   Penalty = "l2"
)

var ErrUnknownPenalty = errors.New("optim: unknown penalty")

// ParsePenalty accepts "", "none", "l1" and "l2".
func ParsePenalty(s string) (Penalty, error) {
	switch Penalty(s) {
	case "", PenaltyNone:
		return PenaltyNone, nil
	case PenaltyL1, PenaltyL2:
		return Penalty(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownPenalty)
}

// GD is full-batch gradient descent. Weight 0 is the bias and is never
// penalized. L2 adds λ·w to the gradient (loss λ/2·‖w‖²); L1 adds λ·sign(w).
type GD struct {
	LearningRate float64
	Penalty      Penalty
	Lambda       float64
}

func NewGD(lr float64, penalty Penalty, lambda float64) *GD {
	return &GD{LearningRate: lr, Penalty: penalty, Lambda: lambda}
}

// Step updates weights in place from the data gradient grads.
func (o *GD) Step(weights, grads []float64) {
	for i := range weights {
		g := grads[i]
		if i > 0 {
			g += o.penaltyGrad(weights[i])
		}
		weights[i] -= o.LearningRate * g
	}
}

// Cost is the penalty term added to the data loss.
func (o *GD) Cost(weights []float64) float64 {
	c := 0.0
	for _, w := range weights[min(1, len(weights)):] {
		switch o.Penalty {
		case PenaltyL1:
			c += o.Lambda * abs(w)
		case PenaltyL2:
			c += 0.5 * o.Lambda * w * w
		}
	}
	return c
}

func (o *GD) penaltyGrad(w float64) float64 {
	switch o.Penalty {
	case PenaltyL1:
		switch {
		case w > 0:
			return o.Lambda
		case w < 0:
			return -o.Lambda
		}
	case PenaltyL2:
		return o.Lambda * w
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
