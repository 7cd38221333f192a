// Package nn holds the link functions and loss gradients shared by the
// gradient-descent models.
package nn

import "math"

// Sigmoid is the logistic link 1/(1+e^−x), evaluated without overflow for
// large negative x.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
