package nn

import "math"

// probClip keeps log-loss finite at saturated probabilities.
const probClip = 1e-12

// MSE returns the mean squared error and its gradient with respect to each
// prediction.
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := 0; i < n; i++ {
		e := yPred[i] - yTrue[i]
		s += e * e
		grad[i] = 2 * e / float64(n)
	}
	return s / float64(n), grad
}

// BCE is binary cross-entropy on probabilities. The gradient is taken with
// respect to the pre-sigmoid score, (p − y)/n.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yPred[i], probClip), 1-probClip)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (yPred[i] - y) / float64(n)
	}
	return s / float64(n), grad
}

// Backprop maps per-sample output gradients g onto the weights of a linear
// score Xw: ∇w = Xᵀg. X rows are bias-augmented by the caller.
func Backprop(X [][]float64, g []float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	grad := make([]float64, len(X[0]))
	for i, row := range X {
		for j, v := range row {
			grad[j] += v * g[i]
		}
	}
	return grad
}
