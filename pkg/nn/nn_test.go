package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/nn"
)

func TestSigmoid(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0.5, nn.Sigmoid(0))
	require.InDelta(t, 1-nn.Sigmoid(2), nn.Sigmoid(-2), 1e-15)
	require.False(t, math.IsNaN(nn.Sigmoid(-1000)))
	require.Equal(t, 1.0, nn.Sigmoid(1000))
}

func TestMSE(t *testing.T) {
	t.Parallel()
	loss, grad := nn.MSE([]float64{1, 2, 3}, []float64{1, 3, 5})
	require.InDelta(t, 5.0/3.0, loss, 1e-12)
	require.InDeltaSlice(t, []float64{0, 2.0 / 3.0, 4.0 / 3.0}, grad, 1e-12)
}

func TestBCE(t *testing.T) {
	t.Parallel()
	loss, grad := nn.BCE([]float64{1, 0}, []float64{0.8, 0.4})
	require.InDelta(t, -(math.Log(0.8)+math.Log(0.6))/2, loss, 1e-12)
	require.InDeltaSlice(t, []float64{-0.1, 0.2}, grad, 1e-12)

	sat, _ := nn.BCE([]float64{1}, []float64{0})
	require.False(t, math.IsInf(sat, 0))
}

func TestBackprop(t *testing.T) {
	t.Parallel()
	X := [][]float64{{1, 2}, {1, 3}}
	require.Equal(t, []float64{3, 8}, nn.Backprop(X, []float64{1, 2}))
	require.Nil(t, nn.Backprop(nil, nil))
}
