package stats

import (
	"fmt"
	"math"

	"statml/pkg/result"
)

// MovingAverage returns the trailing simple moving average. The first
// window−1 positions have no full window and are NaN.
func MovingAverage(x []float64, window int) (result.TimeSeries, error) {
	if window < 1 || window > len(x) {
		return result.TimeSeries{}, fmt.Errorf("moving average window %d: %w", window, ErrInvalidParameter)
	}
	out := make([]float64, len(x))
	s := 0.0
	for i, v := range x {
		s += v
		if i >= window {
			s -= x[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s / float64(window)
	}
	return result.TimeSeries{
		Type:   result.TypeTimeSeries,
		Name:   "moving_average",
		Params: map[string]float64{"window": float64(window)},
		Values: out,
	}, nil
}

// ExponentialSmoothing applies s₀ = x₀, sₜ = α·xₜ + (1−α)·sₜ₋₁.
func ExponentialSmoothing(x []float64, alpha float64) (result.TimeSeries, error) {
	if alpha <= 0 || alpha > 1 {
		return result.TimeSeries{}, fmt.Errorf("smoothing factor %g: %w", alpha, ErrInvalidParameter)
	}
	if len(x) == 0 {
		return result.TimeSeries{}, ErrEmpty
	}
	out := make([]float64, len(x))
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = alpha*x[i] + (1-alpha)*out[i-1]
	}
	return result.TimeSeries{
		Type:   result.TypeTimeSeries,
		Name:   "exponential_smoothing",
		Params: map[string]float64{"alpha": alpha},
		Values: out,
	}, nil
}

// Autocorrelation returns the sample autocorrelation for lags 0..maxLag.
func Autocorrelation(x []float64, maxLag int) (result.TimeSeries, error) {
	c := clean(x)
	if maxLag < 0 || maxLag >= len(c) {
		return result.TimeSeries{}, fmt.Errorf("autocorrelation lag %d: %w", maxLag, ErrInvalidParameter)
	}
	mean, s2, _, _ := centralMoments(c)
	out := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		if s2 == 0 {
			out[lag] = math.NaN()
			continue
		}
		acc := 0.0
		for t := lag; t < len(c); t++ {
			acc += (c[t] - mean) * (c[t-lag] - mean)
		}
		out[lag] = acc / s2
	}
	return result.TimeSeries{
		Type:   result.TypeTimeSeries,
		Name:   "autocorrelation",
		Params: map[string]float64{"max_lag": float64(maxLag)},
		Values: out,
	}, nil
}

// Differences returns xₜ − xₜ₋lag for t ≥ lag.
func Differences(x []float64, lag int) (result.TimeSeries, error) {
	if lag < 1 || lag >= len(x) {
		return result.TimeSeries{}, fmt.Errorf("difference lag %d: %w", lag, ErrInvalidParameter)
	}
	out := make([]float64, len(x)-lag)
	for t := lag; t < len(x); t++ {
		out[t-lag] = x[t] - x[t-lag]
	}
	return result.TimeSeries{
		Type:   result.TypeTimeSeries,
		Name:   "differences",
		Params: map[string]float64{"lag": float64(lag)},
		Values: out,
	}, nil
}
