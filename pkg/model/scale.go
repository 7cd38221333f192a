package model

import (
	"math"

	"statml/pkg/result"
	"statml/pkg/stats"
)

// MeanStd is the per-column state of a StandardScaler.
type MeanStd struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// StandardScaler maps each column to zero mean and unit sample std.
type StandardScaler struct {
	Type   Kind      `json:"type"`
	Params []MeanStd `json:"params"`
	N      int       `json:"n"`
	P      int       `json:"p"`
}

func (*StandardScaler) Kind() Kind { return KindStandardScaler }
func (*StandardScaler) isModel()   {}

// MinMaxRange is the per-column state of a MinMaxScaler.
type MinMaxRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MinMaxScaler maps each column onto [0, 1].
type MinMaxScaler struct {
	Type   Kind          `json:"type"`
	Params []MinMaxRange `json:"params"`
	N      int           `json:"n"`
	P      int           `json:"p"`
}

func (*MinMaxScaler) Kind() Kind { return KindMinMaxScaler }
func (*MinMaxScaler) isModel()   {}

// Scaler is implemented by both scalers so callers can swap them.
type Scaler interface {
	Model
	Transform(X [][]float64) (result.ScaledData, error)
	InverseTransform(X [][]float64) ([][]float64, error)
}

func column(X [][]float64, j int) []float64 {
	col := make([]float64, len(X))
	for i := range X {
		col[i] = X[i][j]
	}
	return col
}

// FitStandardScaler records each column's mean and sample standard deviation.
// A zero (or undefined, n = 1) std is stored as 1 so Transform never divides by zero.
func FitStandardScaler(X [][]float64) (*StandardScaler, error) {
	n, p, err := checkX(X)
	if err != nil {
		return nil, err
	}
	s := &StandardScaler{Type: KindStandardScaler, Params: make([]MeanStd, p), N: n, P: p}
	for j := 0; j < p; j++ {
		col := column(X, j)
		sd := stats.Std(col)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.Params[j] = MeanStd{Mean: stats.Mean(col), Std: sd}
	}
	return s, nil
}

// Transform applies (x − mean)/std column-wise.
func (s *StandardScaler) Transform(X [][]float64) (result.ScaledData, error) {
	if len(s.Params) != s.P {
		return result.ScaledData{}, ErrInvalidModel
	}
	if err := checkWidth(X, s.P); err != nil {
		return result.ScaledData{}, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, s.P)
		for j, v := range row {
			out[i][j] = (v - s.Params[j].Mean) / s.Params[j].Std
		}
	}
	return result.ScaledData{Type: result.TypeScaledData, Scaler: string(KindStandardScaler), Data: out}, nil
}

// InverseTransform maps scaled rows back to the original units.
func (s *StandardScaler) InverseTransform(X [][]float64) ([][]float64, error) {
	if len(s.Params) != s.P {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, s.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, s.P)
		for j, v := range row {
			out[i][j] = v*s.Params[j].Std + s.Params[j].Mean
		}
	}
	return out, nil
}

// FitMinMaxScaler records each column's range.
func FitMinMaxScaler(X [][]float64) (*MinMaxScaler, error) {
	n, p, err := checkX(X)
	if err != nil {
		return nil, err
	}
	s := &MinMaxScaler{Type: KindMinMaxScaler, Params: make([]MinMaxRange, p), N: n, P: p}
	for j := 0; j < p; j++ {
		lo, hi := stats.MinMax(column(X, j))
		s.Params[j] = MinMaxRange{Min: lo, Max: hi}
	}
	return s, nil
}

// Transform applies (x − min)/(max − min); a constant column maps to 0.
func (s *MinMaxScaler) Transform(X [][]float64) (result.ScaledData, error) {
	if len(s.Params) != s.P {
		return result.ScaledData{}, ErrInvalidModel
	}
	if err := checkWidth(X, s.P); err != nil {
		return result.ScaledData{}, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, s.P)
		for j, v := range row {
			if r := s.Params[j].Max - s.Params[j].Min; r != 0 {
				out[i][j] = (v - s.Params[j].Min) / r
			}
		}
	}
	return result.ScaledData{Type: result.TypeScaledData, Scaler: string(KindMinMaxScaler), Data: out}, nil
}

// InverseTransform maps [0, 1] values back to the original range. Constant
// columns come back as their single value.
func (s *MinMaxScaler) InverseTransform(X [][]float64) ([][]float64, error) {
	if len(s.Params) != s.P {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, s.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, s.P)
		for j, v := range row {
			out[i][j] = v*(s.Params[j].Max-s.Params[j].Min) + s.Params[j].Min
		}
	}
	return out, nil
}
