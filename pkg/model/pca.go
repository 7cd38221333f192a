package model

import (
	"fmt"

	"go.uber.org/zap"

	"statml/pkg/core"
	"statml/pkg/loader"
	"statml/pkg/rng"
)

type PCAOptions struct {
	NComponents int `json:"n_components"`
	// Seed drives the starting vectors of the power iteration.
	Seed int64 `json:"seed"`

	Logger *zap.Logger `json:"-"`
}

func DefaultPCAOptions() PCAOptions {
	return PCAOptions{NComponents: 2, Seed: loader.DefaultSeed}
}

// PCA projects centred rows onto the leading eigenvectors of the sample
// covariance. Components are unit vectors ordered by decreasing variance.
type PCA struct {
	Type                   Kind        `json:"type"`
	NComponents            int         `json:"n_components"`
	Means                  []float64   `json:"means"`
	Components             [][]float64 `json:"components"`
	ExplainedVariance      []float64   `json:"explained_variance"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
	N                      int         `json:"n"`
	P                      int         `json:"p"`
}

func (*PCA) Kind() Kind { return KindPCA }
func (*PCA) isModel()   {}

// FitPCA needs at least two rows. NComponents may not exceed the number of
// features.
func FitPCA(X [][]float64, opts PCAOptions) (*PCA, error) {
	n, p, err := checkX(X)
	if err != nil {
		return nil, err
	}
	d := DefaultPCAOptions()
	if opts.NComponents == 0 {
		opts.NComponents = min(d.NComponents, p)
	}
	if opts.Seed == 0 {
		opts.Seed = d.Seed
	}
	if opts.NComponents < 0 || opts.NComponents > p || n < 2 {
		return nil, fmt.Errorf("pca: %d components over %dx%d: %w", opts.NComponents, n, p, ErrInvalidOption)
	}

	A, err := core.FromSlice(X)
	if err != nil {
		return nil, err
	}
	C, means, err := core.Covariance(A)
	if err != nil {
		return nil, err
	}
	g := rng.New(opts.Seed)
	eig, err := core.PowerIteration(C, opts.NComponents, g.Float64)
	if err != nil {
		return nil, err
	}

	trace := 0.0
	for j := 0; j < p; j++ {
		trace += C.At(j, j)
	}
	m := &PCA{
		Type:                   KindPCA,
		NComponents:            opts.NComponents,
		Means:                  means,
		Components:             make([][]float64, len(eig)),
		ExplainedVariance:      make([]float64, len(eig)),
		ExplainedVarianceRatio: make([]float64, len(eig)),
		N:                      n,
		P:                      p,
	}
	for k, e := range eig {
		m.Components[k] = e.Vector
		m.ExplainedVariance[k] = e.Value
		if trace > 0 {
			m.ExplainedVarianceRatio[k] = e.Value / trace
		}
	}
	nopIfNil(opts.Logger).Debug("pca fitted",
		zap.Int("components", m.NComponents), zap.Float64s("explained_variance_ratio", m.ExplainedVarianceRatio))
	return m, nil
}

func (m *PCA) valid() bool {
	if len(m.Means) != m.P || len(m.Components) != m.NComponents {
		return false
	}
	for _, c := range m.Components {
		if len(c) != m.P {
			return false
		}
	}
	return true
}

// Transform centres X and projects it onto the components.
func (m *PCA) Transform(X [][]float64) ([][]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	forEachRow(len(X), func(i int) {
		t := make([]float64, m.NComponents)
		for k, comp := range m.Components {
			s := 0.0
			for j, v := range X[i] {
				s += (v - m.Means[j]) * comp[j]
			}
			t[k] = s
		}
		out[i] = t
	})
	return out, nil
}

// InverseTransform maps projected rows back to feature space. The result is
// exact only when every component was kept.
func (m *PCA) InverseTransform(Z [][]float64) ([][]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(Z, m.NComponents); err != nil {
		return nil, err
	}
	out := make([][]float64, len(Z))
	for i, z := range Z {
		row := append([]float64(nil), m.Means...)
		for k, comp := range m.Components {
			for j := range row {
				row[j] += z[k] * comp[j]
			}
		}
		out[i] = row
	}
	return out, nil
}
