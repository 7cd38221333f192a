package model

import (
	"context"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"statml/pkg/loader"
	"statml/pkg/rng"
)

type KMeansOptions struct {
	K             int   `json:"k"`
	MaxIterations int   `json:"max_iterations"`
	Seed          int64 `json:"seed"`

	Logger *zap.Logger `json:"-"`
}

func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{K: 3, MaxIterations: 100, Seed: loader.DefaultSeed}
}

func (o KMeansOptions) withDefaults(n int) (KMeansOptions, error) {
	d := DefaultKMeansOptions()
	if o.K == 0 {
		o.K = d.K
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.K < 0 || o.K > n || o.MaxIterations < 0 {
		return o, fmt.Errorf("kmeans: k=%d over %d rows: %w", o.K, n, ErrInvalidOption)
	}
	return o, nil
}

// KMeans holds the fitted centroids. InertiaHistory records the inertia of
// every assignment pass and never increases.
type KMeans struct {
	Type           Kind        `json:"type"`
	K              int         `json:"k"`
	Centroids      [][]float64 `json:"centroids"`
	Inertia        float64     `json:"inertia"`
	InertiaHistory []float64   `json:"inertia_history,omitempty"`
	Labels         []int       `json:"labels,omitempty"`
	Iterations     int         `json:"iterations"`
	Converged      bool        `json:"converged"`
	N              int         `json:"n"`
	P              int         `json:"p"`
}

func (*KMeans) Kind() Kind { return KindKMeans }
func (*KMeans) isModel()   {}

func TrainKMeans(X [][]float64, opts KMeansOptions) (*KMeans, error) {
	return TrainKMeansContext(context.Background(), X, opts)
}

// TrainKMeansContext runs Lloyd's algorithm from k distinct rows chosen by
// the seeded generator. It stops when an assignment pass changes no label
// or after MaxIterations passes. An emptied cluster keeps its centroid.
func TrainKMeansContext(ctx context.Context, X [][]float64, opts KMeansOptions) (*KMeans, error) {
	n, p, err := checkX(X)
	if err != nil {
		return nil, err
	}
	o, err := opts.withDefaults(n)
	if err != nil {
		return nil, err
	}
	log := nopIfNil(o.Logger)

	m := &KMeans{Type: KindKMeans, K: o.K, Centroids: make([][]float64, o.K), N: n, P: p}
	for c, i := range rng.New(o.Seed).Perm(n)[:o.K] {
		m.Centroids[c] = append([]float64(nil), X[i]...)
	}

	var labels []int
	for it := 0; it < o.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, inertia := m.assign(X)
		m.InertiaHistory = append(m.InertiaHistory, inertia)
		m.Iterations++
		log.Debug("kmeans iteration", zap.Int("iteration", it), zap.Float64("inertia", inertia))
		if slices.Equal(next, labels) {
			m.Converged = true
			break
		}
		labels = next
		m.update(X, labels)
	}
	if !m.Converged {
		var inertia float64
		labels, inertia = m.assign(X)
		m.InertiaHistory = append(m.InertiaHistory, inertia)
	}
	m.Labels = labels
	m.Inertia = m.InertiaHistory[len(m.InertiaHistory)-1]
	log.Debug("kmeans trained",
		zap.Int("k", m.K), zap.Int("iterations", m.Iterations), zap.Bool("converged", m.Converged), zap.Float64("inertia", m.Inertia))
	return m, nil
}

// assign labels every row with its nearest centroid, the lowest index
// winning ties, and returns the resulting inertia.
func (m *KMeans) assign(X [][]float64) ([]int, float64) {
	labels := make([]int, len(X))
	dist := make([]float64, len(X))
	forEachRow(len(X), func(i int) {
		best, bestD := 0, math.Inf(1)
		for c, centroid := range m.Centroids {
			if d := euclidSquared(X[i], centroid); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i], dist[i] = best, bestD
	})
	inertia := 0.0
	for _, d := range dist {
		inertia += d
	}
	return labels, inertia
}

func (m *KMeans) update(X [][]float64, labels []int) {
	sums := make([][]float64, m.K)
	counts := make([]int, m.K)
	for c := range sums {
		sums[c] = make([]float64, m.P)
	}
	for i, c := range labels {
		counts[c]++
		for j, v := range X[i] {
			sums[c][j] += v
		}
	}
	for c := range m.Centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range sums[c] {
			m.Centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

// Predict returns the index of the nearest centroid for every row.
func (m *KMeans) Predict(X [][]float64) ([]float64, error) {
	labels, err := m.Assign(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = float64(l)
	}
	return out, nil
}

// Assign is Predict with integer cluster labels.
func (m *KMeans) Assign(X [][]float64) ([]int, error) {
	if m.K == 0 || len(m.Centroids) != m.K {
		return nil, ErrInvalidModel
	}
	for _, c := range m.Centroids {
		if len(c) != m.P {
			return nil, ErrInvalidModel
		}
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	labels, _ := m.assign(X)
	return labels, nil
}
