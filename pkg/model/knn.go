package model

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// Distance metrics accepted by KNNOptions.Metric.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
	MetricMinkowski = "minkowski"
)

// zeroDistanceWeight replaces 1/d when a neighbour sits exactly on the query.
const zeroDistanceWeight = 1e10

type KNNOptions struct {
	K        int     `json:"k"`
	Weighted bool    `json:"weighted"`
	Metric   string  `json:"metric"`
	Power    float64 `json:"minkowski_p"`

	Logger *zap.Logger `json:"-"`
}

func DefaultKNNOptions() KNNOptions {
	return KNNOptions{K: 5, Metric: MetricEuclidean, Power: 2}
}

func (o KNNOptions) withDefaults() (KNNOptions, error) {
	d := DefaultKNNOptions()
	if o.K == 0 {
		o.K = d.K
	}
	if o.Metric == "" {
		o.Metric = d.Metric
	}
	if o.Power == 0 {
		o.Power = d.Power
	}
	if o.K < 0 || o.Power < 1 {
		return o, fmt.Errorf("knn: %w", ErrInvalidOption)
	}
	switch o.Metric {
	case MetricEuclidean, MetricManhattan, MetricMinkowski:
	default:
		return o, fmt.Errorf("knn metric %q: %w", o.Metric, ErrInvalidOption)
	}
	return o, nil
}

// KNNClassifier returns a Trainer for TrainKNNClassifier.
func KNNClassifier(opts KNNOptions) Trainer {
	return TrainerFunc(func(_ context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainKNNClassifier(X, y, opts)
	})
}

// KNNRegressor returns a Trainer for TrainKNNRegressor.
func KNNRegressor(opts KNNOptions) Trainer {
	return TrainerFunc(func(_ context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainKNNRegressor(X, y, opts)
	})
}

// KNN is a lazy model: the training set is the model.
type KNN struct {
	Type     Kind        `json:"type"`
	K        int         `json:"k"`
	Weighted bool        `json:"weighted,omitempty"`
	Metric   string      `json:"metric,omitempty"`
	Power    float64     `json:"minkowski_p,omitempty"`
	X        [][]float64 `json:"X"`
	Y        []float64   `json:"y"`
	N        int         `json:"n"`
	P        int         `json:"p"`
}

func (m *KNN) Kind() Kind {
	if m == nil {
		return ""
	}
	return m.Type
}
func (*KNN) isModel() {}

func TrainKNNClassifier(X [][]float64, y []float64, opts KNNOptions) (*KNN, error) {
	return trainKNN(KindKNNClassifier, X, y, opts)
}

func TrainKNNRegressor(X [][]float64, y []float64, opts KNNOptions) (*KNN, error) {
	return trainKNN(KindKNNRegressor, X, y, opts)
}

func trainKNN(kind Kind, X [][]float64, y []float64, opts KNNOptions) (*KNN, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	m := &KNN{
		Type:     kind,
		K:        min(o.K, n),
		Weighted: o.Weighted,
		Metric:   o.Metric,
		X:        make([][]float64, n),
		Y:        append([]float64(nil), y...),
		N:        n,
		P:        p,
	}
	if o.Metric == MetricMinkowski {
		m.Power = o.Power
	}
	for i, row := range X {
		m.X[i] = append([]float64(nil), row...)
	}
	nopIfNil(o.Logger).Debug("knn stored", zap.String("type", string(kind)), zap.Int("n", n), zap.Int("k", m.K))
	return m, nil
}

func (m *KNN) valid() bool {
	if m.Type != KindKNNClassifier && m.Type != KindKNNRegressor {
		return false
	}
	if m.P <= 0 || m.K <= 0 || len(m.X) != m.N || len(m.Y) != m.N || m.K > m.N {
		return false
	}
	for _, row := range m.X {
		if len(row) != m.P {
			return false
		}
	}
	return true
}

// Predict votes (classifier) or averages (regressor) over the k nearest
// training rows. Rows are processed in parallel.
func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	forEachRow(len(X), func(i int) {
		out[i] = m.predictSingle(X[i])
	})
	return out, nil
}

type neighbor struct {
	d float64
	v float64
}

// neighbors returns the k nearest training rows ordered by distance; equal
// distances keep training order.
func (m *KNN) neighbors(x []float64) []neighbor {
	nbrs := make([]neighbor, len(m.X))
	for j, xj := range m.X {
		nbrs[j] = neighbor{d: m.distance(x, xj), v: m.Y[j]}
	}
	sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
	return nbrs[:m.K]
}

func (m *KNN) predictSingle(x []float64) float64 {
	nbrs := m.neighbors(x)
	weights := make([]float64, len(nbrs))
	for i, nb := range nbrs {
		weights[i] = 1
		if m.Weighted {
			weights[i] = m.inverseDistance(nb.d)
		}
	}
	if m.Type == KindKNNRegressor {
		s, ws := 0.0, 0.0
		for i, nb := range nbrs {
			s += weights[i] * nb.v
			ws += weights[i]
		}
		return s / ws
	}
	var order []float64
	votes := map[float64]float64{}
	for i, nb := range nbrs {
		if _, ok := votes[nb.v]; !ok {
			order = append(order, nb.v)
		}
		votes[nb.v] += weights[i]
	}
	best := order[0]
	for _, v := range order[1:] {
		if votes[v] > votes[best] {
			best = v
		}
	}
	return best
}

// inverseDistance weights a neighbour by 1/d on the true metric distance.
func (m *KNN) inverseDistance(d float64) float64 {
	if m.metric() == MetricEuclidean {
		d = math.Sqrt(d)
	}
	if d == 0 {
		return zeroDistanceWeight
	}
	return 1 / d
}

func (m *KNN) metric() string {
	if m.Metric == "" {
		return MetricEuclidean
	}
	return m.Metric
}

// distance is the squared Euclidean distance by default; Manhattan and
// Minkowski distances are exact.
func (m *KNN) distance(a, b []float64) float64 {
	switch m.metric() {
	case MetricManhattan:
		s := 0.0
		for i := range a {
			s += math.Abs(a[i] - b[i])
		}
		return s
	case MetricMinkowski:
		pw := m.Power
		if pw == 0 {
			pw = 2
		}
		s := 0.0
		for i := range a {
			s += math.Pow(math.Abs(a[i]-b[i]), pw)
		}
		return math.Pow(s, 1/pw)
	}
	return euclidSquared(a, b)
}

func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
