package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Split criteria.
const (
	CriterionGini     = "gini"
	CriterionEntropy  = "entropy"
	CriterionVariance = "variance"
)

// DecisionTreeOptions configures the CART trainers. The root sits at depth 0.
type DecisionTreeOptions struct {
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	Criterion       string `json:"criterion"`

	Logger *zap.Logger `json:"-"`
}

func DefaultDecisionTreeOptions() DecisionTreeOptions {
	return DecisionTreeOptions{MaxDepth: 5, MinSamplesSplit: 2, Criterion: CriterionGini}
}

func (o DecisionTreeOptions) withDefaults(regression bool) (DecisionTreeOptions, error) {
	d := DefaultDecisionTreeOptions()
	if o.MaxDepth == 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MinSamplesSplit == 0 {
		o.MinSamplesSplit = d.MinSamplesSplit
	}
	if o.MaxDepth < 0 || o.MinSamplesSplit < 0 {
		return o, fmt.Errorf("decision tree: %w", ErrInvalidOption)
	}
	switch {
	case regression && (o.Criterion == "" || o.Criterion == CriterionVariance):
		o.Criterion = CriterionVariance
	case !regression && o.Criterion == "":
		o.Criterion = d.Criterion
	case !regression && (o.Criterion == CriterionGini || o.Criterion == CriterionEntropy):
	default:
		return o, fmt.Errorf("decision tree criterion %q: %w", o.Criterion, ErrInvalidOption)
	}
	return o, nil
}

// DecisionTreeClassifier returns a Trainer for TrainDecisionTreeClassifier.
func DecisionTreeClassifier(opts DecisionTreeOptions) Trainer {
	return TrainerFunc(func(_ context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainDecisionTreeClassifier(X, y, opts)
	})
}

// DecisionTreeRegressor returns a Trainer for TrainDecisionTreeRegressor.
func DecisionTreeRegressor(opts DecisionTreeOptions) Trainer {
	return TrainerFunc(func(_ context.Context, X [][]float64, y []float64) (Model, error) {
		return TrainDecisionTreeRegressor(X, y, opts)
	})
}

// Node is either a leaf carrying a prediction or a split routing
// x[Feature] <= Threshold to Left and everything else to Right.
type Node struct {
	Leaf       bool    `json:"leaf"`
	Prediction float64 `json:"prediction"`
	N          int     `json:"n"`
	// Distribution holds leaf class proportions aligned with the owning
	// model's Classes. Regression leaves leave it empty.
	Distribution []float64 `json:"distribution,omitempty"`

	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

type leafJSON struct {
	Leaf         bool      `json:"leaf"`
	Prediction   float64   `json:"prediction"`
	N            int       `json:"n"`
	Distribution []float64 `json:"distribution,omitempty"`
}

type splitJSON struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	N         int     `json:"n"`
	Left      *Node   `json:"left"`
	Right     *Node   `json:"right"`
}

// MarshalJSON writes only the fields that belong to the node's variant.
func (nd Node) MarshalJSON() ([]byte, error) {
	if nd.Leaf {
		return json.Marshal(leafJSON{Leaf: true, Prediction: nd.Prediction, N: nd.N, Distribution: nd.Distribution})
	}
	return json.Marshal(splitJSON{Feature: nd.Feature, Threshold: nd.Threshold, N: nd.N, Left: nd.Left, Right: nd.Right})
}

func (nd *Node) valid(p int) bool {
	if nd == nil {
		return false
	}
	if nd.Leaf {
		return true
	}
	return nd.Feature >= 0 && nd.Feature < p && nd.Left.valid(p) && nd.Right.valid(p)
}

func (nd *Node) route(x []float64) *Node {
	for !nd.Leaf {
		if x[nd.Feature] <= nd.Threshold {
			nd = nd.Left
		} else {
			nd = nd.Right
		}
	}
	return nd
}

// Leaves returns the leaves below nd from left to right.
func (nd *Node) Leaves() []*Node {
	if nd == nil {
		return nil
	}
	if nd.Leaf {
		return []*Node{nd}
	}
	return append(nd.Left.Leaves(), nd.Right.Leaves()...)
}

// Depth is the length of the longest root to leaf path.
func (nd *Node) Depth() int {
	if nd == nil || nd.Leaf {
		return 0
	}
	return 1 + max(nd.Left.Depth(), nd.Right.Depth())
}

// DecisionTree is a trained CART classifier or regressor.
type DecisionTree struct {
	Type       Kind      `json:"type"`
	Tree       *Node     `json:"tree"`
	MaxDepth   int       `json:"max_depth"`
	MinSamples int       `json:"min_samples"`
	Criterion  string    `json:"criterion,omitempty"`
	Classes    []float64 `json:"classes,omitempty"`
	N          int       `json:"n"`
	P          int       `json:"p"`
}

func (m *DecisionTree) Kind() Kind {
	if m == nil {
		return ""
	}
	return m.Type
}
func (*DecisionTree) isModel() {}

// TrainDecisionTreeClassifier grows a tree minimising weighted child Gini
// impurity or entropy.
func TrainDecisionTreeClassifier(X [][]float64, y []float64, opts DecisionTreeOptions) (*DecisionTree, error) {
	return trainTree(KindDecisionTreeClassifier, X, y, opts)
}

// TrainDecisionTreeRegressor grows a tree minimising weighted child variance.
func TrainDecisionTreeRegressor(X [][]float64, y []float64, opts DecisionTreeOptions) (*DecisionTree, error) {
	return trainTree(KindDecisionTreeRegressor, X, y, opts)
}

func trainTree(kind Kind, X [][]float64, y []float64, opts DecisionTreeOptions) (*DecisionTree, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	regression := kind == KindDecisionTreeRegressor
	o, err := opts.withDefaults(regression)
	if err != nil {
		return nil, err
	}
	b := newTreeBuilder(X, y, o, regression, nil)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	m := &DecisionTree{
		Type:       kind,
		Tree:       b.build(idx, 0),
		MaxDepth:   o.MaxDepth,
		MinSamples: o.MinSamplesSplit,
		Criterion:  o.Criterion,
		Classes:    b.classes,
		N:          n,
		P:          p,
	}
	nopIfNil(o.Logger).Debug("decision tree trained",
		zap.String("type", string(kind)), zap.Int("n", n), zap.Int("leaves", len(m.Tree.Leaves())), zap.Int("depth", m.Tree.Depth()))
	return m, nil
}

type treeBuilder struct {
	X          [][]float64
	y          []float64
	maxDepth   int
	minSplit   int
	criterion  string
	regression bool
	classes    []float64
	classIdx   map[float64]int
}

// newTreeBuilder prepares a builder. classes fixes the class order of leaf
// distributions; nil derives it from y.
func newTreeBuilder(X [][]float64, y []float64, o DecisionTreeOptions, regression bool, classes []float64) *treeBuilder {
	b := &treeBuilder{
		X:          X,
		y:          y,
		maxDepth:   o.MaxDepth,
		minSplit:   o.MinSamplesSplit,
		criterion:  o.Criterion,
		regression: regression,
	}
	if !regression {
		if classes == nil {
			classes = Labels(y)
		}
		b.classes = classes
		b.classIdx = make(map[float64]int, len(classes))
		for i, c := range classes {
			b.classIdx[c] = i
		}
	}
	return b
}

type splitResult struct {
	score     float64
	feature   int
	threshold float64
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	if depth >= b.maxDepth || len(idx) < b.minSplit || b.pure(idx) {
		return b.leaf(idx)
	}

	p := len(b.X[idx[0]])
	results := make([]splitResult, p)
	var wg sync.WaitGroup
	for f := 0; f < p; f++ {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			results[f] = b.bestSplitForFeature(idx, f)
		}(f)
	}
	wg.Wait()

	best := splitResult{score: math.Inf(1), feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.score < best.score {
			best = r
		}
	}
	if best.feature < 0 {
		return b.leaf(idx)
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return b.leaf(idx)
	}
	return &Node{
		N:         len(idx),
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) pure(idx []int) bool {
	for _, i := range idx[1:] {
		if b.y[i] != b.y[idx[0]] {
			return false
		}
	}
	return true
}

// leaf predicts the majority class, ties going to the label met first, or
// the mean target.
func (b *treeBuilder) leaf(idx []int) *Node {
	nd := &Node{Leaf: true, N: len(idx)}
	if b.regression {
		s := 0.0
		for _, i := range idx {
			s += b.y[i]
		}
		nd.Prediction = s / float64(len(idx))
		return nd
	}
	counts := make([]int, len(b.classes))
	var order []int
	for _, i := range idx {
		c := b.classIdx[b.y[i]]
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	nd.Prediction = b.classes[best]
	nd.Distribution = make([]float64, len(counts))
	for c, k := range counts {
		nd.Distribution[c] = float64(k) / float64(len(idx))
	}
	return nd
}

// bestSplitForFeature sweeps the midpoints between successive distinct
// values of feature f and keeps the first threshold with the lowest
// weighted child impurity.
func (b *treeBuilder) bestSplitForFeature(idx []int, f int) splitResult {
	res := splitResult{score: math.Inf(1), feature: -1}
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, c int) bool { return b.X[order[a]][f] < b.X[order[c]][f] })

	n := len(order)
	var left, right impurityAcc
	if b.regression {
		left, right = &varianceAcc{}, &varianceAcc{}
	} else {
		left = &classAcc{counts: make([]float64, len(b.classes)), entropy: b.criterion == CriterionEntropy}
		right = &classAcc{counts: make([]float64, len(b.classes)), entropy: b.criterion == CriterionEntropy}
	}
	for _, i := range order {
		right.add(b.value(i), 1)
	}
	for k := 0; k < n-1; k++ {
		v := b.value(order[k])
		left.add(v, 1)
		right.add(v, -1)
		cur, next := b.X[order[k]][f], b.X[order[k+1]][f]
		if cur == next {
			continue
		}
		nl, nr := float64(k+1), float64(n-k-1)
		score := (nl*left.impurity() + nr*right.impurity()) / float64(n)
		if score < res.score {
			res = splitResult{score: score, feature: f, threshold: midpoint(cur, next)}
		}
	}
	return res
}

// midpoint lies in [lo, hi) for finite lo < hi without overflowing.
func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if math.IsInf(m, 0) {
		m = lo/2 + hi/2
	}
	if m >= hi {
		return lo
	}
	return m
}

// value is the regression target, or the class index for classification.
func (b *treeBuilder) value(i int) float64 {
	if b.regression {
		return b.y[i]
	}
	return float64(b.classIdx[b.y[i]])
}

type impurityAcc interface {
	add(v, w float64)
	impurity() float64
}

type classAcc struct {
	counts  []float64
	total   float64
	entropy bool
}

func (a *classAcc) add(v, w float64) {
	a.counts[int(v)] += w
	a.total += w
}

func (a *classAcc) impurity() float64 {
	if a.total <= 0 {
		return 0
	}
	if a.entropy {
		return entropyFromCounts(a.counts, a.total)
	}
	return giniFromCounts(a.counts, a.total)
}

type varianceAcc struct {
	n, sum, sumSq float64
}

func (a *varianceAcc) add(v, w float64) {
	a.n += w
	a.sum += w * v
	a.sumSq += w * v * v
}

// impurity is the population variance of the accumulated targets.
func (a *varianceAcc) impurity() float64 {
	if a.n <= 0 {
		return 0
	}
	m := a.sum / a.n
	return math.Max(a.sumSq/a.n-m*m, 0)
}

func giniFromCounts(counts []float64, total float64) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

func entropyFromCounts(counts []float64, total float64) float64 {
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

func (m *DecisionTree) valid() bool {
	if m.Type != KindDecisionTreeClassifier && m.Type != KindDecisionTreeRegressor {
		return false
	}
	return m.Tree.valid(m.P)
}

// Predict routes every row to a leaf and returns its prediction.
func (m *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Tree.route(x).Prediction
	}
	return out, nil
}

// PredictProba returns leaf class proportions aligned with Classes.
func (m *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	if !m.valid() || m.Type != KindDecisionTreeClassifier || len(m.Classes) == 0 {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = leafProba(m.Tree.route(x), m.Classes)
	}
	return out, nil
}

// leafProba falls back to a one-hot vector for leaves stored without a
// distribution.
func leafProba(leaf *Node, classes []float64) []float64 {
	if len(leaf.Distribution) == len(classes) {
		return append([]float64(nil), leaf.Distribution...)
	}
	out := make([]float64, len(classes))
	for c, v := range classes {
		if v == leaf.Prediction {
			out[c] = 1
		}
	}
	return out
}
