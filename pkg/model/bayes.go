package model

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// Naive Bayes variants.
const (
	NaiveBayesGaussian    = "gaussian"
	NaiveBayesMultinomial = "multinomial"
	NaiveBayesBernoulli   = "bernoulli"
)

// varianceFloor keeps Gaussian likelihoods finite on constant features.
const varianceFloor = 1e-9

type NaiveBayesOptions struct {
	Variant string `json:"variant"`
	// Alpha is the Laplace smoothing of the discrete variants.
	Alpha float64 `json:"alpha"`
	// Binarize is the Bernoulli threshold: x > Binarize counts as 1.
	Binarize float64 `json:"binarize"`

	Logger *zap.Logger `json:"-"`
}

func DefaultNaiveBayesOptions() NaiveBayesOptions {
	return NaiveBayesOptions{Variant: NaiveBayesGaussian, Alpha: 1}
}

// Train implements Trainer.
func (o NaiveBayesOptions) Train(_ context.Context, X [][]float64, y []float64) (Model, error) {
	return TrainNaiveBayes(X, y, o)
}

// NaiveBayes stores per-class priors and either Gaussian feature statistics
// or smoothed feature probabilities. Map keys are the class labels
// formatted with strconv.FormatFloat(c, 'g', -1, 64).
type NaiveBayes struct {
	Type        Kind                 `json:"type"`
	Variant     string               `json:"variant"`
	Classes     []float64            `json:"classes"`
	Priors      []float64            `json:"priors"`
	Stats       map[string][]MeanStd `json:"stats,omitempty"`
	FeatureProb map[string][]float64 `json:"feature_prob,omitempty"`
	Alpha       float64              `json:"alpha,omitempty"`
	Binarize    float64              `json:"binarize,omitempty"`
	N           int                  `json:"n"`
	P           int                  `json:"p"`
}

func (*NaiveBayes) Kind() Kind { return KindNaiveBayes }
func (*NaiveBayes) isModel()   {}

func classKey(c float64) string { return strconv.FormatFloat(c, 'g', -1, 64) }

func TrainNaiveBayes(X [][]float64, y []float64, opts NaiveBayesOptions) (*NaiveBayes, error) {
	n, p, err := checkXY(X, y)
	if err != nil {
		return nil, err
	}
	if opts.Variant == "" {
		opts.Variant = NaiveBayesGaussian
	}
	if opts.Alpha == 0 {
		opts.Alpha = 1
	}
	if opts.Alpha < 0 {
		return nil, fmt.Errorf("naive bayes alpha %g: %w", opts.Alpha, ErrInvalidOption)
	}

	m := &NaiveBayes{Type: KindNaiveBayes, Variant: opts.Variant, Classes: Labels(y), N: n, P: p}
	rows := make(map[float64][]int, len(m.Classes))
	for i, v := range y {
		rows[v] = append(rows[v], i)
	}
	m.Priors = make([]float64, len(m.Classes))
	for c, label := range m.Classes {
		m.Priors[c] = float64(len(rows[label])) / float64(n)
	}

	switch opts.Variant {
	case NaiveBayesGaussian:
		m.Stats = make(map[string][]MeanStd, len(m.Classes))
		for _, label := range m.Classes {
			m.Stats[classKey(label)] = gaussianStats(X, rows[label], p)
		}
	case NaiveBayesMultinomial:
		for i, row := range X {
			for j, v := range row {
				if v < 0 {
					return nil, fmt.Errorf("multinomial naive bayes: X[%d][%d] = %g is negative: %w", i, j, v, ErrInvalidOption)
				}
			}
		}
		m.Alpha = opts.Alpha
		m.FeatureProb = make(map[string][]float64, len(m.Classes))
		for _, label := range m.Classes {
			counts := make([]float64, p)
			total := 0.0
			for _, i := range rows[label] {
				for j, v := range X[i] {
					counts[j] += v
					total += v
				}
			}
			for j := range counts {
				counts[j] = (counts[j] + opts.Alpha) / (total + opts.Alpha*float64(p))
			}
			m.FeatureProb[classKey(label)] = counts
		}
	case NaiveBayesBernoulli:
		m.Alpha, m.Binarize = opts.Alpha, opts.Binarize
		m.FeatureProb = make(map[string][]float64, len(m.Classes))
		for _, label := range m.Classes {
			on := make([]float64, p)
			for _, i := range rows[label] {
				for j, v := range X[i] {
					if v > opts.Binarize {
						on[j]++
					}
				}
			}
			nc := float64(len(rows[label]))
			for j := range on {
				on[j] = (on[j] + opts.Alpha) / (nc + 2*opts.Alpha)
			}
			m.FeatureProb[classKey(label)] = on
		}
	default:
		return nil, fmt.Errorf("naive bayes variant %q: %w", opts.Variant, ErrInvalidOption)
	}
	nopIfNil(opts.Logger).Debug("naive bayes trained",
		zap.String("variant", m.Variant), zap.Int("classes", len(m.Classes)), zap.Int("n", n))
	return m, nil
}

// gaussianStats returns the per-feature mean and population std of the
// given rows, the variance floored at varianceFloor.
func gaussianStats(X [][]float64, rows []int, p int) []MeanStd {
	out := make([]MeanStd, p)
	nc := float64(len(rows))
	for j := 0; j < p; j++ {
		mean := 0.0
		for _, i := range rows {
			mean += X[i][j]
		}
		mean /= nc
		v := 0.0
		for _, i := range rows {
			d := X[i][j] - mean
			v += d * d
		}
		out[j] = MeanStd{Mean: mean, Std: math.Sqrt(math.Max(v/nc, varianceFloor))}
	}
	return out
}

func (m *NaiveBayes) valid() bool {
	if len(m.Classes) == 0 || len(m.Priors) != len(m.Classes) {
		return false
	}
	for _, c := range m.Classes {
		switch m.Variant {
		case NaiveBayesGaussian:
			if len(m.Stats[classKey(c)]) != m.P {
				return false
			}
		case NaiveBayesMultinomial, NaiveBayesBernoulli:
			if len(m.FeatureProb[classKey(c)]) != m.P {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// logPosterior returns log P(c) + log P(x|c) for every class, up to a
// shared constant.
func (m *NaiveBayes) logPosterior(x []float64) []float64 {
	out := make([]float64, len(m.Classes))
	for c, label := range m.Classes {
		lp := math.Log(m.Priors[c])
		key := classKey(label)
		switch m.Variant {
		case NaiveBayesGaussian:
			for j, st := range m.Stats[key] {
				v := math.Max(st.Std*st.Std, varianceFloor)
				d := x[j] - st.Mean
				lp += -0.5*math.Log(2*math.Pi*v) - d*d/(2*v)
			}
		case NaiveBayesMultinomial:
			for j, theta := range m.FeatureProb[key] {
				lp += x[j] * math.Log(theta)
			}
		case NaiveBayesBernoulli:
			for j, theta := range m.FeatureProb[key] {
				if x[j] > m.Binarize {
					lp += math.Log(theta)
				} else {
					lp += math.Log1p(-theta)
				}
			}
		}
		out[c] = lp
	}
	return out
}

// Predict returns the class with the highest posterior; ties go to the
// smaller label.
func (m *NaiveBayes) Predict(X [][]float64) ([]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, x := range X {
		lp := m.logPosterior(x)
		best := 0
		for c := range lp {
			if lp[c] > lp[best] {
				best = c
			}
		}
		out[i] = m.Classes[best]
	}
	return out, nil
}

// PredictProba normalises the posteriors with a max-shifted softmax. Columns
// follow Classes.
func (m *NaiveBayes) PredictProba(X [][]float64) ([][]float64, error) {
	if !m.valid() {
		return nil, ErrInvalidModel
	}
	if err := checkWidth(X, m.P); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		lp := m.logPosterior(x)
		hi := math.Inf(-1)
		for _, v := range lp {
			hi = math.Max(hi, v)
		}
		s := 0.0
		for c, v := range lp {
			lp[c] = math.Exp(v - hi)
			s += lp[c]
		}
		for c := range lp {
			lp[c] /= s
		}
		out[i] = lp
	}
	return out, nil
}
