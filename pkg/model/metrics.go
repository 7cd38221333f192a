package model

import (
	"fmt"
	"math"
	"sort"

	"statml/pkg/result"
)

// Averaging modes for ClassificationMetrics.
const (
	AverageBinary   = "binary"
	AverageMacro    = "macro"
	AverageWeighted = "weighted"
	AverageMicro    = "micro"
)

func MSE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

func MAE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / n
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is 1 − SSres/SStot against the mean of yTrue; 0 when yTrue is constant.
func R2(yTrue, yPred []float64) float64 {
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

func BinaryPredFromProba(proba []float64, threshold float64) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out
}

func checkPair(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return ErrEmpty
	}
	if len(yTrue) != len(yPred) {
		return &LengthError{Rows: len(yTrue), Targets: len(yPred)}
	}
	return nil
}

// RegressionMetrics reports MSE, RMSE, MAE and R². Value is R².
func RegressionMetrics(yTrue, yPred []float64) (result.Metric, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return result.Metric{}, err
	}
	r2 := R2(yTrue, yPred)
	return result.Metric{
		Type:  result.TypeMetric,
		Name:  "regression",
		Value: r2,
		Details: map[string]float64{
			"mse":  MSE(yTrue, yPred),
			"rmse": RMSE(yTrue, yPred),
			"mae":  MAE(yTrue, yPred),
			"r2":   r2,
		},
	}, nil
}

// Labels returns the sorted distinct values of the given label slices.
func Labels(ys ...[]float64) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, y := range ys {
		for _, v := range y {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Float64s(out)
	return out
}

// ConfusionMatrix counts (true, predicted) pairs; rows are true labels and
// columns predicted labels, both ordered as the returned labels.
func ConfusionMatrix(yTrue, yPred []float64) ([]float64, [][]int, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return nil, nil, err
	}
	labels := Labels(yTrue, yPred)
	pos := make(map[float64]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	cm := make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		cm[pos[yTrue[i]]][pos[yPred[i]]]++
	}
	return labels, cm, nil
}

type prf struct{ precision, recall, f1 float64 }

func scores(tp, fp, fn int) prf {
	var s prf
	if tp+fp > 0 {
		s.precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		s.recall = float64(tp) / float64(tp+fn)
	}
	if s.precision+s.recall > 0 {
		s.f1 = 2 * s.precision * s.recall / (s.precision + s.recall)
	}
	return s
}

// ClassificationMetrics reports accuracy, precision, recall and F1. The
// binary average treats label 1 as positive and also reports tp, fp, tn
// and fn; macro, weighted and micro average the per-class scores. An empty
// average picks binary for {0, 1} labels and macro otherwise. Value is
// accuracy.
func ClassificationMetrics(yTrue, yPred []float64, average string) (result.Metric, error) {
	labels, cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return result.Metric{}, err
	}
	binary := true
	for _, l := range labels {
		if l != 0 && l != 1 {
			binary = false
		}
	}
	if average == "" {
		average = AverageMacro
		if binary {
			average = AverageBinary
		}
	}
	n := len(yTrue)
	correct := 0
	for i := range cm {
		correct += cm[i][i]
	}
	acc := float64(correct) / float64(n)
	details := map[string]float64{"accuracy": acc}

	perClass := make([]prf, len(labels))
	support := make([]int, len(labels))
	tpAll, fpAll, fnAll := 0, 0, 0
	for k := range labels {
		tp, fp, fn := cm[k][k], 0, 0
		for j := range labels {
			if j != k {
				fp += cm[j][k]
				fn += cm[k][j]
			}
			support[k] += cm[k][j]
		}
		perClass[k] = scores(tp, fp, fn)
		tpAll, fpAll, fnAll = tpAll+tp, fpAll+fp, fnAll+fn
	}

	var s prf
	switch average {
	case AverageBinary:
		if !binary {
			return result.Metric{}, fmt.Errorf("binary average over %d labels: %w", len(labels), ErrNotBinary)
		}
		var tp, fp, fn, tn int
		for i := range yTrue {
			switch {
			case yTrue[i] == 1 && yPred[i] == 1:
				tp++
			case yTrue[i] == 0 && yPred[i] == 1:
				fp++
			case yTrue[i] == 1 && yPred[i] == 0:
				fn++
			default:
				tn++
			}
		}
		s = scores(tp, fp, fn)
		details["tp"], details["fp"], details["tn"], details["fn"] = float64(tp), float64(fp), float64(tn), float64(fn)
	case AverageMacro:
		for _, c := range perClass {
			s.precision += c.precision / float64(len(labels))
			s.recall += c.recall / float64(len(labels))
			s.f1 += c.f1 / float64(len(labels))
		}
	case AverageWeighted:
		for k, c := range perClass {
			w := float64(support[k]) / float64(n)
			s.precision += w * c.precision
			s.recall += w * c.recall
			s.f1 += w * c.f1
		}
	case AverageMicro:
		s = scores(tpAll, fpAll, fnAll)
	default:
		return result.Metric{}, fmt.Errorf("average %q: %w", average, ErrInvalidOption)
	}
	details["precision"], details["recall"], details["f1"] = s.precision, s.recall, s.f1
	return result.Metric{
		Type:    result.TypeMetric,
		Name:    "classification",
		Value:   acc,
		Average: average,
		Details: details,
	}, nil
}
