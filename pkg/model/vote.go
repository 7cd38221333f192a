package model

import (
	"fmt"

	"statml/pkg/result"
)

// Ensemble aggregation methods.
const (
	VoteHard = "hard"
	VoteMean = "mean"
)

// Vote combines the predictions of several models on X. Classifiers are
// combined by hard voting, the label met first winning ties in model order;
// regressors by the arithmetic mean. Mixing the two, or passing a model that
// is neither, is ErrInvalidModel.
func Vote(models []Model, X [][]float64) (result.EnsemblePrediction, error) {
	if len(models) == 0 {
		return result.EnsemblePrediction{}, ErrEmpty
	}
	method := ""
	for i, m := range models {
		if m == nil {
			return result.EnsemblePrediction{}, fmt.Errorf("model %d is nil: %w", i, ErrInvalidModel)
		}
		var mm string
		switch k := m.Kind(); {
		case k.Classifier():
			mm = VoteHard
		case k.Regressor():
			mm = VoteMean
		default:
			return result.EnsemblePrediction{}, fmt.Errorf("model %d (%s) cannot vote: %w", i, k, ErrInvalidModel)
		}
		if method != "" && mm != method {
			return result.EnsemblePrediction{}, fmt.Errorf("classifiers and regressors mixed: %w", ErrInvalidModel)
		}
		method = mm
	}

	byModel := make([][]float64, len(models))
	for i, m := range models {
		p, err := Predict(m, X)
		if err != nil {
			return result.EnsemblePrediction{}, fmt.Errorf("model %d: %w", i, err)
		}
		byModel[i] = p.Values
	}

	out := make([]float64, len(X))
	col := make([]float64, len(models))
	for r := range out {
		for i := range models {
			col[i] = byModel[i][r]
		}
		if method == VoteMean {
			s := 0.0
			for _, v := range col {
				s += v
			}
			out[r] = s / float64(len(col))
		} else {
			out[r] = firstMode(col)
		}
	}
	return result.EnsemblePrediction{
		Type:    result.TypeEnsemblePrediction,
		Method:  method,
		NModels: len(models),
		Values:  out,
		ByModel: byModel,
	}, nil
}

// firstMode returns the most frequent value; among equally frequent values
// the one appearing first wins.
func firstMode(v []float64) float64 {
	counts := make(map[float64]int, len(v))
	best, bestCount := v[0], 0
	for _, x := range v {
		counts[x]++
	}
	for _, x := range v {
		if counts[x] > bestCount {
			best, bestCount = x, counts[x]
		}
	}
	return best
}
