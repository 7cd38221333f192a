package model

import (
	"statml/pkg/result"
)

// Predict runs the predictor matching m's tag. Scalers and PCA are
// transforms, not predictors, and are rejected with ErrInvalidModel, as is a
// value whose Type field disagrees with its Go type.
func Predict(m Model, X [][]float64) (result.Prediction, error) {
	vals, err := predictValues(m, X)
	if err != nil {
		return result.Prediction{}, err
	}
	return result.Prediction{Type: result.TypePrediction, Model: string(m.Kind()), Values: vals}, nil
}

func predictValues(m Model, X [][]float64) ([]float64, error) {
	switch v := m.(type) {
	case *LinearRegression:
		if v == nil || v.Type != KindLinearRegression {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *LogisticRegression:
		if v == nil || v.Type != KindLogisticRegression {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *KNN:
		if v == nil {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *DecisionTree:
		if v == nil {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *RandomForest:
		if v == nil {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *NaiveBayes:
		if v == nil || v.Type != KindNaiveBayes {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	case *KMeans:
		if v == nil || v.Type != KindKMeans {
			return nil, ErrInvalidModel
		}
		return v.Predict(X)
	}
	return nil, ErrInvalidModel
}

// PredictProba is Predict plus per-class probabilities. Logistic regression
// rows are [P(0), P(1)]; the other classifiers follow their Classes field.
func PredictProba(m Model, X [][]float64) (result.Prediction, error) {
	var proba [][]float64
	switch v := m.(type) {
	case *LogisticRegression:
		if v == nil || v.Type != KindLogisticRegression {
			return result.Prediction{}, ErrInvalidModel
		}
		p1, err := v.PredictProba(X)
		if err != nil {
			return result.Prediction{}, err
		}
		proba = make([][]float64, len(p1))
		for i, p := range p1 {
			proba[i] = []float64{1 - p, p}
		}
	case *DecisionTree:
		if v == nil {
			return result.Prediction{}, ErrInvalidModel
		}
		p, err := v.PredictProba(X)
		if err != nil {
			return result.Prediction{}, err
		}
		proba = p
	case *RandomForest:
		if v == nil {
			return result.Prediction{}, ErrInvalidModel
		}
		p, err := v.PredictProba(X)
		if err != nil {
			return result.Prediction{}, err
		}
		proba = p
	case *NaiveBayes:
		if v == nil || v.Type != KindNaiveBayes {
			return result.Prediction{}, ErrInvalidModel
		}
		p, err := v.PredictProba(X)
		if err != nil {
			return result.Prediction{}, err
		}
		proba = p
	default:
		return result.Prediction{}, ErrInvalidModel
	}
	pred, err := Predict(m, X)
	if err != nil {
		return result.Prediction{}, err
	}
	pred.Probabilities = proba
	return pred, nil
}
