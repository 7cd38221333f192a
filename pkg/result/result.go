// Package result holds the tagged values returned by every statml operation.
// Each value carries a Type discriminator so consumers can dispatch on it
// without reflection. Values marshal to plain JSON; a Statistic writes a NaN
// or infinite value as null, while the other records need finite fields.
package result

import (
	"encoding/json"
	"math"
)

// Type is the discriminator carried in the "type" field of every value.
type Type string

const (
	TypeStatistic          Type = "statistic"
	TypeDistribution       Type = "distribution"
	TypeHypothesisTest     Type = "hypothesis_test"
	TypeConfidenceInterval Type = "confidence_interval"
	TypePrediction         Type = "prediction"
	TypeMetric             Type = "metric"
	TypeSplit              Type = "split"
	TypeScaledData         Type = "scaled_data"
	TypeOutlierDetection   Type = "outlier_detection"
	TypeTimeSeries         Type = "time_series"
	TypeEnsemblePrediction Type = "ensemble_prediction"
	TypeCrossValidation    Type = "cross_validation"
	TypeFeatureImportance  Type = "feature_importance"
)

// Statistic is a single named scalar computed over n values.
type Statistic struct {
	Type  Type    `json:"type"`
	Name  string  `json:"name"`
	N     int     `json:"n"`
	Value float64 `json:"value"`
}

// MarshalJSON writes a non-finite Value as null.
func (s Statistic) MarshalJSON() ([]byte, error) {
	type plain Statistic
	out := struct {
		plain
		Value *float64 `json:"value"`
	}{plain: plain(s)}
	if !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0) {
		out.Value = &s.Value
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null value back as NaN.
func (s *Statistic) UnmarshalJSON(data []byte) error {
	type plain Statistic
	var in struct {
		plain
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Statistic(in.plain)
	s.Value = math.NaN()
	if in.Value != nil {
		s.Value = *in.Value
	}
	return nil
}

// NewStatistic builds a Statistic record.
func NewStatistic(name string, n int, value float64) Statistic {
	return Statistic{Type: TypeStatistic, Name: name, N: n, Value: value}
}

// Distribution is the evaluation of a PDF/PMF/CDF/PPF at a set of points.
// Params echoes the distribution parameters for round-trip inspection.
type Distribution struct {
	Type   Type               `json:"type"`
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
	X      []float64          `json:"x"`
	Values []float64          `json:"values"`
}

// HypothesisTest is the outcome of a statistical test. DF2 is only set for
// F-distributed statistics. Extra holds test specific quantities
// (group means, U1/U2, W+/W-, ...).
type HypothesisTest struct {
	Type      Type               `json:"type"`
	Name      string             `json:"name"`
	Statistic float64            `json:"statistic"`
	DF        float64            `json:"df,omitempty"`
	DF2       float64            `json:"df2,omitempty"`
	PValue    float64            `json:"p_value"`
	Note      string             `json:"note,omitempty"`
	Extra     map[string]float64 `json:"extra,omitempty"`
}

// Significant reports whether the p-value is below alpha.
func (h HypothesisTest) Significant(alpha float64) bool { return h.PValue < alpha }

// ConfidenceInterval is a two-sided interval estimate for Parameter.
type ConfidenceInterval struct {
	Type       Type    `json:"type"`
	Parameter  string  `json:"parameter"`
	Method     string  `json:"method,omitempty"`
	Confidence float64 `json:"confidence"`
	Estimate   float64 `json:"estimate"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Margin     float64 `json:"margin"`
	N          int     `json:"n"`
}

// Contains reports whether v lies within [Lower, Upper].
func (c ConfidenceInterval) Contains(v float64) bool { return v >= c.Lower && v <= c.Upper }

// Prediction wraps the output of a predictor.
type Prediction struct {
	Type          Type        `json:"type"`
	Model         string      `json:"model"`
	Values        []float64   `json:"values"`
	Probabilities [][]float64 `json:"probabilities,omitempty"`
}

// Metric is a named evaluation score together with its components.
type Metric struct {
	Type    Type               `json:"type"`
	Name    string             `json:"name"`
	Value   float64            `json:"value"`
	Average string             `json:"average,omitempty"`
	Details map[string]float64 `json:"details,omitempty"`
}

// Split lists the row indices assigned to each side of a train/test split.
type Split struct {
	Type      Type  `json:"type"`
	Train     []int `json:"train"`
	Test      []int `json:"test"`
	TrainSize int   `json:"train_size"`
	TestSize  int   `json:"test_size"`
	Seed      int   `json:"seed"`
}

// ScaledData is a transformed matrix along with the scaler tag that produced it.
type ScaledData struct {
	Type   Type        `json:"type"`
	Scaler string      `json:"scaler"`
	Data   [][]float64 `json:"data"`
}

// OutlierDetection lists the positions flagged by an outlier rule.
type OutlierDetection struct {
	Type    Type      `json:"type"`
	Method  string    `json:"method"`
	Lower   float64   `json:"lower"`
	Upper   float64   `json:"upper"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
	N       int       `json:"n"`
}

// TimeSeries is a derived series such as a moving average.
type TimeSeries struct {
	Type   Type               `json:"type"`
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params,omitempty"`
	Values []float64          `json:"values"`
}

// EnsemblePrediction is the aggregate of several model predictions.
type EnsemblePrediction struct {
	Type    Type        `json:"type"`
	Method  string      `json:"method"`
	NModels int         `json:"n_models"`
	Values  []float64   `json:"values"`
	ByModel [][]float64 `json:"by_model,omitempty"`
}

// CrossValidation summarises k-fold scores.
type CrossValidation struct {
	Type      Type      `json:"type"`
	Model     string    `json:"model"`
	Metric    string    `json:"metric"`
	KFolds    int       `json:"k_folds"`
	Scores    []float64 `json:"scores"`
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	Normalize bool      `json:"normalize"`
}

// FeatureImportance is a probability distribution over feature indices.
type FeatureImportance struct {
	Type        Type      `json:"type"`
	Model       string    `json:"model"`
	Importances []float64 `json:"importances"`
	Ranking     []int     `json:"ranking"`
}

// Error is the inspectable error value handed to callers that consume the
// JSON shape instead of Go errors.
type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Failure converts err into an Error value tagged with typ.
func Failure(typ string, err error) Error {
	if err == nil {
		return Error{Type: typ}
	}
	return Error{Type: typ, Error: err.Error()}
}
