package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format selects the wire encoding used by Encode and Decode.
type Format string

const (
	// FormatJSON is the model's JSON object with a format_version field.
	FormatJSON Format = "json"
	// FormatGob is an encoding/gob envelope.
	FormatGob Format = "gob"
	// FormatProto is the JSON object carried as a protobuf Struct.
	FormatProto Format = "proto"
)

// FormatVersion is written into every encoded model. Decode accepts any
// 1.x version, and JSON without a version.
const FormatVersion = "1.0.0"

var compatibleVersions = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

func init() {
	gob.Register(&LinearRegression{})
	gob.Register(&LogisticRegression{})
	gob.Register(&KNN{})
	gob.Register(&DecisionTree{})
	gob.Register(&RandomForest{})
	gob.Register(&NaiveBayes{})
	gob.Register(&StandardScaler{})
	gob.Register(&MinMaxScaler{})
	gob.Register(&PCA{})
	gob.Register(&KMeans{})
}

type gobEnvelope struct {
	FormatVersion string
	Model         Model
}

// Encode serialises m. Decoding the result yields a model that predicts
// identically.
func Encode(m Model, f Format) ([]byte, error) {
	if m == nil || m.Kind() == "" {
		return nil, ErrInvalidModel
	}
	switch f {
	case FormatJSON, "":
		fields, err := jsonFields(m)
		if err != nil {
			return nil, err
		}
		fields["format_version"] = json.RawMessage(`"` + FormatVersion + `"`)
		return json.Marshal(fields)
	case FormatGob:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(gobEnvelope{FormatVersion: FormatVersion, Model: m}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatProto:
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		if fields == nil {
			return nil, ErrInvalidModel
		}
		fields["format_version"] = FormatVersion
		s, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, err
		}
		return proto.Marshal(s)
	}
	return nil, fmt.Errorf("format %q: %w", f, ErrInvalidOption)
}

func jsonFields(m Model) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, ErrInvalidModel
	}
	return fields, nil
}

// Decode is the inverse of Encode. Unknown tags, malformed payloads and
// incompatible format versions are ErrInvalidModelText.
func Decode(data []byte, f Format) (Model, error) {
	switch f {
	case FormatJSON, "":
		return decodeJSON(data)
	case FormatGob:
		var env gobEnvelope
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModelText, err)
		}
		if err := checkVersion(env.FormatVersion); err != nil {
			return nil, err
		}
		if env.Model == nil || newModel(env.Model.Kind()) == nil {
			return nil, ErrInvalidModelText
		}
		return env.Model, nil
	case FormatProto:
		var s structpb.Struct
		if err := proto.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModelText, err)
		}
		raw, err := json.Marshal(s.AsMap())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModelText, err)
		}
		return decodeJSON(raw)
	}
	return nil, fmt.Errorf("format %q: %w", f, ErrInvalidOption)
}

func decodeJSON(data []byte) (Model, error) {
	var head struct {
		Type          Kind   `json:"type"`
		FormatVersion string `json:"format_version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelText, err)
	}
	if head.FormatVersion != "" {
		if err := checkVersion(head.FormatVersion); err != nil {
			return nil, err
		}
	}
	m := newModel(head.Type)
	if m == nil {
		return nil, fmt.Errorf("type %q: %w", head.Type, ErrInvalidModelText)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelText, err)
	}
	return m, nil
}

func checkVersion(v string) error {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("format version %q: %w", v, ErrInvalidModelText)
	}
	if !compatibleVersions.Check(sv) {
		return fmt.Errorf("format version %s not in %s: %w", sv, compatibleVersions, ErrInvalidModelText)
	}
	return nil
}

// newModel returns an empty value for tag k, or nil for an unknown tag.
func newModel(k Kind) Model {
	switch k {
	case KindLinearRegression:
		return &LinearRegression{}
	case KindLogisticRegression:
		return &LogisticRegression{}
	case KindKNNClassifier, KindKNNRegressor:
		return &KNN{}
	case KindDecisionTreeClassifier, KindDecisionTreeRegressor:
		return &DecisionTree{}
	case KindRandomForestClassifier, KindRandomForestRegressor:
		return &RandomForest{}
	case KindNaiveBayes:
		return &NaiveBayes{}
	case KindStandardScaler:
		return &StandardScaler{}
	case KindMinMaxScaler:
		return &MinMaxScaler{}
	case KindPCA:
		return &PCA{}
	case KindKMeans:
		return &KMeans{}
	}
	return nil
}
