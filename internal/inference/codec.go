package inference

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v2"

	"github.com/Skufu/heartrisk/internal/artifacts"
)

const (
	ScalerStandard               = "standard"
	ScalerMinMax                 = "minmax"
	ClassifierLogisticRegression = "logistic_regression"
)

// ScalerDocument is the serialised form of a fitted scaler.
type ScalerDocument struct {
	Kind         string    `json:"kind" yaml:"kind" msgpack:"kind"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names" msgpack:"feature_names"`
	Mean         []float64 `json:"mean,omitempty" yaml:"mean,omitempty" msgpack:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty" yaml:"scale,omitempty" msgpack:"scale,omitempty"`
	DataMin      []float64 `json:"data_min,omitempty" yaml:"data_min,omitempty" msgpack:"data_min,omitempty"`
	DataMax      []float64 `json:"data_max,omitempty" yaml:"data_max,omitempty" msgpack:"data_max,omitempty"`
	FeatureRange []float64 `json:"feature_range,omitempty" yaml:"feature_range,omitempty" msgpack:"feature_range,omitempty"`
}

// ClassifierDocument is the serialised form of a fitted classifier.
type ClassifierDocument struct {
	Kind         string    `json:"kind" yaml:"kind" msgpack:"kind"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names" msgpack:"feature_names"`
	Coef         []float64 `json:"coef" yaml:"coef" msgpack:"coef"`
	Intercept    float64   `json:"intercept" yaml:"intercept" msgpack:"intercept"`
	Classes      []int     `json:"classes" yaml:"classes" msgpack:"classes"`
	Threshold    float64   `json:"threshold,omitempty" yaml:"threshold,omitempty" msgpack:"threshold,omitempty"`
}

func unmarshal(format artifacts.Format, data []byte, v any) error {
	switch format {
	case artifacts.FormatJSON:
		return json.Unmarshal(data, v)
	case artifacts.FormatYAML:
		return yaml.Unmarshal(data, v)
	case artifacts.FormatMsgpack:
		return msgpack.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", artifacts.ErrUnknownFormat, format)
	}
}

// Marshal serialises an artifact document in the given format.
func Marshal(format artifacts.Format, v any) ([]byte, error) {
	switch format {
	case artifacts.FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case artifacts.FormatYAML:
		return yaml.Marshal(v)
	case artifacts.FormatMsgpack:
		return msgpack.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", artifacts.ErrUnknownFormat, format)
	}
}

// DecodeScaler builds a scaler from an artifact blob.
func DecodeScaler(blob artifacts.Blob) (Scaler, error) {
	var doc ScalerDocument
	if err := unmarshal(blob.Format, blob.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	return doc.Build()
}

func (d ScalerDocument) Build() (Scaler, error) {
	switch d.Kind {
	case ScalerStandard:
		return NewStandardScaler(d.FeatureNames, d.Mean, d.Scale)
	case ScalerMinMax:
		featureRange := [2]float64{0, 1}
		if len(d.FeatureRange) != 0 {
			if len(d.FeatureRange) != 2 {
				return nil, fmt.Errorf("minmax scaler: feature_range needs 2 values, got %d", len(d.FeatureRange))
			}
			featureRange = [2]float64{d.FeatureRange[0], d.FeatureRange[1]}
		}
		return NewMinMaxScaler(d.FeatureNames, d.DataMin, d.DataMax, featureRange)
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", d.Kind)
	}
}

// DecodeClassifier builds a classifier from an artifact blob.
func DecodeClassifier(blob artifacts.Blob) (Classifier, error) {
	var doc ClassifierDocument
	if err := unmarshal(blob.Format, blob.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode classifier: %w", err)
	}
	return doc.Build()
}

func (d ClassifierDocument) Build() (Classifier, error) {
	switch d.Kind {
	case ClassifierLogisticRegression:
		if len(d.Classes) != 2 || d.Classes[0] != 0 || d.Classes[1] != 1 {
			return nil, fmt.Errorf("logistic regression: classes must be [0 1], got %v", d.Classes)
		}
		return NewLogisticRegression(d.FeatureNames, d.Coef, d.Intercept, d.Threshold)
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", d.Kind)
	}
}
