// Package inference applies the fitted scaler and classifier to an
// encoded feature vector.
package inference

import (
	"errors"
	"fmt"

	"github.com/Skufu/heartrisk/internal/features"
)

// ErrFeatureShapeMismatch means the vector's columns do not match what the
// artifacts were fitted on.
var ErrFeatureShapeMismatch = errors.New("feature shape mismatch")

// Risk is the human-facing class of a prediction.
type Risk string

const (
	RiskLow  Risk = "low"
	RiskHigh Risk = "high"
)

// Result is a hard label (0 low risk, 1 high risk) and the class 1
// probability.
type Result struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

func (r Result) Risk() Risk {
	if r.Label == 1 {
		return RiskHigh
	}
	return RiskLow
}

// Adapter is immutable once built and safe for concurrent use.
type Adapter struct {
	scaler     Scaler
	classifier Classifier
	names      []string
}

// NewAdapter pairs a scaler with a classifier fitted on the same columns.
func NewAdapter(scaler Scaler, classifier Classifier) (*Adapter, error) {
	if scaler == nil || classifier == nil {
		return nil, errors.New("adapter needs both a scaler and a classifier")
	}
	names := scaler.FeatureNames()
	if err := sameColumns(names, classifier.FeatureNames()); err != nil {
		return nil, fmt.Errorf("scaler and classifier disagree: %w", err)
	}
	return &Adapter{scaler: scaler, classifier: classifier, names: names}, nil
}

// FeatureNames returns the columns the artifacts expect, in order.
func (a *Adapter) FeatureNames() []string {
	return append([]string(nil), a.names...)
}

// Predict scales the vector and classifies it. Column names and order must
// match the fitted artifacts exactly.
func (a *Adapter) Predict(vec features.Vector) (Result, error) {
	if err := sameColumns(a.names, vec.Names()); err != nil {
		return Result{}, err
	}
	scaled, err := a.scaler.Transform(vec.Values())
	if err != nil {
		return Result{}, err
	}
	label, err := a.classifier.Predict(scaled)
	if err != nil {
		return Result{}, err
	}
	proba, err := a.classifier.PredictProba(scaled)
	if err != nil {
		return Result{}, err
	}
	return Result{Label: label, Probability: proba}, nil
}

// Summary describes the loaded artifacts.
type Summary struct {
	Scaler       string   `json:"scaler"`
	Classifier   string   `json:"classifier"`
	Threshold    float64  `json:"threshold"`
	FeatureNames []string `json:"featureNames"`
}

func (a *Adapter) Summary() Summary {
	s := Summary{
		Scaler:       fmt.Sprintf("%T", a.scaler),
		Classifier:   fmt.Sprintf("%T", a.classifier),
		Threshold:    DefaultThreshold,
		FeatureNames: a.FeatureNames(),
	}
	switch a.scaler.(type) {
	case *StandardScaler:
		s.Scaler = ScalerStandard
	case *MinMaxScaler:
		s.Scaler = ScalerMinMax
	}
	if lr, ok := a.classifier.(*LogisticRegression); ok {
		s.Classifier = ClassifierLogisticRegression
		s.Threshold = lr.Threshold()
	}
	return s
}

func sameColumns(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrFeatureShapeMismatch, len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrFeatureShapeMismatch, i, got[i], want[i])
		}
	}
	return nil
}
