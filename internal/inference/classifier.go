package inference

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the decision threshold on the class 1 probability
// when the artifact does not carry one.
const DefaultThreshold = 0.5

// Classifier is a fitted binary classifier over scaled features.
type Classifier interface {
	FeatureNames() []string
	// PredictProba returns the probability of class 1.
	PredictProba(x []float64) (float64, error)
	Predict(x []float64) (int, error)
}

// LogisticRegression is a fitted binary logistic model.
type LogisticRegression struct {
	names     []string
	coef      []float64
	intercept float64
	threshold float64
}

func NewLogisticRegression(names []string, coef []float64, intercept, threshold float64) (*LogisticRegression, error) {
	if len(names) == 0 {
		return nil, errors.New("logistic regression: no features")
	}
	if len(coef) != len(names) {
		return nil, fmt.Errorf("logistic regression: %d names, %d coefficients", len(names), len(coef))
	}
	for i, c := range coef {
		if !isFinite(c) {
			return nil, fmt.Errorf("logistic regression: invalid coefficient for %q", names[i])
		}
	}
	if !isFinite(intercept) {
		return nil, errors.New("logistic regression: invalid intercept")
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if !(threshold > 0 && threshold < 1) {
		return nil, fmt.Errorf("logistic regression: threshold %g outside (0, 1)", threshold)
	}
	return &LogisticRegression{
		names:     append([]string(nil), names...),
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
		threshold: threshold,
	}, nil
}

func (m *LogisticRegression) FeatureNames() []string {
	return append([]string(nil), m.names...)
}

func (m *LogisticRegression) Threshold() float64 {
	return m.threshold
}

// DecisionFunction returns the signed distance coef·x + intercept.
func (m *LogisticRegression) DecisionFunction(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, fmt.Errorf("%w: classifier expects %d values, got %d", ErrFeatureShapeMismatch, len(m.coef), len(x))
	}
	z := m.intercept
	for i, v := range x {
		z += m.coef[i] * v
	}
	return z, nil
}

func (m *LogisticRegression) PredictProba(x []float64) (float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(z), nil
}

// Predict returns 1 when the class 1 probability exceeds the threshold. At
// the default threshold this is decided on the sign of the decision value,
// which keeps the label exact where the probability rounds to 0.5.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	return m.label(z, sigmoid(z)), nil
}

func (m *LogisticRegression) label(z, p float64) int {
	if m.threshold == DefaultThreshold {
		if z > 0 {
			return 1
		}
		return 0
	}
	if p > m.threshold {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
