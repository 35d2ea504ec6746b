package inference

import (
	"errors"
	"fmt"
	"math"
)

// Scaler is a fitted, read-only feature transform.
type Scaler interface {
	FeatureNames() []string
	Transform(values []float64) ([]float64, error)
}

// StandardScaler subtracts the per-feature mean and divides by the
// per-feature scale.
type StandardScaler struct {
	names []string
	mean  []float64
	scale []float64
}

// NewStandardScaler validates fitted statistics. A zero scale is replaced
// by 1 so that constant features pass through centred.
func NewStandardScaler(names []string, mean, scale []float64) (*StandardScaler, error) {
	if len(names) == 0 {
		return nil, errors.New("standard scaler: no features")
	}
	if len(mean) != len(names) || len(scale) != len(names) {
		return nil, fmt.Errorf("standard scaler: %d names, %d means, %d scales", len(names), len(mean), len(scale))
	}
	s := &StandardScaler{
		names: append([]string(nil), names...),
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		if !isFinite(mean[i]) || !isFinite(v) || v < 0 {
			return nil, fmt.Errorf("standard scaler: invalid statistics for %q", names[i])
		}
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

func (s *StandardScaler) FeatureNames() []string {
	return append([]string(nil), s.names...)
}

func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.mean) {
		return nil, fmt.Errorf("%w: scaler expects %d values, got %d", ErrFeatureShapeMismatch, len(s.mean), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// MinMaxScaler maps each feature from its fitted [min, max] onto the
// configured feature range.
type MinMaxScaler struct {
	names []string
	scale []float64
	min   []float64
}

func NewMinMaxScaler(names []string, dataMin, dataMax []float64, featureRange [2]float64) (*MinMaxScaler, error) {
	if len(names) == 0 {
		return nil, errors.New("minmax scaler: no features")
	}
	if len(dataMin) != len(names) || len(dataMax) != len(names) {
		return nil, fmt.Errorf("minmax scaler: %d names, %d mins, %d maxes", len(names), len(dataMin), len(dataMax))
	}
	lo, hi := featureRange[0], featureRange[1]
	if !(lo < hi) {
		return nil, fmt.Errorf("minmax scaler: invalid feature range [%g, %g]", lo, hi)
	}
	s := &MinMaxScaler{
		names: append([]string(nil), names...),
		scale: make([]float64, len(names)),
		min:   make([]float64, len(names)),
	}
	for i := range names {
		if !isFinite(dataMin[i]) || !isFinite(dataMax[i]) || dataMax[i] < dataMin[i] {
			return nil, fmt.Errorf("minmax scaler: invalid statistics for %q", names[i])
		}
		dataRange := dataMax[i] - dataMin[i]
		if dataRange == 0 {
			dataRange = 1
		}
		s.scale[i] = (hi - lo) / dataRange
		s.min[i] = lo - dataMin[i]*s.scale[i]
	}
	return s, nil
}

func (s *MinMaxScaler) FeatureNames() []string {
	return append([]string(nil), s.names...)
}

func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.scale) {
		return nil, fmt.Errorf("%w: scaler expects %d values, got %d", ErrFeatureShapeMismatch, len(s.scale), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*s.scale[i] + s.min[i]
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
