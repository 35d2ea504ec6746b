package features

import (
	"fmt"
	"strings"
)

// Column names, in the order the scaler and classifier were fitted on.
const (
	ColAge            = "Age"
	ColSex            = "Sex"
	ColChestPainType  = "Chest pain type"
	ColBP             = "BP"
	ColCholesterol    = "Cholesterol"
	ColFBS            = "FBS over 120"
	ColEKG            = "EKG results"
	ColMaxHR          = "Max HR"
	ColExerciseAngina = "Exercise angina"
	ColSTDepression   = "ST depression"
	ColSlopeOfST      = "Slope of ST"
	ColVesselsFluro   = "Number of vessels fluro"
	ColThallium       = "Thallium"
)

var columnNames = []string{
	ColAge,
	ColSex,
	ColChestPainType,
	ColBP,
	ColCholesterol,
	ColFBS,
	ColEKG,
	ColMaxHR,
	ColExerciseAngina,
	ColSTDepression,
	ColSlopeOfST,
	ColVesselsFluro,
	ColThallium,
}

// NumFeatures is the length of every encoded vector.
var NumFeatures = len(columnNames)

// ColumnNames returns the feature column names in vector order.
func ColumnNames() []string {
	out := make([]string, len(columnNames))
	copy(out, columnNames)
	return out
}

// Vector is a single named row of feature values.
type Vector struct {
	names  []string
	values []float64
}

// NewVector pairs column names with values. Names and values must have the
// same length.
func NewVector(names []string, values []float64) (Vector, error) {
	if len(names) != len(values) {
		return Vector{}, fmt.Errorf("vector has %d names and %d values", len(names), len(values))
	}
	v := Vector{
		names:  make([]string, len(names)),
		values: make([]float64, len(values)),
	}
	copy(v.names, names)
	copy(v.values, values)
	return v, nil
}

func (v Vector) Len() int {
	return len(v.values)
}

func (v Vector) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Get returns the value of a named column.
func (v Vector) Get(name string) (float64, bool) {
	for i, n := range v.names {
		if n == name {
			return v.values[i], true
		}
	}
	return 0, false
}

func (v Vector) String() string {
	parts := make([]string, len(v.values))
	for i := range v.values {
		parts[i] = fmt.Sprintf("%s=%g", v.names[i], v.values[i])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Encode validates the observation and lays it out in column order.
func Encode(o Observation) (Vector, error) {
	if err := o.Validate(); err != nil {
		return Vector{}, err
	}
	return Vector{
		names: ColumnNames(),
		values: []float64{
			float64(o.Age),
			float64(o.Sex),
			float64(o.ChestPainType),
			float64(o.RestingBP),
			float64(o.Cholesterol),
			float64(o.FastingBloodSugarHigh),
			float64(o.RestingEKG),
			float64(o.MaxHeartRate),
			float64(o.ExerciseAngina),
			o.STDepression,
			float64(o.STSlope),
			float64(o.MajorVessels),
			float64(o.Thallium),
		},
	}, nil
}

// EncodeForm decodes, validates and encodes a raw form in one step.
func EncodeForm(form RawForm) (Vector, error) {
	obs, err := ParseForm(form)
	if err != nil {
		return Vector{}, err
	}
	return Encode(obs)
}
