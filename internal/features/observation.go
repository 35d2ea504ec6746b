package features

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a numeric measurement lies outside the
// range the form accepts.
var ErrOutOfRange = errors.New("value out of range")

// Observation is one patient's decoded measurements. It lives for a single
// prediction and is never stored.
type Observation struct {
	Age                   int
	Sex                   Sex
	ChestPainType         ChestPain
	RestingBP             int
	Cholesterol           int
	FastingBloodSugarHigh YesNo
	RestingEKG            RestingEKG
	MaxHeartRate          int
	ExerciseAngina        YesNo
	STDepression          float64
	STSlope               STSlope
	MajorVessels          int
	Thallium              Thallium
}

// RawForm carries the values as the presentation layer collects them:
// numbers for the measurements and display labels for the selections.
type RawForm struct {
	Age                   int     `json:"age"`
	Sex                   string  `json:"sex"`
	ChestPainType         string  `json:"chestPainType"`
	RestingBP             int     `json:"restingBP"`
	Cholesterol           int     `json:"cholesterol"`
	FastingBloodSugarHigh string  `json:"fastingBloodSugarHigh"`
	RestingEKG            string  `json:"restingEKG"`
	MaxHeartRate          int     `json:"maxHeartRate"`
	ExerciseAngina        string  `json:"exerciseInducedAngina"`
	STDepression          float64 `json:"stDepression"`
	STSlope               string  `json:"stSlope"`
	MajorVessels          int     `json:"majorVesselsColored"`
	Thallium              string  `json:"thalliumResult"`
}

// Range is an inclusive numeric bound for a measurement.
type Range struct {
	Min float64
	Max float64
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	AgeRange          = Range{Min: 20, Max: 100}
	RestingBPRange    = Range{Min: 80, Max: 200}
	CholesterolRange  = Range{Min: 100, Max: 400}
	MaxHeartRateRange = Range{Min: 60, Max: 220}
	STDepressionRange = Range{Min: 0, Max: 10}
	MajorVesselsRange = Range{Min: 0, Max: 3}
)

// DefaultForm returns the values the form starts with.
func DefaultForm() RawForm {
	return RawForm{
		Age:                   50,
		Sex:                   "Male (1)",
		ChestPainType:         "1 - Typical Angina",
		RestingBP:             130,
		Cholesterol:           240,
		FastingBloodSugarHigh: "Yes (1)",
		RestingEKG:            "0 - Normal",
		MaxHeartRate:          150,
		ExerciseAngina:        "Yes (1)",
		STDepression:          1.0,
		STSlope:               "1 - Upsloping",
		MajorVessels:          0,
		Thallium:              "3 - Normal",
	}
}

// ParseForm decodes the labelled selections of a raw form. Numeric values
// are carried as they are; call Validate to range-check them.
func ParseForm(form RawForm) (Observation, error) {
	var firstErr error
	decode := func(field Field, label string) int {
		if firstErr != nil {
			return 0
		}
		code, err := Decode(field, label)
		if err != nil {
			firstErr = err
		}
		return code
	}

	obs := Observation{
		Age:                   form.Age,
		Sex:                   Sex(decode(FieldSex, form.Sex)),
		ChestPainType:         ChestPain(decode(FieldChestPainType, form.ChestPainType)),
		RestingBP:             form.RestingBP,
		Cholesterol:           form.Cholesterol,
		FastingBloodSugarHigh: YesNo(decode(FieldFastingBloodSugar, form.FastingBloodSugarHigh)),
		RestingEKG:            RestingEKG(decode(FieldRestingEKG, form.RestingEKG)),
		MaxHeartRate:          form.MaxHeartRate,
		ExerciseAngina:        YesNo(decode(FieldExerciseAngina, form.ExerciseAngina)),
		STDepression:          form.STDepression,
		STSlope:               STSlope(decode(FieldSTSlope, form.STSlope)),
		MajorVessels:          form.MajorVessels,
		Thallium:              Thallium(decode(FieldThalliumResult, form.Thallium)),
	}
	if firstErr != nil {
		return Observation{}, firstErr
	}
	return obs, nil
}

// Form renders the observation back into display labels.
func (o Observation) Form() RawForm {
	label := func(field Field, code int) string {
		l, _ := LabelFor(field, code)
		return l
	}
	return RawForm{
		Age:                   o.Age,
		Sex:                   label(FieldSex, int(o.Sex)),
		ChestPainType:         label(FieldChestPainType, int(o.ChestPainType)),
		RestingBP:             o.RestingBP,
		Cholesterol:           o.Cholesterol,
		FastingBloodSugarHigh: label(FieldFastingBloodSugar, int(o.FastingBloodSugarHigh)),
		RestingEKG:            label(FieldRestingEKG, int(o.RestingEKG)),
		MaxHeartRate:          o.MaxHeartRate,
		ExerciseAngina:        label(FieldExerciseAngina, int(o.ExerciseAngina)),
		STDepression:          o.STDepression,
		STSlope:               label(FieldSTSlope, int(o.STSlope)),
		MajorVessels:          o.MajorVessels,
		Thallium:              label(FieldThalliumResult, int(o.Thallium)),
	}
}

// Validate range-checks the measurements and checks that every coded
// selection belongs to its closed option set.
func (o Observation) Validate() error {
	numeric := []struct {
		name  string
		value float64
		rng   Range
	}{
		{"age", float64(o.Age), AgeRange},
		{"restingBP", float64(o.RestingBP), RestingBPRange},
		{"cholesterol", float64(o.Cholesterol), CholesterolRange},
		{"maxHeartRate", float64(o.MaxHeartRate), MaxHeartRateRange},
		{"stDepression", o.STDepression, STDepressionRange},
		{"majorVesselsColored", float64(o.MajorVessels), MajorVesselsRange},
	}
	for _, n := range numeric {
		if !n.rng.contains(n.value) {
			return fmt.Errorf("%w: %s=%g, want %g..%g", ErrOutOfRange, n.name, n.value, n.rng.Min, n.rng.Max)
		}
	}

	coded := []struct {
		field Field
		code  int
	}{
		{FieldSex, int(o.Sex)},
		{FieldChestPainType, int(o.ChestPainType)},
		{FieldFastingBloodSugar, int(o.FastingBloodSugarHigh)},
		{FieldRestingEKG, int(o.RestingEKG)},
		{FieldExerciseAngina, int(o.ExerciseAngina)},
		{FieldSTSlope, int(o.STSlope)},
		{FieldThalliumResult, int(o.Thallium)},
	}
	for _, c := range coded {
		if !validCode(c.field, c.code) {
			return fmt.Errorf("%w: %s code %d is not a known option", ErrOutOfRange, c.field, c.code)
		}
	}
	return nil
}
