package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedInputLabel is returned when an option label is not part of
	// the field's closed option set or carries no parseable code.
	ErrMalformedInputLabel = errors.New("malformed input label")
	// ErrUnknownField is returned for a field name that has no option set.
	ErrUnknownField = errors.New("unknown categorical field")
)

// Field names a categorical form input.
type Field string

const (
	FieldSex               Field = "sex"
	FieldChestPainType     Field = "chestPainType"
	FieldFastingBloodSugar Field = "fastingBloodSugarHigh"
	FieldRestingEKG        Field = "restingEKG"
	FieldExerciseAngina    Field = "exerciseInducedAngina"
	FieldSTSlope           Field = "stSlope"
	FieldThalliumResult    Field = "thalliumResult"
)

const labelCodeSeparator = '-'

type Sex int

const (
	SexFemale Sex = 0
	SexMale   Sex = 1
)

type ChestPain int

const (
	ChestPainTypicalAngina  ChestPain = 1
	ChestPainAtypicalAngina ChestPain = 2
	ChestPainNonAnginal     ChestPain = 3
	ChestPainAsymptomatic   ChestPain = 4
)

// YesNo encodes the binary flags (fasting blood sugar > 120 mg/dl,
// exercise induced angina).
type YesNo int

const (
	No  YesNo = 0
	Yes YesNo = 1
)

type RestingEKG int

const (
	EKGNormal         RestingEKG = 0
	EKGSTTAbnormality RestingEKG = 1
	EKGLVHypertrophy  RestingEKG = 2
)

type STSlope int

const (
	SlopeUpsloping   STSlope = 1
	SlopeFlat        STSlope = 2
	SlopeDownsloping STSlope = 3
)

// Thallium codes are 3/6/7, not a contiguous range.
type Thallium int

const (
	ThalliumNormal           Thallium = 3
	ThalliumFixedDefect      Thallium = 6
	ThalliumReversibleDefect Thallium = 7
)

// Option is one selectable display label and the code it stands for.
type Option struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

var categoricalFields = []Field{
	FieldSex,
	FieldChestPainType,
	FieldFastingBloodSugar,
	FieldRestingEKG,
	FieldExerciseAngina,
	FieldSTSlope,
	FieldThalliumResult,
}

var yesNoOptions = []Option{
	{Label: "Yes (1)", Code: int(Yes)},
	{Label: "No (0)", Code: int(No)},
}

var catalog = map[Field][]Option{
	FieldSex: {
		{Label: "Male (1)", Code: int(SexMale)},
		{Label: "Female (0)", Code: int(SexFemale)},
	},
	FieldChestPainType: {
		{Label: "1 - Typical Angina", Code: int(ChestPainTypicalAngina)},
		{Label: "2 - Atypical Angina", Code: int(ChestPainAtypicalAngina)},
		{Label: "3 - Non-anginal Pain", Code: int(ChestPainNonAnginal)},
		{Label: "4 - Asymptomatic", Code: int(ChestPainAsymptomatic)},
	},
	FieldFastingBloodSugar: yesNoOptions,
	FieldRestingEKG: {
		{Label: "0 - Normal", Code: int(EKGNormal)},
		{Label: "1 - Having ST-T wave abnormality", Code: int(EKGSTTAbnormality)},
		{Label: "2 - Left ventricular hypertrophy", Code: int(EKGLVHypertrophy)},
	},
	FieldExerciseAngina: yesNoOptions,
	FieldSTSlope: {
		{Label: "1 - Upsloping", Code: int(SlopeUpsloping)},
		{Label: "2 - Flat", Code: int(SlopeFlat)},
		{Label: "3 - Downsloping", Code: int(SlopeDownsloping)},
	},
	FieldThalliumResult: {
		{Label: "3 - Normal", Code: int(ThalliumNormal)},
		{Label: "6 - Fixed Defect", Code: int(ThalliumFixedDefect)},
		{Label: "7 - Reversible Defect", Code: int(ThalliumReversibleDefect)},
	},
}

func init() {
	if err := validateCatalog(); err != nil {
		panic(err)
	}
}

// validateCatalog checks that every label embeds exactly the code it is
// mapped to and that no field repeats a label or a code.
func validateCatalog() error {
	for _, field := range categoricalFields {
		options, ok := catalog[field]
		if !ok || len(options) == 0 {
			return fmt.Errorf("option catalog: field %s has no options", field)
		}
		labels := make(map[string]struct{}, len(options))
		codes := make(map[int]struct{}, len(options))
		for _, opt := range options {
			code, err := CodeFromLabel(opt.Label)
			if err != nil {
				return fmt.Errorf("option catalog: field %s: %w", field, err)
			}
			if code != opt.Code {
				return fmt.Errorf("option catalog: field %s: label %q embeds %d but maps to %d", field, opt.Label, code, opt.Code)
			}
			if _, dup := labels[opt.Label]; dup {
				return fmt.Errorf("option catalog: field %s: duplicate label %q", field, opt.Label)
			}
			if _, dup := codes[opt.Code]; dup {
				return fmt.Errorf("option catalog: field %s: duplicate code %d", field, opt.Code)
			}
			labels[opt.Label] = struct{}{}
			codes[opt.Code] = struct{}{}
		}
	}
	return nil
}

// CategoricalFields returns the labelled fields in form order.
func CategoricalFields() []Field {
	out := make([]Field, len(categoricalFields))
	copy(out, categoricalFields)
	return out
}

// Options returns the option set of a categorical field in display order.
func Options(field Field) ([]Option, error) {
	options, ok := catalog[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	out := make([]Option, len(options))
	copy(out, options)
	return out, nil
}

// Labels returns only the display labels of a field, in display order.
func Labels(field Field) []string {
	options := catalog[field]
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Label)
	}
	return out
}

// Decode maps a display label to its code using the closed option set of
// the field. The position of the label in the list plays no part.
func Decode(field Field, label string) (int, error) {
	options, ok := catalog[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	label = strings.TrimSpace(label)
	for _, opt := range options {
		if opt.Label == label {
			return opt.Code, nil
		}
	}
	return 0, fmt.Errorf("%w: %s option %q", ErrMalformedInputLabel, field, label)
}

// LabelFor returns the display label for a code, if the field has one.
func LabelFor(field Field, code int) (string, bool) {
	for _, opt := range catalog[field] {
		if opt.Code == code {
			return opt.Label, true
		}
	}
	return "", false
}

// CodeFromLabel extracts the integer code embedded in a display label,
// either in parentheses ("Male (1)") or before the separator
// ("1 - Typical Angina").
func CodeFromLabel(label string) (int, error) {
	var digits string
	if open := strings.IndexByte(label, '('); open >= 0 {
		rest := label[open+1:]
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return 0, fmt.Errorf("%w: %q has no closing parenthesis", ErrMalformedInputLabel, label)
		}
		digits = rest[:end]
	} else if sep := strings.IndexByte(label, labelCodeSeparator); sep >= 0 {
		digits = label[:sep]
	} else {
		return 0, fmt.Errorf("%w: %q has no embedded code", ErrMalformedInputLabel, label)
	}

	code, err := strconv.Atoi(strings.TrimSpace(digits))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedInputLabel, label, err)
	}
	return code, nil
}

func validCode(field Field, code int) bool {
	_, ok := LabelFor(field, code)
	return ok
}
