// Package web holds the HTML form and the result block.
package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const PageTemplate = "index.tmpl"

// Templates parses the embedded templates. It panics on a broken template
// since they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"probability": func(p float64) string { return fmt.Sprintf("%.2f", p) },
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

// Select is one drop-down of the form.
type Select struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

// Number is one numeric input of the form.
type Number struct {
	Name  string
	Label string
	Min   string
	Max   string
	Step  string
	Value string
}

// Input is either a Number or a Select; exactly one is set.
type Input struct {
	Number *Number
	Select *Select
}

type ResultView struct {
	High        bool
	Probability float64
}

type Page struct {
	Title  string
	Inputs []Input
	Result *ResultView
	Error  string
}

// NewPage lays out the thirteen inputs in form order, prefilled with form.
func NewPage(form features.RawForm) Page {
	num := func(name, label string, rng features.Range, step string, value string) Input {
		return Input{Number: &Number{
			Name:  name,
			Label: label,
			Min:   fmt.Sprintf("%g", rng.Min),
			Max:   fmt.Sprintf("%g", rng.Max),
			Step:  step,
			Value: value,
		}}
	}
	sel := func(field features.Field, label, selected string) Input {
		return Input{Select: &Select{
			Name:     string(field),
			Label:    label,
			Options:  features.Labels(field),
			Selected: selected,
		}}
	}

	return Page{
		Title: "Heart Disease Risk Prediction",
		Inputs: []Input{
			num("age", "Age", features.AgeRange, "1", fmt.Sprint(form.Age)),
			sel(features.FieldSex, "Sex", form.Sex),
			sel(features.FieldChestPainType, "Chest Pain Type", form.ChestPainType),
			num("restingBP", "Resting Blood Pressure (mm Hg)", features.RestingBPRange, "1", fmt.Sprint(form.RestingBP)),
			num("cholesterol", "Serum Cholesterol (mg/dl)", features.CholesterolRange, "1", fmt.Sprint(form.Cholesterol)),
			sel(features.FieldFastingBloodSugar, "Fasting Blood Sugar > 120 mg/dl", form.FastingBloodSugarHigh),
			sel(features.FieldRestingEKG, "Resting EKG Results", form.RestingEKG),
			num("maxHeartRate", "Maximum Heart Rate Achieved", features.MaxHeartRateRange, "1", fmt.Sprint(form.MaxHeartRate)),
			sel(features.FieldExerciseAngina, "Exercise Induced Angina", form.ExerciseAngina),
			num("stDepression", "ST Depression Induced by Exercise (oldpeak)", features.STDepressionRange, "0.1", fmt.Sprintf("%.1f", form.STDepression)),
			sel(features.FieldSTSlope, "Slope of the ST Segment", form.STSlope),
			num("majorVesselsColored", "Number of Major Vessels Colored by Fluoroscopy (0–3)", features.MajorVesselsRange, "1", fmt.Sprint(form.MajorVessels)),
			sel(features.FieldThalliumResult, "Thallium Test Result", form.Thallium),
		},
	}
}

// WithResult attaches a prediction to the page.
func (p Page) WithResult(res inference.Result) Page {
	p.Result = &ResultView{High: res.Risk() == inference.RiskHigh, Probability: res.Probability}
	return p
}

func (p Page) WithError(msg string) Page {
	p.Error = msg
	return p
}
