// Package tui is a terminal rendition of the prediction form.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
)

// PredictFunc scores a completed form.
type PredictFunc func(form features.RawForm) (inference.Result, error)

type field struct {
	key   string
	label string
	// numeric fields use input, labelled fields cycle through options.
	input    textinput.Model
	numeric  bool
	options  []string
	selected int
}

type Model struct {
	fields  []field
	cursor  int
	predict PredictFunc
	result  *inference.Result
	err     error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Width(48)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	highRiskStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#B71C1C")).
			Foreground(lipgloss.Color("#B71C1C")).
			Padding(1, 2)
	lowRiskStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#1B5E20")).
			Foreground(lipgloss.Color("#1B5E20")).
			Padding(1, 2)
)

// NewModel builds the form prefilled with initial.
func NewModel(initial features.RawForm, predict PredictFunc) *Model {
	num := func(key, label, value string) field {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 6
		in.Width = 8
		in.SetValue(value)
		return field{key: key, label: label, input: in, numeric: true}
	}
	sel := func(f features.Field, label, value string) field {
		opts := features.Labels(f)
		selected := 0
		for i, o := range opts {
			if o == value {
				selected = i
			}
		}
		return field{key: string(f), label: label, options: opts, selected: selected}
	}

	m := &Model{
		predict: predict,
		fields: []field{
			num("age", "Age", strconv.Itoa(initial.Age)),
			sel(features.FieldSex, "Sex", initial.Sex),
			sel(features.FieldChestPainType, "Chest Pain Type", initial.ChestPainType),
			num("restingBP", "Resting Blood Pressure (mm Hg)", strconv.Itoa(initial.RestingBP)),
			num("cholesterol", "Serum Cholesterol (mg/dl)", strconv.Itoa(initial.Cholesterol)),
			sel(features.FieldFastingBloodSugar, "Fasting Blood Sugar > 120 mg/dl", initial.FastingBloodSugarHigh),
			sel(features.FieldRestingEKG, "Resting EKG Results", initial.RestingEKG),
			num("maxHeartRate", "Maximum Heart Rate Achieved", strconv.Itoa(initial.MaxHeartRate)),
			sel(features.FieldExerciseAngina, "Exercise Induced Angina", initial.ExerciseAngina),
			num("stDepression", "ST Depression Induced by Exercise", strconv.FormatFloat(initial.STDepression, 'f', 1, 64)),
			sel(features.FieldSTSlope, "Slope of the ST Segment", initial.STSlope),
			num("majorVesselsColored", "Major Vessels Colored by Fluoroscopy", strconv.Itoa(initial.MajorVessels)),
			sel(features.FieldThalliumResult, "Thallium Test Result", initial.Thallium),
		},
	}
	m.focus()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "shift+tab":
			m.move(-1)
			return m, nil
		case "down", "tab":
			m.move(1)
			return m, nil
		case "left":
			if m.cycle(-1) {
				return m, nil
			}
		case "right":
			if m.cycle(1) {
				return m, nil
			}
		case "enter":
			m.submit()
			return m, nil
		}
	}

	cur := &m.fields[m.cursor]
	if !cur.numeric {
		return m, nil
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Heart Disease Risk Prediction"))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		var value string
		if f.numeric {
			value = f.input.View()
		} else {
			value = "‹ " + f.options[f.selected] + " ›"
		}
		b.WriteString(marker + labelStyle.Render(f.label) + value + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	if m.result != nil {
		b.WriteString("\n" + RenderResult(*m.result) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ move • ←/→ change option • enter predict • esc quit") + "\n")
	return b.String()
}

// Result returns the last prediction, if any.
func (m *Model) Result() (inference.Result, bool) {
	if m.result == nil {
		return inference.Result{}, false
	}
	return *m.result, true
}

// RenderResult draws the coloured result block.
func RenderResult(res inference.Result) string {
	if res.Risk() == inference.RiskHigh {
		return highRiskStyle.Render(fmt.Sprintf("High Risk of Heart Disease\nPredicted probability: %.2f", res.Probability))
	}
	return lowRiskStyle.Render(fmt.Sprintf("Low Risk of Heart Disease\nPredicted probability: %.2f", res.Probability))
}

func (m *Model) move(delta int) {
	m.fields[m.cursor].input.Blur()
	m.cursor = (m.cursor + delta + len(m.fields)) % len(m.fields)
	m.focus()
}

func (m *Model) focus() {
	if f := &m.fields[m.cursor]; f.numeric {
		f.input.Focus()
	}
}

func (m *Model) cycle(delta int) bool {
	f := &m.fields[m.cursor]
	if f.numeric {
		return false
	}
	f.selected = (f.selected + delta + len(f.options)) % len(f.options)
	return true
}

func (m *Model) submit() {
	m.result = nil
	form, err := m.form()
	if err != nil {
		m.err = err
		return
	}
	res, err := m.predict(form)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.result = &res
}

// form collects the current values. Numbers that do not parse are
// reported rather than replaced by a default.
func (m *Model) form() (features.RawForm, error) {
	var form features.RawForm
	for _, f := range m.fields {
		if !f.numeric {
			label := f.options[f.selected]
			switch features.Field(f.key) {
			case features.FieldSex:
				form.Sex = label
			case features.FieldChestPainType:
				form.ChestPainType = label
			case features.FieldFastingBloodSugar:
				form.FastingBloodSugarHigh = label
			case features.FieldRestingEKG:
				form.RestingEKG = label
			case features.FieldExerciseAngina:
				form.ExerciseAngina = label
			case features.FieldSTSlope:
				form.STSlope = label
			case features.FieldThalliumResult:
				form.Thallium = label
			}
			continue
		}

		raw := strings.TrimSpace(f.input.Value())
		if f.key == "stDepression" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return features.RawForm{}, fmt.Errorf("%s: %q is not a number", f.label, raw)
			}
			form.STDepression = v
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return features.RawForm{}, fmt.Errorf("%s: %q is not a whole number", f.label, raw)
		}
		switch f.key {
		case "age":
			form.Age = v
		case "restingBP":
			form.RestingBP = v
		case "cholesterol":
			form.Cholesterol = v
		case "maxHeartRate":
			form.MaxHeartRate = v
		case "majorVesselsColored":
			form.MajorVessels = v
		}
	}
	return form, nil
}
