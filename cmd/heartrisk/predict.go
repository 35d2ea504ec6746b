package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
)

var (
	highRiskColor = color.New(color.FgRed, color.Bold)
	lowRiskColor  = color.New(color.FgGreen, color.Bold)
)

var (
	predictForm features.RawForm
	predictJSON bool
)

type predictPayload struct {
	Risk        inference.Risk `json:"risk"`
	Label       int            `json:"label"`
	Probability float64        `json:"probability"`
	Columns     []string       `json:"columns"`
	Values      []float64      `json:"values"`
}

func init() {
	d := features.DefaultForm()
	f := predictCmd.Flags()
	f.IntVar(&predictForm.Age, "age", d.Age, "age in years (20-100)")
	f.StringVar(&predictForm.Sex, "sex", d.Sex, "sex option label")
	f.StringVar(&predictForm.ChestPainType, "chest-pain", d.ChestPainType, "chest pain type option label")
	f.IntVar(&predictForm.RestingBP, "resting-bp", d.RestingBP, "resting blood pressure in mm Hg (80-200)")
	f.IntVar(&predictForm.Cholesterol, "cholesterol", d.Cholesterol, "serum cholesterol in mg/dl (100-400)")
	f.StringVar(&predictForm.FastingBloodSugarHigh, "fbs", d.FastingBloodSugarHigh, "fasting blood sugar > 120 mg/dl option label")
	f.StringVar(&predictForm.RestingEKG, "ekg", d.RestingEKG, "resting EKG option label")
	f.IntVar(&predictForm.MaxHeartRate, "max-hr", d.MaxHeartRate, "maximum heart rate achieved (60-220)")
	f.StringVar(&predictForm.ExerciseAngina, "angina", d.ExerciseAngina, "exercise induced angina option label")
	f.Float64Var(&predictForm.STDepression, "st-depression", d.STDepression, "ST depression induced by exercise (0-10)")
	f.StringVar(&predictForm.STSlope, "st-slope", d.STSlope, "slope of the peak exercise ST segment option label")
	f.IntVar(&predictForm.MajorVessels, "vessels", d.MajorVessels, "major vessels colored by fluoroscopy (0-3)")
	f.StringVar(&predictForm.Thallium, "thallium", d.Thallium, "thallium stress test option label")
	f.BoolVar(&predictJSON, "json", false, "print the result as JSON")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one patient profile",
	Long:  "Score one patient profile. Selections take the labels printed by `heartrisk options`.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vec, err := features.EncodeForm(predictForm)
		if err != nil {
			return err
		}
		adapter, err := loadAdapter(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		res, err := adapter.Predict(vec)
		if err != nil {
			return err
		}
		if predictJSON {
			return writeJSON(cmd.OutOrStdout(), res, vec)
		}
		writeResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func writeJSON(w io.Writer, res inference.Result, vec features.Vector) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(predictPayload{
		Risk:        res.Risk(),
		Label:       res.Label,
		Probability: res.Probability,
		Columns:     vec.Names(),
		Values:      vec.Values(),
	})
}

// writeResult prints the same two lines the web page shows.
func writeResult(w io.Writer, res inference.Result) {
	if res.Risk() == inference.RiskHigh {
		highRiskColor.Fprintln(w, "High Risk of Heart Disease")
	} else {
		lowRiskColor.Fprintln(w, "Low Risk of Heart Disease")
	}
	fmt.Fprintf(w, "Predicted probability: %.2f\n", res.Probability)
}
