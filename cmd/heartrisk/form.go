package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
	"github.com/Skufu/heartrisk/internal/tui"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in the profile interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := loadAdapter(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		model := tui.NewModel(features.DefaultForm(), func(form features.RawForm) (inference.Result, error) {
			vec, err := features.EncodeForm(form)
			if err != nil {
				return inference.Result{}, err
			}
			return adapter.Predict(vec)
		})
		program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return err
		}

		if res, ok := model.Result(); ok {
			writeResult(cmd.OutOrStdout(), res)
		}
		return nil
	},
}
