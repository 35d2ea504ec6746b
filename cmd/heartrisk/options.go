package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Skufu/heartrisk/internal/features"
)

var fieldColor = color.New(color.FgCyan, color.Bold)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the accepted labels for every selection",
	Args:  cobra.NoArgs,
	// No artifacts are needed to list the catalog.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeOptions(cmd.OutOrStdout())
	},
}

func writeOptions(w io.Writer) error {
	for _, field := range features.CategoricalFields() {
		opts, err := features.Options(field)
		if err != nil {
			return err
		}
		fieldColor.Fprintln(w, field)
		for _, o := range opts {
			fmt.Fprintf(w, "  %-28s code %d\n", o.Label, o.Code)
		}
	}
	return nil
}
