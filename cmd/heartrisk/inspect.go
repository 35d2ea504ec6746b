package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skufu/heartrisk/internal/inference"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the artifacts and describe them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := loadAdapter(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		writeSummary(cmd.OutOrStdout(), cfg.Artifacts.Source, adapter.Summary())
		return nil
	},
}

func writeSummary(w io.Writer, source string, s inference.Summary) {
	fmt.Fprintf(w, "source:     %s\n", source)
	fmt.Fprintf(w, "scaler:     %s\n", s.Scaler)
	fmt.Fprintf(w, "classifier: %s\n", s.Classifier)
	fmt.Fprintf(w, "threshold:  %.2f\n", s.Threshold)
	fmt.Fprintf(w, "features:   %s\n", strings.Join(s.FeatureNames, ", "))
}
