package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skufu/heartrisk/internal/artifacts"
	"github.com/Skufu/heartrisk/internal/config"
	"github.com/Skufu/heartrisk/internal/inference"
)

var rootCmd = &cobra.Command{
	Use:           "heartrisk",
	Short:         "Heart disease risk prediction from the terminal",
	Long:          `heartrisk scores a patient profile with the trained scaler and logistic regression model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

var cfg *config.Config

func init() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(formCmd)

	rootCmd.PersistentFlags().String("scaler", "", "scaler artifact path (overrides SCALER_PATH)")
	rootCmd.PersistentFlags().String("model", "", "model artifact path (overrides MODEL_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the artifact path flags.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("scaler") {
		loaded.Artifacts.ScalerPath, _ = flags.GetString("scaler")
	}
	if flags.Changed("model") {
		loaded.Artifacts.ModelPath, _ = flags.GetString("model")
	}
	cfg = loaded
	return nil
}

// loadAdapter fetches the artifacts named by cfg. A pool is only opened
// when the artifacts live in postgres.
func loadAdapter(ctx context.Context, cfg *config.Config) (*inference.Adapter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var db artifacts.Querier
	if cfg.Artifacts.Source == artifacts.SourcePostgres {
		pool, err := artifacts.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		db = pool
	}

	store, err := artifacts.NewStore(cfg.ArtifactSettings(), db)
	if err != nil {
		return nil, err
	}
	return inference.LoadAdapter(ctx, store, inference.ArtifactNames{
		Scaler:     cfg.Artifacts.ScalerName,
		Classifier: cfg.Artifacts.ModelName,
	})
}
