package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Skufu/heartrisk/internal/artifacts"
)

type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	EnableDB    bool
	Log         LogConfig
	Artifacts   ArtifactConfig
}

type LogConfig struct {
	Level string
	File  string
}

type ArtifactConfig struct {
	Source     string
	ScalerPath string
	ModelPath  string
	ScalerName string
	ModelName  string
}

// Load reads the environment, after applying a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Artifacts: ArtifactConfig{
			Source:     strings.ToLower(getEnv("ARTIFACT_SOURCE", artifacts.SourceFile)),
			ScalerPath: getEnv("SCALER_PATH", "models/scaler.json"),
			ModelPath:  getEnv("MODEL_PATH", "models/heart_disease_model.json"),
			ScalerName: getEnv("SCALER_NAME", "scaler"),
			ModelName:  getEnv("MODEL_NAME", "heart_disease_model"),
		},
	}

	switch cfg.Artifacts.Source {
	case artifacts.SourceFile, artifacts.SourcePostgres:
	default:
		return nil, fmt.Errorf("ARTIFACT_SOURCE must be %q or %q, got %q", artifacts.SourceFile, artifacts.SourcePostgres, cfg.Artifacts.Source)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.Artifacts.Source == artifacts.SourcePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ARTIFACT_SOURCE=postgres")
	}

	return cfg, nil
}

// NeedsDB reports whether a database connection must be opened.
func (c *Config) NeedsDB() bool {
	return c.EnableDB || c.Artifacts.Source == artifacts.SourcePostgres
}

func (c *Config) ArtifactSettings() artifacts.Settings {
	return artifacts.Settings{
		Source:     c.Artifacts.Source,
		ScalerName: c.Artifacts.ScalerName,
		ModelName:  c.Artifacts.ModelName,
		ScalerPath: c.Artifacts.ScalerPath,
		ModelPath:  c.Artifacts.ModelPath,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
