package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment overrides. API_KEY wins over GEMINI_API_KEY,
// which wins over the config file.
type Env struct {
	APIKey       string `env:"API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	Backend      string `env:"MANGROVE_BACKEND"`
	Model        string `env:"MANGROVE_MODEL"`
	LogLevel     string `env:"MANGROVE_LOG_LEVEL"`
	LogFile      string `env:"MANGROVE_LOG_FILE"`
	GlamourStyle string `env:"GLAMOUR_STYLE"`
}

// LoadEnv parses the process environment.
func LoadEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Apply overlays the non-empty environment values onto cfg.
func (e Env) Apply(cfg *Config) {
	switch {
	case e.APIKey != "":
		cfg.APIKey = e.APIKey
	case e.GeminiAPIKey != "":
		cfg.APIKey = e.GeminiAPIKey
	}
	if e.Backend != "" {
		cfg.Backend = e.Backend
	}
	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
	if e.LogFile != "" {
		cfg.LogFile = e.LogFile
	}
	if e.GlamourStyle != "" {
		cfg.Markdown.Style = e.GlamourStyle
	}
}
