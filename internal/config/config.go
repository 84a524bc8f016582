// Package config handles configuration, credentials and the assistant
// persona for mangroveguide.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/diogo/mangroveguide/internal/models"
)

// Backends a bot can be built on.
const (
	BackendAPI = "api" // API key, generativelanguage.googleapis.com
	BackendWeb = "web" // browser cookies, gemini.google.com
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	Backend string `json:"backend"`
	Model   string `json:"model"`
	// APIKey is only read when neither API_KEY nor GEMINI_API_KEY is set.
	APIKey string `json:"api_key,omitempty"`
	// RequestTimeout bounds a single bot call, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// ResendHistory sends prior text turns with every API backend call.
	ResendHistory bool `json:"resend_history"`
	// BrowserRefresh names a browser to re-read cookies from when the web
	// backend is rejected. Empty disables it.
	BrowserRefresh  string         `json:"browser_refresh,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	LogLevel        string         `json:"log_level"`
	LogFile         string         `json:"log_file,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAPI,
		Model:          models.DefaultModelName,
		RequestTimeout: 60,
		ResendHistory:  true,
		TUITheme:       "mangrove",
		LogLevel:       "info",
		Markdown:       DefaultMarkdownConfig(),
	}
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if !slices.Contains([]string{BackendAPI, BackendWeb}, c.Backend) {
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendAPI, BackendWeb)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mangroveguide"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds cookies and possibly an API key.
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

func pathIn(name string) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) { return pathIn("config.json") }

// GetCookiesPath returns the path to the cookies file
func GetCookiesPath() (string, error) { return pathIn("cookies.json") }

// GetPersonaPath returns the path to the persona override file
func GetPersonaPath() (string, error) { return pathIn("persona.json") }

// GetLogPath returns the default log file path
func GetLogPath() (string, error) { return pathIn("mangroveguide.log") }

// LoadConfig loads the configuration from disk. A missing file yields the
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load reads the config file and applies environment overrides.
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	env, err := LoadEnv()
	if err != nil {
		return cfg, err
	}
	env.Apply(&cfg)
	return cfg, cfg.Validate()
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
