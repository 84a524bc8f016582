package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/config"
)

func newConfigCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after environment variables and flags are
applied, with the API key masked, followed by the file locations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.load(deps)
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg := rt.cfg
			cfg.APIKey = maskSecret(cfg.APIKey)
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(data))
			for _, p := range []struct {
				name string
				fn   func() (string, error)
			}{
				{"config", config.GetConfigPath},
				{"cookies", config.GetCookiesPath},
				{"persona", config.GetPersonaPath},
				{"log", config.GetLogPath},
			} {
				if path, err := p.fn(); err == nil {
					fmt.Fprintf(out, "%-8s %s\n", p.name+":", path)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long: `Change one setting in ~/.mangroveguide/config.json.

Keys: backend, model, api_key, request_timeout, resend_history,
browser_refresh, copy_to_clipboard, tui_theme, log_level, log_file,
markdown.style`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := setConfigValue(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "backend":
		cfg.Backend = value
	case "model":
		cfg.Model = value
	case "api_key":
		cfg.APIKey = value
	case "request_timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = n
	case "resend_history":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("resend_history: %w", err)
		}
		cfg.ResendHistory = b
	case "browser_refresh":
		cfg.BrowserRefresh = value
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard: %w", err)
		}
		cfg.CopyToClipboard = b
	case "tui_theme":
		cfg.TUITheme = value
	case "log_level":
		cfg.LogLevel = value
	case "log_file":
		cfg.LogFile = value
	case "markdown.style":
		cfg.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
