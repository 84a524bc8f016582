// Package commands implements the mangroveguide command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/config"
	"github.com/diogo/mangroveguide/internal/logging"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/tui"
)

// Version info, set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags override the configuration for one run.
type globalFlags struct {
	backend        string
	model          string
	browserRefresh string
	logLevel       string
}

// runtime is the effective configuration and logger for a command.
type runtime struct {
	cfg    config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (r *runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// load reads the configuration, applies flags and opens the log file.
func (g *globalFlags) load(deps *Dependencies) (*runtime, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.backend != "" {
		cfg.Backend = g.backend
	}
	if g.model != "" {
		cfg.Model = g.model
	}
	if g.browserRefresh != "" {
		cfg.BrowserRefresh = g.browserRefresh
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path := cfg.LogFile
	if path == "" {
		if path, err = config.GetLogPath(); err != nil {
			return nil, err
		}
	}
	logger, closer, err := deps.SetupLogging(logging.Options{Level: cfg.LogLevel, Path: path})
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, closer: closer}, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "mangroveguide",
		Short: "Interactive guide to mangroves and coastal ecosystems",
		Long: `mangroveguide is a terminal chat guide to mangroves and coastal
ecosystems, with a detail screen on the mangroves of Karnataka.
Questions are answered by Gemini through an API key (default) or a
cookie-authenticated web session.

Examples:
  mangroveguide                          Start on the introduction screen
  mangroveguide chat -s karnataka        Start on the Karnataka screen
  mangroveguide ask "Why do mangroves matter?"
  mangroveguide export -s karnataka -o karnataka.html
  mangroveguide --backend web auto-login`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "mangroveguide %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd.Context(), deps, flags, screens.Intro)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", "", "Bot backend: api or web")
	pf.StringVarP(&flags.model, "model", "m", "", "Model to use (e.g. gemini-2.5-flash)")
	pf.StringVar(&flags.browserRefresh, "browser-refresh", "",
		"Web backend: re-read cookies from this browser on auth failure (auto, chrome, firefox, edge, chromium, opera)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	root.Flags().BoolP("version", "v", false, "Show version and exit")

	root.AddCommand(
		newChatCmd(deps, flags),
		newAskCmd(deps, flags),
		newExportCmd(),
		newImportCookiesCmd(),
		newAutoLoginCmd(deps),
		newConfigCmd(deps, flags),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(NewDependencies()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, tui.FormatError(err))
		stop()
		os.Exit(1)
	}
}
