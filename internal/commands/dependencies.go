package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/mangroveguide/internal/api"
	"github.com/diogo/mangroveguide/internal/browser"
	"github.com/diogo/mangroveguide/internal/config"
	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/gateway"
	"github.com/diogo/mangroveguide/internal/logging"
	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/tui"
)

// Dependencies are the collaborators the commands are built on. Tests
// replace them.
type Dependencies struct {
	LoadConfig   func() (config.Config, error)
	SetupLogging func(logging.Options) (zerolog.Logger, io.Closer, error)
	// NewBackend builds the bot backend. It runs lazily on the first
	// question, so a missing credential only surfaces as a fallback reply.
	NewBackend func(ctx context.Context, cfg config.Config, logger zerolog.Logger) (gateway.Backend, error)
	RunTUI     func(ctx context.Context, start screens.ID, opts tui.Options) error
	Clipboard  func(text string) error
	Browsers   func(ctx context.Context) []string
	Extract    func(ctx context.Context, b browser.SupportedBrowser) (*browser.ExtractResult, error)
}

// NewDependencies returns the production dependencies.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:   config.Load,
		SetupLogging: logging.Setup,
		NewBackend:   newBackend,
		RunTUI:       tui.Run,
		Clipboard:    clipboard.WriteAll,
		Browsers:     browser.ListAvailableBrowsers,
		Extract:      browser.ExtractGeminiCookies,
	}
}

// newBot wires the configured backend into a gateway.
func (d *Dependencies) newBot(rt *runtime) *gateway.Bot {
	persona, err := config.LoadPersona()
	if err != nil {
		rt.logger.Warn().Err(err).Msg("persona file ignored, using the built-in persona")
	}

	cfg := rt.cfg
	factory := func(ctx context.Context) (gateway.Backend, error) {
		return d.NewBackend(ctx, cfg, logging.Component(rt.logger, "backend"))
	}
	return gateway.New(factory,
		gateway.WithLogger(logging.Component(rt.logger, "gateway")),
		gateway.WithTimeout(time.Duration(cfg.RequestTimeout)*time.Second),
		gateway.WithSystemInstruction(persona.SystemPrompt),
		gateway.WithModel(cfg.Model),
		// The web backend keeps the conversation server-side.
		gateway.WithHistory(cfg.ResendHistory && cfg.Backend == config.BackendAPI),
	)
}

func newBackend(ctx context.Context, cfg config.Config, logger zerolog.Logger) (gateway.Backend, error) {
	if cfg.Backend == config.BackendWeb {
		return openWebBackend(ctx, cfg, logger)
	}
	kc, err := api.NewKeyClient(cfg.APIKey, api.WithKeyLogger(logger))
	if err != nil {
		return nil, err
	}
	return kc, nil
}

func openWebBackend(ctx context.Context, cfg config.Config, logger zerolog.Logger) (gateway.Backend, error) {
	opts := []api.ClientOption{
		api.WithModel(models.ModelFromName(cfg.Model)),
		api.WithAutoRefresh(true),
		api.WithLogger(logger),
	}

	var refresh browser.SupportedBrowser
	if cfg.BrowserRefresh != "" {
		b, err := browser.ParseBrowser(cfg.BrowserRefresh)
		if err != nil {
			return nil, apierrors.NewConfigError("browser_refresh", err.Error())
		}
		refresh = b
		opts = append(opts, api.WithBrowserRefresh(b))
	}

	cookies, err := config.LoadCookies()
	if err != nil {
		if refresh == "" {
			return nil, err
		}
		result, xerr := browser.ExtractGeminiCookies(ctx, refresh)
		if xerr != nil {
			return nil, fmt.Errorf("no usable cookies: %w", errors.Join(err, xerr))
		}
		cookies = result.Cookies
		if err := config.SaveCookies(cookies); err != nil {
			logger.Warn().Err(err).Msg("failed to save browser cookies")
		}
		logger.Info().Str("browser", result.BrowserName).Msg("loaded cookies from browser")
	}

	wb, err := api.OpenWeb(ctx, cookies, opts...)
	if err != nil {
		return nil, err
	}
	return wb, nil
}
