package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/mangroveguide/internal/browser"
	"github.com/diogo/mangroveguide/internal/config"
	"github.com/diogo/mangroveguide/internal/models"
)

var errClientClosed = errors.New("client is closed")

// CookieSource supplies fresh cookies after the current ones are rejected.
type CookieSource func(ctx context.Context) (*config.Cookies, error)

// GeminiClient talks to the Gemini web app with browser cookies.
type GeminiClient struct {
	httpClient      Doer
	cookies         *config.Cookies
	accessToken     string
	model           models.Model
	rotator         *CookieRotator
	autoRefresh     bool
	refreshInterval time.Duration
	logger          zerolog.Logger

	cookieSource   CookieSource
	lastRefresh    time.Time
	refreshMinWait time.Duration

	mu     sync.RWMutex
	closed bool
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the default model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) { c.model = model }
}

// WithAutoRefresh toggles background cookie rotation
func WithAutoRefresh(enabled bool) ClientOption {
	return func(c *GeminiClient) { c.autoRefresh = enabled }
}

// WithRefreshInterval sets the cookie rotation interval
func WithRefreshInterval(interval time.Duration) ClientOption {
	return func(c *GeminiClient) { c.refreshInterval = interval }
}

// WithHTTPClient replaces the TLS client, mainly for tests.
func WithHTTPClient(d Doer) ClientOption {
	return func(c *GeminiClient) { c.httpClient = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *GeminiClient) { c.logger = l }
}

// WithCookieSource enables re-authentication through src when a request
// is rejected.
func WithCookieSource(src CookieSource) ClientOption {
	return func(c *GeminiClient) { c.cookieSource = src }
}

// WithBrowserRefresh re-reads cookies from a local browser profile when
// a request is rejected, and saves them to disk.
func WithBrowserRefresh(b browser.SupportedBrowser) ClientOption {
	return func(c *GeminiClient) {
		c.cookieSource = func(ctx context.Context) (*config.Cookies, error) {
			result, err := browser.ExtractGeminiCookies(ctx, b)
			if err != nil {
				return nil, err
			}
			if err := config.SaveCookies(result.Cookies); err != nil {
				c.logger.Warn().Err(err).Msg("failed to save refreshed cookies")
			}
			return result.Cookies, nil
		}
	}
}

// NewClient creates a client. Call Init before sending messages.
func NewClient(cookies *config.Cookies, opts ...ClientOption) (*GeminiClient, error) {
	if err := config.ValidateCookies(cookies); err != nil {
		return nil, err
	}

	client := &GeminiClient{
		cookies:         cookies,
		model:           models.Model25Flash,
		autoRefresh:     true,
		refreshInterval: 9 * time.Minute,
		refreshMinWait:  30 * time.Second,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		hc, err := NewHTTPClient(defaultTimeoutSeconds)
		if err != nil {
			return nil, err
		}
		client.httpClient = hc
	}
	return client, nil
}

// Init fetches the access token and starts cookie rotation.
func (c *GeminiClient) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientClosed
	}

	token, err := GetAccessToken(ctx, c.httpClient, c.cookies)
	if err != nil {
		return err
	}
	c.accessToken = token

	if c.autoRefresh && c.rotator == nil {
		c.rotator = NewCookieRotator(c.httpClient, c.cookies, c.refreshInterval, c.logger)
		c.rotator.Start()
	}
	return nil
}

// Close stops background work. It is safe to call more than once.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.rotator != nil {
		c.rotator.Stop()
	}
	return nil
}

// GetAccessToken returns the current access token
func (c *GeminiClient) GetAccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// GetModel returns the default model
func (c *GeminiClient) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// IsClosed returns whether the client is closed
func (c *GeminiClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// StartChat creates a chat session on the given model, or the client
// default.
func (c *GeminiClient) StartChat(model ...models.Model) *ChatSession {
	m := c.GetModel()
	if len(model) > 0 && model[0].Name != models.ModelUnspecified.Name {
		m = model[0]
	}
	return &ChatSession{client: c, model: m}
}

func (c *GeminiClient) canRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookieSource != nil
}

// RefreshCookies replaces the cookies from the configured source and
// fetches a new access token. Attempts are spaced by refreshMinWait.
func (c *GeminiClient) RefreshCookies(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cookieSource == nil {
		return false, fmt.Errorf("cookie refresh is not enabled")
	}
	if wait := c.refreshMinWait - time.Since(c.lastRefresh); wait > 0 {
		return false, fmt.Errorf("cookie refresh attempted too recently, wait %v", wait.Round(time.Second))
	}
	c.lastRefresh = time.Now()

	fresh, err := c.cookieSource(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to refresh cookies: %w", err)
	}
	psid, psidts := fresh.Snapshot()
	c.cookies.SetBoth(psid, psidts)

	token, err := GetAccessToken(ctx, c.httpClient, c.cookies)
	if err != nil {
		return false, fmt.Errorf("failed to get access token with new cookies: %w", err)
	}
	c.accessToken = token
	c.logger.Info().Msg("refreshed web session cookies")
	return true, nil
}
