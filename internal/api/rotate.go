package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"

	"github.com/diogo/mangroveguide/internal/config"
	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
)

const (
	rotateBody        = `[000,"-0000000000000000000"]`
	rotateMinInterval = time.Minute
	rotateTimeout     = 30 * time.Second
)

// RotateCookies asks Google for a fresh __Secure-1PSIDTS. It returns an
// empty string when the response sets no new value.
func RotateCookies(ctx context.Context, client Doer, cookies *config.Cookies) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, models.EndpointRotateCookies, strings.NewReader(rotateBody))
	if err != nil {
		return "", fmt.Errorf("failed to create rotate request: %w", err)
	}
	setHeaders(req, models.RotateCookiesHeaders())
	addSessionCookies(req, cookies)

	resp, err := send(ctx, client, req, "rotate cookies")
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", apierrors.NewAuthError("unauthorized during cookie rotation")
	default:
		return "", apierrors.NewAPIError(resp.StatusCode, models.EndpointRotateCookies, "cookie rotation failed")
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == config.CookiePSIDTS {
			return cookie.Value, nil
		}
	}
	return "", nil
}

// CookieRotator refreshes __Secure-1PSIDTS in the background. Rotations
// are spaced at least a minute apart.
type CookieRotator struct {
	client   Doer
	cookies  *config.Cookies
	interval time.Duration
	logger   zerolog.Logger

	mu         sync.Mutex
	lastRotate time.Time
	stopCh     chan struct{}
	running    bool
}

// NewCookieRotator creates a rotator; call Start to run it.
func NewCookieRotator(client Doer, cookies *config.Cookies, interval time.Duration, logger zerolog.Logger) *CookieRotator {
	return &CookieRotator{
		client:   client,
		cookies:  cookies,
		interval: interval,
		logger:   logger,
	}
}

// Start begins background rotation. Calling it twice is harmless.
func (r *CookieRotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})

	go r.loop(r.stopCh)
}

func (r *CookieRotator) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RotateNow(); err != nil {
				r.logger.Warn().Err(err).Str("kind", apierrors.Kind(err)).Msg("cookie rotation failed")
			}
		case <-stop:
			return
		}
	}
}

// RotateNow rotates immediately unless the last rotation was under a
// minute ago. It reports whether the cookie changed.
func (r *CookieRotator) RotateNow() (bool, error) {
	r.mu.Lock()
	if time.Since(r.lastRotate) < rotateMinInterval {
		r.mu.Unlock()
		return false, nil
	}
	r.lastRotate = time.Now()
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), rotateTimeout)
	defer cancel()

	value, err := RotateCookies(ctx, r.client, r.cookies)
	if err != nil || value == "" {
		return false, err
	}
	r.cookies.Update1PSIDTS(value)
	r.logger.Debug().Msg("rotated __Secure-1PSIDTS")
	return true, nil
}

// Stop halts background rotation.
func (r *CookieRotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		close(r.stopCh)
		r.running = false
	}
}

// Running reports whether the rotator loop is active.
func (r *CookieRotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
