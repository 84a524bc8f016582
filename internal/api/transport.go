package api

import (
	"context"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/mangroveguide/internal/config"
	apierrors "github.com/diogo/mangroveguide/internal/errors"
)

// Doer sends HTTP requests. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultTimeoutSeconds = 300
	maxResponseBytes      = 8 << 20
	maxErrorBytes         = 4 << 10
)

// NewHTTPClient returns a TLS client with a Chrome fingerprint.
func NewHTTPClient(timeoutSeconds int) (tls_client.HttpClient, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeoutSeconds),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// send performs req and maps transport failures to NetworkError.
func send(ctx context.Context, client Doer, req *http.Request, op string) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierrors.NewNetworkError(op, ctxErr)
		}
		return nil, apierrors.NewNetworkError(op, err)
	}
	if resp == nil {
		return nil, apierrors.NewNetworkError(op, io.ErrUnexpectedEOF)
	}
	return resp, nil
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func readBody(resp *http.Response, limit int64) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func setHeaders(req *http.Request, headers map[string]string) {
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

func addSessionCookies(req *http.Request, cookies *config.Cookies) {
	psid, psidts := cookies.Snapshot()
	req.AddCookie(&http.Cookie{Name: config.CookiePSID, Value: psid})
	if psidts != "" {
		req.AddCookie(&http.Cookie{Name: config.CookiePSIDTS, Value: psidts})
	}
}
