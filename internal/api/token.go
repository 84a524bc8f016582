package api

import (
	"context"
	"fmt"
	"regexp"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/mangroveguide/internal/config"
	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
)

var snlm0ePattern = regexp.MustCompile(`"SNlM0e":"([^"]+)"`)

// GetAccessToken scrapes the SNlM0e token from the Gemini app page.
func GetAccessToken(ctx context.Context, client Doer, cookies *config.Cookies) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, models.EndpointInit, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create access token request: %w", err)
	}
	setHeaders(req, models.DefaultHeaders())
	addSessionCookies(req, cookies)

	resp, err := send(ctx, client, req, "fetch access token")
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return "", apierrors.NewAuthError(fmt.Sprintf("failed to fetch access token, status: %d", resp.StatusCode))
	}

	body, err := readBody(resp, maxResponseBytes)
	if err != nil {
		return "", apierrors.NewNetworkError("read access token page", err)
	}

	matches := snlm0ePattern.FindSubmatch(body)
	if len(matches) < 2 {
		return "", apierrors.NewAuthError("SNlM0e token not found in response; cookies may be expired")
	}
	return string(matches[1]), nil
}
