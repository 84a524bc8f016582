package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
)

// KeyClient calls the generateContent endpoint with an API key. It keeps
// no state between calls; context travels in the prompt history.
type KeyClient struct {
	httpClient Doer
	apiKey     string
	baseURL    string
	logger     zerolog.Logger
}

// KeyOption configures a KeyClient.
type KeyOption func(*KeyClient)

// WithKeyHTTPClient replaces the TLS client, mainly for tests.
func WithKeyHTTPClient(d Doer) KeyOption {
	return func(c *KeyClient) { c.httpClient = d }
}

// WithKeyBaseURL points the client at another API root.
func WithKeyBaseURL(u string) KeyOption {
	return func(c *KeyClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithKeyLogger sets the logger.
func WithKeyLogger(l zerolog.Logger) KeyOption {
	return func(c *KeyClient) { c.logger = l }
}

// NewKeyClient creates a client. A blank key is a configuration error.
func NewKeyClient(apiKey string, opts ...KeyOption) (*KeyClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.NewConfigError("API_KEY", "no API key set; export API_KEY or GEMINI_API_KEY, or set api_key in config.json")
	}

	c := &KeyClient{
		apiKey:  apiKey,
		baseURL: models.EndpointGenerativeLanguage,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := NewHTTPClient(defaultTimeoutSeconds)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}
	return c, nil
}

type keyPart struct {
	Text string `json:"text"`
}

type keyContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []keyPart `json:"parts"`
}

type keyRequest struct {
	SystemInstruction *keyContent  `json:"systemInstruction,omitempty"`
	Contents          []keyContent `json:"contents"`
}

// Generate sends the prompt and returns the reply text.
func (c *KeyClient) Generate(ctx context.Context, p models.Prompt) (string, error) {
	if strings.TrimSpace(p.Message) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	model := p.Model
	if model == "" {
		model = models.DefaultModelName
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))

	payload, err := json.Marshal(buildKeyRequest(p))
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := send(ctx, c.httpClient, req, "generate content")
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := readBody(resp, maxErrorBytes)
		return "", keyStatusError(resp.StatusCode, endpoint, body)
	}

	body, err := readBody(resp, maxResponseBytes)
	if err != nil {
		return "", apierrors.NewNetworkError("read response", err)
	}

	c.logger.Debug().Str("model", model).Int("bytes", len(body)).Msg("generateContent ok")
	return parseKeyResponse(body)
}

// buildKeyRequest drops leading model turns (the API wants the
// conversation to open with the user), merges consecutive turns of the
// same role and appends the new message. The screen content those leading
// turns carried travels in the system instruction instead.
func buildKeyRequest(p models.Prompt) keyRequest {
	var req keyRequest
	if instruction := p.Instruction(); strings.TrimSpace(instruction) != "" {
		req.SystemInstruction = &keyContent{Parts: []keyPart{{Text: instruction}}}
	}

	turns := append(slices.Clone(p.History), models.Turn{Role: models.RoleUser, Text: p.Message})
	for len(turns) > 0 && turns[0].Role != models.RoleUser {
		turns = turns[1:]
	}

	for _, t := range turns {
		role := string(t.Role)
		if n := len(req.Contents); n > 0 && req.Contents[n-1].Role == role {
			req.Contents[n-1].Parts = append(req.Contents[n-1].Parts, keyPart{Text: t.Text})
			continue
		}
		req.Contents = append(req.Contents, keyContent{Role: role, Parts: []keyPart{{Text: t.Text}}})
	}
	return req
}

func keyStatusError(status int, endpoint string, body []byte) error {
	msg := gjson.GetBytes(body, PathKeyErrorMessage).String()
	if msg == "" {
		msg = http.StatusText(status)
	}

	invalidKey := false
	for _, r := range gjson.GetBytes(body, PathKeyErrorReason).Array() {
		if r.String() == "API_KEY_INVALID" {
			invalidKey = true
		}
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden, invalidKey:
		return apierrors.NewAuthError(msg)
	case status == http.StatusTooManyRequests:
		return apierrors.NewUsageLimitError(msg)
	default:
		return apierrors.NewAPIErrorWithBody(status, endpoint, msg, body)
	}
}

func parseKeyResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not JSON", "")
	}

	if reason := gjson.GetBytes(body, PathKeyBlockReason).String(); reason != "" {
		return "", apierrors.NewBlockedError("prompt blocked: " + reason)
	}

	var sb strings.Builder
	for _, t := range gjson.GetBytes(body, PathKeyCandidateText).Array() {
		sb.WriteString(t.String())
	}
	text := sb.String()

	if strings.TrimSpace(text) == "" {
		if reason := gjson.GetBytes(body, PathKeyFinishReason).String(); reason == "SAFETY" {
			return "", apierrors.NewBlockedError("reply withheld by safety filter")
		}
		return "", apierrors.NewParseError("no text in first candidate", PathKeyCandidateText)
	}
	return text, nil
}
