package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
)

var cardContentPattern = regexp.MustCompile(`^http://googleusercontent\.com/card_content/\d+`)

// GenerateOptions contains options for content generation
type GenerateOptions struct {
	Model    models.Model
	Metadata []string // [cid, rid, rcid] for chat context
}

// GenerateContent sends a prompt to Gemini. When the cookies are rejected
// and a cookie source is configured, it refreshes them and retries once.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error) {
	out, err := c.doGenerateContent(ctx, prompt, opts)
	if err == nil || !apierrors.IsAuthError(err) || !c.canRefresh() {
		return out, err
	}

	refreshed, refreshErr := c.RefreshCookies(ctx)
	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Msg("cookie refresh after auth failure")
	}
	if !refreshed {
		return nil, err
	}
	return c.doGenerateContent(ctx, prompt, opts)
}

func (c *GeminiClient) doGenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.ModelOutput, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if c.IsClosed() {
		return nil, errClientClosed
	}

	model := c.GetModel()
	var metadata []string
	if opts != nil {
		if opts.Model.Name != "" {
			model = opts.Model
		}
		metadata = opts.Metadata
	}

	payload, err := buildPayload(prompt, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	form := url.Values{}
	form.Set("at", c.GetAccessToken())
	form.Set("f.req", payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, models.EndpointGenerate, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, models.DefaultHeaders())
	setHeaders(req, model.Header)
	addSessionCookies(req, c.cookies)

	resp, err := send(ctx, c.httpClient, req, "generate content")
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apierrors.NewAuthError(fmt.Sprintf("generate rejected with status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		body, _ := readBody(resp, maxErrorBytes)
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, models.EndpointGenerate, "generate content failed", body)
	}

	body, err := readBody(resp, maxResponseBytes)
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", err)
	}
	return parseResponse(body, model.Name)
}

// buildPayload creates the f.req form value: [null, "[[prompt],null,metadata]"].
func buildPayload(prompt string, metadata []string) (string, error) {
	inner := []any{
		[]any{prompt},
		nil,
		metadata,
	}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		return "", err
	}

	outerJSON, err := json.Marshal([]any{nil, string(innerJSON)})
	if err != nil {
		return "", err
	}
	return string(outerJSON), nil
}

// parseResponse extracts candidates and metadata from a StreamGenerate
// body. The body starts with an anti-XSSI prefix and may interleave
// chunk lengths, so the first JSON array line is used.
func parseResponse(body []byte, modelName string) (*models.ModelOutput, error) {
	var jsonLine string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && gjson.Valid(line) {
			jsonLine = line
			break
		}
	}
	if jsonLine == "" {
		return nil, apierrors.NewParseError("no valid JSON found in response", "")
	}

	parsed := gjson.Parse(jsonLine)

	if code := parsed.Get(PathAltErrorCode); code.Exists() && !code.IsArray() && code.Int() > 0 {
		return nil, apierrors.HandleErrorCode(apierrors.ErrorCode(code.Int()), modelName)
	}

	var responseBody gjson.Result
	parsed.ForEach(func(_, value gjson.Result) bool {
		bodyData := value.Get(PathBody)
		if !bodyData.Exists() {
			return true
		}
		candidate := gjson.Parse(bodyData.String())
		if candidate.Get(PathCandList).Exists() {
			responseBody = candidate
			return false
		}
		return true
	})

	if !responseBody.Exists() {
		if code := parsed.Get(PathErrorCode); code.Exists() {
			return nil, apierrors.HandleErrorCode(apierrors.ErrorCode(code.Int()), modelName)
		}
		return nil, apierrors.NewParseError("no response body found", PathBody)
	}

	var metadata []string
	responseBody.Get(PathMetadata).ForEach(func(_, v gjson.Result) bool {
		metadata = append(metadata, v.String())
		return true
	})

	candidateList := responseBody.Get(PathCandList)
	if !candidateList.IsArray() {
		return nil, apierrors.NewParseError("no candidates found", PathCandList)
	}

	var candidates []models.Candidate
	candidateList.ForEach(func(_, cand gjson.Result) bool {
		rcid := cand.Get(PathCandRCID).String()
		if rcid == "" {
			return true
		}
		text := cand.Get(PathCandText).String()
		if cardContentPattern.MatchString(text) {
			if alt := cand.Get(PathCandTextAlt).String(); alt != "" {
				text = alt
			}
		}
		candidates = append(candidates, models.Candidate{RCID: rcid, Text: text})
		return true
	})

	if len(candidates) == 0 {
		return nil, apierrors.NewParseError("no valid candidates found", PathCandList)
	}

	return &models.ModelOutput{
		Metadata:   metadata,
		Candidates: candidates,
	}, nil
}
