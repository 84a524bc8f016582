package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/gateway"
	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/session"
)

const okReply = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Mangroves "},{"text":"protect coasts."}]},"finishReason":"STOP"}]}`

func TestNewKeyClientRequiresKey(t *testing.T) {
	_, err := NewKeyClient("  ", WithKeyHTTPClient(newMockDoer()))
	if !apierrors.IsConfigError(err) {
		t.Fatalf("NewKeyClient() error = %v, want config error", err)
	}
}

func TestKeyClientGenerate(t *testing.T) {
	doer := newMockDoer(mockResponse{status: 200, body: okReply})
	c, err := NewKeyClient("secret", WithKeyHTTPClient(doer), WithKeyBaseURL("https://example.test/v1beta/"))
	if err != nil {
		t.Fatal(err)
	}

	reply, err := c.Generate(context.Background(), models.Prompt{
		Message:           "Why are mangroves important?",
		SystemInstruction: "You are an expert on mangroves.",
		Model:             "gemini-2.5-flash",
		History: []models.Turn{
			{Role: models.RoleModel, Text: "Welcome!"},
			{Role: models.RoleUser, Text: "Hi"},
			{Role: models.RoleModel, Text: "Hello there"},
		},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "Mangroves protect coasts." {
		t.Errorf("Generate() = %q", reply)
	}

	req, body := doer.request(0)
	if got := req.URL.String(); got != "https://example.test/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("URL = %s", got)
	}
	if req.Header.Get("x-goog-api-key") != "secret" {
		t.Error("API key header not set")
	}
	if gjson.Get(body, "systemInstruction.parts.0.text").String() != "You are an expert on mangroves." {
		t.Errorf("systemInstruction missing: %s", body)
	}

	roles := gjson.Get(body, "contents.#.role").Array()
	if len(roles) != 3 || roles[0].String() != "user" || roles[2].String() != "user" {
		t.Errorf("contents roles = %v, want [user model user]", roles)
	}
	if gjson.Get(body, "contents.2.parts.0.text").String() != "Why are mangroves important?" {
		t.Errorf("last content is not the new message: %s", body)
	}
}

func TestBuildKeyRequest(t *testing.T) {
	tests := []struct {
		name      string
		prompt    models.Prompt
		wantRoles []string
		wantParts []int
	}{
		{
			name:      "message only",
			prompt:    models.Prompt{Message: "q"},
			wantRoles: []string{"user"},
			wantParts: []int{1},
		},
		{
			name: "seeded model turns dropped",
			prompt: models.Prompt{Message: "q", History: []models.Turn{
				{Role: models.RoleModel, Text: "a"},
				{Role: models.RoleModel, Text: "b"},
			}},
			wantRoles: []string{"user"},
			wantParts: []int{1},
		},
		{
			name: "consecutive turns merged",
			prompt: models.Prompt{Message: "q3", History: []models.Turn{
				{Role: models.RoleUser, Text: "q1"},
				{Role: models.RoleModel, Text: "a1"},
				{Role: models.RoleModel, Text: "a1b"},
				{Role: models.RoleUser, Text: "q2"},
			}},
			wantRoles: []string{"user", "model", "user"},
			wantParts: []int{1, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := buildKeyRequest(tt.prompt)
			if req.SystemInstruction != nil {
				t.Error("SystemInstruction should be omitted when empty")
			}
			if len(req.Contents) != len(tt.wantRoles) {
				t.Fatalf("len(Contents) = %d, want %d", len(req.Contents), len(tt.wantRoles))
			}
			for i, c := range req.Contents {
				if c.Role != tt.wantRoles[i] || len(c.Parts) != tt.wantParts[i] {
					t.Errorf("Contents[%d] = %s/%d parts, want %s/%d", i, c.Role, len(c.Parts), tt.wantRoles[i], tt.wantParts[i])
				}
			}
		})
	}
}

func TestBuildKeyRequestCarriesScreenContext(t *testing.T) {
	req := buildKeyRequest(models.Prompt{
		Message:           "q",
		SystemInstruction: "sys",
		Context:           []string{"Welcome to the estuary."},
		History:           []models.Turn{{Role: models.RoleModel, Text: "Welcome to the estuary."}},
	})
	if req.SystemInstruction == nil {
		t.Fatal("SystemInstruction missing")
	}
	text := req.SystemInstruction.Parts[0].Text
	if !strings.HasPrefix(text, "sys\n\n") || !strings.Contains(text, "Welcome to the estuary.") {
		t.Errorf("SystemInstruction = %q", text)
	}
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Errorf("Contents = %+v, want the user message only", req.Contents)
	}
}

func TestKarnatakaQuestionCarriesScreenContent(t *testing.T) {
	doer := newMockDoer(mockResponse{status: 200, body: okReply})
	c, err := NewKeyClient("secret", WithKeyHTTPClient(doer))
	if err != nil {
		t.Fatal(err)
	}
	def, _ := screens.Get(screens.Karnataka)

	for _, history := range []bool{true, false} {
		bot := gateway.New(gateway.Static(c), gateway.WithHistory(history))
		ctrl, err := session.New(def.Seed(), bot)
		if err != nil {
			t.Fatal(err)
		}
		ctrl.SetDraft("Which of these regions is most pristine?")
		if !ctrl.Send(context.Background()) {
			t.Fatal("Send() made no request")
		}
	}

	for i := range 2 {
		_, body := doer.request(i)
		if !strings.Contains(gjson.Get(body, "systemInstruction.parts.0.text").String(), "Aghanashini") {
			t.Errorf("request %d lacks the Karnataka screen content: %s", i, body)
		}
		if got := gjson.Get(body, "contents.0.parts.0.text").String(); got != "Which of these regions is most pristine?" {
			t.Errorf("request %d first content = %q", i, got)
		}
	}
}

func TestBuildKeyRequestDoesNotMutateHistory(t *testing.T) {
	history := make([]models.Turn, 1, 4)
	history[0] = models.Turn{Role: models.RoleUser, Text: "q1"}

	buildKeyRequest(models.Prompt{Message: "q2", History: history})
	if len(history) != 1 || cap(history) != 4 {
		t.Fatal("history slice changed")
	}
	if extended := history[:2]; extended[1].Text != "" {
		t.Errorf("history backing array written: %q", extended[1].Text)
	}
}

func TestKeyClientStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   string
	}{
		{"invalid key", 400, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`, "auth"},
		{"forbidden", 403, `{"error":{"message":"denied"}}`, "auth"},
		{"quota", 429, `{"error":{"message":"Resource exhausted"}}`, "usage_limit"},
		{"server", 500, `oops`, "api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewKeyClient("k", WithKeyHTTPClient(newMockDoer(mockResponse{status: tt.status, body: tt.body})))
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.Generate(context.Background(), models.Prompt{Message: "q"})
			if got := apierrors.Kind(err); got != tt.kind {
				t.Errorf("Kind(%v) = %s, want %s", err, got, tt.kind)
			}
		})
	}
}

func TestKeyClientBodyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"not json", `<html>`, "parse"},
		{"no candidates", `{"candidates":[]}`, "parse"},
		{"prompt blocked", `{"promptFeedback":{"blockReason":"SAFETY"}}`, "blocked"},
		{"safety finish", `{"candidates":[{"finishReason":"SAFETY"}]}`, "blocked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewKeyClient("k", WithKeyHTTPClient(newMockDoer(mockResponse{status: 200, body: tt.body})))
			_, err := c.Generate(context.Background(), models.Prompt{Message: "q"})
			if got := apierrors.Kind(err); got != tt.kind {
				t.Errorf("Kind(%v) = %s, want %s", err, got, tt.kind)
			}
		})
	}
}

func TestKeyClientNetworkError(t *testing.T) {
	c, _ := NewKeyClient("k", WithKeyHTTPClient(newMockDoer(mockResponse{err: errors.New("dial tcp: refused")})))

	_, err := c.Generate(context.Background(), models.Prompt{Message: "q"})
	if !apierrors.IsNetworkError(err) {
		t.Errorf("Generate() error = %v, want network error", err)
	}
}

func TestKeyClientEmptyMessage(t *testing.T) {
	doer := newMockDoer(mockResponse{status: 200, body: okReply})
	c, _ := NewKeyClient("k", WithKeyHTTPClient(doer))

	if _, err := c.Generate(context.Background(), models.Prompt{Message: " "}); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Generate() error = %v, want empty prompt error", err)
	}
	if doer.calls() != 0 {
		t.Error("no request should be sent for an empty prompt")
	}
}
