package gateway

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/session"
	"github.com/diogo/mangroveguide/internal/transcript"
)

var _ session.Gateway = (*Bot)(nil)

func echoBackend() Backend {
	return BackendFunc(func(_ context.Context, p models.Prompt) (string, error) {
		return "ECHO:" + p.Message, nil
	})
}

func history() transcript.Transcript {
	return transcript.Of(
		models.NewText("h-1", models.RoleModel, "Welcome"),
		models.NewImages("h-2", models.RoleModel, models.Image{Src: "https://example.com/m.png"}),
		models.NewButton("h-3", models.RoleModel, "Explore"),
		models.NewText("h-4", models.RoleUser, "What is a mangrove?"),
		models.NewText("h-5", models.RoleModel, "A salt tolerant tree."),
	)
}

func TestAskReturnsBackendReply(t *testing.T) {
	bot := New(Static(echoBackend()))
	if got := bot.Ask(context.Background(), "test", transcript.Transcript{}); got != "ECHO:test" {
		t.Errorf("Ask() = %q, want ECHO:test", got)
	}
}

func TestAskBuildsPrompt(t *testing.T) {
	var got models.Prompt
	backend := BackendFunc(func(_ context.Context, p models.Prompt) (string, error) {
		got = p
		return "ok", nil
	})
	bot := New(Static(backend), WithSystemInstruction("be nice"), WithModel("gemini-x"))

	bot.Ask(context.Background(), "roots?", history())

	if got.Message != "roots?" || got.SystemInstruction != "be nice" || got.Model != "gemini-x" {
		t.Errorf("prompt = %+v", got)
	}
	want := []models.Turn{
		{Role: models.RoleModel, Text: "Welcome"},
		{Role: models.RoleUser, Text: "What is a mangrove?"},
		{Role: models.RoleModel, Text: "A salt tolerant tree."},
	}
	if !slices.Equal(got.History, want) {
		t.Errorf("History = %+v, want %+v", got.History, want)
	}
}

func TestWithHistoryDisabled(t *testing.T) {
	var got models.Prompt
	backend := BackendFunc(func(_ context.Context, p models.Prompt) (string, error) {
		got = p
		return "ok", nil
	})
	bot := New(Static(backend), WithHistory(false))

	bot.Ask(context.Background(), "q", history())
	if got.History != nil {
		t.Errorf("History = %+v, want nil", got.History)
	}
	if !slices.Equal(got.Context, []string{"Welcome"}) {
		t.Errorf("Context = %q, screen content must be sent without history", got.Context)
	}
}

func TestScreenContext(t *testing.T) {
	tests := []struct {
		name    string
		history transcript.Transcript
		want    []string
	}{
		{"empty", transcript.Transcript{}, nil},
		{"stops at first user entry", history(), []string{"Welcome"}},
		{
			"skips images and blank text",
			transcript.Of(
				models.NewText("a", models.RoleModel, "Intro"),
				models.NewText("b", models.RoleModel, "  "),
				models.NewImages("c", models.RoleModel, models.Image{Src: "x.png"}),
				models.NewText("d", models.RoleModel, "More"),
			),
			[]string{"Intro", "More"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreenContext(tt.history); !slices.Equal(got, tt.want) {
				t.Errorf("ScreenContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackendErrorsBecomeFallback(t *testing.T) {
	errs := []error{
		apierrors.NewNetworkError("generate", errors.New("connection reset")),
		apierrors.NewAPIError(500, "generateContent", "server error"),
		apierrors.NewUsageLimitError("quota"),
		apierrors.NewParseError("no text", "candidates.0"),
		errors.New("anything"),
	}

	for _, e := range errs {
		var buf bytes.Buffer
		backend := BackendFunc(func(context.Context, models.Prompt) (string, error) { return "", e })
		bot := New(Static(backend), WithLogger(zerolog.New(&buf)))

		if got := bot.Ask(context.Background(), "q", history()); got != FallbackReply {
			t.Errorf("Ask() with %v = %q, want fallback", e, got)
		}
		if kind := `"kind":"` + apierrors.Kind(e) + `"`; !strings.Contains(buf.String(), kind) {
			t.Errorf("log %q lacks %s", buf.String(), kind)
		}
	}
}

func TestEmptyReplyBecomesFallback(t *testing.T) {
	backend := BackendFunc(func(context.Context, models.Prompt) (string, error) { return "  \n", nil })
	bot := New(Static(backend))

	if got := bot.Ask(context.Background(), "q", transcript.Transcript{}); got != FallbackReply {
		t.Errorf("Ask() = %q, want fallback", got)
	}
}

func TestFactoryFailureIsPermanent(t *testing.T) {
	var calls atomic.Int32
	var buf bytes.Buffer
	factory := func(context.Context) (Backend, error) {
		calls.Add(1)
		return nil, apierrors.NewConfigError("API_KEY", "not set")
	}
	bot := New(factory, WithLogger(zerolog.New(&buf)))

	for range 3 {
		if got := bot.Ask(context.Background(), "q", transcript.Transcript{}); got != FallbackReply {
			t.Fatalf("Ask() = %q, want fallback", got)
		}
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("factory ran %d times, want 1", n)
	}
	if !apierrors.IsConfigError(bot.Err()) {
		t.Errorf("Err() = %v, want config error", bot.Err())
	}
	if n := strings.Count(buf.String(), "bot backend unavailable"); n != 1 {
		t.Errorf("failure logged %d times, want 1", n)
	}
}

func TestFactoryIsLazy(t *testing.T) {
	var calls atomic.Int32
	factory := func(context.Context) (Backend, error) {
		calls.Add(1)
		return echoBackend(), nil
	}

	bot := New(factory)
	if calls.Load() != 0 {
		t.Fatal("factory ran before the first Ask")
	}

	bot.Ask(context.Background(), "a", transcript.Transcript{})
	bot.Ask(context.Background(), "b", transcript.Transcript{})
	if n := calls.Load(); n != 1 {
		t.Errorf("factory ran %d times, want 1", n)
	}
	if err := bot.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestNilFactoryOrBackend(t *testing.T) {
	if got := New(nil).Ask(context.Background(), "q", transcript.Transcript{}); got != FallbackReply {
		t.Errorf("nil factory: Ask() = %q", got)
	}

	nilBackend := func(context.Context) (Backend, error) { return nil, nil }
	bot := New(nilBackend)
	if got := bot.Ask(context.Background(), "q", transcript.Transcript{}); got != FallbackReply {
		t.Errorf("nil backend: Ask() = %q", got)
	}
	if !apierrors.IsConfigError(bot.Err()) {
		t.Errorf("Err() = %v, want config error", bot.Err())
	}
}

func TestTimeoutBoundsCall(t *testing.T) {
	backend := BackendFunc(func(ctx context.Context, _ models.Prompt) (string, error) {
		<-ctx.Done()
		return "", apierrors.NewNetworkError("generate", ctx.Err())
	})
	bot := New(Static(backend), WithTimeout(10*time.Millisecond))

	if got := bot.Ask(context.Background(), "slow", transcript.Transcript{}); got != FallbackReply {
		t.Errorf("Ask() = %q, want fallback", got)
	}
}

type closingBackend struct {
	closed bool
}

func (c *closingBackend) Generate(context.Context, models.Prompt) (string, error) { return "ok", nil }
func (c *closingBackend) Close() error                                          { c.closed = true; return nil }

func TestCloseReleasesBackend(t *testing.T) {
	cb := &closingBackend{}
	bot := New(Static(cb))
	if err := bot.Close(); err != nil {
		t.Fatalf("Close() before first use = %v", err)
	}

	bot.Ask(context.Background(), "q", transcript.Transcript{})
	if err := bot.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !cb.closed {
		t.Error("backend not closed")
	}
}

func TestBotDrivesSession(t *testing.T) {
	bot := New(Static(echoBackend()))
	c, err := session.New([]models.Entry{models.NewText("s", models.RoleModel, "hi")}, bot)
	if err != nil {
		t.Fatal(err)
	}

	c.SetDraft("test")
	if !c.Send(context.Background()) {
		t.Fatal("Send() made no request")
	}

	if last, _ := c.Transcript().Last(); last.Content != "ECHO:test" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestFailingBotDrivesSession(t *testing.T) {
	failing := func(context.Context) (Backend, error) { return nil, apierrors.NewConfigError("API_KEY", "missing") }
	c, err := session.New([]models.Entry{models.NewText("s", models.RoleModel, "hi")}, New(failing))
	if err != nil {
		t.Fatal(err)
	}

	c.SetDraft("hello")
	if !c.Send(context.Background()) {
		t.Fatal("Send() made no request")
	}

	if n := c.Transcript().Len(); n != 3 {
		t.Errorf("transcript len = %d, want 3", n)
	}
	last, _ := c.Transcript().Last()
	if last.Role != models.RoleModel || last.Content != FallbackReply {
		t.Errorf("last entry = %+v, want the fallback from the model", last)
	}
	if c.Busy() {
		t.Error("session should be idle")
	}
}
