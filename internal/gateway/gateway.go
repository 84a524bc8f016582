// Package gateway turns a hosted model backend into a chat bot that always
// answers: every failure becomes a fixed apology that is shown to the user
// while the cause goes to the log.
package gateway

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/transcript"
)

// FallbackReply is returned whenever the backend cannot produce an answer.
const FallbackReply = "I'm sorry, I'm having trouble connecting to my knowledge base right now. Please try again later."

// Backend produces one reply for a prompt.
type Backend interface {
	Generate(ctx context.Context, prompt models.Prompt) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt models.Prompt) (string, error)

func (f BackendFunc) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	return f(ctx, prompt)
}

// Factory builds the backend on first use. An error is treated as a
// permanent configuration failure.
type Factory func(ctx context.Context) (Backend, error)

// Static returns a factory that always yields b.
func Static(b Backend) Factory {
	return func(context.Context) (Backend, error) { return b, nil }
}

// Bot is the conversational gateway shared by all chat screens.
type Bot struct {
	factory Factory
	logger  zerolog.Logger
	timeout time.Duration
	system  string
	model   string
	history bool

	mu      sync.Mutex
	backend Backend
	initErr error
	built   bool
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Bot) { b.timeout = d }
}

// WithSystemInstruction sets the persona prompt sent with every call.
func WithSystemInstruction(s string) Option {
	return func(b *Bot) { b.system = s }
}

// WithModel sets the model name passed to the backend.
func WithModel(name string) Option {
	return func(b *Bot) { b.model = name }
}

// WithHistory controls whether prior text turns are sent along.
func WithHistory(enabled bool) Option {
	return func(b *Bot) { b.history = enabled }
}

// New creates a bot. The backend is not built until the first Ask.
func New(factory Factory, opts ...Option) *Bot {
	b := &Bot{
		factory: factory,
		logger:  zerolog.Nop(),
		model:   models.DefaultModelName,
		history: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ask returns the model's reply to message, or FallbackReply.
func (b *Bot) Ask(ctx context.Context, message string, history transcript.Transcript) string {
	backend, err := b.ensureBackend(ctx)
	if err != nil {
		return FallbackReply
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	prompt := models.Prompt{
		Message:           message,
		Context:           ScreenContext(history),
		SystemInstruction: b.system,
		Model:             b.model,
	}
	if b.history {
		prompt.History = Turns(history)
	}

	start := time.Now()
	reply, err := backend.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = apierrors.ErrEmptyReply
	}
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("kind", apierrors.Kind(err)).
			Int("status", apierrors.GetHTTPStatus(err)).
			Dur("elapsed", time.Since(start)).
			Msg("bot call failed")
		return FallbackReply
	}

	b.logger.Debug().
		Int("history_turns", len(prompt.History)).
		Int("reply_len", len(reply)).
		Dur("elapsed", time.Since(start)).
		Msg("bot replied")
	return reply
}

// Err returns the configuration failure, if the backend could not be built.
func (b *Bot) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initErr
}

func (b *Bot) ensureBackend(ctx context.Context) (Backend, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return b.backend, b.initErr
	}
	b.built = true

	if b.factory == nil {
		b.initErr = apierrors.NewConfigError("backend", "no backend configured")
	} else {
		b.backend, b.initErr = b.factory(ctx)
		if b.initErr == nil && b.backend == nil {
			b.initErr = apierrors.NewConfigError("backend", "factory returned no backend")
		}
	}
	if b.initErr != nil {
		b.logger.Error().
			Err(b.initErr).
			Str("kind", apierrors.Kind(b.initErr)).
			Msg("bot backend unavailable; all replies will use the fallback")
	}
	return b.backend, b.initErr
}

// Close releases the backend if it holds resources.
func (b *Bot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Turns extracts the text entries of a transcript as backend turns.
// Images and buttons carry no conversational content and are skipped.
func Turns(history transcript.Transcript) []models.Turn {
	var turns []models.Turn
	for e := range history.Entries() {
		if e.Kind != models.KindText || strings.TrimSpace(e.Content) == "" {
			continue
		}
		turns = append(turns, models.Turn{Role: e.Role, Text: e.Content})
	}
	return turns
}

// ScreenContext returns the text of the model entries that open a
// transcript, before the user first spoke.
func ScreenContext(history transcript.Transcript) []string {
	var lines []string
	for e := range history.Entries() {
		if e.Role != models.RoleModel {
			break
		}
		if e.Kind == models.KindText && strings.TrimSpace(e.Content) != "" {
			lines = append(lines, e.Content)
		}
	}
	return lines
}
