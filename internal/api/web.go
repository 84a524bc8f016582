package api

import (
	"context"
	"sync"

	"github.com/diogo/mangroveguide/internal/config"
	"github.com/diogo/mangroveguide/internal/models"
)

// WebBackend adapts a GeminiClient to the bot gateway. All screens share
// one server-side conversation, so prompt history is not resent. The system
// instruction is inlined into the first message only, and the screen
// content whenever it differs from what the conversation last saw.
type WebBackend struct {
	client *GeminiClient

	mu     sync.Mutex
	chat    *ChatSession
	primed  bool
	context string
}

// NewWebBackend wraps an initialised client.
func NewWebBackend(client *GeminiClient) *WebBackend {
	return &WebBackend{client: client}
}

// OpenWeb creates and initialises a client for cookies.
func OpenWeb(ctx context.Context, cookies *config.Cookies, opts ...ClientOption) (*WebBackend, error) {
	client, err := NewClient(cookies, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewWebBackend(client), nil
}

// Generate sends p.Message in the shared conversation. Calls are
// serialised because each reply advances the conversation metadata.
func (w *WebBackend) Generate(ctx context.Context, p models.Prompt) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.chat == nil {
		w.chat = w.client.StartChat(models.ModelFromName(p.Model))
	}

	note := models.ContextNote(p.Context)
	msg := p.Message
	switch {
	case !w.primed:
		msg = config.FormatSystemPrompt(p.Instruction(), msg)
	case note != "" && note != w.context:
		msg = note + "\n\n[User Message]\n" + msg
	}

	out, err := w.chat.SendMessage(ctx, msg)
	if err != nil {
		return "", err
	}
	w.primed = true
	w.context = note
	return out.Text(), nil
}

// Close releases the client.
func (w *WebBackend) Close() error {
	return w.client.Close()
}
