// Package session drives one chat screen: it owns the transcript, the
// input draft and the single outstanding request to the bot.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/transcript"
)

// Gateway answers a user message given the conversation that preceded it.
// It never fails; failures are reported as a reply.
type Gateway interface {
	Ask(ctx context.Context, message string, history transcript.Transcript) string
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, message string, history transcript.Transcript) string

func (f GatewayFunc) Ask(ctx context.Context, message string, history transcript.Transcript) string {
	return f(ctx, message, history)
}

// Action is the behaviour bound to a button entry.
type Action func()

var (
	ErrUnknownEntry = errors.New("no entry with that id")
	ErrNotButton    = errors.New("entry is not a button")
)

// Pending is the ticket for one outstanding gateway call. History is the
// transcript as it stood before the user's message was appended.
type Pending struct {
	Message string
	History transcript.Transcript
	seq     uint64
}

// Controller is a single screen's chat session. It moves between Idle and
// AwaitingReply; at most one request is outstanding. All methods are safe
// for concurrent use.
type Controller struct {
	mu      sync.Mutex
	store   *transcript.Store
	input   Input
	gateway Gateway
	ids     transcript.IDGenerator
	actions map[string]Action
	seq     uint64
	waiting uint64
	closed  bool
	logger  zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(g transcript.IDGenerator) Option {
	return func(c *Controller) { c.ids = g }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller seeded with the screen's initial entries.
func New(seed []models.Entry, gw Gateway, opts ...Option) (*Controller, error) {
	if gw == nil {
		return nil, errors.New("session: nil gateway")
	}
	store, err := transcript.New(seed)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		store:   store,
		gateway: gw,
		ids:     transcript.UUIDGenerator{},
		actions: make(map[string]Action),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Transcript returns the current snapshot.
func (c *Controller) Transcript() transcript.Transcript {
	return c.store.Snapshot()
}

// SetDraft replaces the input draft.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.SetDraft(text)
}

// Draft returns the input draft.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Draft()
}

// Busy reports whether a reply is outstanding.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Busy()
}

// CanSubmit reports whether Submit would start a request.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.input.CanSubmit()
}

// Submit appends the trimmed draft as a user entry, clears the draft and
// marks the session busy. It returns false, changing nothing, when the
// draft is blank, a reply is outstanding or the session is closed.
func (c *Controller) Submit() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.input.CanSubmit() {
		return Pending{}, false
	}

	history := c.store.Snapshot()
	msg := strings.TrimSpace(c.input.Draft())
	if err := c.store.Append(models.NewText(c.ids.NewID(), models.RoleUser, msg)); err != nil {
		c.logger.Error().Err(err).Msg("append user entry")
		return Pending{}, false
	}
	c.input.begin()

	c.seq++
	c.waiting = c.seq
	return Pending{Message: msg, History: history, seq: c.seq}, true
}

// Ask performs the gateway call for p. It blocks and must not be called
// while holding UI state; the result goes to Resolve.
func (c *Controller) Ask(ctx context.Context, p Pending) string {
	return c.gateway.Ask(ctx, p.Message, p.History)
}

// Resolve appends the reply for p as a model entry and returns the session
// to Idle. Replies for a closed session or a stale ticket are dropped and
// Resolve returns false.
func (c *Controller) Resolve(p Pending, reply string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug().Uint64("seq", p.seq).Msg("dropping reply for closed session")
		return false
	}
	if p.seq == 0 || p.seq != c.waiting {
		c.logger.Debug().Uint64("seq", p.seq).Msg("dropping stale reply")
		return false
	}

	c.waiting = 0
	c.input.busy = false
	if err := c.store.Append(models.NewText(c.ids.NewID(), models.RoleModel, reply)); err != nil {
		c.logger.Error().Err(err).Msg("append model entry")
		return false
	}
	return true
}

// Send runs a whole submit cycle synchronously. It reports whether a
// request was made.
func (c *Controller) Send(ctx context.Context) bool {
	p, ok := c.Submit()
	if !ok {
		return false
	}
	c.Resolve(p, c.Ask(ctx, p))
	return true
}

// Bind attaches an action to a button entry.
func (c *Controller) Bind(entryID string, action Action) error {
	e, ok := c.store.Find(entryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, entryID)
	}
	if e.Kind != models.KindButton {
		return fmt.Errorf("%w: %s", ErrNotButton, entryID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions[entryID] = action
	return nil
}

// Activate runs the action bound to entryID once. The transcript is never
// changed. It returns false if nothing is bound or the session is closed.
func (c *Controller) Activate(entryID string) bool {
	c.mu.Lock()
	action, ok := c.actions[entryID]
	closed := c.closed
	c.mu.Unlock()

	if !ok || closed || action == nil {
		return false
	}
	action()
	return true
}

// Bound reports whether entryID has an action.
func (c *Controller) Bound(entryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.actions[entryID]
	return ok
}

// Close tears the session down. Later replies are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
