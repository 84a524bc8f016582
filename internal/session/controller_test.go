package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/transcript"
)

const fallback = "I'm sorry, I'm having trouble connecting to my knowledge base right now. Please try again later."

var echo = GatewayFunc(func(_ context.Context, msg string, _ transcript.Transcript) string {
	return "ECHO:" + msg
})

var failing = GatewayFunc(func(context.Context, string, transcript.Transcript) string {
	return fallback
})

func testSeed() []models.Entry {
	return []models.Entry{
		models.NewText("seed-1", models.RoleModel, "Hello!"),
		models.NewButton("seed-2", models.RoleModel, "Continue"),
	}
}

func newController(t *testing.T, gw Gateway) *Controller {
	t.Helper()
	c, err := New(testSeed(), gw)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func mustSubmit(t *testing.T, c *Controller) Pending {
	t.Helper()
	p, ok := c.Submit()
	if !ok {
		t.Fatal("Submit() refused a valid draft")
	}
	return p
}

func mustSend(t *testing.T, c *Controller) {
	t.Helper()
	if !c.Send(context.Background()) {
		t.Fatal("Send() made no request")
	}
}

func TestNewRejectsNilGateway(t *testing.T) {
	if _, err := New(testSeed(), nil); err == nil {
		t.Error("New() with nil gateway should fail")
	}
}

func TestSendAppendsUserThenModel(t *testing.T) {
	c := newController(t, echo)

	c.SetDraft("  test  ")
	mustSend(t, c)

	tr := c.Transcript()
	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}

	user, model := tr.At(2), tr.At(3)
	if user.Role != models.RoleUser || user.Content != "test" {
		t.Errorf("user entry = %+v", user)
	}
	if model.Role != models.RoleModel || model.Content != "ECHO:test" {
		t.Errorf("model entry = %+v", model)
	}
	if user.ID == model.ID {
		t.Errorf("entries share id %q", user.ID)
	}
	if c.Busy() || c.Draft() != "" {
		t.Errorf("after send: busy = %v, draft = %q", c.Busy(), c.Draft())
	}
}

func TestTranscriptGrowsByTwoPerSubmission(t *testing.T) {
	c := newController(t, echo)
	seedLen := c.Transcript().Len()

	const n = 5
	for i := range n {
		c.SetDraft(strings.Repeat("q", i+1))
		mustSend(t, c)
	}

	tr := c.Transcript()
	if tr.Len() != seedLen+2*n {
		t.Errorf("Len() = %d, want %d", tr.Len(), seedLen+2*n)
	}

	seen := make(map[string]bool)
	for e := range tr.Entries() {
		if seen[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestBlankDraftIsIgnored(t *testing.T) {
	for _, draft := range []string{"", " ", "\t\n  "} {
		c := newController(t, echo)
		c.SetDraft(draft)

		if c.CanSubmit() {
			t.Errorf("CanSubmit() with %q = true", draft)
		}
		if _, ok := c.Submit(); ok {
			t.Errorf("Submit() with %q accepted", draft)
		}
		if c.Transcript().Len() != 2 || c.Draft() != draft || c.Busy() {
			t.Errorf("blank submit %q changed state", draft)
		}
	}
}

func TestSubmitWhileBusyIsIgnored(t *testing.T) {
	c := newController(t, echo)

	c.SetDraft("first")
	p := mustSubmit(t, c)
	if !c.Busy() || c.Transcript().Len() != 3 {
		t.Fatalf("after submit: busy = %v, len = %d", c.Busy(), c.Transcript().Len())
	}

	c.SetDraft("second")
	if c.CanSubmit() {
		t.Error("CanSubmit() while busy = true")
	}
	if _, ok := c.Submit(); ok {
		t.Error("Submit() while busy accepted")
	}
	if c.Transcript().Len() != 3 || c.Draft() != "second" {
		t.Errorf("busy submit changed state: len = %d, draft = %q", c.Transcript().Len(), c.Draft())
	}

	if !c.Resolve(p, "reply") {
		t.Fatal("Resolve() dropped the reply")
	}
	if c.Busy() || !c.CanSubmit() {
		t.Error("session should accept input after the reply")
	}
}

func TestPendingCarriesPriorHistory(t *testing.T) {
	var gotMsg string
	var gotLen int
	gw := GatewayFunc(func(_ context.Context, msg string, h transcript.Transcript) string {
		gotMsg, gotLen = msg, h.Len()
		return "ok"
	})
	c := newController(t, gw)

	c.SetDraft(" where? ")
	mustSend(t, c)

	if gotMsg != "where?" {
		t.Errorf("message = %q, want trimmed draft", gotMsg)
	}
	if gotLen != 2 {
		t.Errorf("history len = %d, want 2 (without the new user entry)", gotLen)
	}
}

func TestFailingGatewayYieldsFallbackEntry(t *testing.T) {
	c := newController(t, failing)

	c.SetDraft("anything")
	mustSend(t, c)

	tr := c.Transcript()
	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}
	if last, _ := tr.Last(); last.Role != models.RoleModel || last.Content != fallback {
		t.Errorf("last entry = %+v", last)
	}
	if c.Busy() {
		t.Error("session should be idle")
	}
}

func TestResolveAfterCloseIsDropped(t *testing.T) {
	c := newController(t, echo)

	c.SetDraft("late")
	p := mustSubmit(t, c)

	c.Close()
	if c.Resolve(p, "too late") {
		t.Error("Resolve() after Close accepted the reply")
	}
	if c.Transcript().Len() != 3 || !c.Closed() {
		t.Errorf("after close: len = %d, closed = %v", c.Transcript().Len(), c.Closed())
	}

	c.SetDraft("after close")
	if _, ok := c.Submit(); ok {
		t.Error("Submit() after Close accepted")
	}
}

func TestStaleTicketIsDropped(t *testing.T) {
	c := newController(t, echo)

	if c.Resolve(Pending{}, "nobody asked") {
		t.Error("zero ticket accepted")
	}

	c.SetDraft("one")
	p := mustSubmit(t, c)
	if !c.Resolve(p, "answer") {
		t.Fatal("Resolve() dropped a current ticket")
	}
	if c.Resolve(p, "answer again") {
		t.Error("ticket resolved twice")
	}
	if c.Transcript().Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Transcript().Len())
	}
}

func TestResolveFromAnotherGoroutine(t *testing.T) {
	c := newController(t, echo)
	c.SetDraft("async")
	p := mustSubmit(t, c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Resolve(p, c.Ask(context.Background(), p))
	}()
	_ = c.Transcript()
	_ = c.Busy()
	wg.Wait()

	if last, _ := c.Transcript().Last(); last.Content != "ECHO:async" {
		t.Errorf("last entry = %+v", last)
	}
}

func TestIDGeneratorOption(t *testing.T) {
	c, err := New(testSeed(), echo, WithIDGenerator(&transcript.SequenceGenerator{Prefix: "t"}))
	if err != nil {
		t.Fatal(err)
	}

	c.SetDraft("hi")
	mustSend(t, c)

	if got := c.Transcript().At(2).ID; got != "t-1" {
		t.Errorf("user id = %q, want t-1", got)
	}
	if got := c.Transcript().At(3).ID; got != "t-2" {
		t.Errorf("model id = %q, want t-2", got)
	}
}

func TestBindAndActivate(t *testing.T) {
	c := newController(t, echo)

	calls := 0
	if err := c.Bind("seed-2", func() { calls++ }); err != nil {
		t.Fatal(err)
	}
	if !c.Bound("seed-2") {
		t.Error("Bound(seed-2) = false")
	}

	before := c.Transcript().Len()
	if !c.Activate("seed-2") || calls != 1 {
		t.Fatalf("first activation: calls = %d", calls)
	}
	if c.Transcript().Len() != before {
		t.Error("activation changed the transcript")
	}
	if !c.Activate("seed-2") || calls != 2 {
		t.Errorf("second activation: calls = %d", calls)
	}
	if c.Activate("seed-1") {
		t.Error("unbound entry activated")
	}
}

func TestBindErrors(t *testing.T) {
	c := newController(t, echo)

	if err := c.Bind("nope", func() {}); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("Bind(nope) = %v, want ErrUnknownEntry", err)
	}
	if err := c.Bind("seed-1", func() {}); !errors.Is(err, ErrNotButton) {
		t.Errorf("Bind(seed-1) = %v, want ErrNotButton", err)
	}
}

func TestActivateAfterClose(t *testing.T) {
	c := newController(t, echo)
	called := false
	if err := c.Bind("seed-2", func() { called = true }); err != nil {
		t.Fatal(err)
	}

	c.Close()
	if c.Activate("seed-2") || called {
		t.Error("action ran after Close")
	}
}

func TestActionMayCloseItsOwnSession(t *testing.T) {
	c := newController(t, echo)
	if err := c.Bind("seed-2", c.Close); err != nil {
		t.Fatal(err)
	}

	if !c.Activate("seed-2") || !c.Closed() {
		t.Error("action closing its session should run and close it")
	}
}

func TestInput(t *testing.T) {
	var in Input
	if in.CanSubmit() {
		t.Error("empty input can submit")
	}

	in.SetDraft("x")
	if !in.CanSubmit() {
		t.Error("non-blank draft cannot submit")
	}

	in.begin()
	if in.Draft() != "" || !in.Busy() {
		t.Errorf("after begin: draft = %q, busy = %v", in.Draft(), in.Busy())
	}

	in.SetDraft("y")
	if in.CanSubmit() {
		t.Error("busy input can submit")
	}
}
