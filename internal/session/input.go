package session

import "strings"

// Input is the draft text box state. Submission is allowed only when the
// trimmed draft is non-empty and no reply is outstanding.
type Input struct {
	draft string
	busy  bool
}

// SetDraft replaces the draft.
func (in *Input) SetDraft(text string) { in.draft = text }

// Draft returns the current draft, untrimmed.
func (in *Input) Draft() string { return in.draft }

// Busy reports whether a reply is outstanding.
func (in *Input) Busy() bool { return in.busy }

// CanSubmit reports whether Submit would do anything.
func (in *Input) CanSubmit() bool {
	return strings.TrimSpace(in.draft) != "" && !in.busy
}

// begin clears the draft and marks the input busy.
func (in *Input) begin() {
	in.draft = ""
	in.busy = true
}
