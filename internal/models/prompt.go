package models

import "strings"

// Turn is one text exchange sent to a backend as conversation context.
type Turn struct {
	Role Role
	Text string
}

// Prompt is the backend-neutral request built by the bot gateway.
type Prompt struct {
	Message string
	History []Turn
	// Context is the text the screen showed before the user spoke. It is
	// sent whether or not History is.
	Context           []string
	SystemInstruction string
	Model             string
}

// ContextNote renders screen lines as a block the model reads as background.
// It is empty when there are none.
func ContextNote(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[Screen Content]\nThe user is reading the following before asking:")
	for _, c := range lines {
		sb.WriteString("\n\n")
		sb.WriteString(c)
	}
	return sb.String()
}

// Instruction joins the system instruction and the context note.
func (p Prompt) Instruction() string {
	note := ContextNote(p.Context)
	switch {
	case note == "":
		return p.SystemInstruction
	case strings.TrimSpace(p.SystemInstruction) == "":
		return note
	default:
		return p.SystemInstruction + "\n\n" + note
	}
}
