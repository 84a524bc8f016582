package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/mangroveguide/internal/models"
)

// Decoration is the placement and avatar of an entry, derived from its
// role.
type Decoration struct {
	Align lipgloss.Position
	Glyph string
	Name  string
}

const (
	botGlyph  = "🌿"
	userGlyph = "🧑"
)

// DecorationFor returns the decoration for role. Model entries sit on the
// left with the bot glyph, user entries on the right.
func DecorationFor(role models.Role) Decoration {
	if role == models.RoleUser {
		return Decoration{Align: lipgloss.Right, Glyph: userGlyph, Name: "You"}
	}
	return Decoration{Align: lipgloss.Left, Glyph: botGlyph, Name: "Guide"}
}
