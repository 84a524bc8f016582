package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the TUI colour palette.
type Theme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color // titles, focused controls
	Secondary lipgloss.Color // user bubbles
	Accent    lipgloss.Color // image captions
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// MangroveTheme is the default: deep teal over slate.
	MangroveTheme = Theme{
		Name:        "mangrove",
		Description: "Mangrove - teal accents on a dark slate background",

		Background: lipgloss.Color("#111827"),
		Surface:    lipgloss.Color("#1f2937"),
		Border:     lipgloss.Color("#374151"),

		Primary:   lipgloss.Color("#5eead4"),
		Secondary: lipgloss.Color("#0d9488"),
		Accent:    lipgloss.Color("#fbbf24"),
		Warning:   lipgloss.Color("#facc15"),
		Error:     lipgloss.Color("#f87171"),

		Text:     lipgloss.Color("#f9fafb"),
		TextDim:  lipgloss.Color("#9ca3af"),
		TextMute: lipgloss.Color("#4b5563"),
	}

	TokyoNightTheme = Theme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	NordTheme = Theme{
		Name:        "nord",
		Description: "Nord - arctic palette with cool tones",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),
	}
)

// ThemeByName returns the named theme.
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeOrDefault returns the named theme, or MangroveTheme when the name
// is unknown.
func ThemeOrDefault(name string) Theme {
	if t, ok := ThemeByName(name); ok {
		return t
	}
	return MangroveTheme
}

// Themes lists the built-in themes, default first.
func Themes() []Theme {
	return []Theme{MangroveTheme, TokyoNightTheme, NordTheme}
}
