// Package tui is the terminal interface: one chat screen at a time, with
// navigation between the introduction and the Karnataka detail screen.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/mangroveguide/internal/errors"
	"github.com/diogo/mangroveguide/internal/render"
)

// Styles rebuilt by UpdateTheme.
var (
	currentTheme = render.MangroveTheme

	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	hintStyle         lipgloss.Style
	messagesAreaStyle lipgloss.Style
	inputPanelStyle   lipgloss.Style
	inputLabelStyle   lipgloss.Style
	loadingStyle      lipgloss.Style
	statusBarStyle    lipgloss.Style
	statusKeyStyle    lipgloss.Style
	statusDescStyle   lipgloss.Style
	errorStyle        lipgloss.Style
)

func init() {
	UpdateTheme(render.MangroveTheme)
}

// UpdateTheme switches the palette used by every style.
func UpdateTheme(theme render.Theme) {
	currentTheme = theme

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	hintStyle = lipgloss.NewStyle().
		Foreground(theme.TextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		Padding(0, 1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(theme.TextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(theme.TextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)
}

// FormatError renders a CLI error with status details and a hint for the
// common failure kinds.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	dim := lipgloss.NewStyle().Foreground(currentTheme.TextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dim.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		sb.WriteString(dim.Render("\n\n  " + strings.ReplaceAll(apiErr.Body, "\n", "\n  ")))
		return sb.String()
	}

	switch {
	case apierrors.IsConfigError(err):
		sb.WriteString(dim.Render("\n  Hint: set API_KEY, or use --backend web after 'mangroveguide auto-login'"))
	case apierrors.IsAuthError(err):
		sb.WriteString(dim.Render("\n  Hint: run 'mangroveguide auto-login' to refresh your session"))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dim.Render("\n  Hint: usage limit reached, try again later or pick another model"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dim.Render("\n  Hint: the request timed out, try again"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dim.Render("\n  Hint: check your internet connection"))
	}
	return sb.String()
}
