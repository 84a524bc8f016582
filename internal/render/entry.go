package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/mangroveguide/internal/models"
)

// ViewOptions controls terminal rendering of an entry.
type ViewOptions struct {
	Width      int
	LineBreaks bool
	// Focused highlights a button entry.
	Focused bool
	Theme   Theme
}

const (
	defaultViewWidth = 80
	minCardWidth     = 26
	minBubbleWidth   = 20
)

func (o ViewOptions) width() int {
	if o.Width <= 0 {
		return defaultViewWidth
	}
	return o.Width
}

// EntryView renders one entry for the terminal, aligned by role.
func EntryView(e models.Entry, opts ViewOptions) string {
	deco := DecorationFor(e.Role)
	width := opts.width()

	var body string
	switch e.Kind {
	case models.KindText:
		body = textBubble(e, opts, deco)
	case models.KindImage:
		body = imageGrid(e.Images, opts)
	case models.KindButton:
		body = button(e.Label, opts)
	}

	header := lipgloss.NewStyle().Foreground(opts.Theme.TextDim).Render(deco.Glyph + " " + deco.Name)
	block := lipgloss.JoinVertical(deco.Align, header, body)
	return lipgloss.PlaceHorizontal(width, deco.Align, block)
}

func bubbleWidth(total int) int {
	return max(total*3/4, minBubbleWidth)
}

func textBubble(e models.Entry, opts ViewOptions, deco Decoration) string {
	content := Flow(e.Content, opts.LineBreaks)
	limit := bubbleWidth(opts.width())
	// Frame adds two columns of padding and two of border.
	w := min(lipgloss.Width(content)+2, limit-2)

	fg, bg := opts.Theme.Text, opts.Theme.Surface
	if e.Role == models.RoleUser {
		bg = opts.Theme.Secondary
	}
	return lipgloss.NewStyle().
		Width(w).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(bg).
		Foreground(fg).
		Align(deco.Align).
		Render(content)
}

func imageCard(img models.Image, width int, theme Theme) string {
	lines := []string{
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("🖼  " + Sanitize(img.Alt)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(Sanitize(img.Src)),
	}
	if img.Label != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Accent).
			Padding(0, 1).
			Render(Sanitize(img.Label)))
	}
	return lipgloss.NewStyle().
		Width(width-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(strings.Join(lines, "\n"))
}

// Columns returns how many image cards fit side by side.
func Columns(width int) int {
	if bubbleWidth(width) >= 2*minCardWidth+1 {
		return 2
	}
	return 1
}

func imageGrid(images []models.Image, opts ViewOptions) string {
	total := bubbleWidth(opts.width())
	cols := Columns(opts.width())
	cardWidth := total
	if cols == 2 {
		cardWidth = (total - 1) / 2
	}

	var rows []string
	for i := 0; i < len(images); i += cols {
		var cells []string
		for j := i; j < min(i+cols, len(images)); j++ {
			if j > i {
				cells = append(cells, " ")
			}
			cells = append(cells, imageCard(images[j], cardWidth, opts.Theme))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func button(label string, opts ViewOptions) string {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(opts.Theme.Primary).
		Foreground(opts.Theme.Primary)
	text := Sanitize(label)
	if opts.Focused {
		style = style.Bold(true).Foreground(opts.Theme.Background).Background(opts.Theme.Primary)
		text = "▶ " + text
	}
	return style.Render(text)
}
