package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips terminal escape sequences and control characters other
// than newline and tab, so entry content is always shown as plain text.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Lines splits content into its line segments. "\r\n" counts as a single
// break. Each segment is sanitized.
func Lines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	segs := strings.Split(content, "\n")
	for i, s := range segs {
		segs[i] = Sanitize(strings.ReplaceAll(s, "\r", ""))
	}
	return segs
}

// Flow prepares text content for display. With lineBreaks every newline
// in the content is kept as a line break; without it all whitespace runs
// collapse to single spaces, the way a plain paragraph reads.
func Flow(content string, lineBreaks bool) string {
	if lineBreaks {
		return strings.Join(Lines(content), "\n")
	}
	return strings.Join(strings.Fields(Sanitize(content)), " ")
}
