// Package export writes a screen's conversation as Markdown, JSON or a
// standalone HTML page.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/render"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/transcript"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (valid: markdown, json, html)", s)
	}
}

// Extension returns the file extension for f, with the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

// Document is what gets exported.
type Document struct {
	Screen     screens.ID
	Title      string
	LineBreaks bool
	Entries    []models.Entry
}

// FromTranscript builds a document for a screen's transcript.
func FromTranscript(def screens.Definition, t transcript.Transcript) Document {
	return Document{
		Screen:     def.ID,
		Title:      def.Title,
		LineBreaks: def.LineBreaks,
		Entries:    slices.Collect(t.Entries()),
	}
}

// Write writes doc to w in the given format.
func Write(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatJSON:
		data, err := JSON(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatHTML:
		return render.WriteDocument(w, doc.Title, slices.Values(doc.Entries), doc.LineBreaks)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// Markdown renders the document as Markdown.
func Markdown(doc Document) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(doc.Title)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Screen:** %s\n", doc.Screen)
	fmt.Fprintf(&sb, "**Entries:** %d\n\n---\n\n", len(doc.Entries))

	for i, e := range doc.Entries {
		sb.WriteString("## ")
		sb.WriteString(render.DecorationFor(e.Role).Name)
		sb.WriteString("\n\n")

		switch e.Kind {
		case models.KindText:
			if doc.LineBreaks {
				// Two trailing spaces force a hard break in Markdown.
				sb.WriteString(strings.Join(render.Lines(e.Content), "  \n"))
			} else {
				sb.WriteString(render.Flow(e.Content, false))
			}
		case models.KindImage:
			for j, img := range e.Images {
				if j > 0 {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "![%s](%s)", img.Alt, img.Src)
				if img.Label != "" {
					fmt.Fprintf(&sb, " *%s*", img.Label)
				}
			}
		case models.KindButton:
			fmt.Fprintf(&sb, "**[%s]**", e.Label)
		}
		sb.WriteString("\n")

		if i < len(doc.Entries)-1 {
			sb.WriteString("\n---\n\n")
		}
	}
	return sb.String()
}

type jsonDocument struct {
	Screen  screens.ID     `json:"screen"`
	Title   string         `json:"title"`
	Entries []models.Entry `json:"entries"`
}

// JSON renders the document as indented JSON.
func JSON(doc Document) ([]byte, error) {
	entries := doc.Entries
	if entries == nil {
		entries = []models.Entry{}
	}
	return json.MarshalIndent(jsonDocument{Screen: doc.Screen, Title: doc.Title, Entries: entries}, "", "  ")
}
