package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/diogo/mangroveguide/internal/config"
	"github.com/diogo/mangroveguide/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Width != 80 || opts.Style != "dark" {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("DefaultOptions() flags = %+v", opts)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Markdown.Style = "light"
	cfg.Markdown.EnableEmoji = false
	cfg.Markdown.PreserveNewLines = false

	opts := OptionsFromConfig(cfg, 100)
	if opts.Style != "light" {
		t.Errorf("Style = %q, want light", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji should follow config")
	}
	if opts.PreserveNewLines {
		t.Error("PreserveNewLines should follow config")
	}
	if opts.Width != 100 {
		t.Errorf("Width = %d, want 100", opts.Width)
	}

	if got := OptionsFromConfig(cfg, 0).Width; got != 80 {
		t.Errorf("zero width should keep default, got %d", got)
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"heading", "# Mangrove roots", "Mangrove"},
		{"bold", "They are **vital** habitats", "vital"},
		{"list", "1. Karwar\n2. Honnavar", "Honnavar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Markdown(tt.input, DefaultOptions())
			if err != nil {
				t.Fatalf("Markdown: %v", err)
			}
			if !strings.Contains(ansi.Strip(out), tt.contains) {
				t.Errorf("output missing %q: %s", tt.contains, out)
			}
		})
	}
}

func TestReplyFallsBackOnBadStyle(t *testing.T) {
	out := Reply("line one\nline two", DefaultOptions().WithStyle("no_such_style_path"))
	if out != "line one\nline two" {
		t.Errorf("Reply() = %q", out)
	}
}

func TestSanitize(t *testing.T) {
	in := "\x1b[31mred\x1b[0m text\x07 with\ttab\nand newline"
	want := "red text with\ttab\nand newline"
	if got := Sanitize(in); got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
}

func TestLines(t *testing.T) {
	got := Lines("a\r\nb\n\nc")
	want := []string{"a", "b", "", "c"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFlow(t *testing.T) {
	content := "Here are the key areas:\n1. Karwar\n  2. Honnavar"
	if got := Flow(content, true); got != "Here are the key areas:\n1. Karwar\n  2. Honnavar" {
		t.Errorf("Flow(lineBreaks) = %q", got)
	}
	if got := Flow(content, false); got != "Here are the key areas: 1. Karwar 2. Honnavar" {
		t.Errorf("Flow(collapse) = %q", got)
	}
}

func TestDecorationFor(t *testing.T) {
	if d := DecorationFor(models.RoleModel); d.Align != lipgloss.Left || d.Glyph != botGlyph {
		t.Errorf("model decoration = %+v", d)
	}
	if d := DecorationFor(models.RoleUser); d.Align != lipgloss.Right || d.Glyph != userGlyph {
		t.Errorf("user decoration = %+v", d)
	}
}

func TestEntryView(t *testing.T) {
	opts := ViewOptions{Width: 80, LineBreaks: true, Theme: MangroveTheme}

	t.Run("text keeps line breaks", func(t *testing.T) {
		out := ansi.Strip(EntryView(models.NewText("k", models.RoleModel, "one\ntwo"), opts))
		if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
			t.Fatalf("missing content: %s", out)
		}
		if strings.Index(out, "one") > strings.Index(out, "two") {
			t.Error("lines out of order")
		}
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "one") && strings.Contains(line, "two") {
				t.Error("line break was not kept")
			}
		}
	})

	t.Run("user bubble is right aligned", func(t *testing.T) {
		out := ansi.Strip(EntryView(models.NewText("u", models.RoleUser, "hi"), opts))
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "hi") && !strings.HasPrefix(line, "    ") {
				t.Errorf("expected leading padding, got %q", line)
			}
		}
	})

	t.Run("escape sequences are stripped", func(t *testing.T) {
		out := EntryView(models.NewText("x", models.RoleUser, "\x1b]0;pwned\x07ok"), opts)
		if strings.Contains(out, "pwned") {
			t.Errorf("OSC sequence leaked: %q", out)
		}
	})

	t.Run("image labels", func(t *testing.T) {
		e := models.NewImages("img", models.RoleModel,
			models.Image{Src: "https://example.com/a.jpg", Alt: "A", Label: "Karwar"},
			models.Image{Src: "https://example.com/b.jpg", Alt: "B"},
		)
		out := ansi.Strip(EntryView(e, opts))
		for _, want := range []string{"Karwar", "A", "B"} {
			if !strings.Contains(out, want) {
				t.Errorf("image grid missing %q", want)
			}
		}
	})

	t.Run("focused button", func(t *testing.T) {
		e := models.NewButton("b", models.RoleModel, "Explore Karnataka's Mangroves")
		plain := ansi.Strip(EntryView(e, opts))
		focused := opts
		focused.Focused = true
		hot := ansi.Strip(EntryView(e, focused))
		if strings.Contains(plain, "▶") || !strings.Contains(hot, "▶") {
			t.Errorf("focus marker wrong: %q / %q", plain, hot)
		}
	})
}

func TestColumns(t *testing.T) {
	if Columns(120) != 2 {
		t.Error("wide terminals should use two columns")
	}
	if Columns(40) != 1 {
		t.Error("narrow terminals should use one column")
	}
}

func TestThemes(t *testing.T) {
	for _, th := range Themes() {
		if th.Name == "" || th.Primary == "" || th.Text == "" {
			t.Errorf("incomplete theme %+v", th)
		}
		if got, ok := ThemeByName(th.Name); !ok || got.Name != th.Name {
			t.Errorf("ThemeByName(%q) failed", th.Name)
		}
	}
	if ThemeOrDefault("nope").Name != MangroveTheme.Name {
		t.Error("unknown theme should fall back to mangrove")
	}
}
