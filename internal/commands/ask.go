package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/mangroveguide/internal/logging"
	"github.com/diogo/mangroveguide/internal/render"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/session"
)

type askOptions struct {
	screen string
	output string
	file   string
	raw    bool
	copy   bool
}

var errNoQuestion = errors.New("question cannot be empty")

func newAskCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the guide one question",
		Long: `Ask one question and print the answer.

The question runs through the same session as the interactive screen,
seeded with that screen's conversation, and the screen's text is sent to
the model as context. It is read from the argument, from --file, or from
stdin.

Examples:
  mangroveguide ask "How do mangroves store carbon?"
  mangroveguide ask -s karnataka "Where is the Aghanashini estuary?"
  echo "What lives among mangrove roots?" | mangroveguide ask --raw
  mangroveguide ask -f question.txt -o answer.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := readQuestion(args, opts.file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), deps, flags, opts, question, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.screen, "screen", "s", string(screens.Intro), "Screen whose conversation seeds the question")
	f.StringVarP(&opts.output, "output", "o", "", "Save the answer to a file")
	f.StringVarP(&opts.file, "file", "f", "", "Read the question from a file")
	f.BoolVar(&opts.raw, "raw", false, "Print only the answer text")
	f.BoolVar(&opts.copy, "copy", false, "Copy the answer to the clipboard")
	return cmd
}

// readQuestion takes the question from args, a file, or piped stdin.
func readQuestion(args []string, file string, in io.Reader) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}

	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", errNoQuestion
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runAsk(ctx context.Context, deps *Dependencies, flags *globalFlags, opts *askOptions, question string, stdout, stderr io.Writer) error {
	id, err := screens.Parse(opts.screen)
	if err != nil {
		return err
	}
	def, _ := screens.Get(id)

	rt, err := flags.load(deps)
	if err != nil {
		return err
	}
	defer rt.Close()

	bot := deps.newBot(rt)
	defer bot.Close()

	ctrl, err := session.New(def.Seed(), bot, session.WithLogger(logging.Component(rt.logger, "session")))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctrl.SetDraft(question)
	if !ctrl.CanSubmit() {
		return errNoQuestion
	}

	var spin *spinner
	if !opts.raw {
		spin = newSpinner(stderr, "Asking the guide")
		spin.start()
	}
	ctrl.Send(ctx)
	if spin != nil {
		if bot.Err() != nil {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	last, _ := ctrl.Transcript().Last()
	answer := last.Content

	if opts.raw {
		if err := writeAnswer(opts.output, answer, stdout); err != nil {
			return err
		}
		return configFailure(bot.Err())
	}

	if opts.copy || rt.cfg.CopyToClipboard {
		if err := deps.Clipboard(answer); err != nil {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorWarn).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := writeAnswer(opts.output, answer, stdout); err != nil {
			return err
		}
		fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Answer saved to %s", opts.output)))
		return configFailure(bot.Err())
	}

	bubbleWidth := min(max(terminalWidth(stdout)-4, 40), 120)
	rendered := render.Reply(answer, render.OptionsFromConfig(rt.cfg, bubbleWidth-4))

	label := lipgloss.NewStyle().Foreground(render.MangroveTheme.Primary).Bold(true).
		Render(render.DecorationFor(last.Role).Glyph + " " + render.DecorationFor(last.Role).Name)
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(render.MangroveTheme.Primary).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(rendered)
	fmt.Fprintln(stdout, label)
	fmt.Fprintln(stdout, bubble)

	return configFailure(bot.Err())
}

// configFailure turns a permanent backend failure into the command's
// error, after the fallback answer has been shown.
func configFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("bot unavailable: %w", err)
}

func writeAnswer(path, answer string, stdout io.Writer) error {
	if path == "" {
		_, err := io.WriteString(stdout, answer)
		return err
	}
	if err := os.WriteFile(path, []byte(answer), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
