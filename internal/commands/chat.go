package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/logging"
	"github.com/diogo/mangroveguide/internal/render"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/tui"
)

func newChatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var screen string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive guide",
		Long: `Start the interactive guide in the terminal.

Enter sends a question, Tab moves focus to the "Explore" button, Esc goes
back from the Karnataka screen (or quits on the introduction), Ctrl+C quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := screens.Parse(screen)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), deps, flags, id)
		},
	}
	cmd.Flags().StringVarP(&screen, "screen", "s", string(screens.Intro), "Start screen: intro or karnataka")
	return cmd
}

func runChat(ctx context.Context, deps *Dependencies, flags *globalFlags, start screens.ID) error {
	rt, err := flags.load(deps)
	if err != nil {
		return err
	}
	defer rt.Close()

	bot := deps.newBot(rt)
	defer bot.Close()

	tui.UpdateTheme(render.ThemeOrDefault(rt.cfg.TUITheme))
	rt.logger.Info().Str("backend", rt.cfg.Backend).Str("screen", string(start)).Msg("chat started")

	return deps.RunTUI(ctx, start, tui.Options{
		Gateway: bot,
		Logger:  logging.Component(rt.logger, "session"),
	})
}
