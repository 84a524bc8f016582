package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/session"
	"github.com/diogo/mangroveguide/internal/transcript"
)

// Options configures the app.
type Options struct {
	Gateway session.Gateway
	Logger  zerolog.Logger
	// IDs overrides the entry id generator, for tests.
	IDs transcript.IDGenerator
}

// router receives navigation requests from bound button actions. Actions
// run synchronously inside Update, so a plain field is enough.
type router struct {
	target screens.ID
}

func (r *router) take() (screens.ID, bool) {
	t := r.target
	r.target = ""
	return t, t != ""
}

// App is the root Bubble Tea model. It owns exactly one live session; a
// screen switch closes the old one and starts a fresh one from the seed.
type App struct {
	ctx    context.Context
	opts   Options
	router *router
	screen screenModel

	width  int
	height int
}

// NewApp creates the app showing the start screen.
func NewApp(ctx context.Context, start screens.ID, opts Options) (App, error) {
	if opts.Gateway == nil {
		return App{}, errors.New("tui: nil gateway")
	}
	a := App{ctx: ctx, opts: opts, router: &router{}}
	sm, err := a.open(start)
	if err != nil {
		return App{}, err
	}
	a.screen = sm
	return a, nil
}

// open builds a controller from the screen's seed and binds its links.
func (a App) open(id screens.ID) (screenModel, error) {
	def, ok := screens.Get(id)
	if !ok {
		return screenModel{}, fmt.Errorf("unknown screen %q", id)
	}

	sessOpts := []session.Option{
		session.WithLogger(a.opts.Logger.With().Str("screen", string(id)).Logger()),
	}
	if a.opts.IDs != nil {
		sessOpts = append(sessOpts, session.WithIDGenerator(a.opts.IDs))
	}
	ctrl, err := session.New(def.Seed(), a.opts.Gateway, sessOpts...)
	if err != nil {
		return screenModel{}, fmt.Errorf("open %s: %w", id, err)
	}
	r := a.router
	for entryID, target := range def.Links {
		if err := ctrl.Bind(entryID, func() { r.target = target }); err != nil {
			return screenModel{}, fmt.Errorf("bind %s: %w", entryID, err)
		}
	}
	return newScreenModel(def, ctrl), nil
}

// Screen returns the current screen id.
func (a App) Screen() screens.ID { return a.screen.def.ID }

// Session returns the live session.
func (a App) Session() *session.Controller { return a.screen.ctrl }

func (a App) Init() tea.Cmd {
	return a.screen.Init()
}

func (a App) navigate(id screens.ID) (App, tea.Cmd) {
	sm, err := a.open(id)
	if err != nil {
		a.opts.Logger.Error().Err(err).Str("screen", string(id)).Msg("navigation failed")
		return a, nil
	}
	from := a.screen.def.ID
	a.screen.ctrl.Close()
	a.screen = sm
	if a.width > 0 {
		a.screen.resize(a.width, a.height)
	}
	a.opts.Logger.Info().Str("from", string(from)).Str("to", string(id)).Msg("screen switch")
	return a, a.screen.Init()
}

func (a App) quit() (App, tea.Cmd) {
	a.screen.ctrl.Close()
	return a, tea.Quit
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.screen.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a.quit()
		case "esc":
			if back := a.screen.def.Back; back != "" {
				return a.navigate(back)
			}
			return a.quit()
		}

	case replyMsg:
		if !msg.ctrl.Resolve(msg.pending, msg.reply) {
			a.opts.Logger.Debug().Msg("late reply dropped")
			return a, nil
		}
		if msg.ctrl == a.screen.ctrl {
			a.screen.refresh()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.update(a.ctx, msg)
	if target, ok := a.router.take(); ok {
		next, navCmd := a.navigate(target)
		return next, tea.Batch(cmd, navCmd)
	}
	return a, cmd
}

func (a App) View() string {
	return a.screen.view()
}

// Run starts the TUI on the given screen and blocks until it exits.
func Run(ctx context.Context, start screens.ID, opts Options) error {
	app, err := NewApp(ctx, start, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if a, ok := final.(App); ok {
		a.screen.ctrl.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
