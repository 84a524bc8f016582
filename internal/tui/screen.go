package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/mangroveguide/internal/models"
	"github.com/diogo/mangroveguide/internal/render"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/session"
)

// replyMsg carries a gateway reply back to the UI goroutine. ctrl
// identifies the session that asked, which may be gone by now.
type replyMsg struct {
	ctrl    *session.Controller
	pending session.Pending
	reply   string
}

// Layout rows outside the viewport.
const (
	headerHeight = 3
	inputHeight  = 3
	statusHeight = 1
	minViewport  = 3
)

// screenModel is one chat screen. Focus 0 is the input; focus i>0 is the
// i-th call-to-action in the transcript.
type screenModel struct {
	def  screens.Definition
	ctrl *session.Controller

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	focus   int
	buttons []string
	// shown is the transcript length at the last refresh.
	shown int

	ready  bool
	width  int
	height int
}

func newScreenModel(def screens.Definition, ctrl *session.Controller) screenModel {
	ti := textinput.New()
	ti.Placeholder = def.Placeholder
	ti.CharLimit = 2000
	ti.Prompt = ""
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(currentTheme.TextDim)
	ti.TextStyle = lipgloss.NewStyle().Foreground(currentTheme.Text)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle

	m := screenModel{
		def:     def,
		ctrl:    ctrl,
		input:   ti,
		spinner: s,
	}
	for e := range ctrl.Transcript().Entries() {
		if e.Kind == models.KindButton && ctrl.Bound(e.ID) {
			m.buttons = append(m.buttons, e.ID)
		}
	}
	return m
}

func (m screenModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *screenModel) resize(width, height int) {
	m.width, m.height = width, height
	vpHeight := max(height-headerHeight-inputHeight-statusHeight, minViewport)
	contentWidth := max(width-2, 20)

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(contentWidth-8, 10)
	m.refresh()
}

// focusedButton returns the entry id of the focused call-to-action.
func (m screenModel) focusedButton() (string, bool) {
	if m.focus == 0 || m.focus > len(m.buttons) {
		return "", false
	}
	return m.buttons[m.focus-1], true
}

func (m *screenModel) cycleFocus(step int) {
	n := len(m.buttons) + 1
	m.focus = ((m.focus+step)%n + n) % n
	if m.focus == 0 {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.refresh()
}

// refresh re-renders the transcript. It scrolls to the newest entry when
// the transcript grew or the view was already at the bottom, so a reader
// scrolled back is left in place by spinner ticks.
func (m *screenModel) refresh() {
	if !m.ready {
		return
	}
	n := m.ctrl.Transcript().Len()
	follow := n != m.shown || m.viewport.AtBottom()
	m.shown = n

	focused, _ := m.focusedButton()
	opts := render.ViewOptions{
		Width:      m.viewport.Width - 2,
		LineBreaks: m.def.LineBreaks,
		Theme:      currentTheme,
	}

	var parts []string
	for e := range m.ctrl.Transcript().Entries() {
		o := opts
		o.Focused = e.ID == focused
		parts = append(parts, render.EntryView(e, o))
	}
	if m.ctrl.Busy() {
		parts = append(parts, loadingStyle.Render(m.spinner.View()+" typing..."))
	}
	m.viewport.SetContent(messagesAreaStyle.Render(strings.Join(parts, "\n\n")))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m screenModel) ask(ctx context.Context, p session.Pending) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return replyMsg{ctrl: ctrl, pending: p, reply: ctrl.Ask(ctx, p)}
	}
}

// update handles input for the screen. Navigation and quitting are the
// app's business.
func (m screenModel) update(ctx context.Context, msg tea.Msg) (screenModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if id, ok := m.focusedButton(); ok {
				m.ctrl.Activate(id)
				return m, nil
			}
			m.ctrl.SetDraft(m.input.Value())
			p, ok := m.ctrl.Submit()
			if !ok {
				return m, nil
			}
			m.input.Reset()
			m.refresh()
			return m, tea.Batch(m.ask(ctx, p), m.spinner.Tick)

		case "tab":
			m.cycleFocus(1)
			return m, nil

		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil

		case "up", "down", "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		case "home", "end":
			// On the input they move the cursor instead.
			if m.focus != 0 {
				if msg.String() == "home" {
					m.viewport.GotoTop()
				} else {
					m.viewport.GotoBottom()
				}
				return m, nil
			}
		}

		if m.focus == 0 && !m.ctrl.Busy() {
			m.input, cmd = m.input.Update(msg)
			m.ctrl.SetDraft(m.input.Value())
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		if m.ctrl.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	default:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m screenModel) view() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	width := m.viewport.Width

	title := titleStyle.Render(m.def.Title)
	if m.def.Back != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Center, hintStyle.Render("← esc  "), title)
	}
	header := headerStyle.Width(width).Render(title)

	var input string
	if m.ctrl.Busy() {
		input = loadingStyle.Render(m.spinner.View() + " waiting for the guide...")
	} else {
		input = lipgloss.JoinHorizontal(lipgloss.Center, inputLabelStyle.Render("›"), m.input.View())
	}
	inputPanel := inputPanelStyle.Width(width).Render(input)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputPanel,
		m.statusBar(width),
	)
}

func (m screenModel) statusBar(width int) string {
	type shortcut struct{ key, desc string }
	shortcuts := []shortcut{{"enter", "send"}}
	if len(m.buttons) > 0 {
		shortcuts = append(shortcuts, shortcut{"tab", "focus"})
	}
	if m.def.Back != "" {
		shortcuts = append(shortcuts, shortcut{"esc", "back"})
	} else {
		shortcuts = append(shortcuts, shortcut{"esc", "quit"})
	}
	shortcuts = append(shortcuts, shortcut{"↑↓", "scroll"})

	items := make([]string, len(shortcuts))
	for i, s := range shortcuts {
		items[i] = statusKeyStyle.Render(s.key) + statusDescStyle.Render(" "+s.desc)
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}
