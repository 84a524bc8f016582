package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/mangroveguide/internal/render"
)

var (
	colorText    = render.MangroveTheme.Text
	colorSuccess = lipgloss.Color("#34d399")
	colorWarn    = render.MangroveTheme.Warning
)

// Wave colours for the spinner bar.
var waveColors = []lipgloss.Color{
	lipgloss.Color("#134e4a"),
	lipgloss.Color("#0f766e"),
	lipgloss.Color("#0d9488"),
	lipgloss.Color("#14b8a6"),
	lipgloss.Color("#5eead4"),
	lipgloss.Color("#14b8a6"),
	lipgloss.Color("#0d9488"),
	lipgloss.Color("#0f766e"),
}

// spinner animates a progress line on a terminal. On anything else it is
// silent.
type spinner struct {
	w       io.Writer
	message string
	active  bool
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		active:  isTerminal(w),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *spinner) start() {
	if !s.active {
		close(s.done)
		return
	}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(90 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(s.w, "\033[?25l")
		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

func (s *spinner) render() {
	waves := []string{"~", "≈", "∿", "≈"}
	var bar strings.Builder
	for i := range 12 {
		style := lipgloss.NewStyle().Foreground(waveColors[(i+s.frame)%len(waveColors)])
		bar.WriteString(style.Render(waves[(i+s.frame/2)%len(waves)]))
	}
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.w, "\r\033[K🌿 %s %s", bar.String(), msg)
}

func (s *spinner) halt() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}

func (s *spinner) stopWithSuccess(message string) {
	s.halt()
	if !s.active {
		return
	}
	check := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Fprintf(s.w, "%s %s\n", check, lipgloss.NewStyle().Foreground(colorSuccess).Render(message))
}

func (s *spinner) stopWithError() {
	s.halt()
}
