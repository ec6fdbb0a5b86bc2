// Package progress shows a spinner on the terminal while a long step runs.
package progress

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/logger"
)

// doneMsg reports that the wrapped step finished.
type doneMsg struct {
	err error
}

// Model is the bubbletea model rendering a spinner and a label.
type Model struct {
	spinner spinner.Model
	label   string
	done    bool
	err     error
}

// NewModel creates a spinner model with the given label.
func NewModel(label string, s *styles.Styles) Model {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(s.Theme().Primary)),
	)
	return Model{spinner: sp, label: label}
}

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner and quits once the step is done.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View renders the spinner line; it is cleared once the step is done.
func (m Model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// Err returns the error the step finished with.
func (m Model) Err() error {
	return m.err
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run executes fn, showing a spinner labelled label on out while it runs.
// When out is not a terminal fn runs without any output.
func Run(ctx context.Context, out io.Writer, label string, fn func(ctx context.Context) error) error {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(label, nil),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	result := make(chan error, 1)
	go func() {
		err := fn(ctx)
		result <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		logger.Debug("spinner stopped: %v", err)
	}
	// Ctrl+C in the spinner abandons the step.
	cancel()

	return <-result
}
