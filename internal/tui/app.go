// Package tui provides an interactive terminal user interface for hreq.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/tui/views"
)

// Launch starts the TUI application. opts seeds every plan the builder
// produces, so config and session headers apply as they do on the
// command line.
func Launch(opts planner.Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Model represents the application state.
type Model struct {
	view View
}

// NewModel creates a new TUI model.
func NewModel(opts planner.Options) Model {
	return Model{
		view: views.NewBuilderView(opts),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	// WindowSizeMsg will be sent automatically by bubbletea
	return m.view.Init()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// View renders the current view.
func (m Model) View() string {
	return m.view.View()
}

// View represents a TUI view (exported from views package).
type View = views.View
