package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal UI until the user quits.
func Start(opts Options, version string) error {
	Version = version
	m := initialModel(opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
