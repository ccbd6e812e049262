package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full screen monitor and blocks until the user quits.
// With a nil target it begins on the discovery screen.
func Run(opts Options, target *Target) error {
	model, err := NewAppModel(opts, target)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if am, ok := final.(AppModel); ok {
		am.Close()
	}
	return err
}
