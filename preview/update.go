package preview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const seekStep = 1.0

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m.handleTick(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		if m.Finished {
			m = m.Seek(0)
			m.Paused = false
		} else {
			m.Paused = !m.Paused
		}
		// Resume timing from the next tick rather than across the pause.
		m.lastTick = time.Time{}
	case "left":
		m = m.Seek(m.Elapsed - seekStep)
	case "right":
		m = m.Seek(m.Elapsed + seekStep)
	case "r":
		m = m.Seek(0)
		m.Paused = false
	}
	return m, nil
}

func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	last := m.lastTick
	m.lastTick = msg.Time
	if m.Paused || m.Finished || last.IsZero() {
		return m, tickCmd()
	}
	m = m.Seek(m.Elapsed + msg.Time.Sub(last).Seconds()*m.Speed)
	return m, tickCmd()
}
