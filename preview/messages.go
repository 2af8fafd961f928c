package preview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameInterval matches the 30 fps virtual clock.
const frameInterval = time.Second / 30

// TickMsg advances playback by the wall time since the previous tick.
type TickMsg struct {
	Time time.Time
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
