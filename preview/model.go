package preview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shortsbot/captions"
)

// Model plays a caption plan in real time.
type Model struct {
	Plan     *captions.Plan
	Settings captions.Settings
	Title    string
	// Speed scales playback; 2 plays twice as fast.
	Speed float64

	Elapsed  float64
	Paused   bool
	Finished bool

	lastTick time.Time
	theme    theme
}

// NewModel creates a preview of plan. speed <= 0 means real time.
func NewModel(title string, plan *captions.Plan, settings captions.Settings, speed float64) Model {
	if speed <= 0 {
		speed = 1
	}
	return Model{
		Plan:     plan,
		Settings: settings,
		Title:    title,
		Speed:    speed,
		theme:    newTheme(settings),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Cue returns what the caption shows at the current playback time.
func (m Model) Cue() (captions.Cue, bool) {
	return m.Plan.At(m.Elapsed)
}

// Seek moves playback to t, clamped to the plan.
func (m Model) Seek(t float64) Model {
	m.Elapsed = min(max(t, 0), m.Plan.Duration)
	m.Finished = m.Elapsed >= m.Plan.Duration
	return m
}
