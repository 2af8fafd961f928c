package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"shortsbot/captions"
)

const progressWidth = 40

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder
	th := m.theme

	b.WriteString(th.title.Render("🎬 " + m.Title))
	b.WriteString("\n")

	b.WriteString(th.box.Render(m.caption()))
	b.WriteString("\n\n")

	b.WriteString(m.progress())
	b.WriteString("\n\n")

	switch {
	case m.Finished:
		b.WriteString(th.done.Render("✅ Done"))
		b.WriteString("  ")
		b.WriteString(th.info.Render("space: replay | q: quit"))
	case m.Paused:
		b.WriteString(th.status.Render("⏸  Paused"))
		b.WriteString("  ")
		b.WriteString(th.info.Render("space: resume | ←/→: seek | r: restart | q: quit"))
	default:
		b.WriteString(th.info.Render("space: pause | ←/→: seek | r: restart | q: quit"))
	}
	return b.String()
}

// caption renders the current cue. Words that have not faded in keep
// their width so the line does not jump as they appear.
func (m Model) caption() string {
	cue, ok := m.Cue()
	if !ok {
		return " "
	}
	parts := make([]string, len(cue.Words))
	for i, w := range cue.Words {
		parts[i] = m.word(w)
	}
	return strings.Join(parts, " ")
}

func (m Model) word(w captions.CueWord) string {
	switch {
	case w.Opacity <= 0:
		return strings.Repeat(" ", runewidth.StringWidth(w.Text))
	case w.Active:
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(w.Color))
		if w.Background != "" {
			style = style.Background(lipgloss.Color(w.Background))
		}
		return style.Render(w.Text)
	}
	color := w.Color
	if color == "" {
		color = m.theme.textColor
	}
	if w.Opacity < 1 {
		color = faded(color, w.Opacity)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(w.Text)
}

func (m Model) progress() string {
	frac := 0.0
	if m.Plan.Duration > 0 {
		frac = m.Elapsed / m.Plan.Duration
	}
	filled := int(frac * progressWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled)
	return m.theme.info.Render(fmt.Sprintf("%s %5.2fs / %.2fs  x%g", bar, m.Elapsed, m.Plan.Duration, m.Speed))
}
