package preview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"shortsbot/captions"
	"shortsbot/scene"
)

// captionColumns is the terminal width that stands in for the full video
// width when sizing the caption box.
const captionColumns = 60

const (
	colorInfo = "#626262"
	colorDone = "#04B575"
)

// theme is the preview styling derived from the caption settings, so the
// terminal box looks like the footer of the rendered short.
type theme struct {
	title     lipgloss.Style
	box       lipgloss.Style
	status    lipgloss.Style
	done      lipgloss.Style
	info      lipgloss.Style
	textColor string
}

func newTheme(s captions.Settings) theme {
	accent := firstColor(s.CurrentWordBackgroundColor, s.CurrentWordColor, s.TextColor)
	border := firstColor(s.CurrentWordColor, s.BorderColor, colorInfo)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Align(boxAlign(s.TextAlign))
	if s.TextBoxWidthInPercent > 0 {
		box = box.Width(int(captionColumns * s.TextBoxWidthInPercent / 100))
	}

	return theme{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)).
			MarginTop(1).
			MarginBottom(1),
		box:    box,
		status: lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
		done: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color(colorDone)).
			Padding(0, 1),
		info:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorInfo)),
		textColor: firstColor(s.TextColor, "#FFFFFF"),
	}
}

func boxAlign(a string) lipgloss.Position {
	switch scene.Align(a) {
	case scene.AlignLeft:
		return lipgloss.Left
	case scene.AlignRight:
		return lipgloss.Right
	}
	return lipgloss.Center
}

// firstColor returns the first candidate that parses as a color, as hex.
func firstColor(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if parsed, err := scene.ParseColor(c); err == nil {
			return parsed.Hex()
		}
	}
	return colorInfo
}

// faded darkens color towards black the way a half transparent word
// looks over the dark footer.
func faded(color string, opacity float64) string {
	c, err := scene.ParseColor(color)
	if err != nil {
		return colorInfo
	}
	return c.BlendRgb(colorful.Color{}, 1-opacity).Clamped().Hex()
}
