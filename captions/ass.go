package captions

import (
	"fmt"
	"io"
	"math"
	"strings"

	"shortsbot/config"
	"shortsbot/scene"
)

// WriteASS renders plan as an Advanced SubStation Alpha script sized for
// the vertical canvas. Each cue becomes one Dialogue line with per-word
// color and alpha overrides. ASS cannot draw a box behind a single word,
// so the active word's background becomes a thick outline instead.
func WriteASS(w io.Writer, plan *Plan, s Settings) error {
	var b strings.Builder

	b.WriteString("[Script Info]\n")
	b.WriteString("Title: Shortsbot Captions\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", config.VideoWidth)
	fmt.Fprintf(&b, "PlayResY: %d\n", config.VideoHeight)
	b.WriteString("WrapStyle: 0\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")

	bold := 0
	if s.FontWeight >= 700 {
		bold = -1
	}
	shadow := 0
	if s.ShadowColor != "" && s.ShadowBlur > 0 {
		shadow = 2
	}
	margin := int(math.Max(0, (config.VideoWidth-s.boxWidth(config.VideoWidth))/2))
	marginV := int(math.Max(0, config.VideoHeight*config.FooterRatio/2-s.FontSize*0.6))
	fmt.Fprintf(&b, "Style: Default,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,1,%g,%d,%d,%d,%d,%d,1\n",
		s.FontFamily, int(s.FontSize),
		styleColor(s.TextColor, "#FFFFFF"), styleColor(s.highlightColor(), "#FFFFFF"),
		styleColor(s.BorderColor, "#000000"), styleColor(s.ShadowColor, "#000000"),
		bold, s.BorderWidth, shadow, alignment(s.TextAlign), margin, margin, marginV)

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range plan.Cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTimestamp(cue.Start), formatASSTimestamp(cue.End), cueText(cue, s))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cueText(cue Cue, s Settings) string {
	parts := make([]string, len(cue.Words))
	for i, word := range cue.Words {
		tags := fmt.Sprintf("\\c%s\\alpha&H%02X&", overrideColor(word.Color, s.TextColor), alpha(word.Opacity))
		if word.Active && word.Background != "" {
			tags += fmt.Sprintf("\\3c%s\\bord%g", overrideColor(word.Background, "#000000"), math.Max(s.BorderWidth, s.FontSize/8))
			parts[i] = "{" + tags + "}" + escape(word.Text) + "{\\r}"
			continue
		}
		parts[i] = "{" + tags + "}" + escape(word.Text)
	}
	return strings.Join(parts, " ")
}

// escape keeps braces in caption text from opening override blocks.
func escape(text string) string {
	r := strings.NewReplacer("{", "(", "}", ")", "\n", " ")
	return r.Replace(text)
}

func alpha(opacity float64) int {
	o := math.Min(1, math.Max(0, opacity))
	return int(math.Round((1 - o) * 255))
}

func alignment(align string) int {
	switch scene.Align(align) {
	case scene.AlignLeft:
		return 1
	case scene.AlignRight:
		return 3
	}
	return 2
}

// bgr converts a color to ASS byte order.
func bgr(color, fallback string) string {
	c, err := scene.ParseColor(color)
	if err != nil {
		c, _ = scene.ParseColor(fallback)
	}
	r, g, bl := c.RGB255()
	return fmt.Sprintf("%02X%02X%02X", bl, g, r)
}

func styleColor(color, fallback string) string {
	return "&H00" + bgr(color, fallback)
}

func overrideColor(color, fallback string) string {
	return "&H" + bgr(color, fallback) + "&"
}

// formatASSTimestamp converts seconds to ASS timestamp format (h:mm:ss.cc)
func formatASSTimestamp(seconds float64) string {
	cs := int(math.Round(math.Max(0, seconds) * 100))
	hours := cs / 360000
	minutes := cs / 6000 % 60
	secs := cs / 100 % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, cs%100)
}
