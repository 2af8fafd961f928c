package scene

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"white":   "#FFFFFF",
	"black":   "#000000",
	"red":     "#FF0000",
	"green":   "#008000",
	"blue":    "#0000FF",
	"yellow":  "#FFFF00",
	"cyan":    "#00FFFF",
	"magenta": "#FF00FF",
	"orange":  "#FFA500",
	"gold":    "#FFD700",
	"gray":    "#808080",
	"grey":    "#808080",
}

// ParseColor accepts #RGB, #RRGGBB, RRGGBB and a handful of CSS names.
func ParseColor(s string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if len(v) == 4 {
		v = "#" + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2) + strings.Repeat(v[3:4], 2)
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// SameColor reports whether a and b denote the same color. Unparseable values
// fall back to case-insensitive string comparison.
func SameColor(a, b string) bool {
	ca, errA := ParseColor(a)
	cb, errB := ParseColor(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return ca.Hex() == cb.Hex()
}

// LerpColor blends from a to b in RGB space and returns a #rrggbb string.
// When either color is invalid the result snaps to b at t >= 0.5.
func LerpColor(a, b string, t float64) string {
	ca, errA := ParseColor(a)
	cb, errB := ParseColor(b)
	if errA != nil || errB != nil {
		if t >= 0.5 {
			return b
		}
		return a
	}
	return ca.BlendRgb(cb, t).Clamped().Hex()
}
