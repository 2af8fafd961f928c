package captions

import (
	"fmt"
	"os"

	"shortsbot/config"
	"shortsbot/scene"

	"github.com/BurntSushi/toml"
)

// Settings controls caption appearance and pacing. Only NumSimultaneousWords,
// Stream, FadeInAnimation, the colors and the box width affect timing or
// layout; the rest is carried through to rendering.
type Settings struct {
	FontSize                   float64 `json:"fontSize" toml:"fontSize"`
	NumSimultaneousWords       int     `json:"numSimultaneousWords" toml:"numSimultaneousWords"`
	TextColor                  string  `json:"textColor" toml:"textColor"`
	FontWeight                 int     `json:"fontWeight" toml:"fontWeight"`
	FontFamily                 string  `json:"fontFamily" toml:"fontFamily"`
	Stream                     bool    `json:"stream" toml:"stream"`
	TextAlign                  string  `json:"textAlign" toml:"textAlign"`
	TextBoxWidthInPercent      float64 `json:"textBoxWidthInPercent" toml:"textBoxWidthInPercent"`
	BorderColor                string  `json:"borderColor,omitempty" toml:"borderColor"`
	BorderWidth                float64 `json:"borderWidth,omitempty" toml:"borderWidth"`
	CurrentWordColor           string  `json:"currentWordColor,omitempty" toml:"currentWordColor"`
	CurrentWordBackgroundColor string  `json:"currentWordBackgroundColor,omitempty" toml:"currentWordBackgroundColor"`
	ShadowColor                string  `json:"shadowColor,omitempty" toml:"shadowColor"`
	ShadowBlur                 float64 `json:"shadowBlur,omitempty" toml:"shadowBlur"`
	FadeInAnimation            bool    `json:"fadeInAnimation" toml:"fadeInAnimation"`
}

// DefaultSettings returns the footer caption style used for shorts.
func DefaultSettings() Settings {
	return Settings{
		FontSize:                   80,
		NumSimultaneousWords:       4,
		TextColor:                  "#FFFFFF",
		FontWeight:                 800,
		FontFamily:                 "Mulish",
		Stream:                     false,
		TextAlign:                  string(scene.AlignCenter),
		TextBoxWidthInPercent:      70,
		BorderColor:                "#000000",
		BorderWidth:                2,
		CurrentWordColor:           "#00FFFF",
		CurrentWordBackgroundColor: "#FF0000",
		ShadowColor:                "#000000",
		ShadowBlur:                 30,
		FadeInAnimation:            true,
	}
}

// Validate checks the preconditions of scheduling.
func (s Settings) Validate() error {
	if s.NumSimultaneousWords < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, s.NumSimultaneousWords)
	}
	if s.FontSize <= 0 {
		return fmt.Errorf("captions: font size must be positive, got %v", s.FontSize)
	}
	switch scene.Align(s.TextAlign) {
	case "", scene.AlignCenter, scene.AlignLeft, scene.AlignRight:
	default:
		return fmt.Errorf("captions: unknown text align %q", s.TextAlign)
	}
	for _, c := range []string{s.TextColor, s.CurrentWordColor, s.CurrentWordBackgroundColor} {
		if c == "" {
			continue
		}
		if _, err := scene.ParseColor(c); err != nil {
			return fmt.Errorf("captions: %w", err)
		}
	}
	return nil
}

// highlightColor falls back to the text color when no highlight is set.
func (s Settings) highlightColor() string {
	if s.CurrentWordColor == "" {
		return s.TextColor
	}
	return s.CurrentWordColor
}

func (s Settings) style() scene.TextStyle {
	return scene.TextStyle{
		FontSize:    s.FontSize,
		FontWeight:  s.FontWeight,
		FontFamily:  s.FontFamily,
		Align:       scene.Align(s.TextAlign),
		Stroke:      s.BorderColor,
		LineWidth:   s.BorderWidth,
		ShadowColor: s.ShadowColor,
		ShadowBlur:  s.ShadowBlur,
	}
}

func (s Settings) boxWidth(canvas float64) float64 {
	if canvas <= 0 {
		canvas = config.VideoWidth
	}
	return canvas * s.TextBoxWidthInPercent / 100
}

// Preset is a partial Settings override. Unset fields keep the base value.
type Preset struct {
	FontSize                   *float64 `json:"fontSize,omitempty" toml:"fontSize"`
	NumSimultaneousWords       *int     `json:"numSimultaneousWords,omitempty" toml:"numSimultaneousWords"`
	TextColor                  *string  `json:"textColor,omitempty" toml:"textColor"`
	FontWeight                 *int     `json:"fontWeight,omitempty" toml:"fontWeight"`
	FontFamily                 *string  `json:"fontFamily,omitempty" toml:"fontFamily"`
	Stream                     *bool    `json:"stream,omitempty" toml:"stream"`
	TextAlign                  *string  `json:"textAlign,omitempty" toml:"textAlign"`
	TextBoxWidthInPercent      *float64 `json:"textBoxWidthInPercent,omitempty" toml:"textBoxWidthInPercent"`
	BorderColor                *string  `json:"borderColor,omitempty" toml:"borderColor"`
	BorderWidth                *float64 `json:"borderWidth,omitempty" toml:"borderWidth"`
	CurrentWordColor           *string  `json:"currentWordColor,omitempty" toml:"currentWordColor"`
	CurrentWordBackgroundColor *string  `json:"currentWordBackgroundColor,omitempty" toml:"currentWordBackgroundColor"`
	ShadowColor                *string  `json:"shadowColor,omitempty" toml:"shadowColor"`
	ShadowBlur                 *float64 `json:"shadowBlur,omitempty" toml:"shadowBlur"`
	FadeInAnimation            *bool    `json:"fadeInAnimation,omitempty" toml:"fadeInAnimation"`
}

// Apply returns base with the preset's set fields overridden.
func (p Preset) Apply(base Settings) Settings {
	set(&base.FontSize, p.FontSize)
	set(&base.NumSimultaneousWords, p.NumSimultaneousWords)
	set(&base.TextColor, p.TextColor)
	set(&base.FontWeight, p.FontWeight)
	set(&base.FontFamily, p.FontFamily)
	set(&base.Stream, p.Stream)
	set(&base.TextAlign, p.TextAlign)
	set(&base.TextBoxWidthInPercent, p.TextBoxWidthInPercent)
	set(&base.BorderColor, p.BorderColor)
	set(&base.BorderWidth, p.BorderWidth)
	set(&base.CurrentWordColor, p.CurrentWordColor)
	set(&base.CurrentWordBackgroundColor, p.CurrentWordBackgroundColor)
	set(&base.ShadowColor, p.ShadowColor)
	set(&base.ShadowBlur, p.ShadowBlur)
	set(&base.FadeInAnimation, p.FadeInAnimation)
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Presets is a named table of caption styles, as found in captions.toml:
//
//	[presets.karaoke]
//	stream = true
//	currentWordColor = "#FFFF00"
type Presets struct {
	Presets map[string]Preset `toml:"presets"`
}

// LoadPresets decodes a TOML preset file.
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(string(data))
}

func ParsePresets(data string) (*Presets, error) {
	var p Presets
	if _, err := toml.Decode(data, &p); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	return &p, nil
}

// Resolve applies the named preset over DefaultSettings. An empty name
// returns the defaults.
func (p *Presets) Resolve(name string) (Settings, error) {
	base := DefaultSettings()
	if name == "" {
		return base, nil
	}
	if p == nil {
		return Settings{}, fmt.Errorf("unknown caption preset %q", name)
	}
	preset, ok := p.Presets[name]
	if !ok {
		return Settings{}, fmt.Errorf("unknown caption preset %q", name)
	}
	s := preset.Apply(base)
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return s, nil
}
