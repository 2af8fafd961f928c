package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"shortsbot/captions"
)

// ErrNoWords is returned by Validate for metadata without transcript words.
var ErrNoWords = errors.New("metadata has no words")

// Suffix is appended to a job name to form its metadata file name.
const Suffix = "-metadata.json"

// Metadata is the boundary artifact between asset preparation and
// composition.
type Metadata struct {
	AudioURL string          `json:"audioUrl"`
	Images   []string        `json:"images"`
	Words    []captions.Word `json:"words"`
	Headline string          `json:"headline,omitempty"`
	Script   string          `json:"script,omitempty"`
}

// TranscriptWord is a word as transcription services report it. Deepgram
// fills punctuated_word when smart formatting is on.
type TranscriptWord struct {
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
	Word           string  `json:"word,omitempty"`
	Text           string  `json:"text,omitempty"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// Label picks the best available spelling of the word.
func (w TranscriptWord) Label() string {
	for _, s := range []string{w.PunctuatedWord, w.Word, w.Text} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// FromTranscript converts transcription output into caption words. Words
// with no text are dropped.
func FromTranscript(words []TranscriptWord) []captions.Word {
	out := make([]captions.Word, 0, len(words))
	for _, w := range words {
		label := w.Label()
		if label == "" {
			continue
		}
		out = append(out, captions.Word{Text: label, Start: w.Start, End: w.End})
	}
	return out
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		AudioURL string           `json:"audioUrl"`
		Images   []string         `json:"images"`
		Words    []TranscriptWord `json:"words"`
		Headline string           `json:"headline"`
		Script   string           `json:"script"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{
		AudioURL: raw.AudioURL,
		Images:   raw.Images,
		Words:    FromTranscript(raw.Words),
		Headline: raw.Headline,
		Script:   raw.Script,
	}
	return nil
}

// Validate checks the fields composition depends on.
func (m *Metadata) Validate() error {
	if len(m.Words) == 0 {
		return ErrNoWords
	}
	return nil
}

// Duration is the end of the last word.
func (m *Metadata) Duration() float64 {
	if len(m.Words) == 0 {
		return 0
	}
	return m.Words[len(m.Words)-1].End
}

// Load reads and validates a metadata file.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Save writes m as indented JSON, creating the directory if needed.
func Save(path string, m *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// PathFor returns the metadata file for a job name inside dir.
func PathFor(dir, name string) string {
	return filepath.Join(dir, name+Suffix)
}

// NameOf strips dir and the metadata suffix from path.
func NameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Suffix)
}

// Summary describes m in a few lines for CLI output.
func Summary(m *Metadata) string {
	preview := lo.Map(lo.Subset(m.Words, 0, 10), func(w captions.Word, _ int) string { return w.Text })
	var b strings.Builder
	fmt.Fprintf(&b, "audio:    %s\n", m.AudioURL)
	fmt.Fprintf(&b, "images:   %d\n", len(m.Images))
	fmt.Fprintf(&b, "words:    %d\n", len(m.Words))
	fmt.Fprintf(&b, "duration: %.2fs\n", m.Duration())
	if len(preview) > 0 {
		text := strings.Join(preview, " ")
		if len(m.Words) > len(preview) {
			text += " ..."
		}
		fmt.Fprintf(&b, "first:    %s\n", text)
	}
	return b.String()
}
