package assets

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"shortsbot/captions"
	"shortsbot/config"
	"shortsbot/metadata"
)

// ErrNoAudio is returned when an audio file is missing or empty.
var ErrNoAudio = errors.New("no audio")

// Transcriber turns an audio file into timed words.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]captions.Word, error)
}

const deepgramURL = "https://api.deepgram.com"

// Deepgram transcribes prerecorded audio with the nova-2 Korean model.
type Deepgram struct {
	client   *resty.Client
	Model    string
	Language string
}

// NewDeepgram creates a client. baseURL may be empty for the public API.
func NewDeepgram(apiKey, baseURL string) *Deepgram {
	if baseURL == "" {
		baseURL = deepgramURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.APITimeout).
		SetHeader("Authorization", "Token "+apiKey)
	return &Deepgram{client: client, Model: "nova-2", Language: "ko"}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string                    `json:"transcript"`
				Words      []metadata.TranscriptWord `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *Deepgram) Transcribe(ctx context.Context, audioPath string) ([]captions.Word, error) {
	audio, err := readAudio(audioPath)
	if err != nil {
		return nil, err
	}
	contentType := mime.TypeByExtension(filepath.Ext(audioPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var out deepgramResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"model":        d.Model,
			"language":     d.Language,
			"smart_format": "true",
		}).
		SetHeader("Content-Type", contentType).
		SetBody(audio).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/listen")
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return nil, errors.New("transcription result is empty")
	}
	words := metadata.FromTranscript(out.Results.Channels[0].Alternatives[0].Words)
	if len(words) == 0 {
		return nil, metadata.ErrNoWords
	}
	return words, nil
}

func readAudio(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNoAudio, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoAudio, path)
	}
	return data, nil
}
