package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"shortsbot/config"
	"shortsbot/logger"
)

// Synthesizer renders speech for text into stem plus the extension of
// the audio format it produces, and returns the written path.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, stem string) (string, error)
}

const (
	googleTTSURL  = "https://texttospeech.googleapis.com"
	elevenLabsURL = "https://api.elevenlabs.io"

	DefaultGoogleVoice     = "ko-KR-Standard-A"
	DefaultElevenLabsVoice = "Jessica"
)

// GoogleTTS is the Cloud Text-to-Speech REST API with an API key.
type GoogleTTS struct {
	client     *resty.Client
	apiKey     string
	Voice      string
	SampleRate int
}

func NewGoogleTTS(apiKey, baseURL string) *GoogleTTS {
	if baseURL == "" {
		baseURL = googleTTSURL
	}
	return &GoogleTTS{
		client:     resty.New().SetBaseURL(baseURL).SetTimeout(config.APITimeout),
		apiKey:     apiKey,
		Voice:      DefaultGoogleVoice,
		SampleRate: 22050,
	}
}

func (g *GoogleTTS) Name() string { return "google" }

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SsmlGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string `json:"audioEncoding"`
		SampleRateHertz int    `json:"sampleRateHertz"`
	} `json:"audioConfig"`
}

// Synthesize writes LINEAR16 audio, which Google returns with a WAV header.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, stem string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("google tts: api key not set")
	}
	var req googleSynthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = "ko-KR"
	req.Voice.Name = g.Voice
	req.Voice.SsmlGender = "FEMALE"
	req.AudioConfig.AudioEncoding = "LINEAR16"
	req.AudioConfig.SampleRateHertz = g.SampleRate

	var out struct {
		AudioContent string `json:"audioContent"`
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(req).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/text:synthesize")
	if err != nil {
		return "", fmt.Errorf("google tts request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("google tts returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.AudioContent == "" {
		return "", errors.New("no audio content received from google tts")
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return "", fmt.Errorf("failed to decode google tts audio: %w", err)
	}
	return writeAudio(stem+".wav", audio)
}

// ElevenLabs synthesizes with a voice looked up by display name.
type ElevenLabs struct {
	client *resty.Client
	Voice  string
	Model  string
}

func NewElevenLabs(apiKey, baseURL string) *ElevenLabs {
	if baseURL == "" {
		baseURL = elevenLabsURL
	}
	return &ElevenLabs{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(config.APITimeout).SetHeader("xi-api-key", apiKey),
		Voice:  DefaultElevenLabsVoice,
		Model:  "eleven_multilingual_v2",
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) voiceID(ctx context.Context) (string, error) {
	var out struct {
		Voices []struct {
			Name    string `json:"name"`
			VoiceID string `json:"voice_id"`
		} `json:"voices"`
	}
	resp, err := e.client.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/v1/voices")
	if err != nil {
		return "", fmt.Errorf("elevenlabs voices request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("elevenlabs voices returned status %d", resp.StatusCode())
	}
	for _, v := range out.Voices {
		if v.Name == e.Voice {
			return v.VoiceID, nil
		}
	}
	return "", fmt.Errorf("elevenlabs voice %q not found", e.Voice)
}

// Synthesize writes MP3 audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, stem string) (string, error) {
	id, err := e.voiceID(ctx)
	if err != nil {
		return "", err
	}
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetBody(map[string]string{"model_id": e.Model, "text": text}).
		Post("/v1/text-to-speech/" + id)
	if err != nil {
		return "", fmt.Errorf("elevenlabs request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return writeAudio(stem+".mp3", resp.Body())
}

// FallbackSynthesizer tries each synthesizer in order until one succeeds.
type FallbackSynthesizer []Synthesizer

func (f FallbackSynthesizer) Name() string { return "fallback" }

// Synthesize returns the path written by the first synthesizer that succeeds.
func (f FallbackSynthesizer) Synthesize(ctx context.Context, text, stem string) (string, error) {
	var errs []error
	for _, s := range f {
		path, err := s.Synthesize(ctx, text, stem)
		if err == nil {
			return path, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Sugar().Warnf("⚠️ %s speech failed, trying next: %v", s.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return "", errors.New("no synthesizers configured")
	}
	return "", errors.Join(errs...)
}

func writeAudio(path string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: synthesizer returned no bytes", ErrNoAudio)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
