package assets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsbot/captions"
	"shortsbot/metadata"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDeepgramTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "ko", r.URL.Query().Get("language"))
		assert.Equal(t, "true", r.URL.Query().Get("smart_format"))
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "RIFF", string(body))
		// Providers do not always label JSON bodies; the client decodes regardless.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, `{"results":{"channels":[{"alternatives":[{"transcript":"남자는 간다","words":[
			{"word":"남자","punctuated_word":"남자","start":0,"end":0.4},
			{"word":"는","start":0.4,"end":0.5},
			{"word":"간다","punctuated_word":"간다.","start":0.6,"end":1.0}]}]}]}}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "job-audio.wav")
	writeFile(t, audio, "RIFF")

	words, err := NewDeepgram("dg-key", srv.URL).Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, []captions.Word{
		{Text: "남자", Start: 0, End: 0.4},
		{Text: "는", Start: 0.4, End: 0.5},
		{Text: "간다.", Start: 0.6, End: 1.0},
	}, words)
}

func TestDeepgramErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()
	dg := NewDeepgram("nope", srv.URL)

	_, err := dg.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, ErrNoAudio)

	audio := filepath.Join(t.TempDir(), "a.wav")
	writeFile(t, audio, "RIFF")
	_, err = dg.Transcribe(context.Background(), audio)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGoogleTTS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		var req googleSynthesizeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ko-KR", req.Voice.LanguageCode)
		assert.Equal(t, "LINEAR16", req.AudioConfig.AudioEncoding)
		assert.Equal(t, 22050, req.AudioConfig.SampleRateHertz)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"audioContent": base64.StdEncoding.EncodeToString([]byte("pcm"))})
	}))
	defer srv.Close()

	stem := filepath.Join(t.TempDir(), "out", "voice")
	out, err := NewGoogleTTS("g-key", srv.URL).Synthesize(context.Background(), "안녕하세요", stem)
	require.NoError(t, err)
	assert.Equal(t, stem+".wav", out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(data))
}

func TestElevenLabsLooksUpVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		switch r.URL.Path {
		case "/v1/voices":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"voices":[{"name":"Sarah","voice_id":"s1"},{"name":"Jessica","voice_id":"j1"}]}`)
		case "/v1/text-to-speech/j1":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "eleven_multilingual_v2", body["model_id"])
			_, _ = io.WriteString(w, "mp3")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	stem := filepath.Join(t.TempDir(), "voice")
	out, err := NewElevenLabs("el-key", srv.URL).Synthesize(context.Background(), "text", stem)
	require.NoError(t, err)
	assert.Equal(t, stem+".mp3", out)
	data, _ := os.ReadFile(out)
	assert.Equal(t, "mp3", string(data))

	el := NewElevenLabs("el-key", srv.URL)
	el.Voice = "Nobody"
	_, err = el.Synthesize(context.Background(), "text", stem)
	assert.ErrorContains(t, err, "not found")
}

type fakeSpeech struct {
	name  string
	ext   string
	err   error
	calls int
}

func (f *fakeSpeech) Name() string { return f.name }

func (f *fakeSpeech) Synthesize(_ context.Context, text, stem string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	ext := f.ext
	if ext == "" {
		ext = ".wav"
	}
	return writeAudio(stem+ext, []byte(text))
}

func TestFallbackSynthesizer(t *testing.T) {
	stem := filepath.Join(t.TempDir(), "a")
	google := &fakeSpeech{name: "google", err: errors.New("credentials not set")}
	eleven := &fakeSpeech{name: "elevenlabs", ext: ".mp3"}
	out, err := FallbackSynthesizer{google, eleven}.Synthesize(context.Background(), "대본", stem)
	require.NoError(t, err)
	assert.Equal(t, stem+".mp3", out)
	assert.Equal(t, 1, google.calls)
	assert.Equal(t, 1, eleven.calls)

	broken := &fakeSpeech{name: "elevenlabs", err: errors.New("quota")}
	_, err = FallbackSynthesizer{google, broken}.Synthesize(context.Background(), "대본", stem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not set")
	assert.Contains(t, err.Error(), "quota")
}

func openAIServer(t *testing.T, chat func(prompt string) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/chat/completions":
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": chat(req.Messages[0].Content)}}},
			})
		case "/v1/images/generations":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"url": "http://" + r.Host + "/files/img.png"}},
			})
		case "/files/img.png":
			_, _ = io.WriteString(w, "png")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWriterScriptAndPrompts(t *testing.T) {
	srv := openAIServer(t, func(prompt string) string {
		if strings.Contains(prompt, "Youtube Short") {
			return "1. a bald cartoon man\n2. \"a shampoo bottle\"\n"
		}
		assert.Contains(t, prompt, "간헐적 단식")
		assert.Contains(t, prompt, "기사 본문")
		return "이걸 알고 있었나요?\n간헐적 단식은 ...\n정말 놀랍죠."
	})
	w := NewWriter(NewOpenAIClient("sk-test", srv.URL+"/v1"))

	script, err := w.Script(context.Background(), "간헐적 단식", "기사 본문")
	require.NoError(t, err)
	assert.Equal(t, "이걸 알고 있었나요?", script.Headline)
	assert.Equal(t, "간헐적 단식은 ...\n정말 놀랍죠.", script.Body)

	prompts, err := w.ImagePrompts(context.Background(), script.Text(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a bald cartoon man", "a shampoo bottle", "a bald cartoon man"}, prompts)
}

func TestImageGeneratorDownloads(t *testing.T) {
	srv := openAIServer(t, func(string) string { return "" })
	out := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, NewImageGenerator(NewOpenAIClient("sk-test", srv.URL+"/v1")).Generate(context.Background(), "prompt", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

type fakeWriter struct{}

func (fakeWriter) Script(context.Context, string, string) (Script, error) {
	return Script{Headline: "탈모 솔루션", Body: "아나셀을 검색해봐!"}, nil
}

func (fakeWriter) ImagePrompts(_ context.Context, _ string, n int) ([]string, error) {
	out := make([]string, n)
	for i := range out {
		out[i] = "prompt"
	}
	return out, nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(_ context.Context, audioPath string) ([]captions.Word, error) {
	if _, err := readAudio(audioPath); err != nil {
		return nil, err
	}
	return []captions.Word{{Text: "탈모", Start: 0, End: 0.5}, {Text: "솔루션", Start: 0.5, End: 1.2}}, nil
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeImages) Generate(_ context.Context, prompt, savePath string) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return os.WriteFile(savePath, []byte("png"), 0o644)
}

func TestPreparerWritesMetadata(t *testing.T) {
	dir := t.TempDir()
	images := &fakeImages{}
	p := &Preparer{
		Writer:      fakeWriter{},
		Speech:      &fakeSpeech{name: "fake"},
		Transcriber: fakeTranscriber{},
		Images:      images,
		Dir:         dir,
		ImageCount:  4,
	}
	res, err := p.Prepare(context.Background(), Request{JobID: "job1", Topic: "탈모"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "job1-metadata.json"), res.MetadataPath)
	assert.Len(t, images.prompts, 4)
	assert.Equal(t, []string{"job1-image-1.png", "job1-image-2.png", "job1-image-3.png", "job1-image-4.png"}, res.Metadata.Images)

	loaded, err := metadata.Load(res.MetadataPath)
	require.NoError(t, err)
	assert.Equal(t, "job1-audio.wav", loaded.AudioURL)
	assert.Equal(t, "탈모 솔루션", loaded.Headline)
	assert.Len(t, loaded.Words, 2)
}

func TestPreparerKeepsFallbackAudioFormat(t *testing.T) {
	dir := t.TempDir()
	p := &Preparer{
		Writer: fakeWriter{},
		Speech: FallbackSynthesizer{
			&fakeSpeech{name: "google", err: errors.New("credentials not set")},
			&fakeSpeech{name: "elevenlabs", ext: ".mp3"},
		},
		Transcriber: fakeTranscriber{},
		Images:      &fakeImages{},
		Dir:         dir,
		ImageCount:  1,
	}
	res, err := p.Prepare(context.Background(), Request{JobID: "job2", Topic: "탈모"})
	require.NoError(t, err)

	assert.Equal(t, "job2-audio.mp3", res.Metadata.AudioURL)
	assert.FileExists(t, filepath.Join(dir, "job2-audio.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "job2-audio.wav"))
}

func TestPreparerFromAudio(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "anacell-audio.wav")
	writeFile(t, audio, "RIFF")
	p := &Preparer{Transcriber: fakeTranscriber{}, Dir: dir}

	res, err := p.FromAudio(context.Background(), "anacell", audio, []string{"cartoon_1.png"})
	require.NoError(t, err)
	assert.Equal(t, "anacell-audio.wav", res.Metadata.AudioURL)
	assert.FileExists(t, filepath.Join(dir, "anacell-metadata.json"))

	_, err = p.FromAudio(context.Background(), "none", filepath.Join(dir, "missing.wav"), nil)
	assert.ErrorIs(t, err, ErrNoAudio)
}
