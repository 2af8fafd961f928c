package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsbot/captions"
	"shortsbot/jobs"
	"shortsbot/topics"
	"shortsbot/workflow"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []*jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job *jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, q workflow.Enqueuer, opts Options) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(jobs.NewManager(jobs.NewMemoryStore()), q, opts)
	return s, s.NewRouter()
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHealth(t *testing.T) {
	_, r := newTestServer(t, &recordingQueue{}, Options{})
	w, _ := do(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateAndGetJob(t *testing.T) {
	q := &recordingQueue{}
	_, r := newTestServer(t, q, Options{})

	w, env := do(t, r, http.MethodPost, "/api/jobs", CreateJobRequest{Topic: "간헐적 단식"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, env.Success)

	var created jobs.Job
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, jobs.StatusQueued, created.Status)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, created.ID, q.jobs[0].ID)

	w, env = do(t, r, http.MethodGet, "/api/jobs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got jobs.Job
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "간헐적 단식", got.Topic)

	w, env = do(t, r, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []jobs.Job
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, env = do(t, r, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), created.ID)
}

func TestCreateJobValidation(t *testing.T) {
	_, r := newTestServer(t, &recordingQueue{}, Options{})

	w, env := do(t, r, http.MethodPost, "/api/jobs", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	w, env = do(t, r, http.MethodPost, "/api/jobs", CreateJobRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "topic or metadataPath is required", env.Message)

	w, _ = do(t, r, http.MethodGet, "/api/jobs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateJobEnqueueFailure(t *testing.T) {
	s, r := newTestServer(t, &recordingQueue{err: errors.New("broker down")}, Options{})

	w, env := do(t, r, http.MethodPost, "/api/jobs", CreateJobRequest{MetadataPath: "input/a-metadata.json"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "broker down", env.Error)

	list, err := s.jobs.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jobs.StatusFailed, list[0].Status)
}

var timelineWords = []captions.Word{
	{Text: "샴푸할수록", Start: 0.0, End: 0.8},
	{Text: "머리가", Start: 0.9, End: 1.4},
	{Text: "빠진다면", Start: 1.5, End: 2.2},
	{Text: "주목하세요", Start: 2.3, End: 3.0},
	{Text: "오늘은", Start: 3.1, End: 3.5},
}

func TestTimeline(t *testing.T) {
	_, r := newTestServer(t, &recordingQueue{}, Options{})

	w, env := do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{Words: timelineWords})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Duration    float64         `json:"duration"`
		Batches     int             `json:"batches"`
		Cues        []captions.Cue  `json:"cues"`
		BatchSpans  []captions.Span `json:"batchSpans"`
		ActiveSpans []captions.Span `json:"activeSpans"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.InDelta(t, 4.5, resp.Duration, 1e-9)
	assert.Equal(t, 2, resp.Batches)
	assert.NotEmpty(t, resp.Cues)
	require.Len(t, resp.BatchSpans, 2)
	assert.Len(t, resp.ActiveSpans, len(timelineWords))

	plan, err := captions.Build(context.Background(), timelineWords, captions.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, plan.BatchSpans(), resp.BatchSpans)
}

func TestTimelineSettingsOverride(t *testing.T) {
	presets, err := captions.ParsePresets(`
[presets.pairs]
numSimultaneousWords = 2
`)
	require.NoError(t, err)
	_, r := newTestServer(t, &recordingQueue{}, Options{Presets: presets})

	w, env := do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{Words: timelineWords, Preset: "pairs"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"batches":3`)

	one := 1
	w, env = do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{
		Words:    timelineWords,
		Preset:   "pairs",
		Settings: &captions.Preset{NumSimultaneousWords: &one},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"batches":5`)

	w, _ = do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{Words: timelineWords, Preset: "missing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimelineErrors(t *testing.T) {
	_, r := newTestServer(t, &recordingQueue{}, Options{})

	w, env := do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, captions.ErrNoWords.Error())

	zero := 0
	w, env = do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{
		Words:    timelineWords,
		Settings: &captions.Preset{NumSimultaneousWords: &zero},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, captions.ErrInvalidBatchSize.Error())

	bad := "sideways"
	w, _ = do(t, r, http.MethodPost, "/api/timeline", TimelineRequest{
		Words:    timelineWords,
		Settings: &captions.Preset{TextAlign: &bad},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunWorkflow(t *testing.T) {
	_, r := newTestServer(t, &recordingQueue{}, Options{})
	w, _ := do(t, r, http.MethodPost, "/api/workflow/run", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	q := &recordingQueue{}
	manager := jobs.NewManager(jobs.NewMemoryStore())
	runner := workflow.NewRunner(manager, q, topics.NewMemorySeen(), "unused")
	started := make(chan struct{})
	release := make(chan struct{})
	runner.Feed = func(context.Context) ([]*topics.Item, error) {
		close(started)
		<-release
		return nil, nil
	}

	gin.SetMode(gin.TestMode)
	r = NewServer(manager, q, Options{Runner: runner}).NewRouter()

	w, env := do(t, r, http.MethodPost, "/api/workflow/run", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "Workflow initiated", env.Message)

	<-started
	w, _ = do(t, r, http.MethodPost, "/api/workflow/run", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	close(release)
}
