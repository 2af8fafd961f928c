package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsbot/jobs"
	"shortsbot/topics"
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

var feedItems = []*topics.Item{
	{Title: "간헐적 단식의 효과", URL: "https://news.example.com/a", Summary: "16시간 공복"},
	{Title: "탈모 예방 샴푸", URL: "https://news.example.com/b", Summary: "두피 타입별 정리"},
}

func newTestRunner(q Enqueuer) *Runner {
	r := NewRunner(jobs.NewManager(jobs.NewMemoryStore()), q, topics.NewMemorySeen(), "unused")
	r.Feed = func(context.Context) ([]*topics.Item, error) { return feedItems, nil }
	r.Extract = func(url string) (string, error) {
		if url == "https://news.example.com/b" {
			return "", errors.New("timeout")
		}
		return "기사 본문 " + url, nil
	}
	return r
}

func TestRunEnqueuesUnseenTopics(t *testing.T) {
	ctx := context.Background()
	q := &recordingQueue{}
	r := newTestRunner(q)

	first, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "간헐적 단식의 효과", first.Topic)
	assert.Equal(t, "기사 본문 https://news.example.com/a", first.Context)
	assert.Equal(t, "https://news.example.com/a", first.SourceURL)

	second, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "탈모 예방 샴푸", second.Topic)
	assert.Equal(t, "두피 타입별 정리", second.Context)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, topics.ErrNoFreshTopic)

	require.Len(t, q.jobs, 2)
	stored, err := r.jobs.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusQueued, stored.Status)
}

func TestRunEnqueueFailureFailsJob(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(&recordingQueue{err: errors.New("broker down")})

	_, err := r.Run(ctx)
	require.Error(t, err)

	list, err := r.jobs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jobs.StatusFailed, list[0].Status)
	assert.Equal(t, "broker down", list[0].Error)
}

func TestRunFeedError(t *testing.T) {
	r := newTestRunner(&recordingQueue{})
	r.Feed = func(context.Context) ([]*topics.Item, error) { return nil, errors.New("dns") }
	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "fetch feed")
	assert.False(t, r.Busy())
}

func TestRunRejectsOverlap(t *testing.T) {
	r := newTestRunner(&recordingQueue{})
	started := make(chan struct{})
	release := make(chan struct{})
	r.Feed = func(context.Context) ([]*topics.Item, error) {
		close(started)
		<-release
		return feedItems, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()
	<-started
	assert.True(t, r.Busy())

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.NoError(t, <-done)
}

type fakeProcessor struct {
	done chan *jobs.Job
}

func (f *fakeProcessor) Process(_ context.Context, job *jobs.Job) error {
	f.done <- job
	return nil
}

func TestDirectEnqueue(t *testing.T) {
	proc := &fakeProcessor{done: make(chan *jobs.Job, 1)}
	job := jobs.New("topic", "")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, Direct{Processor: proc}.Enqueue(ctx, job))
	cancel()

	select {
	case got := <-proc.done:
		assert.Equal(t, job.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestCron(t *testing.T) {
	r := newTestRunner(&recordingQueue{})

	_, err := NewCron(r, "not a schedule")
	assert.Error(t, err)

	c, err := NewCron(r, "0 */6 * * *")
	require.NoError(t, err)
	c.tick()
	c.tick()
	c.tick()

	list, err := r.jobs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	c.Start()
	<-c.Stop().Done()
}
