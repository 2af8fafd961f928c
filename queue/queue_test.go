package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsbot/jobs"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type handlerFunc func(ctx context.Context, message []byte) (bool, error)

func (f handlerFunc) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	return f(ctx, message)
}

func TestConsumeClaimMarksHandled(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 1, Value: []byte("ok")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 2, Value: []byte("retry")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 3, Value: []byte("ok")}
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	h := &groupHandler{handler: handlerFunc(func(_ context.Context, msg []byte) (bool, error) {
		if string(msg) == "retry" {
			return false, errors.New("busy")
		}
		return true, nil
	})}

	require.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{1, 3}, session.marked)
}

type payload struct {
	Name string `json:"name"`
}

func TestTypedHandler(t *testing.T) {
	var processed []string
	h := &TypedHandler[payload]{
		Validate: func(p *payload) bool { return p.Name != "" },
		Process: func(_ context.Context, p *payload) error {
			if p.Name == "fail" {
				return errors.New("boom")
			}
			processed = append(processed, p.Name)
			return nil
		},
		AlwaysMark: true,
	}
	ctx := context.Background()

	mark, err := h.HandleMessage(ctx, []byte(`{"name":"a"}`))
	assert.True(t, mark)
	assert.NoError(t, err)

	mark, err = h.HandleMessage(ctx, []byte(`not json`))
	assert.True(t, mark)
	assert.NoError(t, err)

	mark, err = h.HandleMessage(ctx, []byte(`{"name":""}`))
	assert.True(t, mark)
	assert.NoError(t, err)

	mark, err = h.HandleMessage(ctx, []byte(`{"name":"fail"}`))
	assert.False(t, mark)
	assert.Error(t, err)

	assert.Equal(t, []string{"a"}, processed)

	h.AlwaysMark = false
	mark, _ = h.HandleMessage(ctx, []byte(`{"name":""}`))
	assert.False(t, mark)
}

func TestProducerEnqueue(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	job := jobs.New("간헐적 단식", "")
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got jobs.Job
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.ID != job.ID || got.Topic != job.Topic {
			return errors.New("unexpected job payload")
		}
		return nil
	})
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWithClient(sp, "render-jobs")
	require.NoError(t, p.Enqueue(context.Background(), job))
	assert.ErrorIs(t, p.Enqueue(context.Background(), job), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestProducerCancelled(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducerWithClient(sp, "render-jobs")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "k", "v"), context.Canceled)
	require.NoError(t, p.Close())
}

type fakeProcessor struct {
	jobs []string
}

func (f *fakeProcessor) Process(_ context.Context, job *jobs.Job) error {
	f.jobs = append(f.jobs, job.ID)
	return nil
}

func TestJobHandler(t *testing.T) {
	ctx := context.Background()
	manager := jobs.NewManager(jobs.NewMemoryStore())
	proc := &fakeProcessor{}
	h := NewJobHandler(manager, proc)

	job := jobs.New("", "input/a-metadata.json")
	data, err := json.Marshal(job)
	require.NoError(t, err)

	mark, err := h.HandleMessage(ctx, data)
	require.NoError(t, err)
	assert.True(t, mark)
	assert.Equal(t, []string{job.ID}, proc.jobs)

	stored, err := manager.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "input/a-metadata.json", stored.MetadataPath)

	require.NoError(t, manager.SetStatus(ctx, job.ID, jobs.StatusDone))
	mark, err = h.HandleMessage(ctx, data)
	require.NoError(t, err)
	assert.True(t, mark)
	assert.Len(t, proc.jobs, 1)

	empty, _ := json.Marshal(jobs.Job{ID: "x"})
	mark, err = h.HandleMessage(ctx, empty)
	assert.NoError(t, err)
	assert.True(t, mark)
	assert.Len(t, proc.jobs, 1)
}
