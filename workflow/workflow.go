package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/topics"
)

// ErrBusy is returned when a run is already in progress.
var ErrBusy = errors.New("workflow already running")

// DefaultFeedCount is how many feed items are considered per run.
const DefaultFeedCount = 20

// Enqueuer hands a created job to whatever renders it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *jobs.Job) error
}

// JobProcessor runs a job to completion.
type JobProcessor interface {
	Process(ctx context.Context, job *jobs.Job) error
}

// Direct processes jobs in this process instead of going through Kafka.
type Direct struct {
	Processor JobProcessor
}

func (d Direct) Enqueue(ctx context.Context, job *jobs.Job) error {
	go func() {
		if err := d.Processor.Process(context.WithoutCancel(ctx), job); err != nil {
			logger.Sugar().Errorf("❌ Job %s failed: %v", job.ID, err)
		}
	}()
	return nil
}

// Runner turns the freshest unseen feed item into a queued job.
type Runner struct {
	jobs  *jobs.Manager
	queue Enqueuer
	seen  topics.Seen

	// Similar optionally drops topics that repeat an earlier story in
	// different words.
	Similar *topics.Similar

	// Feed and Extract default to the RSS feed and readability.
	Feed    func(ctx context.Context) ([]*topics.Item, error)
	Extract func(url string) (string, error)

	running atomic.Bool
}

// NewRunner creates a runner that reads feedURL.
func NewRunner(manager *jobs.Manager, queue Enqueuer, seen topics.Seen, feedURL string) *Runner {
	return &Runner{
		jobs:  manager,
		queue: queue,
		seen:  seen,
		Feed: func(ctx context.Context) ([]*topics.Item, error) {
			return topics.FetchFeed(ctx, feedURL, DefaultFeedCount)
		},
		Extract: topics.ExtractText,
	}
}

// Busy reports whether a run is in progress.
func (r *Runner) Busy() bool { return r.running.Load() }

// Run fetches the feed, picks an unseen topic, creates a job for it and
// enqueues it.
func (r *Runner) Run(ctx context.Context) (*jobs.Job, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.running.Store(false)

	r.jobs.AddLog("", "Fetching feed...")
	items, err := r.Feed(ctx)
	if err != nil {
		r.jobs.AddLog("", "Error: fetch feed: %v", err)
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	r.jobs.AddLog("", "Fetched %d items", len(items))

	item, err := topics.Pick(ctx, items, r.seen, r.Similar)
	if err != nil {
		r.jobs.AddLog("", "No topic picked: %v", err)
		return nil, fmt.Errorf("pick topic: %w", err)
	}

	text, err := r.Extract(item.URL)
	if err != nil || text == "" {
		logger.Sugar().Warnf("Using feed summary for %s: %v", item.URL, err)
		text = item.Summary
	}

	job := jobs.New(item.Title, "")
	job.Context = text
	job.SourceURL = item.URL
	if err := r.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := r.queue.Enqueue(ctx, job); err != nil {
		if ferr := r.jobs.Fail(ctx, job.ID, err); ferr != nil {
			logger.Sugar().Warnf("failed to record failure of %s: %v", job.ID, ferr)
		}
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	r.jobs.AddLog(job.ID, "Enqueued topic %q", item.Title)
	return job, nil
}
