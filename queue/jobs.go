package queue

import (
	"context"
	"errors"

	"shortsbot/jobs"
	"shortsbot/logger"
)

// JobProcessor runs a job to completion.
type JobProcessor interface {
	Process(ctx context.Context, job *jobs.Job) error
}

// NewJobHandler decodes render jobs and processes them. Jobs published by
// another process are registered with manager first.
func NewJobHandler(manager *jobs.Manager, proc JobProcessor) *TypedHandler[jobs.Job] {
	return &TypedHandler[jobs.Job]{
		Validate: func(msg *jobs.Job) bool {
			if msg.ID == "" {
				logger.Sugar().Warn("❌ Message missing job ID, skipping")
				return false
			}
			if msg.Topic == "" && msg.MetadataPath == "" {
				logger.Sugar().Warnf("⚠️  Skipping job %s with neither topic nor metadata", msg.ID)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *jobs.Job) error {
			job, err := manager.Get(ctx, msg.ID)
			if errors.Is(err, jobs.ErrNotFound) {
				job = msg
				job.Status = jobs.StatusQueued
				err = manager.Create(ctx, job)
			}
			if err != nil {
				return err
			}
			if job.Status.Terminal() {
				logger.Sugar().Infof("Job %s already %s, skipping", job.ID, job.Status)
				return nil
			}
			return proc.Process(ctx, job)
		},
		AlwaysMark: true,
	}
}
