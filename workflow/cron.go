package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"shortsbot/logger"
)

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// Cron triggers a Runner on a schedule. A tick that arrives while the
// previous run is still going is skipped.
type Cron struct {
	cron     *cron.Cron
	runner   *Runner
	schedule string
}

// NewCron schedules runner with a standard five-field cron spec.
func NewCron(runner *Runner, schedule string) (*Cron, error) {
	c := &Cron{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		runner:   runner,
		schedule: schedule,
	}
	if _, err := c.cron.AddFunc(schedule, c.tick); err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	return c, nil
}

func (c *Cron) tick() {
	logger.Sugar().Info("Cron triggered: starting automated workflow")
	job, err := c.runner.Run(context.Background())
	switch {
	case errors.Is(err, ErrBusy):
		logger.Sugar().Info("Cron skipped: workflow is busy")
	case err != nil:
		logger.Sugar().Errorf("Cron workflow error: %v", err)
	default:
		logger.Sugar().Infof("Cron enqueued job %s", job.ID)
	}
}

func (c *Cron) Start() {
	c.cron.Start()
	logger.Sugar().Infof("Cron job started with schedule: %s", c.schedule)
}

// Stop halts scheduling. The returned context is done once a running
// tick finishes.
func (c *Cron) Stop() context.Context {
	return c.cron.Stop()
}
