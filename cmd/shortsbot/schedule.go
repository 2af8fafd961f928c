package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shortsbot/config"
	"shortsbot/logger"
	"shortsbot/topics"
	"shortsbot/workflow"
)

var (
	scheduleDirect bool
	scheduleNow    bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Pick a fresh feed topic on a cron schedule and queue a short for it",
	Long: `Run the automated workflow on SCHEDULE_CRON: fetch FEED_URL, skip
topics already used, and enqueue a job for the first new one.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleDirect, "direct", false, "process jobs in this process instead of publishing to Kafka")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "run the workflow once before waiting for the schedule")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, closeStore := newJobManager()
	defer closeStore()

	enqueuer, closeQueue, err := newEnqueuer(ctx, manager, scheduleDirect)
	if err != nil {
		return err
	}
	defer closeQueue()

	seen, closeSeen := newSeen()
	defer closeSeen()

	runner := workflow.NewRunner(manager, enqueuer, seen, config.FeedURL())
	runner.Similar = newSimilar()
	c, err := workflow.NewCron(runner, config.ScheduleCron())
	if err != nil {
		return err
	}
	if scheduleNow {
		if job, err := runner.Run(ctx); err != nil {
			logger.Sugar().Errorf("Workflow error: %v", err)
		} else {
			logger.Sugar().Infof("Enqueued job %s: %s", job.ID, job.Topic)
		}
	}

	c.Start()
	<-ctx.Done()
	logger.Sugar().Info("Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

// newSeen remembers used topics in Redis, or in memory when Redis is
// unreachable.
func newSeen() (topics.Seen, func()) {
	seen, err := topics.NewRedisSeen(topics.SeenConfig{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})
	if err != nil {
		logger.Sugar().Warnf("⚠️ Topic history unavailable, keeping it in memory: %v", err)
		return topics.NewMemorySeen(), func() {}
	}
	return seen, func() { _ = seen.Close() }
}

// newSimilar returns nil unless COHERE_API_KEY is set.
func newSimilar() *topics.Similar {
	key := config.CohereAPIKey()
	if key == "" {
		return nil
	}
	logger.Sugar().Infof("Filtering near-duplicate topics with %s", config.CohereEmbedModel())
	embedder := topics.NewCohereEmbedder(key, config.CohereEmbedModel(), "")
	return topics.NewSimilar(embedder, config.TopicSimilarity())
}
