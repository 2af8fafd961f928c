package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shortsbot/api"
	"shortsbot/config"
	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/queue"
	"shortsbot/workflow"
)

var serveDirect bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job and caption planning API",
	Long: `Serve the HTTP API. Jobs are published to Kafka for the consume
worker, or processed in this process with --direct.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDirect, "direct", false, "process jobs in this process instead of publishing to Kafka")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, closeStore := newJobManager()
	defer closeStore()

	_, presets, err := captionSettings()
	if err != nil {
		return err
	}

	enqueuer, closeQueue, err := newEnqueuer(ctx, manager, serveDirect)
	if err != nil {
		return err
	}
	defer closeQueue()

	seen, closeSeen := newSeen()
	defer closeSeen()
	runner := workflow.NewRunner(manager, enqueuer, seen, config.FeedURL())
	runner.Similar = newSimilar()

	server := api.NewServer(manager, enqueuer, api.Options{Runner: runner, Presets: presets})
	if err := server.Start(config.Port()); err != nil {
		return err
	}
	logger.Sugar().Infof("🚀 API listening on :%s", config.Port())

	<-ctx.Done()
	logger.Sugar().Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newEnqueuer publishes to Kafka, or processes jobs in this process when
// direct is set.
func newEnqueuer(ctx context.Context, manager *jobs.Manager, direct bool) (workflow.Enqueuer, func(), error) {
	if direct {
		proc, err := newProcessor(ctx, manager)
		if err != nil {
			return nil, nil, err
		}
		return workflow.Direct{Processor: proc}, func() {}, nil
	}
	producer, err := queue.NewProducer(config.KafkaBrokers(), config.KafkaRenderTopic())
	if err != nil {
		return nil, nil, err
	}
	return producer, func() { _ = producer.Close() }, nil
}
