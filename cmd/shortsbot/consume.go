package main

import (
	"github.com/spf13/cobra"

	"shortsbot/config"
	"shortsbot/logger"
	"shortsbot/queue"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Kafka render worker",
	Args:  cobra.NoArgs,
	RunE:  runConsume,
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

func runConsume(cmd *cobra.Command, args []string) error {
	manager, closeStore := newJobManager()
	defer closeStore()

	proc, err := newProcessor(cmd.Context(), manager)
	if err != nil {
		return err
	}

	consumer, err := queue.NewConsumer(queue.ConsumerConfig{
		Brokers: config.KafkaBrokers(),
		Topic:   config.KafkaRenderTopic(),
		GroupID: config.KafkaGroupID(),
		Handler: queue.NewJobHandler(manager, proc),
	})
	if err != nil {
		return err
	}

	logger.Sugar().Infof("🔧 Render worker consuming %s", config.KafkaRenderTopic())
	return queue.Run(cmd.Context(), consumer)
}
