package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"shortsbot/logger"
)

// MessageHandler handles one consumed message.
type MessageHandler interface {
	// HandleMessage returns whether to mark the message as processed.
	// Unmarked messages are redelivered.
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	ready   chan bool
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}
	return NewConsumerWithGroup(group, cfg), nil
}

func NewConsumerWithGroup(group sarama.ConsumerGroup, cfg ConsumerConfig) *Consumer {
	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		ready:   make(chan bool),
	}
}

// Start begins consuming in the background and returns once the first
// session is set up or ctx ends.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{handler: c.handler, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
					logger.Sugar().Info("Kafka consumer stopped")
					return
				}
				logger.Sugar().Errorf("Error from Kafka consumer: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	logger.Sugar().Infof("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			logger.Sugar().Errorf("❌ Kafka consumer error: %v", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the consumer
func (c *Consumer) Close() error {
	logger.Sugar().Info("Closing Kafka consumer...")
	return c.group.Close()
}

// DrainTimeout is how long Run waits for in-flight messages after a
// shutdown signal.
var DrainTimeout = 2 * time.Second

// Run starts c and blocks until SIGINT, SIGTERM or ctx ends, then closes it.
func Run(ctx context.Context, c *Consumer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigterm)

	select {
	case <-sigterm:
		logger.Sugar().Info("Received termination signal")
	case <-ctx.Done():
		logger.Sugar().Info("Context canceled")
	}
	cancel()

	time.Sleep(DrainTimeout)
	return c.Close()
}

type groupHandler struct {
	handler MessageHandler
	ready   chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			logger.Sugar().Infof("📥 Received Kafka message: partition=%d, offset=%d, key=%s",
				message.Partition, message.Offset, string(message.Key))

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				logger.Sugar().Errorf("❌ Failed to handle message: %v", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedHandler decodes JSON messages into T before handling them.
type TypedHandler[T any] struct {
	// Validate reports whether msg should be processed.
	Validate func(msg *T) bool
	Process  func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable and invalid messages so they are skipped.
	// Processing failures are never marked.
	AlwaysMark bool
}

func (h *TypedHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Sugar().Warnf("❌ Failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}
	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}
	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
