package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"shortsbot/jobs"
	"shortsbot/logger"
)

// Producer publishes JSON messages to one topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewProducerWithClient(p, topic), nil
}

func NewProducerWithClient(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// Publish sends v as JSON keyed by key.
func (p *Producer) Publish(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	logger.Sugar().Debugf("📤 Published %s to %s (partition=%d, offset=%d)", key, p.topic, partition, offset)
	return nil
}

// Enqueue publishes job for a render worker.
func (p *Producer) Enqueue(ctx context.Context, job *jobs.Job) error {
	return p.Publish(ctx, job.ID, job)
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
