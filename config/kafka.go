package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func NewKafkaPublisherFromEnv() (*KafkaPublisher, error) {
	brokers := SplitAndTrim(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	return NewKafkaPublisher(brokers, topic), nil
}

// Publish keys messages by aggregate so one order's events share a partition.
// The writer returns no message id, so the key is the reference.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return "", fmt.Errorf("kafka publish: %w", err)
	}
	return key, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
