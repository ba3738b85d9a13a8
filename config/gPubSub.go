package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventPublisher delivers one serialized domain event to the broker and
// returns the broker-assigned message id.
type EventPublisher interface {
	Publish(ctx context.Context, key string, data []byte) (string, error)
	Close() error
}

// NewEventPublisher picks the broker from EVENT_BROKER (pubsub | kafka).
// It returns nil, nil when events are disabled.
func NewEventPublisher(ctx context.Context) (EventPublisher, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("EVENT_BROKER"))) {
	case "":
		return nil, nil
	case "pubsub":
		topic := os.Getenv("PUBSUB_TOPIC")
		if topic == "" {
			return nil, errors.New("PUBSUB_TOPIC is required")
		}
		client, err := getPubSubClient(ctx)
		if err != nil {
			return nil, err
		}
		return &PubSubPublisher{topic: client.Topic(topic)}, nil
	case "kafka":
		return NewKafkaPublisherFromEnv()
	default:
		return nil, fmt.Errorf("unknown EVENT_BROKER %q", os.Getenv("EVENT_BROKER"))
	}
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var attempt int
	for {
		attempt++
		var (
			c   *pubsub.Client
			err error
		)
		if credJSON != "" {
			c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			// Application Default Credentials.
			c, err = pubsub.NewClient(ctx, projectID)
		}
		if err == nil {
			pubsubClient = c
			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c, nil
		}
		if attempt >= 5 {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		sleep := Backoff(attempt)
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", projectID, attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

type PubSubPublisher struct {
	topic *pubsub.Topic
}

func (p *PubSubPublisher) Publish(ctx context.Context, key string, data []byte) (string, error) {
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"key": key},
	})
	return result.Get(ctx)
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return nil
}
