package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/sirupsen/logrus"
)

// Publisher is satisfied by config.EventPublisher.
type Publisher interface {
	Publish(ctx context.Context, key string, data []byte) (string, error)
}

// OutboxDispatcher publishes committed outbox events to the broker.
// Several dispatchers may run at once; the claim step keeps them apart.
type OutboxDispatcher struct {
	Outbox       repository.OutboxRepo
	Publisher    Publisher
	Logger       *logrus.Logger
	DispatcherID string
	Now          func() time.Time

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func NewOutboxDispatcher(outbox repository.OutboxRepo, publisher Publisher, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		Outbox:         outbox,
		Publisher:      publisher,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		Now:            func() time.Time { return time.Now().UTC() },
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
		MaxBackoff:     10 * time.Minute,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := d.DispatchOnce(ctx); err != nil && d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"field":         "OutboxDispatcher",
				"dispatcher_id": d.DispatcherID,
			}).Error("outbox claim failed: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// DispatchOnce claims one batch and publishes it. It returns how many
// events reached the broker.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.Now()
	claimed, err := d.Outbox.Claim(ctx, d.DispatcherID, now, now.Add(-d.LockTimeout), d.BatchSize, d.MaxAttempts)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range claimed {
		data, err := json.Marshal(models.ConvertToEnvelope(*rec))
		if err != nil {
			// a payload that cannot be encoded will never publish
			d.markDead(ctx, rec, err)
			continue
		}
		msgID, pubErr := d.Publisher.Publish(ctx, EventKey(rec), data)
		if pubErr != nil {
			d.markPublishFailed(ctx, rec, pubErr)
			continue
		}
		if err := d.Outbox.MarkSent(ctx, rec.ID, msgID, now); err != nil {
			d.logRecord(rec, logrus.Fields{}).Error("outbox mark sent failed: " + err.Error())
			continue
		}
		sent++
	}
	return sent, nil
}

// EventKey orders one aggregate's events onto the same partition.
func EventKey(rec *models.OutboxEvent) string {
	return fmt.Sprintf("%d:%s:%d", rec.TenantId, rec.AggregateType, rec.AggregateId)
}

// Backoff doubles InitialBackoff per previous attempt, capped at MaxBackoff.
func (d *OutboxDispatcher) Backoff(attempt int) time.Duration {
	backoff := d.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if d.MaxBackoff > 0 && backoff > d.MaxBackoff {
			return d.MaxBackoff
		}
	}
	return backoff
}

func (d *OutboxDispatcher) markPublishFailed(ctx context.Context, rec *models.OutboxEvent, err error) {
	if d.MaxAttempts > 0 && rec.PublishAttempts >= d.MaxAttempts {
		d.markDead(ctx, rec, err)
		return
	}
	next := d.Now().Add(d.Backoff(rec.PublishAttempts))
	if markErr := d.Outbox.MarkFailed(ctx, rec.ID, err.Error(), next); markErr != nil {
		d.logRecord(rec, logrus.Fields{}).Error("outbox mark failed: " + markErr.Error())
		return
	}
	d.logRecord(rec, logrus.Fields{
		"next_attempt_at": next.Format(time.RFC3339Nano),
	}).Error("outbox publish failed: " + fmt.Sprintf("%v", err))
}

func (d *OutboxDispatcher) markDead(ctx context.Context, rec *models.OutboxEvent, err error) {
	if markErr := d.Outbox.MarkDead(ctx, rec.ID, err.Error()); markErr != nil {
		d.logRecord(rec, logrus.Fields{}).Error("outbox mark dead failed: " + markErr.Error())
		return
	}
	d.logRecord(rec, logrus.Fields{}).Error("outbox publish moved to DEAD: " + fmt.Sprintf("%v", err))
}

func (d *OutboxDispatcher) logRecord(rec *models.OutboxEvent, fields logrus.Fields) *logrus.Entry {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fields["field"] = "OutboxDispatcher"
	fields["tenant_id"] = rec.TenantId
	fields["record_id"] = rec.ID
	fields["event_type"] = rec.EventType
	fields["attempt"] = rec.PublishAttempts
	return logger.WithFields(fields)
}
