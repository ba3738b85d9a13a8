package models

import "time"

// OutboxEvent is written in the same transaction as the change it describes
// and published after commit by the outbox dispatcher.
type OutboxEvent struct {
	ID               int        `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	TenantId         int        `gorm:"index;not null" json:"tenant_id"`
	EventType        string     `gorm:"size:100;not null" json:"event_type"`
	AggregateType    string     `gorm:"size:100;not null" json:"aggregate_type"`
	AggregateId      int        `gorm:"not null" json:"aggregate_id"`
	Payload          []byte     `gorm:"type:blob" json:"payload"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	BrokerMessageId  *string    `gorm:"size:255" json:"broker_message_id"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// EventEnvelope is the broker payload.
type EventEnvelope struct {
	ID            int       `json:"id"`
	TenantId      int       `json:"tenant_id"`
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateId   int       `json:"aggregate_id"`
	Payload       []byte    `json:"payload"`
	CorrelationId string    `json:"correlation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func ConvertToEnvelope(record OutboxEvent) EventEnvelope {
	return EventEnvelope{
		ID:            record.ID,
		TenantId:      record.TenantId,
		EventType:     record.EventType,
		AggregateType: record.AggregateType,
		AggregateId:   record.AggregateId,
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
		OccurredAt:    record.CreatedAt,
	}
}
