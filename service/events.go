package service

import (
	"context"
	"encoding/json"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
)

const (
	subjectProduct      = "product"
	subjectExchangeRate = "exchange_rate"
	subjectOrder        = "order"
)

// recordChange appends an audit row and an outbox event in the caller's
// transaction. before and after may be nil.
func recordChange(ctx context.Context, tx repository.Store, tenantID int, event, subject string, subjectID int, before, after any) error {
	beforeJSON, err := optionalJSON(before)
	if err != nil {
		return err
	}
	afterJSON, err := optionalJSON(after)
	if err != nil {
		return err
	}
	actorID, actorName := actor(ctx)
	if err := tx.Audit().Append(ctx, &models.AuditLog{
		TenantId:    tenantID,
		Event:       event,
		SubjectType: subject,
		SubjectId:   subjectID,
		ActorId:     actorID,
		ActorName:   actorName,
		Before:      beforeJSON,
		After:       afterJSON,
	}); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{"before": json.RawMessage(orNull(beforeJSON)), "after": json.RawMessage(orNull(afterJSON))})
	if err != nil {
		return err
	}
	return tx.Outbox().Enqueue(ctx, &models.OutboxEvent{
		TenantId:      tenantID,
		EventType:     event,
		AggregateType: subject,
		AggregateId:   subjectID,
		Payload:       payload,
		CorrelationId: appctx.CorrelationId(ctx),
		PublishStatus: models.OutboxPublishStatusPending,
	})
}

func optionalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	return utils.MarshalToJSON(v)
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}
