package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type auditRepo struct {
	db *gorm.DB
}

func (r *auditRepo) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) ListForSubject(ctx context.Context, tenantID int, subjectType string, subjectID int) ([]*models.AuditLog, error) {
	var logs []*models.AuditLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND subject_type = ? AND subject_id = ?", tenantID, subjectType, subjectID).
		Order("id asc").Find(&logs).Error
	return logs, err
}

type outboxRepo struct {
	db *gorm.DB
}

func (r *outboxRepo) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	if event.PublishStatus == "" {
		event.PublishStatus = models.OutboxPublishStatusPending
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *outboxRepo) ListForAggregate(ctx context.Context, tenantID int, aggregateType string, aggregateID int) ([]*models.OutboxEvent, error) {
	var events []*models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND aggregate_type = ? AND aggregate_id = ?", tenantID, aggregateType, aggregateID).
		Order("id asc").Find(&events).Error
	return events, err
}

func (r *outboxRepo) Claim(ctx context.Context, owner string, now, staleBefore time.Time, limit, maxAttempts int) ([]*models.OutboxEvent, error) {
	var claimed []*models.OutboxEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []*models.OutboxEvent
		q := tx.
			Where(`
				(publish_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?))
				OR
				(publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?)
			`, []string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}, now,
				models.OutboxPublishStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			if maxAttempts > 0 && row.PublishAttempts >= maxAttempts {
				msg := fmt.Sprintf("max publish attempts exceeded (%d)", maxAttempts)
				if err := tx.Model(&models.OutboxEvent{}).Where("id = ?", row.ID).Updates(deadColumns(msg)).Error; err != nil {
					return err
				}
				continue
			}
			row.PublishStatus = models.OutboxPublishStatusProcessing
			row.LockedAt = &now
			row.LockedBy = &owner
			row.PublishAttempts++
			row.LastPublishError = nil
			row.NextAttemptAt = nil
			if err := tx.Model(&models.OutboxEvent{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
				"publish_status":     row.PublishStatus,
				"locked_at":          row.LockedAt,
				"locked_by":          row.LockedBy,
				"publish_attempts":   gorm.Expr("publish_attempts + 1"),
				"last_publish_error": nil,
				"next_attempt_at":    nil,
			}).Error; err != nil {
				return err
			}
			claimed = append(claimed, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *outboxRepo) MarkSent(ctx context.Context, id int, brokerMessageID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"publish_status":    models.OutboxPublishStatusSent,
		"published_at":      &at,
		"broker_message_id": &brokerMessageID,
		"locked_at":         nil,
		"locked_by":         nil,
		"next_attempt_at":   nil,
	}).Error
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id int, reason string, nextAttempt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"publish_status":     models.OutboxPublishStatusFailed,
		"last_publish_error": &reason,
		"next_attempt_at":    &nextAttempt,
		"locked_at":          nil,
		"locked_by":          nil,
	}).Error
}

func (r *outboxRepo) MarkDead(ctx context.Context, id int, reason string) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(deadColumns(reason)).Error
}

func deadColumns(reason string) map[string]interface{} {
	return map[string]interface{}{
		"publish_status":     models.OutboxPublishStatusDead,
		"last_publish_error": &reason,
		"next_attempt_at":    nil,
		"locked_at":          nil,
		"locked_by":          nil,
	}
}
