package models

import "time"

// AuditLog is append-only. Nothing updates or deletes these rows.
type AuditLog struct {
	ID          int       `gorm:"primary_key" json:"id"`
	TenantId    int       `gorm:"index;not null" json:"tenant_id"`
	Event       string    `gorm:"size:100;not null;index" json:"event"`
	SubjectType string    `gorm:"size:100;not null;index:idx_audit_subject,priority:1" json:"subject_type"`
	SubjectId   int       `gorm:"not null;index:idx_audit_subject,priority:2" json:"subject_id"`
	ActorId     *int      `gorm:"index" json:"actor_id"`
	ActorName   string    `gorm:"size:255" json:"actor_name"`
	Before      string    `gorm:"type:text" json:"before"`
	After       string    `gorm:"type:text" json:"after"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
