package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
)

type userRepo struct{ s *Store }

func (r userRepo) withRoles(u *models.User) {
	u.Roles = nil
	for _, id := range r.s.data.userRoles[u.ID] {
		if role, ok := r.s.data.roles[id]; ok {
			u.Roles = append(u.Roles, &role)
		}
	}
}

func (r userRepo) GetByID(ctx context.Context, tenantID, id int) (*models.User, error) {
	r.s.lock("")
	defer r.s.unlock()
	u, ok := r.s.data.users[id]
	if !ok || u.TenantId != tenantID {
		return nil, models.NotFound("user not found")
	}
	r.withRoles(&u)
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, tenantID int, email string) (*models.User, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, u := range r.s.data.users {
		if u.TenantId == tenantID && u.Email == email {
			r.withRoles(&u)
			return &u, nil
		}
	}
	return nil, models.NotFound("user not found")
}

func (r userRepo) List(ctx context.Context, tenantID int, roleSlugs []string) ([]*models.User, error) {
	r.s.lock("")
	defer r.s.unlock()
	want := map[string]bool{}
	for _, slug := range roleSlugs {
		want[slug] = true
	}
	var out []*models.User
	for _, id := range sortedIDs(r.s.data.users) {
		u := r.s.data.users[id]
		if u.TenantId != tenantID {
			continue
		}
		r.withRoles(&u)
		if len(want) > 0 {
			match := false
			for _, role := range u.Roles {
				match = match || want[role.Slug]
			}
			if !match {
				continue
			}
		}
		out = append(out, &u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r userRepo) emailTaken(u *models.User) bool {
	for _, o := range r.s.data.users {
		if o.TenantId == u.TenantId && o.Email == u.Email && o.ID != u.ID {
			return true
		}
	}
	return false
}

func (r userRepo) store(u *models.User) {
	ids := make([]int, 0, len(u.Roles))
	for _, role := range u.Roles {
		ids = append(ids, role.ID)
	}
	r.s.data.userRoles[u.ID] = ids
	stored := *u
	stored.Roles = nil
	r.s.data.users[u.ID] = stored
}

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	err := r.s.lock("users.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if r.emailTaken(u) {
		return conflict("user with this email")
	}
	if u.IsActive == nil {
		u.IsActive = ptr(true)
	}
	u.ID = r.s.data.next("users")
	r.s.stamp(&u.CreatedAt, &u.UpdatedAt)
	r.store(u)
	return nil
}

func (r userRepo) Update(ctx context.Context, u *models.User) error {
	err := r.s.lock("users.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if old, ok := r.s.data.users[u.ID]; !ok || old.TenantId != u.TenantId {
		return models.NotFound("user not found")
	}
	if r.emailTaken(u) {
		return conflict("user with this email")
	}
	r.s.stamp(nil, &u.UpdatedAt)
	r.store(u)
	return nil
}

func (r userRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("users.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if u, ok := r.s.data.users[id]; !ok || u.TenantId != tenantID {
		return models.NotFound("user not found")
	}
	delete(r.s.data.users, id)
	delete(r.s.data.userRoles, id)
	return nil
}

func (r userRepo) RolesBySlugs(ctx context.Context, slugs []string) ([]*models.Role, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.Role
	for _, id := range sortedIDs(r.s.data.roles) {
		role := r.s.data.roles[id]
		for _, slug := range slugs {
			if role.Slug == slug {
				out = append(out, &role)
				break
			}
		}
	}
	return out, nil
}

func (r userRepo) EnsureRoles(ctx context.Context, roles []*models.Role) error {
	err := r.s.lock("roles.ensure")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, role := range roles {
		found := false
		for _, existing := range r.s.data.roles {
			if existing.Slug == role.Slug {
				*role = existing
				found = true
				break
			}
		}
		if found {
			continue
		}
		role.ID = r.s.data.next("roles")
		r.s.stamp(&role.CreatedAt, nil)
		r.s.data.roles[role.ID] = *role
	}
	return nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(ctx context.Context, entry *models.AuditLog) error {
	err := r.s.lock("audit.append")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	entry.ID = r.s.data.next("audit_logs")
	r.s.stamp(&entry.CreatedAt, nil)
	r.s.data.audit = append(r.s.data.audit, *entry)
	return nil
}

func (r auditRepo) ListForSubject(ctx context.Context, tenantID int, subjectType string, subjectID int) ([]*models.AuditLog, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.AuditLog
	for _, e := range r.s.data.audit {
		if e.TenantId == tenantID && e.SubjectType == subjectType && e.SubjectId == subjectID {
			out = append(out, &e)
		}
	}
	return out, nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	err := r.s.lock("outbox.enqueue")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if event.PublishStatus == "" {
		event.PublishStatus = models.OutboxPublishStatusPending
	}
	event.ID = r.s.data.next("outbox_events")
	r.s.stamp(&event.CreatedAt, &event.UpdatedAt)
	r.s.data.outbox = append(r.s.data.outbox, *event)
	return nil
}

func (r outboxRepo) ListForAggregate(ctx context.Context, tenantID int, aggregateType string, aggregateID int) ([]*models.OutboxEvent, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.OutboxEvent
	for _, e := range r.s.data.outbox {
		if e.TenantId == tenantID && e.AggregateType == aggregateType && e.AggregateId == aggregateID {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r outboxRepo) Claim(ctx context.Context, owner string, now, staleBefore time.Time, limit, maxAttempts int) ([]*models.OutboxEvent, error) {
	err := r.s.lock("outbox.claim")
	defer r.s.unlock()
	if err != nil {
		return nil, err
	}
	var claimed []*models.OutboxEvent
	for i := range r.s.data.outbox {
		if limit > 0 && len(claimed) >= limit {
			break
		}
		e := &r.s.data.outbox[i]
		due := (e.PublishStatus == models.OutboxPublishStatusPending || e.PublishStatus == models.OutboxPublishStatusFailed) &&
			(e.NextAttemptAt == nil || !e.NextAttemptAt.After(now))
		stale := e.PublishStatus == models.OutboxPublishStatusProcessing && e.LockedAt != nil && !e.LockedAt.After(staleBefore)
		if !due && !stale {
			continue
		}
		if maxAttempts > 0 && e.PublishAttempts >= maxAttempts {
			markDead(e, fmt.Sprintf("max publish attempts exceeded (%d)", maxAttempts))
			continue
		}
		lockedAt, lockedBy := now, owner
		e.PublishStatus = models.OutboxPublishStatusProcessing
		e.LockedAt = &lockedAt
		e.LockedBy = &lockedBy
		e.PublishAttempts++
		e.LastPublishError = nil
		e.NextAttemptAt = nil
		out := *e
		claimed = append(claimed, &out)
	}
	return claimed, nil
}

func (r outboxRepo) update(op string, id int, fn func(e *models.OutboxEvent)) error {
	err := r.s.lock(op)
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for i := range r.s.data.outbox {
		if r.s.data.outbox[i].ID == id {
			fn(&r.s.data.outbox[i])
			r.s.stamp(nil, &r.s.data.outbox[i].UpdatedAt)
			return nil
		}
	}
	return models.NotFound("outbox event not found")
}

func (r outboxRepo) MarkSent(ctx context.Context, id int, brokerMessageID string, at time.Time) error {
	return r.update("outbox.sent", id, func(e *models.OutboxEvent) {
		e.PublishStatus = models.OutboxPublishStatusSent
		e.PublishedAt = &at
		e.BrokerMessageId = &brokerMessageID
		e.LockedAt, e.LockedBy, e.NextAttemptAt = nil, nil, nil
	})
}

func (r outboxRepo) MarkFailed(ctx context.Context, id int, reason string, nextAttempt time.Time) error {
	return r.update("outbox.failed", id, func(e *models.OutboxEvent) {
		e.PublishStatus = models.OutboxPublishStatusFailed
		e.LastPublishError = &reason
		e.NextAttemptAt = &nextAttempt
		e.LockedAt, e.LockedBy = nil, nil
	})
}

func (r outboxRepo) MarkDead(ctx context.Context, id int, reason string) error {
	return r.update("outbox.dead", id, func(e *models.OutboxEvent) { markDead(e, reason) })
}

func markDead(e *models.OutboxEvent, reason string) {
	e.PublishStatus = models.OutboxPublishStatusDead
	e.LastPublishError = &reason
	e.LockedAt, e.LockedBy, e.NextAttemptAt = nil, nil, nil
}
