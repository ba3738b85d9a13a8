package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
)

type tenantRepo struct {
	db *gorm.DB
}

func (r *tenantRepo) GetByID(ctx context.Context, id int) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, "tenant")
	}
	return &t, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translate(err, "tenant")
	}
	return &t, nil
}

func (r *tenantRepo) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&t).Error; err != nil {
		return nil, translate(err, "tenant")
	}
	return &t, nil
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "tenant")
}

func (r *tenantRepo) Stats(ctx context.Context, tenantID int) (*models.TenantStats, error) {
	db := r.db.WithContext(ctx)
	var s models.TenantStats
	counts := []struct {
		model any
		where string
		args  []any
		dst   *int64
	}{
		{&models.Product{}, "tenant_id = ?", []any{tenantID}, &s.Products},
		{&models.Category{}, "tenant_id = ?", []any{tenantID}, &s.Categories},
		{&models.Brand{}, "tenant_id = ?", []any{tenantID}, &s.Brands},
		{&models.Cart{}, "tenant_id = ? AND status = ?", []any{tenantID, models.CartStatusActive}, &s.ActiveCarts},
		{&models.Order{}, "tenant_id = ?", []any{tenantID}, &s.Orders},
		{&models.OutboxEvent{}, "tenant_id = ? AND publish_status IN ?", []any{tenantID, []string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}}, &s.PendingEvents},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
