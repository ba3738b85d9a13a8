package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

// Create inserts the order with its items. A taken order number or cart id
// comes back as Conflict.
func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error, "order")
}

func (r *orderRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("tenant_id = ?", tenantID).First(&o, id).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *orderRepo) GetByNumber(ctx context.Context, tenantID int, number string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, number).First(&o).Error
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, tenantID int, f models.OrderFilter, limit, offset int) ([]*models.Order, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Order{}).Where("tenant_id = ?", tenantID)
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.PaymentStatus != nil {
		db = db.Where("payment_status = ?", *f.PaymentStatus)
	}
	if f.UserId != nil {
		db = db.Where("user_id = ?", *f.UserId)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		db = db.Where("(order_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?)", p, p, p)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []*models.Order
	q := db.Preload("Items").Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tenantID, id int, status models.OrderStatus, payment models.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{"status": status, "payment_status": payment})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("order not found")
	}
	return nil
}
