package repository

import (
	"context"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct {
	db *gorm.DB
}

func preloadCartItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

func (r *cartRepo) FindActive(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error) {
	db := preloadCartItems(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND status = ?", tenantID, models.CartStatusActive)
	return firstOwnedCart(db, owner)
}

func (r *cartRepo) FindLatest(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error) {
	return firstOwnedCart(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), owner)
}

func firstOwnedCart(db *gorm.DB, owner models.CartOwner) (*models.Cart, error) {
	if owner.UserId != nil {
		db = db.Where("user_id = ?", *owner.UserId)
	} else {
		db = db.Where("user_id IS NULL AND session_id = ?", owner.SessionId)
	}
	var c models.Cart
	if err := db.Order("id desc").First(&c).Error; err != nil {
		return nil, translate(err, "cart")
	}
	return &c, nil
}

func (r *cartRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Cart, error) {
	var c models.Cart
	if err := preloadCartItems(r.db.WithContext(ctx)).Where("tenant_id = ?", tenantID).First(&c, id).Error; err != nil {
		return nil, translate(err, "cart")
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, c *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Items").Create(c).Error
}

func (r *cartRepo) SaveTotals(ctx context.Context, c *models.Cart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *cartRepo) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepo) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID, itemID int) error {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("cart item not found")
	}
	return nil
}

func (r *cartRepo) MarkConverted(ctx context.Context, tenantID, cartID int, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, cartID, models.CartStatusActive).
		Updates(map[string]any{"status": models.CartStatusConverted, "converted_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrCartAlreadyConverted
	}
	return nil
}
