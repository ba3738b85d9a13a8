package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) List(ctx context.Context, tenantID int, q ProductQuery) ([]*models.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Product{}).Where("tenant_id = ?", tenantID)
	if q.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if q.FeaturedOnly {
		db = db.Where("is_featured = ?", true)
	}
	if q.CategoryID != nil {
		db = db.Where("(category_id = ? OR id IN (SELECT product_id FROM product_categories WHERE category_id = ?))", *q.CategoryID, *q.CategoryID)
	}
	if q.BrandID != nil {
		db = db.Where("brand_id = ?", *q.BrandID)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		db = db.Where("(name LIKE ? OR sku LIKE ? OR description LIKE ?)", p, p, p)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.Sort {
	case models.ProductSortPriceAsc:
		db = db.Order("price asc").Order("id asc")
	case models.ProductSortPriceDesc:
		db = db.Order("price desc").Order("id asc")
	case models.ProductSortName:
		db = db.Order("name asc").Order("id asc")
	default:
		db = db.Order("created_at desc").Order("id desc")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit).Offset(q.Offset)
	}

	var items []*models.Product
	if err := db.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Preload("Categories").Preload("Subcategories").
		Where("tenant_id = ?", tenantID).First(&p, id).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) GetByIDAnyTenant(ctx context.Context, id int) (*models.Product, error) {
	ctx = appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Preload("Categories").Preload("Subcategories").
		Where("tenant_id = ? AND slug = ?", tenantID, slug).First(&p).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND slug = ? AND id <> ?", tenantID, slug, excludeID))
}

func (r *productRepo) SkuExists(ctx context.Context, tenantID int, sku string, excludeID int) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND sku = ? AND id <> ?", tenantID, sku, excludeID))
}

func (r *productRepo) Create(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadLinks(tx, p, categoryIDs, subcategoryIDs); err != nil {
			return err
		}
		if err := tx.Omit("Categories.*", "Subcategories.*").Create(p).Error; err != nil {
			return translate(err, "product")
		}
		return nil
	})
}

// Update saves scalar columns and replaces images and category links.
func (r *productRepo) Update(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return translate(err, "product")
		}
		if p.Images != nil {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			for i, img := range p.Images {
				img.ID = 0
				img.ProductId = p.ID
				img.SortOrder = i
			}
			if len(p.Images) > 0 {
				if err := tx.Create(&p.Images).Error; err != nil {
					return err
				}
			}
		}
		if categoryIDs == nil && subcategoryIDs == nil {
			return nil
		}
		if err := loadLinks(tx, p, categoryIDs, subcategoryIDs); err != nil {
			return err
		}
		if categoryIDs != nil {
			if err := tx.Model(p).Omit("Categories.*").Association("Categories").Replace(p.Categories); err != nil {
				return err
			}
		}
		if subcategoryIDs != nil {
			if err := tx.Model(p).Omit("Subcategories.*").Association("Subcategories").Replace(p.Subcategories); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := &models.Product{ID: id, TenantId: tenantID}
		if err := tx.Model(p).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(p).Association("Subcategories").Clear(); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("product not found")
		}
		return nil
	})
}

// AdjustStock applies delta and refuses to take stock below zero.
func (r *productRepo) AdjustStock(ctx context.Context, tenantID, id, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND id = ? AND stock_quantity + ? >= 0", tenantID, id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("tenant_id = ? AND id = ?", tenantID, id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return models.NotFound("product %d not found", id)
		}
		return models.Validation("insufficient stock for product %d", id)
	}
	return nil
}

func (r *productRepo) PriceRange(ctx context.Context, tenantID int) (*decimal.Decimal, *decimal.Decimal, error) {
	var row struct {
		MinPrice decimal.NullDecimal
		MaxPrice decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Scan(&row).Error
	if err != nil {
		return nil, nil, err
	}
	var lo, hi *decimal.Decimal
	if row.MinPrice.Valid {
		lo = &row.MinPrice.Decimal
	}
	if row.MaxPrice.Valid {
		hi = &row.MaxPrice.Decimal
	}
	return lo, hi, nil
}

func (r *productRepo) ImagesByProductIDs(ctx context.Context, ids []int) (map[int][]*models.ProductImage, error) {
	var images []*models.ProductImage
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Order("sort_order asc, id asc").Find(&images).Error; err != nil {
		return nil, err
	}
	out := make(map[int][]*models.ProductImage, len(ids))
	for _, img := range images {
		out[img.ProductId] = append(out[img.ProductId], img)
	}
	return out, nil
}

// loadLinks resolves category and subcategory ids inside the product's tenant.
func loadLinks(tx *gorm.DB, p *models.Product, categoryIDs, subcategoryIDs []int) error {
	if len(categoryIDs) > 0 {
		var cats []*models.Category
		if err := tx.Where("tenant_id = ? AND id IN ?", p.TenantId, categoryIDs).Find(&cats).Error; err != nil {
			return err
		}
		if len(cats) != len(uniqueInts(categoryIDs)) {
			return models.Validation("unknown category in category_ids")
		}
		p.Categories = cats
	} else if categoryIDs != nil {
		p.Categories = []*models.Category{}
	}
	if len(subcategoryIDs) > 0 {
		var subs []*models.Subcategory
		if err := tx.Where("tenant_id = ? AND id IN ?", p.TenantId, subcategoryIDs).Find(&subs).Error; err != nil {
			return err
		}
		if len(subs) != len(uniqueInts(subcategoryIDs)) {
			return models.Validation("unknown subcategory in subcategory_ids")
		}
		p.Subcategories = subs
	} else if subcategoryIDs != nil {
		p.Subcategories = []*models.Subcategory{}
	}
	return nil
}

func exists(db *gorm.DB) (bool, error) {
	var n int64
	if err := db.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func uniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
