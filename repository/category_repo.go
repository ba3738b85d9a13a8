package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
)

type categoryRepo struct {
	db *gorm.DB
}

func (r *categoryRepo) List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Category, error) {
	db := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, name asc") }).
		Where("tenant_id = ?", tenantID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var cats []*models.Category
	if err := db.Order("sort_order asc").Order("name asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Preload("Subcategories").Where("tenant_id = ?", tenantID).First(&c, id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Preload("Subcategories").Where("tenant_id = ? AND slug = ?", tenantID, slug).First(&c).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *categoryRepo) GetByIDs(ctx context.Context, ids []int) ([]*models.Category, error) {
	var cats []*models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&models.Category{}).
		Where("tenant_id = ? AND slug = ? AND id <> ?", tenantID, slug, excludeID))
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit("Subcategories").Create(c).Error, "category")
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit("Subcategories").Save(c).Error, "category")
}

func (r *categoryRepo) Delete(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("tenant_id = ? AND category_id = ?", tenantID, id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND category_id = ?", tenantID, id).Delete(&models.Subcategory{}).Error; err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("category not found")
		}
		return nil
	})
}

func (r *categoryRepo) CountChildren(ctx context.Context, tenantID, id int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("tenant_id = ? AND parent_id = ?", tenantID, id).Count(&n).Error
	return n, err
}

func (r *categoryRepo) GetSubcategory(ctx context.Context, tenantID, id int) (*models.Subcategory, error) {
	var s models.Subcategory
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&s, id).Error; err != nil {
		return nil, translate(err, "subcategory")
	}
	return &s, nil
}

func (r *categoryRepo) CreateSubcategory(ctx context.Context, s *models.Subcategory) error {
	return translate(r.db.WithContext(ctx).Create(s).Error, "subcategory")
}

func (r *categoryRepo) UpdateSubcategory(ctx context.Context, s *models.Subcategory) error {
	return translate(r.db.WithContext(ctx).Save(s).Error, "subcategory")
}

func (r *categoryRepo) DeleteSubcategory(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_subcategories WHERE subcategory_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.Subcategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("subcategory not found")
		}
		return nil
	})
}

type brandRepo struct {
	db *gorm.DB
}

func (r *brandRepo) List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Brand, error) {
	db := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var brands []*models.Brand
	if err := db.Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Brand, error) {
	var b models.Brand
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&b, id).Error; err != nil {
		return nil, translate(err, "brand")
	}
	return &b, nil
}

func (r *brandRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Brand, error) {
	var b models.Brand
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND slug = ?", tenantID, slug).First(&b).Error; err != nil {
		return nil, translate(err, "brand")
	}
	return &b, nil
}

func (r *brandRepo) GetByIDs(ctx context.Context, ids []int) ([]*models.Brand, error) {
	var brands []*models.Brand
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&models.Brand{}).
		Where("tenant_id = ? AND slug = ? AND id <> ?", tenantID, slug, excludeID))
}

func (r *brandRepo) Create(ctx context.Context, b *models.Brand) error {
	return translate(r.db.WithContext(ctx).Create(b).Error, "brand")
}

func (r *brandRepo) Update(ctx context.Context, b *models.Brand) error {
	return translate(r.db.WithContext(ctx).Save(b).Error, "brand")
}

func (r *brandRepo) Delete(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("tenant_id = ? AND brand_id = ?", tenantID, id).
			UpdateColumn("brand_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.Brand{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("brand not found")
		}
		return nil
	})
}

type taxRateRepo struct {
	db *gorm.DB
}

func (r *taxRateRepo) GetByID(ctx context.Context, tenantID, id int) (*models.TaxRate, error) {
	var t models.TaxRate
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&t, id).Error; err != nil {
		return nil, translate(err, "tax rate")
	}
	return &t, nil
}

func (r *taxRateRepo) List(ctx context.Context, tenantID int) ([]*models.TaxRate, error) {
	var rates []*models.TaxRate
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *taxRateRepo) Create(ctx context.Context, t *models.TaxRate) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "tax rate")
}

func (r *taxRateRepo) Update(ctx context.Context, t *models.TaxRate) error {
	return translate(r.db.WithContext(ctx).Save(t).Error, "tax rate")
}

func (r *taxRateRepo) Delete(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("tenant_id = ? AND tax_rate_id = ?", tenantID, id).
			UpdateColumn("tax_rate_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.TaxRate{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("tax rate not found")
		}
		return nil
	})
}
