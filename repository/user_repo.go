package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id int) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("tenant_id = ?", tenantID).First(&u, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID int, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("tenant_id = ? AND email = ?", tenantID, email).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, tenantID int, roleSlugs []string) ([]*models.User, error) {
	db := r.db.WithContext(ctx).Preload("Roles").Where("tenant_id = ?", tenantID)
	if len(roleSlugs) > 0 {
		db = db.Where("id IN (SELECT ur.user_id FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE r.slug IN ?)", roleSlugs)
	}
	var users []*models.User
	if err := db.Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Omit("Roles.*").Create(u).Error, "user with this email")
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(u).Error; err != nil {
			return translate(err, "user with this email")
		}
		return tx.Model(u).Omit("Roles.*").Association("Roles").Replace(u.Roles)
	})
}

func (r *userRepo) Delete(ctx context.Context, tenantID, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{ID: id}).Association("Roles").Clear(); err != nil {
			return err
		}
		res := tx.Where("tenant_id = ?", tenantID).Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFound("user not found")
		}
		return nil
	})
}

func (r *userRepo) RolesBySlugs(ctx context.Context, slugs []string) ([]*models.Role, error) {
	var roles []*models.Role
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// EnsureRoles inserts missing roles by slug and fills in their ids.
func (r *userRepo) EnsureRoles(ctx context.Context, roles []*models.Role) error {
	db := r.db.WithContext(ctx)
	for _, role := range roles {
		if err := db.Where(models.Role{Slug: role.Slug}).Attrs(models.Role{Name: role.Name}).FirstOrCreate(role).Error; err != nil {
			return err
		}
	}
	return nil
}
