package service

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/access"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
)

// UserService manages storefront customers and back-office users.
type UserService struct {
	store repository.Store
}

var staffRoles = access.Staff

func (s *UserService) Customers(ctx context.Context) ([]*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, tenantID, []string{models.RoleSlugCustomer})
}

func (s *UserService) AdminUsers(ctx context.Context) ([]*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, tenantID, staffRoles.Slugs())
}

func (s *UserService) CreateCustomer(ctx context.Context, input *models.NewUser) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.CreateCustomer")
	defer span.End()

	input.Roles = []string{models.RoleSlugCustomer}
	return s.create(ctx, input)
}

func (s *UserService) UpdateCustomer(ctx context.Context, id int, input *models.NewUser) (*models.User, error) {
	input.Roles = []string{models.RoleSlugCustomer}
	return s.update(ctx, id, input, func(u *models.User) bool {
		return access.ParseRoles(u.RoleSlugs()).Has(access.Customer)
	})
}

func (s *UserService) CreateAdminUser(ctx context.Context, input *models.NewUser) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.CreateAdminUser")
	defer span.End()

	if err := s.checkStaffRoles(ctx, input.Roles); err != nil {
		return nil, err
	}
	return s.create(ctx, input)
}

func (s *UserService) UpdateAdminUser(ctx context.Context, id int, input *models.NewUser) (*models.User, error) {
	if err := s.checkStaffRoles(ctx, input.Roles); err != nil {
		return nil, err
	}
	return s.update(ctx, id, input, isStaffUser)
}

// DeleteAdminUser refuses to delete the caller's own account.
func (s *UserService) DeleteAdminUser(ctx context.Context, id int) (*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if self, ok := userFromContext(ctx); ok && self == id {
		return nil, models.Validation("you cannot delete your own account")
	}
	user, err := s.store.Users().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !isStaffUser(user) {
		return nil, models.NotFound("admin user %d not found", id)
	}
	if err := s.store.Users().Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return user, nil
}

func isStaffUser(u *models.User) bool {
	return access.ParseRoles(u.RoleSlugs()).Any(staffRoles)
}

// checkStaffRoles allows only back-office roles. Granting super-admin
// requires being one.
func (s *UserService) checkStaffRoles(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return models.Validation("at least one role is required")
	}
	for _, slug := range slugs {
		role, ok := access.RoleFromSlug(slug)
		if !ok || !staffRoles.Has(role) {
			return models.Validation("role %q cannot be granted to an admin user", slug)
		}
		if role == access.SuperAdmin {
			if err := access.Require(ctx, access.Of(access.SuperAdmin)); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizeUserInput(input *models.NewUser) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	phone, err := utils.NormalizePhone(input.Phone, "")
	if err != nil {
		return err
	}
	input.Phone = phone
	return nil
}

// resolveRoles maps slugs to role rows, provisioning the built-in roles on
// first use.
func resolveRoles(ctx context.Context, tx repository.Store, slugs []string) ([]*models.Role, error) {
	wanted := access.ParseRoles(slugs)
	var roles []*models.Role
	for _, role := range models.DefaultRoles() {
		if r, ok := access.RoleFromSlug(role.Slug); ok && wanted.Has(r) {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil, models.Validation("no known roles in %v", slugs)
	}
	if err := tx.Users().EnsureRoles(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *UserService) create(ctx context.Context, input *models.NewUser) (*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := normalizeUserInput(input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, models.Validation("password is required")
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantId: tenantID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashed,
		IsActive: boolOr(input.IsActive, true),
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, tenantID, user.Email); err == nil {
			return models.Conflict("a user with email %s already exists", user.Email)
		} else if models.KindOf(err) != models.KindNotFound {
			return err
		}
		roles, err := resolveRoles(ctx, tx, input.Roles)
		if err != nil {
			return err
		}
		user.Roles = roles
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) update(ctx context.Context, id int, input *models.NewUser, kind func(*models.User) bool) (*models.User, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := normalizeUserInput(input); err != nil {
		return nil, err
	}

	var user *models.User
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if !kind(user) {
			return models.NotFound("user %d not found", id)
		}
		if other, err := tx.Users().GetByEmail(ctx, tenantID, input.Email); err == nil && other.ID != id {
			return models.Conflict("a user with email %s already exists", input.Email)
		} else if err != nil && models.KindOf(err) != models.KindNotFound {
			return err
		}
		user.Name = input.Name
		user.Email = input.Email
		user.Phone = input.Phone
		if input.IsActive != nil {
			user.IsActive = input.IsActive
		}
		if input.Password != "" {
			if user.Password, err = utils.HashPassword(input.Password); err != nil {
				return err
			}
		}
		if user.Roles, err = resolveRoles(ctx, tx, input.Roles); err != nil {
			return err
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
