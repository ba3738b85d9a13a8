package models

import "time"

// Roles are shared by all tenants; membership is per user.
type Role struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleSlugSuperAdmin = "super-admin"
	RoleSlugAdmin      = "admin"
	RoleSlugEditor     = "editor"
	RoleSlugCustomer   = "customer"
)

// DefaultRoles is what seeding provisions.
func DefaultRoles() []*Role {
	return []*Role{
		{Slug: RoleSlugSuperAdmin, Name: "Super Admin"},
		{Slug: RoleSlugAdmin, Name: "Admin"},
		{Slug: RoleSlugEditor, Name: "Editor"},
		{Slug: RoleSlugCustomer, Name: "Customer"},
	}
}
