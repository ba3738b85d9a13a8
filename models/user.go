package models

import "time"

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  int       `gorm:"index;not null;uniqueIndex:idx_user_email,priority:1" json:"tenant_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_user_email,priority:2" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	Roles     []*Role   `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Active() bool {
	return u != nil && u.IsActive != nil && *u.IsActive
}

func (u *User) RoleSlugs() []string {
	slugs := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		slugs = append(slugs, r.Slug)
	}
	return slugs
}

type NewUser struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Phone    string   `json:"phone" validate:"max=20"`
	Password string   `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool    `json:"is_active"`
	Roles    []string `json:"roles"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthPayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
