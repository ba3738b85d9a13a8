package models

import "time"

type Tenant struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Slug         string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Domain       string    `gorm:"size:255;index" json:"domain"`
	BaseCurrency string    `gorm:"size:3;not null;default:'USD'" json:"base_currency"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Tenant) Active() bool {
	return t != nil && t.IsActive != nil && *t.IsActive
}

// TenantStats backs the admin diagnostics endpoint.
type TenantStats struct {
	Products      int64 `json:"products"`
	Categories    int64 `json:"categories"`
	Brands        int64 `json:"brands"`
	ActiveCarts   int64 `json:"active_carts"`
	Orders        int64 `json:"orders"`
	PendingEvents int64 `json:"pending_events"`
}
