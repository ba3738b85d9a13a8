package models

import "time"

type Category struct {
	ID            int            `gorm:"primary_key" json:"id"`
	TenantId      int            `gorm:"index;not null;uniqueIndex:idx_category_slug,priority:1" json:"tenant_id"`
	ParentId      *int           `gorm:"index" json:"parent_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Slug          string         `gorm:"size:255;not null;uniqueIndex:idx_category_slug,priority:2" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	IsActive      *bool          `gorm:"not null;default:true" json:"is_active"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	Children      []*Category    `gorm:"-" json:"children"`
	Subcategories []*Subcategory `gorm:"foreignKey:CategoryId" json:"subcategories"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type Subcategory struct {
	ID         int       `gorm:"primary_key" json:"id"`
	TenantId   int       `gorm:"index;not null" json:"tenant_id"`
	CategoryId int       `gorm:"index;not null" json:"category_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Slug       string    `gorm:"size:255;not null" json:"slug"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"max=255"`
	Description string `json:"description"`
	ParentId    *int   `json:"parent_id"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

type Brand struct {
	ID          int       `gorm:"primary_key" json:"id"`
	TenantId    int       `gorm:"index;not null;uniqueIndex:idx_brand_slug,priority:1" json:"tenant_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex:idx_brand_slug,priority:2" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	LogoUrl     string    `gorm:"size:1024" json:"logo_url"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBrand struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"max=255"`
	Description string `json:"description"`
	LogoUrl     string `json:"logo_url" validate:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}
