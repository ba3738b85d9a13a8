package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int              `gorm:"primary_key" json:"id"`
	TenantId      int              `gorm:"index;not null;uniqueIndex:idx_product_slug,priority:1;uniqueIndex:idx_product_sku,priority:1" json:"tenant_id"`
	CategoryId    *int             `gorm:"index" json:"category_id"`
	BrandId       *int             `gorm:"index" json:"brand_id"`
	TaxRateId     *int             `json:"tax_rate_id"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Slug          string           `gorm:"size:255;not null;uniqueIndex:idx_product_slug,priority:2" json:"slug"`
	Sku           string           `gorm:"size:100;not null;uniqueIndex:idx_product_sku,priority:2" json:"sku"`
	Description   string           `gorm:"type:text" json:"description"`
	Price         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"price"`
	SalePrice     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sale_price"`
	StockQuantity int              `gorm:"not null;default:0" json:"stock_quantity"`
	WeightKg      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"weight_kg"`
	VolumeCbm     decimal.Decimal  `gorm:"type:decimal(20,6);default:0" json:"volume_cbm"`
	IsActive      *bool            `gorm:"not null;default:true" json:"is_active"`
	IsFeatured    *bool            `gorm:"not null;default:false" json:"is_featured"`
	Images        []*ProductImage  `gorm:"foreignKey:ProductId" json:"-"`
	Categories    []*Category      `gorm:"many2many:product_categories" json:"-"`
	Subcategories []*Subcategory   `gorm:"many2many:product_subcategories" json:"-"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) Active() bool {
	return p != nil && p.IsActive != nil && *p.IsActive
}

// UnitDiscount is the per-unit markdown when a lower sale price is set.
func (p *Product) UnitDiscount() decimal.Decimal {
	if p.SalePrice == nil || p.SalePrice.GreaterThanOrEqual(p.Price) || p.SalePrice.IsNegative() {
		return decimal.Zero
	}
	return p.Price.Sub(*p.SalePrice)
}

type ProductImage struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ProductId int       `gorm:"index;not null" json:"product_id"`
	Url       string    `gorm:"size:1024;not null" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewProductImage struct {
	Url       string `json:"url" validate:"required,url"`
	AltText   string `json:"alt_text" validate:"max=255"`
	IsPrimary bool   `json:"is_primary"`
}

type NewProduct struct {
	Name           string             `json:"name" validate:"required,max=255"`
	Slug           string             `json:"slug" validate:"max=255"`
	Sku            string             `json:"sku" validate:"max=100"`
	Description    string             `json:"description"`
	CategoryId     *int               `json:"category_id"`
	BrandId        *int               `json:"brand_id"`
	TaxRateId      *int               `json:"tax_rate_id"`
	CategoryIds    []int              `json:"category_ids"`
	SubcategoryIds []int              `json:"subcategory_ids"`
	Price          decimal.Decimal    `json:"price"`
	SalePrice      *decimal.Decimal   `json:"sale_price"`
	StockQuantity  int                `json:"stock_quantity"`
	WeightKg       decimal.Decimal    `json:"weight_kg"`
	VolumeCbm      decimal.Decimal    `json:"volume_cbm"`
	IsActive       *bool              `json:"is_active"`
	IsFeatured     *bool              `json:"is_featured"`
	Images         []*NewProductImage `json:"images" validate:"dive"`
}

type ProductFilter struct {
	CategorySlug string           `json:"category"`
	BrandSlug    string           `json:"brand"`
	Search       string           `json:"search"`
	MinPrice     *decimal.Decimal `json:"min_price"`
	MaxPrice     *decimal.Decimal `json:"max_price"`
	FeaturedOnly bool             `json:"featured"`
	Sort         ProductSort      `json:"sort"`
	Page         int              `json:"page"`
	PerPage      int              `json:"per_page"`
}

type ProductPage struct {
	Items   []*Product `json:"items"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

type FilterOptions struct {
	Categories []*Category      `json:"categories"`
	Brands     []*Brand         `json:"brands"`
	MinPrice   *decimal.Decimal `json:"min_price"`
	MaxPrice   *decimal.Decimal `json:"max_price"`
}
