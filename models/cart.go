package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TenantId         int             `gorm:"index;not null" json:"tenant_id"`
	UserId           *int            `gorm:"index" json:"user_id"`
	SessionId        *string         `gorm:"size:100;index" json:"session_id"`
	Status           CartStatus      `gorm:"type:enum('Active','Converted');default:Active;index;not null" json:"status"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	ShippingAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_amount"`
	GrandTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	ShippingMethodId *int            `json:"shipping_method_id"`
	ShippingRouteId  *int            `json:"shipping_route_id"`
	PaymentMethod    string          `gorm:"size:50" json:"payment_method"`
	ConvertedAt      *time.Time      `json:"converted_at"`
	Items            []*CartItem     `gorm:"foreignKey:CartId" json:"items"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Cart) IsConverted() bool {
	return c.Status == CartStatusConverted || c.ConvertedAt != nil
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// CartItem snapshots the product at the time it was added. Later product
// changes do not touch existing items.
type CartItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CartId         int             `gorm:"index;not null" json:"cart_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Sku            string          `gorm:"size:100;not null" json:"sku"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	UnitDiscount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_discount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	RowTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"row_total"`
	WeightKg       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight_kg"`
	VolumeCbm      decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"volume_cbm"`
	CustomOptions  string          `gorm:"type:text" json:"custom_options"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartOwner identifies whose live cart is being touched: a signed-in user
// or an anonymous storefront session.
type CartOwner struct {
	UserId    *int
	SessionId string
}

func (o CartOwner) IsZero() bool {
	return o.UserId == nil && o.SessionId == ""
}
