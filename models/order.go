package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	Name       string `gorm:"size:255" json:"name" validate:"required,max=255"`
	Line1      string `gorm:"size:255" json:"line1" validate:"required,max=255"`
	Line2      string `gorm:"size:255" json:"line2" validate:"max=255"`
	City       string `gorm:"size:100" json:"city" validate:"required,max=100"`
	State      string `gorm:"size:100" json:"state" validate:"max=100"`
	PostalCode string `gorm:"size:20" json:"postal_code" validate:"max=20"`
	Country    string `gorm:"size:2" json:"country" validate:"required,len=2"`
	Phone      string `gorm:"size:20" json:"phone"`
}

type Order struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TenantId         int             `gorm:"index;not null" json:"tenant_id"`
	CartId           int             `gorm:"uniqueIndex;not null" json:"cart_id"`
	UserId           int             `gorm:"index;not null" json:"user_id"`
	OrderNumber      string          `gorm:"size:50;not null;uniqueIndex" json:"order_number"`
	Status           OrderStatus     `gorm:"type:enum('Pending','Processing','Complete','Cancelled','OnHold','Refunded');default:Pending;index;not null" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"type:enum('Pending','Authorized','Paid','PartiallyRefunded','Refunded','Failed');default:Pending;not null" json:"payment_status"`
	PaymentMethod    string          `gorm:"size:50" json:"payment_method"`
	CustomerName     string          `gorm:"size:255" json:"customer_name"`
	CustomerEmail    string          `gorm:"size:255" json:"customer_email"`
	ShippingAddress  Address         `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress   Address         `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	ShippingMethodId *int            `json:"shipping_method_id"`
	ShippingRouteId  *int            `json:"shipping_route_id"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	ShippingAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_amount"`
	GrandTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	CustomerNote     string          `gorm:"type:text" json:"customer_note"`
	Items            []*OrderItem    `gorm:"foreignKey:OrderId" json:"items"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrderId        int             `gorm:"index;not null" json:"order_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Sku            string          `gorm:"size:100;not null" json:"sku"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	RowTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"row_total"`
	CustomOptions  string          `gorm:"type:text" json:"custom_options"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type PlaceOrderInput struct {
	ShippingAddress Address  `json:"shipping_address" validate:"required"`
	BillingAddress  *Address `json:"billing_address"`
	PaymentMethod   string   `json:"payment_method" validate:"max=50"`
	CustomerNote    string   `json:"customer_note"`
}

type OrderFilter struct {
	Status        *OrderStatus   `json:"status"`
	PaymentStatus *PaymentStatus `json:"payment_status"`
	Search        string         `json:"search"`
	UserId        *int           `json:"user_id"`
	Page          int            `json:"page"`
	PerPage       int            `json:"per_page"`
}

type OrderPage struct {
	Items   []*Order `json:"items"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}
