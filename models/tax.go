package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is a whole-number percentage (9 means 9%).
type TaxRate struct {
	ID        int             `gorm:"primary_key" json:"id"`
	TenantId  int             `gorm:"index;not null" json:"tenant_id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"rate"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
