package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts one unit of CodeFrom into Rate units of CodeTo.
// One row per (tenant, from, to); updates overwrite.
type ExchangeRate struct {
	ID        int             `gorm:"primary_key" json:"id"`
	TenantId  int             `gorm:"index;not null;uniqueIndex:idx_exchange_pair,priority:1" json:"tenant_id"`
	CodeFrom  string          `gorm:"size:3;not null;uniqueIndex:idx_exchange_pair,priority:2" json:"code_from"`
	CodeTo    string          `gorm:"size:3;not null;uniqueIndex:idx_exchange_pair,priority:3" json:"code_to"`
	Rate      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"rate"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExchangeRate struct {
	CodeFrom string          `json:"code_from" validate:"required,len=3,alpha"`
	CodeTo   string          `json:"code_to" validate:"required,len=3,alpha"`
	Rate     decimal.Decimal `json:"rate"`
}
