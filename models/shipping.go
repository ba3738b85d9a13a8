package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShippingMethod struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TenantId         int             `gorm:"index;not null" json:"tenant_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Code             string          `gorm:"size:50;not null" json:"code"`
	Mode             ShippingMode    `gorm:"type:enum('Air','Sea','Land','Express');default:Land;not null" json:"mode"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_price"`
	EstimatedDaysMin int             `gorm:"not null;default:0" json:"estimated_days_min"`
	EstimatedDaysMax int             `gorm:"not null;default:0" json:"estimated_days_max"`
	IsActive         *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ShippingRoute struct {
	ID            int       `gorm:"primary_key" json:"id"`
	TenantId      int       `gorm:"index;not null" json:"tenant_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Origin        string    `gorm:"size:255;not null" json:"origin"`
	Destination   string    `gorm:"size:255;not null" json:"destination"`
	TransitPoints string    `gorm:"size:1024" json:"transit_points"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ShippingMethodRoutePrice is one cell of the method x route price matrix.
// Percentages are whole numbers (15.5 means 15.5%). A nil max bound is open-ended.
type ShippingMethodRoutePrice struct {
	ID                      int              `gorm:"primary_key" json:"id"`
	TenantId                int              `gorm:"index;not null" json:"tenant_id"`
	ShippingMethodId        int              `gorm:"not null;uniqueIndex:idx_method_route_band,priority:1" json:"shipping_method_id"`
	ShippingRouteId         int              `gorm:"not null;uniqueIndex:idx_method_route_band,priority:2" json:"shipping_route_id"`
	MinWeightKg             decimal.Decimal  `gorm:"type:decimal(20,4);default:0;uniqueIndex:idx_method_route_band,priority:3" json:"min_weight_kg"`
	MaxWeightKg             *decimal.Decimal `gorm:"type:decimal(20,4);uniqueIndex:idx_method_route_band,priority:4" json:"max_weight_kg"`
	MinVolumeCbm            decimal.Decimal  `gorm:"type:decimal(20,6);default:0" json:"min_volume_cbm"`
	MaxVolumeCbm            *decimal.Decimal `gorm:"type:decimal(20,6)" json:"max_volume_cbm"`
	PricePerKg              decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"price_per_kg"`
	PricePerCbm             decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"price_per_cbm"`
	FlatRate                *decimal.Decimal `gorm:"type:decimal(20,4)" json:"flat_rate"`
	HandlingFee             decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"handling_fee"`
	FuelSurchargePercentage decimal.Decimal  `gorm:"type:decimal(7,4);default:0" json:"fuel_surcharge_percentage"`
	InsurancePercentage     decimal.Decimal  `gorm:"type:decimal(7,4);default:0" json:"insurance_percentage"`
	CustomsClearanceFee     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"customs_clearance_fee"`
	CustomsDutyPercentage   decimal.Decimal  `gorm:"type:decimal(7,4);default:0" json:"customs_duty_percentage"`
	CustomsVatPercentage    decimal.Decimal  `gorm:"type:decimal(7,4);default:0" json:"customs_vat_percentage"`
	IsActive                *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt               time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Matches reports whether weight and volume both fall inside the row's bands.
// Bounds are inclusive.
func (p *ShippingMethodRoutePrice) Matches(weightKg, volumeCbm decimal.Decimal) bool {
	if weightKg.LessThan(p.MinWeightKg) {
		return false
	}
	if p.MaxWeightKg != nil && weightKg.GreaterThan(*p.MaxWeightKg) {
		return false
	}
	if volumeCbm.LessThan(p.MinVolumeCbm) {
		return false
	}
	if p.MaxVolumeCbm != nil && volumeCbm.GreaterThan(*p.MaxVolumeCbm) {
		return false
	}
	return true
}

type NewShippingMethod struct {
	Name             string          `json:"name" validate:"required,max=255"`
	Code             string          `json:"code" validate:"required,max=50"`
	Mode             ShippingMode    `json:"mode" validate:"required,oneof=Air Sea Land Express"`
	BasePrice        decimal.Decimal `json:"base_price"`
	EstimatedDaysMin int             `json:"estimated_days_min" validate:"gte=0"`
	EstimatedDaysMax int             `json:"estimated_days_max" validate:"gte=0,gtefield=EstimatedDaysMin"`
	IsActive         *bool           `json:"is_active"`
}

type NewShippingRoute struct {
	Name          string `json:"name" validate:"required,max=255"`
	Origin        string `json:"origin" validate:"required,max=255"`
	Destination   string `json:"destination" validate:"required,max=255"`
	TransitPoints string `json:"transit_points" validate:"max=1024"`
	IsActive      *bool  `json:"is_active"`
}

type NewMethodRoutePrice struct {
	ShippingMethodId        int              `json:"shipping_method_id" validate:"required"`
	ShippingRouteId         int              `json:"shipping_route_id" validate:"required"`
	MinWeightKg             decimal.Decimal  `json:"min_weight_kg"`
	MaxWeightKg             *decimal.Decimal `json:"max_weight_kg"`
	MinVolumeCbm            decimal.Decimal  `json:"min_volume_cbm"`
	MaxVolumeCbm            *decimal.Decimal `json:"max_volume_cbm"`
	PricePerKg              decimal.Decimal  `json:"price_per_kg"`
	PricePerCbm             decimal.Decimal  `json:"price_per_cbm"`
	FlatRate                *decimal.Decimal `json:"flat_rate"`
	HandlingFee             decimal.Decimal  `json:"handling_fee"`
	FuelSurchargePercentage decimal.Decimal  `json:"fuel_surcharge_percentage"`
	InsurancePercentage     decimal.Decimal  `json:"insurance_percentage"`
	CustomsClearanceFee     decimal.Decimal  `json:"customs_clearance_fee"`
	CustomsDutyPercentage   decimal.Decimal  `json:"customs_duty_percentage"`
	CustomsVatPercentage    decimal.Decimal  `json:"customs_vat_percentage"`
}

type QuoteInput struct {
	ShippingMethodId int             `json:"shipping_method_id" validate:"required"`
	ShippingRouteId  int             `json:"shipping_route_id" validate:"required"`
	WeightKg         decimal.Decimal `json:"weight_kg"`
	VolumeCbm        decimal.Decimal `json:"volume_cbm"`
	DeclaredValue    decimal.Decimal `json:"declared_value"`
}

const (
	PricingModeFlatRate        = "flat_rate"
	PricingModeWeightVolume    = "weight_volume"
	PricingModeMethodBasePrice = "method_base_price"
)

// ShipmentQuote exposes every cost component separately plus the total.
type ShipmentQuote struct {
	ShippingMethodId    int             `json:"shipping_method_id"`
	ShippingRouteId     int             `json:"shipping_route_id"`
	PriceId             *int            `json:"price_id"`
	PricingMode         string          `json:"pricing_mode"`
	Fallback            bool            `json:"fallback"`
	BaseCost            decimal.Decimal `json:"base_cost"`
	HandlingFee         decimal.Decimal `json:"handling_fee"`
	FuelSurcharge       decimal.Decimal `json:"fuel_surcharge"`
	Insurance           decimal.Decimal `json:"insurance"`
	CustomsClearanceFee decimal.Decimal `json:"customs_clearance_fee"`
	CustomsDuty         decimal.Decimal `json:"customs_duty"`
	CustomsVat          decimal.Decimal `json:"customs_vat"`
	Total               decimal.Decimal `json:"total"`
}
