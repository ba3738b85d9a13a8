package models

import "gorm.io/gorm"

// AllModels lists every table owned by this service, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Tenant{}, &Role{}, &User{},
		&Category{}, &Subcategory{}, &Brand{}, &TaxRate{},
		&Product{}, &ProductImage{},
		&ExchangeRate{},
		&Cart{}, &CartItem{},
		&ShippingMethod{}, &ShippingRoute{}, &ShippingMethodRoutePrice{},
		&Order{}, &OrderItem{},
		&AuditLog{}, &OutboxEvent{},
	}
}

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
