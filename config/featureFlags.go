package config

import (
	"os"
	"strings"
)

func envFlag(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ShippingBasePriceFallback quotes the shipping method's base price when no
// price-matrix row matches, instead of failing with "no shipping rate".
//
// Set via env:
// - SHIPPING_BASE_PRICE_FALLBACK=true
func ShippingBasePriceFallback() bool {
	return envFlag("SHIPPING_BASE_PRICE_FALLBACK")
}

// OutboxDispatcherEnabled starts the background publisher of domain events.
//
// Set via env:
// - OUTBOX_DISPATCHER_ENABLED=true
func OutboxDispatcherEnabled() bool {
	return envFlag("OUTBOX_DISPATCHER_ENABLED")
}

// CartRedisLock serializes cart mutations through Redis instead of an
// in-process mutex. Needed when more than one instance serves traffic.
//
// Set via env:
// - CART_REDIS_LOCK=true
func CartRedisLock() bool {
	return envFlag("CART_REDIS_LOCK")
}

// DefaultTenantSlug is the last resort of tenant resolution.
func DefaultTenantSlug() string {
	if v := strings.TrimSpace(os.Getenv("DEFAULT_TENANT_SLUG")); v != "" {
		return v
	}
	return "default"
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}
