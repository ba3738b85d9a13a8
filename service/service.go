// Package service holds the business rules. Every method receives the tenant
// through ctx (set by the tenant middleware) and talks to persistence only
// through repository.Store.
package service

import (
	"context"
	"time"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("commerce_backend/service")

type Options struct {
	Store    repository.Store
	Locker   Locker
	Sessions SessionStore
	Logger   *logrus.Logger
	Now      func() time.Time

	// ShippingBasePriceFallback quotes method.base_price when no band matches.
	ShippingBasePriceFallback bool
	DefaultTenantSlug         string
}

// Services is the set handed to the GraphQL resolvers and REST handlers.
type Services struct {
	Tenants  *TenantResolver
	Catalog  *CatalogService
	Pricing  *PricingService
	Carts    *CartService
	Shipping *ShippingService
	Orders   *OrderService
	Auth     *AuthService
	Users    *UserService
}

func New(opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locker == nil {
		opts.Locker = NewKeyedMutex()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewMemorySessions()
	}
	if opts.DefaultTenantSlug == "" {
		opts.DefaultTenantSlug = "default"
	}

	pricing := &PricingService{store: opts.Store}
	shipping := &ShippingService{store: opts.Store, fallback: opts.ShippingBasePriceFallback}
	carts := &CartService{store: opts.Store, locker: opts.Locker, shipping: shipping}
	users := &UserService{store: opts.Store}
	return &Services{
		Tenants:  &TenantResolver{store: opts.Store, defaultSlug: opts.DefaultTenantSlug},
		Catalog:  &CatalogService{store: opts.Store},
		Pricing:  pricing,
		Carts:    carts,
		Shipping: shipping,
		Orders:   &OrderService{store: opts.Store, carts: carts, locker: opts.Locker, now: opts.Now, logger: opts.Logger},
		Auth:     &AuthService{store: opts.Store, sessions: opts.Sessions, users: users},
		Users:    users,
	}
}

// TenantFromContext returns the tenant id bound by the tenant middleware.
func TenantFromContext(ctx context.Context) (int, error) {
	tenantID, ok := appctx.TenantId(ctx)
	if !ok {
		return 0, models.NotFound("tenant not resolved")
	}
	return tenantID, nil
}

// actor is who performed a change, for audit rows.
func actor(ctx context.Context) (*int, string) {
	userID, ok := appctx.UserId(ctx)
	name, _ := appctx.GetString(ctx, appctx.ContextKeyUserName)
	if !ok {
		return nil, name
	}
	return &userID, name
}

func userFromContext(ctx context.Context) (int, bool) {
	return appctx.UserId(ctx)
}
