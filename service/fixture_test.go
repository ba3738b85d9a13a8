package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository/memstore"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memstore.Store
	svc    *Services
	tenant *models.Tenant
	admin  context.Context
	seq    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	f := &fixture{
		store: store,
		svc: New(Options{
			Store:  store,
			Logger: logger,
			Now:    func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
		}),
	}
	f.tenant = f.newTenant(t, "acme", "USD")
	f.admin = f.staffContext(f.tenant, 1000, models.RoleSlugAdmin)
	return f
}

func (f *fixture) newTenant(t *testing.T, slug, currency string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug, Slug: slug, BaseCurrency: currency}
	require.NoError(t, f.store.Tenants().Create(context.Background(), tenant))
	return tenant
}

func tenantContext(tenant *models.Tenant) context.Context {
	return appctx.SetTenant(context.Background(), tenant.ID, tenant.Slug)
}

func (f *fixture) staffContext(tenant *models.Tenant, userID int, roles ...string) context.Context {
	return appctx.SetUser(tenantContext(tenant), userID, "staff", roles, "staff-token")
}

// customer registers a customer in the fixture tenant and returns a context
// signed in as them.
func (f *fixture) customer(t *testing.T) (context.Context, *models.User) {
	t.Helper()
	f.seq++
	user, err := f.svc.Users.CreateCustomer(tenantContext(f.tenant), &models.NewUser{
		Name:     fmt.Sprintf("Customer %d", f.seq),
		Email:    fmt.Sprintf("customer%d@example.com", f.seq),
		Password: "correct horse",
	})
	require.NoError(t, err)
	ctx := appctx.SetUser(tenantContext(f.tenant), user.ID, user.Name, user.RoleSlugs(), "")
	return ctx, user
}

func (f *fixture) taxRate(t *testing.T, rate string) *models.TaxRate {
	t.Helper()
	tr, err := f.svc.Catalog.CreateTaxRate(f.admin, &NewTaxRate{Name: "VAT " + rate, Rate: dec(rate)})
	require.NoError(t, err)
	return tr
}

func (f *fixture) product(t *testing.T, name, price string, stock int, taxRateID *int) *models.Product {
	t.Helper()
	p, err := f.svc.Catalog.CreateProduct(f.admin, &models.NewProduct{
		Name:          name,
		Price:         dec(price),
		StockQuantity: stock,
		TaxRateId:     taxRateID,
		WeightKg:      dec("1.5"),
		VolumeCbm:     dec("0.01"),
	})
	require.NoError(t, err)
	return p
}

// flatShipping sets up one method and route priced at a flat amount.
func (f *fixture) flatShipping(t *testing.T, amount string) (*models.ShippingMethod, *models.ShippingRoute) {
	t.Helper()
	method, err := f.svc.Shipping.CreateMethod(f.admin, &models.NewShippingMethod{
		Name: "Standard", Code: "std", Mode: models.ShippingModeLand, BasePrice: dec("25"),
	})
	require.NoError(t, err)
	route, err := f.svc.Shipping.CreateRoute(f.admin, &models.NewShippingRoute{
		Name: "Domestic", Origin: "Yangon", Destination: "Mandalay",
	})
	require.NoError(t, err)
	flat := dec(amount)
	_, err = f.svc.Shipping.CreateMethodRoutePrice(f.admin, &models.NewMethodRoutePrice{
		ShippingMethodId: method.ID,
		ShippingRouteId:  route.ID,
		FlatRate:         &flat,
	})
	require.NoError(t, err)
	return method, route
}

func address() models.Address {
	return models.Address{Name: "Jo Doe", Line1: "1 Main St", City: "Springfield", Country: "us"}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ownerOf(user *models.User) models.CartOwner {
	return models.CartOwner{UserId: &user.ID}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}
