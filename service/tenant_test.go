package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantResolutionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.newTenant(t, "default", "USD")
	shop := &models.Tenant{Name: "Shop", Slug: "shop", Domain: "shop.example.org", BaseCurrency: "EUR"}
	require.NoError(t, f.store.Tenants().Create(ctx, shop))
	closed := &models.Tenant{Name: "Closed", Slug: "closed", IsActive: new(bool)}
	require.NoError(t, f.store.Tenants().Create(ctx, closed))

	tests := []struct {
		name   string
		header string
		host   string
		want   int
		err    error
	}{
		{"header id", "1", "shop.example.org", f.tenant.ID, nil},
		{"header slug wins over host", "ACME", "shop.example.org", f.tenant.ID, nil},
		{"unknown header does not fall back", "nope", "shop.example.org", 0, models.ErrNotFound},
		{"exact domain with port", "", "Shop.Example.org:8443", shop.ID, nil},
		{"subdomain slug", "", "acme.platform.test", f.tenant.ID, nil},
		{"www is not a tenant", "", "www.platform.test", def.ID, nil},
		{"ip host falls back", "", "10.0.0.7:8080", def.ID, nil},
		{"nothing given", "", "", def.ID, nil},
		{"inactive tenant", "closed", "", 0, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Tenants.Resolve(ctx, tt.header, tt.host)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestServicesRequireResolvedTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Catalog.ListProducts(context.Background(), models.ProductFilter{})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
