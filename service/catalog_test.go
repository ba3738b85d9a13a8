package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductDerivesUniqueSlugAndSku(t *testing.T) {
	f := newFixture(t)
	first := f.product(t, "Blue Cotton Shirt", "10", 1, nil)
	second := f.product(t, "Blue Cotton Shirt", "12", 1, nil)

	assert.Equal(t, "blue-cotton-shirt", first.Slug)
	assert.Equal(t, "BLUE-COTTON-SHIRT", first.Sku)
	assert.Equal(t, "blue-cotton-shirt-2", second.Slug)
	assert.Equal(t, "BLUE-COTTON-SHIRT-2", second.Sku)

	_, err := f.svc.Catalog.CreateProduct(f.admin, &models.NewProduct{Name: "Other", Sku: first.Sku, Price: dec("1")})
	assert.True(t, errors.Is(err, models.ErrConflict), "explicit duplicate sku: %v", err)
}

func TestSlugsAreUniquePerTenantOnly(t *testing.T) {
	f := newFixture(t)
	mine := f.product(t, "Kettle", "30", 1, nil)
	other := f.newTenant(t, "umbrella", "USD")
	theirs, err := f.svc.Catalog.CreateProduct(f.staffContext(other, 4000, models.RoleSlugEditor), &models.NewProduct{
		Name: "Kettle", Price: dec("31"),
	})
	require.NoError(t, err)
	assert.Equal(t, mine.Slug, theirs.Slug)

	found, err := f.svc.Catalog.ProductBySlug(tenantContext(other), "kettle")
	require.NoError(t, err)
	assert.Equal(t, theirs.ID, found.ID)

	_, err = f.svc.Catalog.ProductByID(tenantContext(other), mine.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCreateProductRejectsNegativeAmounts(t *testing.T) {
	f := newFixture(t)
	for name, input := range map[string]*models.NewProduct{
		"price": {Name: "A", Price: dec("-0.01")},
		"sale":  {Name: "B", Price: dec("1"), SalePrice: ptrDec("-1")},
		"stock": {Name: "C", Price: dec("1"), StockQuantity: -1},
		"name":  {Price: dec("1")},
	} {
		_, err := f.svc.Catalog.CreateProduct(f.admin, input)
		assert.True(t, errors.Is(err, models.ErrValidation), "%s: %v", name, err)
	}
	missing := 404
	_, err := f.svc.Catalog.CreateProduct(f.admin, &models.NewProduct{Name: "D", Price: dec("1"), BrandId: &missing})
	assert.True(t, errors.Is(err, models.ErrValidation), "unknown brand: %v", err)
}

func TestProductChangesAreAudited(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Audited", "5", 1, nil)
	_, err := f.svc.Catalog.UpdateProduct(f.admin, p.ID, &models.NewProduct{Name: "Audited", Price: dec("6")})
	require.NoError(t, err)
	_, err = f.svc.Catalog.DeleteProduct(f.admin, p.ID)
	require.NoError(t, err)

	logs, err := f.store.Audit().ListForSubject(context.Background(), f.tenant.ID, subjectProduct, p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.EventProductCreated, logs[0].Event)
	assert.Equal(t, models.EventProductUpdated, logs[1].Event)
	assert.Equal(t, models.EventProductDeleted, logs[2].Event)
	assert.Equal(t, "staff", logs[0].ActorName)

	events, err := f.store.Outbox().ListForAggregate(context.Background(), f.tenant.ID, subjectProduct, p.ID)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestInactiveProductsHiddenFromShoppers(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Catalog.CreateProduct(f.admin, &models.NewProduct{Name: "Draft", Price: dec("1"), IsActive: new(bool)})
	require.NoError(t, err)
	f.product(t, "Live", "2", 1, nil)

	shopper := tenantContext(f.tenant)
	page, err := f.svc.Catalog.ListProducts(shopper, models.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.Catalog.ProductBySlug(shopper, "draft")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	page, err = f.svc.Catalog.ListProducts(f.admin, models.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.svc.Catalog.ListProducts(shopper, models.ProductFilter{CategorySlug: "nope"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestCategoryTreeAndCycleGuard(t *testing.T) {
	f := newFixture(t)
	root, err := f.svc.Catalog.CreateCategory(f.admin, &models.NewCategory{Name: "Home"})
	require.NoError(t, err)
	child, err := f.svc.Catalog.CreateCategory(f.admin, &models.NewCategory{Name: "Kitchen", ParentId: &root.ID})
	require.NoError(t, err)
	grandchild, err := f.svc.Catalog.CreateCategory(f.admin, &models.NewCategory{Name: "Knives", ParentId: &child.ID})
	require.NoError(t, err)

	tree, err := f.svc.Catalog.Categories(f.admin)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, grandchild.ID, tree[0].Children[0].Children[0].ID)

	_, err = f.svc.Catalog.UpdateCategory(f.admin, root.ID, &models.NewCategory{Name: "Home", ParentId: &grandchild.ID})
	assert.True(t, errors.Is(err, models.ErrValidation), "cycle: %v", err)
	_, err = f.svc.Catalog.UpdateCategory(f.admin, root.ID, &models.NewCategory{Name: "Home", ParentId: &root.ID})
	assert.True(t, errors.Is(err, models.ErrValidation), "self parent: %v", err)

	_, err = f.svc.Catalog.DeleteCategory(f.admin, root.ID)
	assert.True(t, errors.Is(err, models.ErrConflict))
	_, err = f.svc.Catalog.DeleteCategory(f.admin, grandchild.ID)
	assert.NoError(t, err)
}

func TestBrandSlugConflictsGetSuffix(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Catalog.CreateBrand(f.admin, &models.NewBrand{Name: "Acme"})
	require.NoError(t, err)
	b, err := f.svc.Catalog.CreateBrand(f.admin, &models.NewBrand{Name: "ACME!"})
	require.NoError(t, err)
	assert.Equal(t, "acme", a.Slug)
	assert.Equal(t, "acme-2", b.Slug)

	found, err := f.svc.Catalog.BrandBySlug(f.admin, "acme-2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
}
