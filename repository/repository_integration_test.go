package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

func setupMySQL(t *testing.T) *repository.Repository {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run MySQL integration tests")
	}
	ctx := context.Background()
	container, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase("commerce"),
		mysql.WithUsername("commerce"),
		mysql.WithPassword("commerce"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate mysql container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "charset=utf8mb4")
	require.NoError(t, err)
	db, err := config.OpenDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	return repository.New(db)
}

func seedTenant(t *testing.T, store repository.Store, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug, Slug: slug, BaseCurrency: "USD"}
	require.NoError(t, store.Tenants().Create(context.Background(), tenant))
	return tenant
}

func TestRepository_ProductUniquenessAndScope(t *testing.T) {
	store := setupMySQL(t)
	ctx := context.Background()
	a := seedTenant(t, store, "shop-a")
	b := seedTenant(t, store, "shop-b")

	p := &models.Product{TenantId: a.ID, Name: "Desk", Slug: "desk", Sku: "DESK-1", Price: decimal.NewFromInt(100)}
	require.NoError(t, store.Products().Create(ctx, p, nil, nil))

	dup := &models.Product{TenantId: a.ID, Name: "Desk", Slug: "desk", Sku: "DESK-2", Price: decimal.NewFromInt(100)}
	err := store.Products().Create(ctx, dup, nil, nil)
	assert.True(t, errors.Is(err, models.ErrConflict), "got %v", err)

	// same slug in another tenant is fine
	other := &models.Product{TenantId: b.ID, Name: "Desk", Slug: "desk", Sku: "DESK-1", Price: decimal.NewFromInt(90)}
	require.NoError(t, store.Products().Create(ctx, other, nil, nil))

	scoped := appctx.SetTenant(ctx, b.ID, b.Slug)
	_, err = store.Products().GetByID(scoped, b.ID, p.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	found, err := store.Products().GetByIDAnyTenant(scoped, p.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.TenantId)
}

func TestRepository_MarkConvertedOnce(t *testing.T) {
	store := setupMySQL(t)
	ctx := context.Background()
	tenant := seedTenant(t, store, "shop")

	session := "sess-1"
	cart := &models.Cart{TenantId: tenant.ID, SessionId: &session, Status: models.CartStatusActive, Currency: "USD"}
	require.NoError(t, store.Carts().Create(ctx, cart))

	require.NoError(t, store.Carts().MarkConverted(ctx, tenant.ID, cart.ID, time.Now()))
	err := store.Carts().MarkConverted(ctx, tenant.ID, cart.ID, time.Now())
	assert.True(t, errors.Is(err, models.ErrCartAlreadyConverted), "got %v", err)

	_, err = store.Carts().FindActive(ctx, tenant.ID, models.CartOwner{SessionId: session})
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
}

func TestRepository_WithTxRollsBack(t *testing.T) {
	store := setupMySQL(t)
	ctx := context.Background()
	tenant := seedTenant(t, store, "shop")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx repository.Store) error {
		o := &models.Order{TenantId: tenant.ID, CartId: 1, UserId: 1, OrderNumber: "ORD-TX-1", Currency: "USD",
			Items: []*models.OrderItem{{ProductId: 1, Sku: "S", Name: "N", Quantity: 1}}}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Orders().GetByNumber(ctx, tenant.ID, "ORD-TX-1")
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
}

func TestRepository_ExchangeRatePairIsUnique(t *testing.T) {
	store := setupMySQL(t)
	ctx := context.Background()
	tenant := seedTenant(t, store, "shop")

	rate := &models.ExchangeRate{TenantId: tenant.ID, CodeFrom: "USD", CodeTo: "EUR", Rate: decimal.RequireFromString("0.9")}
	require.NoError(t, store.ExchangeRates().Create(ctx, rate))
	again := &models.ExchangeRate{TenantId: tenant.ID, CodeFrom: "USD", CodeTo: "EUR", Rate: decimal.RequireFromString("0.95")}
	err := store.ExchangeRates().Create(ctx, again)
	assert.True(t, errors.Is(err, models.ErrConflict), "got %v", err)
}
