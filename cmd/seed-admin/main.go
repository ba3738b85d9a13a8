// seed-admin provisions a tenant, the built-in roles and a super-admin user
// for that tenant. Rerunning it resets the admin's password and roles.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	SEED_TENANT_SLUG=acme SEED_ADMIN_EMAIL=owner@acme.test SEED_ADMIN_PASSWORD=... \
//	go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/mmdatafocus/commerce_backend/utils"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	ctx := context.Background()
	slug := envOr("SEED_TENANT_SLUG", config.DefaultTenantSlug())
	email := strings.ToLower(envOr("SEED_ADMIN_EMAIL", ""))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		fail("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fail("database not initialized (config.GetDB returned nil). Set DB_* env vars.")
	}
	if err := models.MigrateTable(db); err != nil {
		fail("failed to migrate: %v", err)
	}
	store := repository.New(db)

	tenant, err := store.Tenants().GetBySlug(ctx, slug)
	if models.KindOf(err) == models.KindNotFound {
		tenant = &models.Tenant{
			Name:         envOr("SEED_TENANT_NAME", slug),
			Slug:         slug,
			Domain:       envOr("SEED_TENANT_DOMAIN", ""),
			BaseCurrency: strings.ToUpper(envOr("SEED_TENANT_CURRENCY", "USD")),
			IsActive:     utils.NewTrue(),
		}
		if err = store.Tenants().Create(ctx, tenant); err != nil {
			fail("failed to create tenant: %v", err)
		}
		fmt.Printf("Created tenant: slug=%q id=%d\n", tenant.Slug, tenant.ID)
	} else if err != nil {
		fail("failed to lookup tenant: %v", err)
	}

	if err := store.Users().EnsureRoles(ctx, models.DefaultRoles()); err != nil {
		fail("failed to seed roles: %v", err)
	}

	svc := service.New(service.Options{Store: store, Logger: config.GetLogger()})
	ctx = appctx.SetTenant(ctx, tenant.ID, tenant.Slug)
	ctx = appctx.SetUser(ctx, 1, "Seed", []string{models.RoleSlugSuperAdmin}, "")

	input := &models.NewUser{
		Name:     envOr("SEED_ADMIN_NAME", "Store Owner"),
		Email:    email,
		Password: password,
		IsActive: utils.NewTrue(),
		Roles:    []string{models.RoleSlugSuperAdmin},
	}
	existing, err := store.Users().GetByEmail(ctx, tenant.ID, email)
	switch {
	case err == nil:
		if _, err := svc.Users.UpdateAdminUser(ctx, existing.ID, input); err != nil {
			fail("failed to update admin user: %v", err)
		}
		fmt.Printf("Updated admin user: email=%q tenant=%q\n", email, tenant.Slug)
	case models.KindOf(err) == models.KindNotFound:
		if _, err := svc.Users.CreateAdminUser(ctx, input); err != nil {
			fail("failed to create admin user: %v", err)
		}
		fmt.Printf("Created admin user: email=%q tenant=%q\n", email, tenant.Slug)
	default:
		fail("failed to lookup user: %v", err)
	}
}
