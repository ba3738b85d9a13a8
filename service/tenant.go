package service

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
)

// TenantResolver maps a request to its tenant: explicit header (id or slug),
// then host domain, then subdomain, then the default slug.
type TenantResolver struct {
	store       repository.Store
	defaultSlug string
}

func (r *TenantResolver) Resolve(ctx context.Context, header, host string) (*models.Tenant, error) {
	ctx, span := tracer.Start(ctx, "TenantResolver.Resolve")
	defer span.End()

	if header = strings.TrimSpace(header); header != "" {
		var (
			t   *models.Tenant
			err error
		)
		if id, convErr := strconv.Atoi(header); convErr == nil {
			t, err = r.store.Tenants().GetByID(ctx, id)
		} else {
			t, err = r.store.Tenants().GetBySlug(ctx, strings.ToLower(header))
		}
		// an unknown header tenant does not fall back
		return activeTenant(t, err)
	}

	if h := normalizeHost(host); h != "" {
		t, err := activeTenant(r.store.Tenants().GetByDomain(ctx, h))
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if sub, ok := subdomain(h); ok {
			t, err := activeTenant(r.store.Tenants().GetBySlug(ctx, sub))
			if err == nil {
				return t, nil
			}
			if !errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
		}
	}

	return activeTenant(r.store.Tenants().GetBySlug(ctx, r.defaultSlug))
}

func activeTenant(t *models.Tenant, err error) (*models.Tenant, error) {
	if err != nil {
		return nil, err
	}
	if !t.Active() {
		return nil, models.NotFound("tenant not found")
	}
	return t, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

// subdomain returns the first label of a host with at least three labels.
func subdomain(host string) (string, bool) {
	if net.ParseIP(host) != nil {
		return "", false
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[0] == "www" {
		return "", false
	}
	return labels[0], true
}

// Stats backs the admin diagnostics endpoint for the request's tenant.
func (r *TenantResolver) Stats(ctx context.Context) (*models.TenantStats, error) {
	ctx, span := tracer.Start(ctx, "TenantResolver.Stats")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.store.Tenants().Stats(ctx, tenantID)
}

// Current returns the tenant bound to ctx.
func (r *TenantResolver) Current(ctx context.Context) (*models.Tenant, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.store.Tenants().GetByID(ctx, tenantID)
}
