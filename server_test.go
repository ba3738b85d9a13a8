package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmdatafocus/commerce_backend/middlewares"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository/memstore"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Tenants().Create(context.Background(), &models.Tenant{Name: "Acme", Slug: "acme", BaseCurrency: "USD"}))
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return newRouter(service.New(service.Options{Store: store, Logger: logger}), logger, nil)
}

func TestRouterHealthAndNotFound(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("x-correlation-id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterServesGraphQLPerTenant(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"{ brands { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middlewares.TenantHeader, "acme")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"data":{"brands":[]}}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/brands", nil)
	req.Header.Set(middlewares.TenantHeader, "missing")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://shop.example.com"}
	patterns := []string{"https://*.vercel.app"}

	assert.True(t, originAllowed("https://shop.example.com", allowed, patterns))
	assert.True(t, originAllowed("https://preview-42.vercel.app", allowed, patterns))
	assert.False(t, originAllowed("https://evil.example.com", allowed, patterns))
	assert.False(t, originAllowed("https://a.b.vercel.app.evil.io", allowed, patterns))
}
