package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
)

const TenantHeader = "X-Tenant-ID"

// TenantMiddleware resolves the tenant for every request and binds it to the
// request context. Requests that resolve to no active tenant stop here.
func TenantMiddleware(resolver *service.TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := resolver.Resolve(c.Request.Context(), c.Request.Header.Get(TenantHeader), c.Request.Host)
		if err != nil {
			kind := models.KindOf(err)
			if kind == models.KindInternal {
				config.LogError(config.GetLogger(), "middlewares", "TenantMiddleware", c.Request.Host, nil, err)
			}
			c.AbortWithStatusJSON(models.HTTPStatus(kind), gin.H{"success": false, "message": models.PublicMessage(err)})
			return
		}

		ctx := appctx.SetTenant(c.Request.Context(), tenant.ID, tenant.Slug)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

