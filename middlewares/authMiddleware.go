package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
)

const bearer = "Bearer "

// AuthMiddleware binds the bearer token's user to the request. A missing
// header means a guest; a bad or revoked token is rejected. It must run
// after TenantMiddleware because tokens are bound to a tenant.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(header, bearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(header[len(bearer):]))
		if err != nil {
			c.AbortWithStatusJSON(models.HTTPStatus(models.KindOf(err)), gin.H{"success": false, "message": models.PublicMessage(err)})
			return
		}

		ctx := appctx.SetUser(c.Request.Context(), claims.UserId, claims.Name, claims.Roles, claims.Id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
