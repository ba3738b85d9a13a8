package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/access"
	"github.com/mmdatafocus/commerce_backend/models"
)

// RequireRoles gates a REST route on the caller holding at least one of roles.
func RequireRoles(roles ...access.Role) gin.HandlerFunc {
	required := access.Of(roles...)
	return func(c *gin.Context) {
		if err := access.Require(c.Request.Context(), required); err != nil {
			c.AbortWithStatusJSON(models.HTTPStatus(models.KindOf(err)), gin.H{"success": false, "message": models.PublicMessage(err)})
			return
		}
		c.Next()
	}
}
