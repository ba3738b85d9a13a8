package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/commerce_backend/appctx"
)

const correlationHeader = "x-correlation-id"

// CorrelationMiddleware reuses the caller's x-correlation-id or mints one, and
// echoes it back on the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Request.Header.Get(correlationHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(correlationHeader, id)

		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyCorrelationId, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
