package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/appctx"
)

const CartSessionHeader = "X-Cart-Session"

const maxCartSessionLen = 128

// SessionMiddleware carries the anonymous storefront session used as the cart
// owner for guests.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.Request.Header.Get(CartSessionHeader))
		if session == "" || len(session) > maxCartSessionLen {
			c.Next()
			return
		}

		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyCartSession, session)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
