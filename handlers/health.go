package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz reports liveness. It runs outside tenant resolution.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
