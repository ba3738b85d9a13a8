// Package handlers serves the public storefront REST API and the admin
// diagnostics and export endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc    *service.Services
	logger *logrus.Logger
}

func New(svc *service.Services, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &Handler{svc: svc, logger: logger}
}

type pageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

func newPageMeta(total int64, page, perPage int) pageMeta {
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return pageMeta{Total: total, Page: page, PerPage: perPage, LastPage: last}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okPage(c *gin.Context, data any, meta pageMeta) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "meta": meta})
}

// fail maps a domain error onto its HTTP status. Internal errors are logged
// and never shown to the caller.
func (h *Handler) fail(c *gin.Context, funcName string, err error) {
	kind := models.KindOf(err)
	if kind == models.KindInternal {
		config.LogError(h.logger, "handlers", funcName, appctx.CorrelationId(c.Request.Context()), c.Request.URL.String(), err)
	}
	c.AbortWithStatusJSON(models.HTTPStatus(kind), gin.H{"success": false, "message": models.PublicMessage(err)})
}
