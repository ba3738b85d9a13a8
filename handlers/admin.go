package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/access"
	"github.com/mmdatafocus/commerce_backend/middlewares"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

var exportHeaders = []string{
	"Order Number", "Status", "Payment Status", "Customer", "Email",
	"Currency", "Subtotal", "Tax", "Shipping", "Grand Total", "Created At",
}

// RegisterAdmin mounts the admin-only REST routes. The caller must have run
// the tenant and auth middlewares first.
func (h *Handler) RegisterAdmin(admin *gin.RouterGroup) {
	admin.GET("/diagnostics",
		middlewares.RequireRoles(access.SuperAdmin, access.Admin, access.Editor),
		h.diagnostics)
	admin.GET("/orders/export",
		middlewares.RequireRoles(access.SuperAdmin, access.Admin),
		h.exportOrders)
}

func (h *Handler) diagnostics(c *gin.Context) {
	ctx := c.Request.Context()
	tenant, err := h.svc.Tenants.Current(ctx)
	if err != nil {
		h.fail(c, "diagnostics", err)
		return
	}
	stats, err := h.svc.Tenants.Stats(ctx)
	if err != nil {
		h.fail(c, "diagnostics", err)
		return
	}
	ok(c, gin.H{"tenant": tenant, "stats": stats})
}

func (h *Handler) exportOrders(c *gin.Context) {
	filter := models.OrderFilter{Search: c.Query("search"), PerPage: models.MaxPerPage}
	if v := c.Query("status"); v != "" {
		status := models.OrderStatus(v)
		if !status.IsValid() {
			h.fail(c, "exportOrders", models.Validation("unknown order status %q", v))
			return
		}
		filter.Status = &status
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	row := 2
	for page := 1; ; page++ {
		filter.Page = page
		result, err := h.svc.Orders.AdminOrders(c.Request.Context(), filter)
		if err != nil {
			h.fail(c, "exportOrders", err)
			return
		}
		for _, o := range result.Items {
			writeOrderRow(f, row, o)
			row++
		}
		if int64(page*result.PerPage) >= result.Total || len(result.Items) == 0 {
			break
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.fail(c, "exportOrders", err)
	}
}

func writeOrderRow(f *excelize.File, row int, o *models.Order) {
	r := fmt.Sprint(row)
	f.SetCellValue(exportSheet, "A"+r, o.OrderNumber)
	f.SetCellValue(exportSheet, "B"+r, string(o.Status))
	f.SetCellValue(exportSheet, "C"+r, string(o.PaymentStatus))
	f.SetCellValue(exportSheet, "D"+r, o.CustomerName)
	f.SetCellValue(exportSheet, "E"+r, o.CustomerEmail)
	f.SetCellValue(exportSheet, "F"+r, o.Currency)
	f.SetCellValue(exportSheet, "G"+r, o.Subtotal.InexactFloat64())
	f.SetCellValue(exportSheet, "H"+r, o.TaxAmount.InexactFloat64())
	f.SetCellValue(exportSheet, "I"+r, o.ShippingAmount.InexactFloat64())
	f.SetCellValue(exportSheet, "J"+r, o.GrandTotal.InexactFloat64())
	f.SetCellValue(exportSheet, "K"+r, o.CreatedAt.Format("2006-01-02 15:04:05"))
}
