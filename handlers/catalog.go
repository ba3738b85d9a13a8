package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
)

// RegisterStorefront mounts the public, tenant-scoped catalog routes.
func (h *Handler) RegisterStorefront(api *gin.RouterGroup) {
	api.GET("/products", h.listProducts)
	api.GET("/products/featured", h.featuredProducts)
	api.GET("/products/search", h.searchProducts)
	api.GET("/products/filter-options", h.filterOptions)
	api.GET("/products/:slug", h.productBySlug)
	api.GET("/categories", h.listCategories)
	api.GET("/categories/:slug", h.categoryBySlug)
	api.GET("/brands", h.listBrands)
	api.GET("/brands/:slug", h.brandBySlug)
}

func (h *Handler) listProducts(c *gin.Context) {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		h.fail(c, "listProducts", err)
		return
	}
	page, err := h.svc.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "listProducts", err)
		return
	}
	okPage(c, page.Items, newPageMeta(page.Total, page.Page, page.PerPage))
}

func productFilterFromQuery(c *gin.Context) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		CategorySlug: c.Query("category"),
		BrandSlug:    c.Query("brand"),
		Search:       c.Query("search"),
		Sort:         models.ParseProductSort(c.Query("sort")),
	}
	var err error
	if filter.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return filter, err
	}
	if filter.Page, err = intQuery(c, "page", 1); err != nil {
		return filter, err
	}
	if filter.PerPage, err = intQuery(c, "per_page", 0); err != nil {
		return filter, err
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return filter, models.Validation("featured must be a boolean")
		}
		filter.FeaturedOnly = featured
	}
	return filter, nil
}

func decimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.Validation("%s must be a number", key)
	}
	return &d, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Validation("%s must be an integer", key)
	}
	return n, nil
}

func (h *Handler) featuredProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", 8)
	if err != nil {
		h.fail(c, "featuredProducts", err)
		return
	}
	products, err := h.svc.Catalog.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "featuredProducts", err)
		return
	}
	ok(c, products)
}

func (h *Handler) searchProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		h.fail(c, "searchProducts", err)
		return
	}
	products, err := h.svc.Catalog.SearchProducts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.fail(c, "searchProducts", err)
		return
	}
	ok(c, products)
}

func (h *Handler) filterOptions(c *gin.Context) {
	opts, err := h.svc.Catalog.FilterOptions(c.Request.Context())
	if err != nil {
		h.fail(c, "filterOptions", err)
		return
	}
	ok(c, opts)
}

// productView adds the gallery, which the model keeps out of its json form.
type productView struct {
	*models.Product
	Images []*models.ProductImage `json:"images"`
}

func (h *Handler) productBySlug(c *gin.Context) {
	product, err := h.svc.Catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "productBySlug", err)
		return
	}
	images := product.Images
	if images == nil {
		images = []*models.ProductImage{}
	}
	ok(c, productView{Product: product, Images: images})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.svc.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "listCategories", err)
		return
	}
	ok(c, categories)
}

func (h *Handler) categoryBySlug(c *gin.Context) {
	category, err := h.svc.Catalog.CategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "categoryBySlug", err)
		return
	}
	ok(c, category)
}

func (h *Handler) listBrands(c *gin.Context) {
	brands, err := h.svc.Catalog.Brands(c.Request.Context())
	if err != nil {
		h.fail(c, "listBrands", err)
		return
	}
	ok(c, brands)
}

func (h *Handler) brandBySlug(c *gin.Context) {
	brand, err := h.svc.Catalog.BrandBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "brandBySlug", err)
		return
	}
	ok(c, brand)
}
