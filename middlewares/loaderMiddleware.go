package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch the per-product lookups a product listing fans out into.
type Loaders struct {
	categoryLoader      *dataloader.Loader[int, *models.Category]
	brandLoader         *dataloader.Loader[int, *models.Brand]
	productImagesLoader *dataloader.Loader[int, []*models.ProductImage]
}

// NewLoaders instantiates data loaders for one request.
func NewLoaders(catalog *service.CatalogService) *Loaders {
	categoryReader := &categoryReader{catalog: catalog}
	brandReader := &brandReader{catalog: catalog}
	productImageReader := &productImageReader{catalog: catalog}

	return &Loaders{
		categoryLoader:      dataloader.NewBatchedLoader(categoryReader.getCategories, dataloader.WithWait[int, *models.Category](time.Millisecond)),
		brandLoader:         dataloader.NewBatchedLoader(brandReader.getBrands, dataloader.WithWait[int, *models.Brand](time.Millisecond)),
		productImagesLoader: dataloader.NewBatchedLoader(productImageReader.getImages, dataloader.WithWait[int, []*models.ProductImage](time.Millisecond)),
	}
}

// LoaderMiddleware gives every request a fresh set of loaders so cached rows
// never leak between tenants.
func LoaderMiddleware(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithLoaders(c.Request.Context(), NewLoaders(catalog))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// For returns the loaders bound to ctx, or nil outside an HTTP request.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// generateLoaderResults lines rows up with the requested ids. Ids with no row
// resolve to nil data, not an error.
func generateLoaderResults[T any](results []*T, ids []int, idOf func(*T) int) []*dataloader.Result[*T] {
	resultMap := make(map[int]*T, len(results))
	for _, result := range results {
		resultMap[idOf(result)] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[id]})
	}
	return loaderResults
}
