package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
)

type categoryReader struct {
	catalog *service.CatalogService
}

func (r *categoryReader) getCategories(ctx context.Context, ids []int) []*dataloader.Result[*models.Category] {
	results, err := r.catalog.CategoriesByIDs(ctx, ids)
	if err != nil {
		return handleError[*models.Category](len(ids), err)
	}
	return generateLoaderResults(results, ids, func(c *models.Category) int { return c.ID })
}

func GetCategory(ctx context.Context, id int) (*models.Category, error) {
	loaders := For(ctx)
	return loaders.categoryLoader.Load(ctx, id)()
}

type brandReader struct {
	catalog *service.CatalogService
}

func (r *brandReader) getBrands(ctx context.Context, ids []int) []*dataloader.Result[*models.Brand] {
	results, err := r.catalog.BrandsByIDs(ctx, ids)
	if err != nil {
		return handleError[*models.Brand](len(ids), err)
	}
	return generateLoaderResults(results, ids, func(b *models.Brand) int { return b.ID })
}

func GetBrand(ctx context.Context, id int) (*models.Brand, error) {
	loaders := For(ctx)
	return loaders.brandLoader.Load(ctx, id)()
}
