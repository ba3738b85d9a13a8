package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
)

type productImageReader struct {
	catalog *service.CatalogService
}

func (r *productImageReader) getImages(ctx context.Context, productIds []int) []*dataloader.Result[[]*models.ProductImage] {
	byProduct, err := r.catalog.ProductImages(ctx, productIds)
	if err != nil {
		return handleError[[]*models.ProductImage](len(productIds), err)
	}

	loaderResults := make([]*dataloader.Result[[]*models.ProductImage], 0, len(productIds))
	for _, id := range productIds {
		images := byProduct[id]
		if images == nil {
			images = []*models.ProductImage{}
		}
		loaderResults = append(loaderResults, &dataloader.Result[[]*models.ProductImage]{Data: images})
	}
	return loaderResults
}

func GetProductImages(ctx context.Context, productId int) ([]*models.ProductImage, error) {
	loaders := For(ctx)
	return loaders.productImagesLoader.Load(ctx, productId)()
}
