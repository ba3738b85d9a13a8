package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/commerce_backend/access"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
)

// CatalogService owns products, categories, subcategories, brands and tax rates.
type CatalogService struct {
	store repository.Store
}

const maxSlugAttempts = 50

// isStaff decides whether inactive catalog rows are visible.
func isStaff(ctx context.Context) bool {
	return access.Require(ctx, access.Staff) == nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	page, perPage, offset := models.NormalizePage(filter.Page, filter.PerPage)
	empty := &models.ProductPage{Items: []*models.Product{}, Page: page, PerPage: perPage}

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, models.Validation("min_price must not exceed max_price")
	}

	q := repository.ProductQuery{
		Search:       strings.TrimSpace(filter.Search),
		MinPrice:     filter.MinPrice,
		MaxPrice:     filter.MaxPrice,
		FeaturedOnly: filter.FeaturedOnly,
		ActiveOnly:   !isStaff(ctx),
		Sort:         filter.Sort,
		Limit:        perPage,
		Offset:       offset,
	}
	if filter.CategorySlug != "" {
		cat, err := s.store.Categories().GetBySlug(ctx, tenantID, filter.CategorySlug)
		if err != nil {
			if models.KindOf(err) == models.KindNotFound {
				return empty, nil
			}
			return nil, err
		}
		q.CategoryID = &cat.ID
	}
	if filter.BrandSlug != "" {
		brand, err := s.store.Brands().GetBySlug(ctx, tenantID, filter.BrandSlug)
		if err != nil {
			if models.KindOf(err) == models.KindNotFound {
				return empty, nil
			}
			return nil, err
		}
		q.BrandID = &brand.ID
	}

	items, total, err := s.store.Products().List(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Product{}
	}
	return &models.ProductPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	page, err := s.ListProducts(ctx, models.ProductFilter{FeaturedOnly: true, PerPage: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, limit int) ([]*models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.Validation("search query is required")
	}
	page, err := s.ListProducts(ctx, models.ProductFilter{Search: query, PerPage: limit, Sort: models.ProductSortName})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *CatalogService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := s.store.Brands().List(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	lo, hi, err := s.store.Products().PriceRange(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &models.FilterOptions{Categories: cats, Brands: brands, MinPrice: lo, MaxPrice: hi}, nil
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Products().GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if !p.Active() && !isStaff(ctx) {
		return nil, models.NotFound("product not found")
	}
	return p, nil
}

func (s *CatalogService) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Products().GetByID(ctx, tenantID, id)
}

// validateProductInput checks shape, non-negative amounts and that every
// referenced row lives in the tenant.
func (s *CatalogService) validateProductInput(ctx context.Context, tenantID int, input *models.NewProduct) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return models.Validation("price must not be negative")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return models.Validation("sale_price must not be negative")
	}
	if input.StockQuantity < 0 {
		return models.Validation("stock_quantity must not be negative")
	}
	if input.WeightKg.IsNegative() || input.VolumeCbm.IsNegative() {
		return models.Validation("weight and volume must not be negative")
	}
	if input.CategoryId != nil {
		if _, err := s.store.Categories().GetByID(ctx, tenantID, *input.CategoryId); err != nil {
			return asValidation(err, "category_id")
		}
	}
	if input.BrandId != nil {
		if _, err := s.store.Brands().GetByID(ctx, tenantID, *input.BrandId); err != nil {
			return asValidation(err, "brand_id")
		}
	}
	if input.TaxRateId != nil {
		if _, err := s.store.TaxRates().GetByID(ctx, tenantID, *input.TaxRateId); err != nil {
			return asValidation(err, "tax_rate_id")
		}
	}
	return nil
}

// asValidation turns a missing reference into a ValidationError on field.
func asValidation(err error, field string) error {
	if models.KindOf(err) == models.KindNotFound {
		return models.Validation("%s does not exist", field)
	}
	return err
}

// uniqueSlug appends -2, -3 ... until exists reports the slug free.
func uniqueSlug(base string, exists func(string) (bool, error)) (string, error) {
	if base == "" {
		return "", models.Validation("slug must contain letters or digits")
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", models.Conflict("could not find a free slug for %q", base)
}

func productSlug(ctx context.Context, products repository.ProductRepo, tenantID int, name, requested string, excludeID int) (string, error) {
	base := utils.Slugify(requested)
	if requested == "" {
		base = utils.Slugify(name)
	}
	return uniqueSlug(base, func(slug string) (bool, error) {
		return products.SlugExists(ctx, tenantID, slug, excludeID)
	})
}

// productSku keeps an explicit SKU as is (duplicates conflict) and derives
// a free one from the name otherwise.
func productSku(ctx context.Context, products repository.ProductRepo, tenantID int, name, requested string, excludeID int) (string, error) {
	exists := func(sku string) (bool, error) {
		return products.SkuExists(ctx, tenantID, sku, excludeID)
	}
	if sku := strings.TrimSpace(requested); sku != "" {
		taken, err := exists(sku)
		if err != nil {
			return "", err
		}
		if taken {
			return "", models.Conflict("sku %q is already in use", sku)
		}
		return sku, nil
	}
	return uniqueSlug(utils.SkuFromName(name), exists)
}

func newProductImages(inputs []*models.NewProductImage) []*models.ProductImage {
	images := make([]*models.ProductImage, 0, len(inputs))
	for i, in := range inputs {
		images = append(images, &models.ProductImage{
			Url:       in.Url,
			AltText:   in.AltText,
			SortOrder: i,
			IsPrimary: in.IsPrimary,
		})
	}
	return images
}

func (s *CatalogService) CreateProduct(ctx context.Context, input *models.NewProduct) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateProductInput(ctx, tenantID, input); err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		slug, err := productSlug(ctx, tx.Products(), tenantID, input.Name, input.Slug, 0)
		if err != nil {
			return err
		}
		sku, err := productSku(ctx, tx.Products(), tenantID, input.Name, input.Sku, 0)
		if err != nil {
			return err
		}
		product = &models.Product{
			TenantId:      tenantID,
			CategoryId:    input.CategoryId,
			BrandId:       input.BrandId,
			TaxRateId:     input.TaxRateId,
			Name:          strings.TrimSpace(input.Name),
			Slug:          slug,
			Sku:           sku,
			Description:   input.Description,
			Price:         input.Price,
			SalePrice:     input.SalePrice,
			StockQuantity: input.StockQuantity,
			WeightKg:      input.WeightKg,
			VolumeCbm:     input.VolumeCbm,
			IsActive:      boolOr(input.IsActive, true),
			IsFeatured:    boolOr(input.IsFeatured, false),
			Images:        newProductImages(input.Images),
		}
		if err := tx.Products().Create(ctx, product, input.CategoryIds, input.SubcategoryIds); err != nil {
			return err
		}
		return recordChange(ctx, tx, tenantID, models.EventProductCreated, subjectProduct, product.ID, nil, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces every field. Images and links are replaced when the
// input carries them.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, input *models.NewProduct) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateProductInput(ctx, tenantID, input); err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Products().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		before := *existing

		slug := existing.Slug
		if input.Slug != "" && utils.Slugify(input.Slug) != existing.Slug {
			if slug, err = productSlug(ctx, tx.Products(), tenantID, input.Name, input.Slug, id); err != nil {
				return err
			}
		}
		sku := existing.Sku
		if input.Sku != "" && input.Sku != existing.Sku {
			if sku, err = productSku(ctx, tx.Products(), tenantID, input.Name, input.Sku, id); err != nil {
				return err
			}
		}

		product = existing
		product.CategoryId = input.CategoryId
		product.BrandId = input.BrandId
		product.TaxRateId = input.TaxRateId
		product.Name = strings.TrimSpace(input.Name)
		product.Slug = slug
		product.Sku = sku
		product.Description = input.Description
		product.Price = input.Price
		product.SalePrice = input.SalePrice
		product.StockQuantity = input.StockQuantity
		product.WeightKg = input.WeightKg
		product.VolumeCbm = input.VolumeCbm
		if input.IsActive != nil {
			product.IsActive = input.IsActive
		}
		if input.IsFeatured != nil {
			product.IsFeatured = input.IsFeatured
		}
		product.Images = nil
		if input.Images != nil {
			product.Images = newProductImages(input.Images)
		}

		if err := tx.Products().Update(ctx, product, input.CategoryIds, input.SubcategoryIds); err != nil {
			return err
		}
		return recordChange(ctx, tx, tenantID, models.EventProductUpdated, subjectProduct, product.ID, &before, product)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Products().GetByID(ctx, tenantID, product.ID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int) (*models.Product, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var product *models.Product
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if product, err = tx.Products().GetByID(ctx, tenantID, id); err != nil {
			return err
		}
		if err := tx.Products().Delete(ctx, tenantID, id); err != nil {
			return err
		}
		return recordChange(ctx, tx, tenantID, models.EventProductDeleted, subjectProduct, id, product, nil)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ProductImages batches gallery lookups for the dataloader.
func (s *CatalogService) ProductImages(ctx context.Context, productIDs []int) (map[int][]*models.ProductImage, error) {
	return s.store.Products().ImagesByProductIDs(ctx, productIDs)
}

func boolOr(v *bool, def bool) *bool {
	if v != nil {
		return v
	}
	if def {
		return utils.NewTrue()
	}
	return utils.NewFalse()
}
