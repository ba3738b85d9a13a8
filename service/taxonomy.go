package service

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

// Categories returns the category forest: roots with nested children, each
// level ordered by sort_order then name.
func (s *CatalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.store.Categories().List(ctx, tenantID, !isStaff(ctx))
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(cats), nil
}

// BuildCategoryTree links children under their parents. Input order is kept
// within each level. A category whose parent is not in the list is a root.
func BuildCategoryTree(cats []*models.Category) []*models.Category {
	byID := make(map[int]*models.Category, len(cats))
	for _, c := range cats {
		c.Children = []*models.Category{}
		byID[c.ID] = c
	}
	roots := make([]*models.Category, 0, len(cats))
	for _, c := range cats {
		if c.ParentId != nil {
			if parent, ok := byID[*c.ParentId]; ok && parent.ID != c.ID {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.store.Categories().GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if (cat.IsActive == nil || !*cat.IsActive) && !isStaff(ctx) {
		return nil, models.NotFound("category not found")
	}
	all, err := s.store.Categories().List(ctx, tenantID, !isStaff(ctx))
	if err != nil {
		return nil, err
	}
	BuildCategoryTree(all)
	for _, c := range all {
		if c.ID == cat.ID {
			cat.Children = c.Children
		}
	}
	return cat, nil
}

// CategoriesByIDs feeds the Product.category dataloader.
func (s *CatalogService) CategoriesByIDs(ctx context.Context, ids []int) ([]*models.Category, error) {
	return s.store.Categories().GetByIDs(ctx, ids)
}

func (s *CatalogService) categorySlug(ctx context.Context, tenantID int, name, requested string, excludeID int) (string, error) {
	base := utils.Slugify(requested)
	if requested == "" {
		base = utils.Slugify(name)
	}
	return uniqueSlug(base, func(slug string) (bool, error) {
		return s.store.Categories().SlugExists(ctx, tenantID, slug, excludeID)
	})
}

// checkParent rejects a parent outside the tenant and any parent chain that
// leads back to id.
func (s *CatalogService) checkParent(ctx context.Context, tenantID, id int, parentID *int) error {
	if parentID == nil {
		return nil
	}
	if id != 0 && *parentID == id {
		return models.Validation("category cannot be its own parent")
	}
	seen := map[int]bool{}
	next := parentID
	for next != nil {
		if seen[*next] {
			return models.Validation("category parent chain contains a cycle")
		}
		seen[*next] = true
		parent, err := s.store.Categories().GetByID(ctx, tenantID, *next)
		if err != nil {
			return asValidation(err, "parent_id")
		}
		if id != 0 && parent.ID == id {
			return models.Validation("category parent chain contains a cycle")
		}
		next = parent.ParentId
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, input *models.NewCategory) (*models.Category, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, tenantID, 0, input.ParentId); err != nil {
		return nil, err
	}
	slug, err := s.categorySlug(ctx, tenantID, input.Name, input.Slug, 0)
	if err != nil {
		return nil, err
	}
	cat := &models.Category{
		TenantId:    tenantID,
		ParentId:    input.ParentId,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		IsActive:    boolOr(input.IsActive, true),
		SortOrder:   input.SortOrder,
	}
	if err := s.store.Categories().Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int, input *models.NewCategory) (*models.Category, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	cat, err := s.store.Categories().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, tenantID, id, input.ParentId); err != nil {
		return nil, err
	}
	if input.Slug != "" && utils.Slugify(input.Slug) != cat.Slug {
		if cat.Slug, err = s.categorySlug(ctx, tenantID, input.Name, input.Slug, id); err != nil {
			return nil, err
		}
	}
	cat.ParentId = input.ParentId
	cat.Name = strings.TrimSpace(input.Name)
	cat.Description = input.Description
	cat.SortOrder = input.SortOrder
	if input.IsActive != nil {
		cat.IsActive = input.IsActive
	}
	if err := s.store.Categories().Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory refuses to orphan child categories.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int) (*models.Category, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.store.Categories().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	children, err := s.store.Categories().CountChildren(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, models.Conflict("category has %d child categories", children)
	}
	if err := s.store.Categories().Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return cat, nil
}

type NewSubcategory struct {
	CategoryId int    `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=255"`
	Slug       string `json:"slug" validate:"max=255"`
	SortOrder  int    `json:"sort_order"`
	IsActive   *bool  `json:"is_active"`
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, input *NewSubcategory) (*models.Subcategory, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, err := s.store.Categories().GetByID(ctx, tenantID, input.CategoryId); err != nil {
		return nil, asValidation(err, "category_id")
	}
	slug := utils.Slugify(input.Slug)
	if input.Slug == "" {
		slug = utils.Slugify(input.Name)
	}
	sub := &models.Subcategory{
		TenantId:   tenantID,
		CategoryId: input.CategoryId,
		Name:       strings.TrimSpace(input.Name),
		Slug:       slug,
		IsActive:   boolOr(input.IsActive, true),
		SortOrder:  input.SortOrder,
	}
	if err := s.store.Categories().CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubcategory may move the subcategory under another category of the
// same tenant.
func (s *CatalogService) UpdateSubcategory(ctx context.Context, id int, input *NewSubcategory) (*models.Subcategory, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	sub, err := s.store.Categories().GetSubcategory(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryId != sub.CategoryId {
		if _, err := s.store.Categories().GetByID(ctx, tenantID, input.CategoryId); err != nil {
			return nil, asValidation(err, "category_id")
		}
		sub.CategoryId = input.CategoryId
	}
	if input.Slug != "" {
		sub.Slug = utils.Slugify(input.Slug)
	}
	sub.Name = strings.TrimSpace(input.Name)
	sub.SortOrder = input.SortOrder
	if input.IsActive != nil {
		sub.IsActive = input.IsActive
	}
	if err := s.store.Categories().UpdateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CatalogService) DeleteSubcategory(ctx context.Context, id int) (*models.Subcategory, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.Categories().GetSubcategory(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Categories().DeleteSubcategory(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CatalogService) Brands(ctx context.Context) ([]*models.Brand, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Brands().List(ctx, tenantID, !isStaff(ctx))
}

func (s *CatalogService) BrandBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	brand, err := s.store.Brands().GetBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if (brand.IsActive == nil || !*brand.IsActive) && !isStaff(ctx) {
		return nil, models.NotFound("brand not found")
	}
	return brand, nil
}

// BrandsByIDs feeds the Product.brand dataloader.
func (s *CatalogService) BrandsByIDs(ctx context.Context, ids []int) ([]*models.Brand, error) {
	return s.store.Brands().GetByIDs(ctx, ids)
}

func (s *CatalogService) brandSlug(ctx context.Context, tenantID int, name, requested string, excludeID int) (string, error) {
	base := utils.Slugify(requested)
	if requested == "" {
		base = utils.Slugify(name)
	}
	return uniqueSlug(base, func(slug string) (bool, error) {
		return s.store.Brands().SlugExists(ctx, tenantID, slug, excludeID)
	})
}

func (s *CatalogService) CreateBrand(ctx context.Context, input *models.NewBrand) (*models.Brand, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	slug, err := s.brandSlug(ctx, tenantID, input.Name, input.Slug, 0)
	if err != nil {
		return nil, err
	}
	brand := &models.Brand{
		TenantId:    tenantID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		LogoUrl:     input.LogoUrl,
		IsActive:    boolOr(input.IsActive, true),
	}
	if err := s.store.Brands().Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id int, input *models.NewBrand) (*models.Brand, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	brand, err := s.store.Brands().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.Slug != "" && utils.Slugify(input.Slug) != brand.Slug {
		if brand.Slug, err = s.brandSlug(ctx, tenantID, input.Name, input.Slug, id); err != nil {
			return nil, err
		}
	}
	brand.Name = strings.TrimSpace(input.Name)
	brand.Description = input.Description
	brand.LogoUrl = input.LogoUrl
	if input.IsActive != nil {
		brand.IsActive = input.IsActive
	}
	if err := s.store.Brands().Update(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id int) (*models.Brand, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	brand, err := s.store.Brands().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Brands().Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return brand, nil
}

type NewTaxRate struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Rate     decimal.Decimal `json:"rate"`
	IsActive *bool           `json:"is_active"`
}

func validTaxRate(input *NewTaxRate) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Rate.IsNegative() || input.Rate.GreaterThan(decimal.NewFromInt(100)) {
		return models.Validation("rate must be between 0 and 100")
	}
	return nil
}

func (s *CatalogService) TaxRates(ctx context.Context) ([]*models.TaxRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.TaxRates().List(ctx, tenantID)
}

func (s *CatalogService) CreateTaxRate(ctx context.Context, input *NewTaxRate) (*models.TaxRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validTaxRate(input); err != nil {
		return nil, err
	}
	rate := &models.TaxRate{TenantId: tenantID, Name: strings.TrimSpace(input.Name), Rate: input.Rate, IsActive: boolOr(input.IsActive, true)}
	if err := s.store.TaxRates().Create(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// UpdateTaxRate affects carts and orders priced afterwards only; cart lines
// keep the rate they were snapshotted with.
func (s *CatalogService) UpdateTaxRate(ctx context.Context, id int, input *NewTaxRate) (*models.TaxRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validTaxRate(input); err != nil {
		return nil, err
	}
	rate, err := s.store.TaxRates().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate.Name = strings.TrimSpace(input.Name)
	rate.Rate = input.Rate
	if input.IsActive != nil {
		rate.IsActive = input.IsActive
	}
	if err := s.store.TaxRates().Update(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// DeleteTaxRate leaves the products that used it untaxed.
func (s *CatalogService) DeleteTaxRate(ctx context.Context, id int) (*models.TaxRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := s.store.TaxRates().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.TaxRates().Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return rate, nil
}
