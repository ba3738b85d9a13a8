package memstore

import (
	"context"
	"sort"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/shopspring/decimal"
)

type tenantRepo struct{ s *Store }

func (r tenantRepo) GetByID(ctx context.Context, id int) (*models.Tenant, error) {
	r.s.lock("")
	defer r.s.unlock()
	t, ok := r.s.data.tenants[id]
	if !ok {
		return nil, models.NotFound("tenant not found")
	}
	return &t, nil
}

func (r tenantRepo) find(match func(models.Tenant) bool) (*models.Tenant, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, id := range sortedIDs(r.s.data.tenants) {
		if t := r.s.data.tenants[id]; match(t) {
			return &t, nil
		}
	}
	return nil, models.NotFound("tenant not found")
}

func (r tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return r.find(func(t models.Tenant) bool { return t.Slug == slug })
}

func (r tenantRepo) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return r.find(func(t models.Tenant) bool { return t.Domain != "" && t.Domain == domain })
}

func (r tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	err := r.s.lock("tenants.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, other := range r.s.data.tenants {
		if other.Slug == t.Slug {
			return conflict("tenant")
		}
	}
	if t.IsActive == nil {
		t.IsActive = ptr(true)
	}
	if t.BaseCurrency == "" {
		t.BaseCurrency = "USD"
	}
	t.ID = r.s.data.next("tenants")
	r.s.stamp(&t.CreatedAt, &t.UpdatedAt)
	r.s.data.tenants[t.ID] = *t
	return nil
}

func (r tenantRepo) Stats(ctx context.Context, tenantID int) (*models.TenantStats, error) {
	r.s.lock("")
	defer r.s.unlock()
	d := r.s.data
	var st models.TenantStats
	for _, p := range d.products {
		if p.TenantId == tenantID {
			st.Products++
		}
	}
	for _, c := range d.categories {
		if c.TenantId == tenantID {
			st.Categories++
		}
	}
	for _, b := range d.brands {
		if b.TenantId == tenantID {
			st.Brands++
		}
	}
	for _, c := range d.carts {
		if c.TenantId == tenantID && c.Status == models.CartStatusActive {
			st.ActiveCarts++
		}
	}
	for _, o := range d.orders {
		if o.TenantId == tenantID {
			st.Orders++
		}
	}
	for _, e := range d.outbox {
		if e.TenantId == tenantID && (e.PublishStatus == models.OutboxPublishStatusPending || e.PublishStatus == models.OutboxPublishStatusFailed) {
			st.PendingEvents++
		}
	}
	return &st, nil
}

type productRepo struct{ s *Store }

func (r productRepo) List(ctx context.Context, tenantID int, q repository.ProductQuery) ([]*models.Product, int64, error) {
	r.s.lock("")
	defer r.s.unlock()
	d := r.s.data
	var items []*models.Product
	for _, id := range sortedIDs(d.products) {
		p := d.products[id]
		if p.TenantId != tenantID {
			continue
		}
		if q.ActiveOnly && !p.Active() {
			continue
		}
		if q.FeaturedOnly && (p.IsFeatured == nil || !*p.IsFeatured) {
			continue
		}
		if q.CategoryID != nil && !inCategory(d, p, *q.CategoryID) {
			continue
		}
		if q.BrandID != nil && (p.BrandId == nil || *p.BrandId != *q.BrandID) {
			continue
		}
		if q.Search != "" && !containsFold(p.Name, q.Search) && !containsFold(p.Sku, q.Search) && !containsFold(p.Description, q.Search) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		items = append(items, &p)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch q.Sort {
		case models.ProductSortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
			return a.ID < b.ID
		case models.ProductSortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
			return a.ID < b.ID
		case models.ProductSortName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})

	total := int64(len(items))
	if q.Limit > 0 {
		if q.Offset >= len(items) {
			return []*models.Product{}, total, nil
		}
		end := q.Offset + q.Limit
		if end > len(items) {
			end = len(items)
		}
		items = items[q.Offset:end]
	}
	return items, total, nil
}

func inCategory(d *dataset, p models.Product, categoryID int) bool {
	if p.CategoryId != nil && *p.CategoryId == categoryID {
		return true
	}
	for _, id := range d.productCats[p.ID] {
		if id == categoryID {
			return true
		}
	}
	return false
}

// hydrate attaches images and category links. Caller holds the lock.
func (r productRepo) hydrate(p *models.Product) {
	d := r.s.data
	p.Images = nil
	for _, id := range sortedIDs(d.images) {
		if img := d.images[id]; img.ProductId == p.ID {
			p.Images = append(p.Images, &img)
		}
	}
	sort.SliceStable(p.Images, func(i, j int) bool { return p.Images[i].SortOrder < p.Images[j].SortOrder })
	p.Categories = nil
	for _, id := range d.productCats[p.ID] {
		c := d.categories[id]
		p.Categories = append(p.Categories, &c)
	}
	p.Subcategories = nil
	for _, id := range d.productSubs[p.ID] {
		sc := d.subcategories[id]
		p.Subcategories = append(p.Subcategories, &sc)
	}
}

func (r productRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Product, error) {
	r.s.lock("")
	defer r.s.unlock()
	p, ok := r.s.data.products[id]
	if !ok || p.TenantId != tenantID {
		return nil, models.NotFound("product not found")
	}
	r.hydrate(&p)
	return &p, nil
}

func (r productRepo) GetByIDAnyTenant(ctx context.Context, id int) (*models.Product, error) {
	r.s.lock("")
	defer r.s.unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, models.NotFound("product not found")
	}
	return &p, nil
}

func (r productRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Product, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, id := range sortedIDs(r.s.data.products) {
		p := r.s.data.products[id]
		if p.TenantId == tenantID && p.Slug == slug {
			r.hydrate(&p)
			return &p, nil
		}
	}
	return nil, models.NotFound("product not found")
}

func (r productRepo) exists(tenantID, excludeID int, match func(models.Product) bool) bool {
	for _, p := range r.s.data.products {
		if p.TenantId == tenantID && p.ID != excludeID && match(p) {
			return true
		}
	}
	return false
}

func (r productRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	r.s.lock("")
	defer r.s.unlock()
	return r.exists(tenantID, excludeID, func(p models.Product) bool { return p.Slug == slug }), nil
}

func (r productRepo) SkuExists(ctx context.Context, tenantID int, sku string, excludeID int) (bool, error) {
	r.s.lock("")
	defer r.s.unlock()
	return r.exists(tenantID, excludeID, func(p models.Product) bool { return p.Sku == sku }), nil
}

func (r productRepo) checkLinks(tenantID int, categoryIDs, subcategoryIDs []int) error {
	for _, id := range categoryIDs {
		if c, ok := r.s.data.categories[id]; !ok || c.TenantId != tenantID {
			return models.Validation("unknown category in category_ids")
		}
	}
	for _, id := range subcategoryIDs {
		if sc, ok := r.s.data.subcategories[id]; !ok || sc.TenantId != tenantID {
			return models.Validation("unknown subcategory in subcategory_ids")
		}
	}
	return nil
}

func (r productRepo) Create(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error {
	err := r.s.lock("products.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if r.exists(p.TenantId, 0, func(o models.Product) bool { return o.Slug == p.Slug || o.Sku == p.Sku }) {
		return conflict("product")
	}
	if err := r.checkLinks(p.TenantId, categoryIDs, subcategoryIDs); err != nil {
		return err
	}
	if p.IsActive == nil {
		p.IsActive = ptr(true)
	}
	if p.IsFeatured == nil {
		p.IsFeatured = ptr(false)
	}
	p.ID = r.s.data.next("products")
	r.s.stamp(&p.CreatedAt, &p.UpdatedAt)
	r.storeImages(p)
	r.s.data.productCats[p.ID] = append([]int(nil), categoryIDs...)
	r.s.data.productSubs[p.ID] = append([]int(nil), subcategoryIDs...)
	r.s.data.products[p.ID] = stripProduct(*p)
	r.hydrate(p)
	return nil
}

func (r productRepo) storeImages(p *models.Product) {
	for i, img := range p.Images {
		img.ID = r.s.data.next("product_images")
		img.ProductId = p.ID
		img.SortOrder = i
		r.s.stamp(&img.CreatedAt, nil)
		r.s.data.images[img.ID] = *img
	}
}

func stripProduct(p models.Product) models.Product {
	p.Images, p.Categories, p.Subcategories = nil, nil, nil
	return p
}

func (r productRepo) Update(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error {
	err := r.s.lock("products.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	old, ok := r.s.data.products[p.ID]
	if !ok || old.TenantId != p.TenantId {
		return models.NotFound("product not found")
	}
	if r.exists(p.TenantId, p.ID, func(o models.Product) bool { return o.Slug == p.Slug || o.Sku == p.Sku }) {
		return conflict("product")
	}
	if err := r.checkLinks(p.TenantId, categoryIDs, subcategoryIDs); err != nil {
		return err
	}
	r.s.stamp(nil, &p.UpdatedAt)
	p.CreatedAt = old.CreatedAt
	if p.Images != nil {
		for id, img := range r.s.data.images {
			if img.ProductId == p.ID {
				delete(r.s.data.images, id)
			}
		}
		r.storeImages(p)
	}
	if categoryIDs != nil {
		r.s.data.productCats[p.ID] = append([]int(nil), categoryIDs...)
	}
	if subcategoryIDs != nil {
		r.s.data.productSubs[p.ID] = append([]int(nil), subcategoryIDs...)
	}
	r.s.data.products[p.ID] = stripProduct(*p)
	r.hydrate(p)
	return nil
}

func (r productRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("products.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	p, ok := r.s.data.products[id]
	if !ok || p.TenantId != tenantID {
		return models.NotFound("product not found")
	}
	delete(r.s.data.products, id)
	delete(r.s.data.productCats, id)
	delete(r.s.data.productSubs, id)
	for imgID, img := range r.s.data.images {
		if img.ProductId == id {
			delete(r.s.data.images, imgID)
		}
	}
	return nil
}

func (r productRepo) AdjustStock(ctx context.Context, tenantID, id, delta int) error {
	err := r.s.lock("products.adjust_stock")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	p, ok := r.s.data.products[id]
	if !ok || p.TenantId != tenantID {
		return models.NotFound("product %d not found", id)
	}
	if p.StockQuantity+delta < 0 {
		return models.Validation("insufficient stock for product %d", id)
	}
	p.StockQuantity += delta
	r.s.data.products[id] = p
	return nil
}

func (r productRepo) PriceRange(ctx context.Context, tenantID int) (*decimal.Decimal, *decimal.Decimal, error) {
	r.s.lock("")
	defer r.s.unlock()
	var lo, hi *decimal.Decimal
	for _, p := range r.s.data.products {
		if p.TenantId != tenantID || !p.Active() {
			continue
		}
		price := p.Price
		if lo == nil || price.LessThan(*lo) {
			lo = ptr(price)
		}
		if hi == nil || price.GreaterThan(*hi) {
			hi = ptr(price)
		}
	}
	return lo, hi, nil
}

func (r productRepo) ImagesByProductIDs(ctx context.Context, ids []int) (map[int][]*models.ProductImage, error) {
	r.s.lock("")
	defer r.s.unlock()
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int][]*models.ProductImage, len(ids))
	for _, id := range sortedIDs(r.s.data.images) {
		img := r.s.data.images[id]
		if want[img.ProductId] {
			out[img.ProductId] = append(out[img.ProductId], &img)
		}
	}
	for _, imgs := range out {
		sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].SortOrder < imgs[j].SortOrder })
	}
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) withSubs(c *models.Category) {
	c.Subcategories = nil
	for _, id := range sortedIDs(r.s.data.subcategories) {
		if sc := r.s.data.subcategories[id]; sc.CategoryId == c.ID {
			c.Subcategories = append(c.Subcategories, &sc)
		}
	}
}

func (r categoryRepo) List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Category, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.Category
	for _, id := range sortedIDs(r.s.data.categories) {
		c := r.s.data.categories[id]
		if c.TenantId != tenantID || (activeOnly && (c.IsActive == nil || !*c.IsActive)) {
			continue
		}
		r.withSubs(&c)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r categoryRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Category, error) {
	r.s.lock("")
	defer r.s.unlock()
	c, ok := r.s.data.categories[id]
	if !ok || c.TenantId != tenantID {
		return nil, models.NotFound("category not found")
	}
	r.withSubs(&c)
	return &c, nil
}

func (r categoryRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Category, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, id := range sortedIDs(r.s.data.categories) {
		c := r.s.data.categories[id]
		if c.TenantId == tenantID && c.Slug == slug {
			r.withSubs(&c)
			return &c, nil
		}
	}
	return nil, models.NotFound("category not found")
}

func (r categoryRepo) GetByIDs(ctx context.Context, ids []int) ([]*models.Category, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.Category
	for _, id := range ids {
		if c, ok := r.s.data.categories[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r categoryRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, c := range r.s.data.categories {
		if c.TenantId == tenantID && c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r categoryRepo) Create(ctx context.Context, c *models.Category) error {
	err := r.s.lock("categories.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, o := range r.s.data.categories {
		if o.TenantId == c.TenantId && o.Slug == c.Slug {
			return conflict("category")
		}
	}
	if c.IsActive == nil {
		c.IsActive = ptr(true)
	}
	c.ID = r.s.data.next("categories")
	r.s.stamp(&c.CreatedAt, &c.UpdatedAt)
	stored := *c
	stored.Children, stored.Subcategories = nil, nil
	r.s.data.categories[c.ID] = stored
	return nil
}

func (r categoryRepo) Update(ctx context.Context, c *models.Category) error {
	err := r.s.lock("categories.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	old, ok := r.s.data.categories[c.ID]
	if !ok || old.TenantId != c.TenantId {
		return models.NotFound("category not found")
	}
	for _, o := range r.s.data.categories {
		if o.TenantId == c.TenantId && o.Slug == c.Slug && o.ID != c.ID {
			return conflict("category")
		}
	}
	r.s.stamp(nil, &c.UpdatedAt)
	stored := *c
	stored.Children, stored.Subcategories = nil, nil
	r.s.data.categories[c.ID] = stored
	return nil
}

func (r categoryRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("categories.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	c, ok := r.s.data.categories[id]
	if !ok || c.TenantId != tenantID {
		return models.NotFound("category not found")
	}
	delete(r.s.data.categories, id)
	for pid, links := range r.s.data.productCats {
		r.s.data.productCats[pid] = without(links, id)
	}
	for pid, p := range r.s.data.products {
		if p.CategoryId != nil && *p.CategoryId == id {
			p.CategoryId = nil
			r.s.data.products[pid] = p
		}
	}
	for sid, sc := range r.s.data.subcategories {
		if sc.CategoryId == id {
			delete(r.s.data.subcategories, sid)
		}
	}
	return nil
}

func without(ids []int, drop int) []int {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func (r categoryRepo) CountChildren(ctx context.Context, tenantID, id int) (int64, error) {
	r.s.lock("")
	defer r.s.unlock()
	var n int64
	for _, c := range r.s.data.categories {
		if c.TenantId == tenantID && c.ParentId != nil && *c.ParentId == id {
			n++
		}
	}
	return n, nil
}

func (r categoryRepo) CreateSubcategory(ctx context.Context, sc *models.Subcategory) error {
	err := r.s.lock("subcategories.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if sc.IsActive == nil {
		sc.IsActive = ptr(true)
	}
	sc.ID = r.s.data.next("subcategories")
	r.s.stamp(&sc.CreatedAt, nil)
	r.s.data.subcategories[sc.ID] = *sc
	return nil
}

func (r categoryRepo) GetSubcategory(ctx context.Context, tenantID, id int) (*models.Subcategory, error) {
	r.s.lock("")
	defer r.s.unlock()
	sc, ok := r.s.data.subcategories[id]
	if !ok || sc.TenantId != tenantID {
		return nil, models.NotFound("subcategory not found")
	}
	return &sc, nil
}

func (r categoryRepo) UpdateSubcategory(ctx context.Context, sc *models.Subcategory) error {
	err := r.s.lock("subcategories.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if old, ok := r.s.data.subcategories[sc.ID]; !ok || old.TenantId != sc.TenantId {
		return models.NotFound("subcategory not found")
	}
	r.s.data.subcategories[sc.ID] = *sc
	return nil
}

func (r categoryRepo) DeleteSubcategory(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("subcategories.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if sc, ok := r.s.data.subcategories[id]; !ok || sc.TenantId != tenantID {
		return models.NotFound("subcategory not found")
	}
	delete(r.s.data.subcategories, id)
	for pid, links := range r.s.data.productSubs {
		r.s.data.productSubs[pid] = without(links, id)
	}
	return nil
}

type brandRepo struct{ s *Store }

func (r brandRepo) List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Brand, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.Brand
	for _, id := range sortedIDs(r.s.data.brands) {
		b := r.s.data.brands[id]
		if b.TenantId != tenantID || (activeOnly && (b.IsActive == nil || !*b.IsActive)) {
			continue
		}
		out = append(out, &b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r brandRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Brand, error) {
	r.s.lock("")
	defer r.s.unlock()
	b, ok := r.s.data.brands[id]
	if !ok || b.TenantId != tenantID {
		return nil, models.NotFound("brand not found")
	}
	return &b, nil
}

func (r brandRepo) GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Brand, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, id := range sortedIDs(r.s.data.brands) {
		b := r.s.data.brands[id]
		if b.TenantId == tenantID && b.Slug == slug {
			return &b, nil
		}
	}
	return nil, models.NotFound("brand not found")
}

func (r brandRepo) GetByIDs(ctx context.Context, ids []int) ([]*models.Brand, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.Brand
	for _, id := range ids {
		if b, ok := r.s.data.brands[id]; ok {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r brandRepo) SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, b := range r.s.data.brands {
		if b.TenantId == tenantID && b.Slug == slug && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r brandRepo) Create(ctx context.Context, b *models.Brand) error {
	err := r.s.lock("brands.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, o := range r.s.data.brands {
		if o.TenantId == b.TenantId && o.Slug == b.Slug {
			return conflict("brand")
		}
	}
	if b.IsActive == nil {
		b.IsActive = ptr(true)
	}
	b.ID = r.s.data.next("brands")
	r.s.stamp(&b.CreatedAt, &b.UpdatedAt)
	r.s.data.brands[b.ID] = *b
	return nil
}

func (r brandRepo) Update(ctx context.Context, b *models.Brand) error {
	err := r.s.lock("brands.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	old, ok := r.s.data.brands[b.ID]
	if !ok || old.TenantId != b.TenantId {
		return models.NotFound("brand not found")
	}
	for _, o := range r.s.data.brands {
		if o.TenantId == b.TenantId && o.Slug == b.Slug && o.ID != b.ID {
			return conflict("brand")
		}
	}
	r.s.stamp(nil, &b.UpdatedAt)
	r.s.data.brands[b.ID] = *b
	return nil
}

func (r brandRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("brands.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	b, ok := r.s.data.brands[id]
	if !ok || b.TenantId != tenantID {
		return models.NotFound("brand not found")
	}
	delete(r.s.data.brands, id)
	for pid, p := range r.s.data.products {
		if p.BrandId != nil && *p.BrandId == id {
			p.BrandId = nil
			r.s.data.products[pid] = p
		}
	}
	return nil
}

type taxRateRepo struct{ s *Store }

func (r taxRateRepo) GetByID(ctx context.Context, tenantID, id int) (*models.TaxRate, error) {
	r.s.lock("")
	defer r.s.unlock()
	t, ok := r.s.data.taxRates[id]
	if !ok || t.TenantId != tenantID {
		return nil, models.NotFound("tax rate not found")
	}
	return &t, nil
}

func (r taxRateRepo) List(ctx context.Context, tenantID int) ([]*models.TaxRate, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.TaxRate
	for _, id := range sortedIDs(r.s.data.taxRates) {
		if t := r.s.data.taxRates[id]; t.TenantId == tenantID {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r taxRateRepo) Create(ctx context.Context, t *models.TaxRate) error {
	err := r.s.lock("tax_rates.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if t.IsActive == nil {
		t.IsActive = ptr(true)
	}
	t.ID = r.s.data.next("tax_rates")
	r.s.stamp(&t.CreatedAt, nil)
	r.s.data.taxRates[t.ID] = *t
	return nil
}

func (r taxRateRepo) Update(ctx context.Context, t *models.TaxRate) error {
	err := r.s.lock("tax_rates.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if old, ok := r.s.data.taxRates[t.ID]; !ok || old.TenantId != t.TenantId {
		return models.NotFound("tax rate not found")
	}
	r.s.data.taxRates[t.ID] = *t
	return nil
}

func (r taxRateRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("tax_rates.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if t, ok := r.s.data.taxRates[id]; !ok || t.TenantId != tenantID {
		return models.NotFound("tax rate not found")
	}
	delete(r.s.data.taxRates, id)
	for pid, p := range r.s.data.products {
		if p.TenantId == tenantID && p.TaxRateId != nil && *p.TaxRateId == id {
			p.TaxRateId = nil
			r.s.data.products[pid] = p
		}
	}
	return nil
}
