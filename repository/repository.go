package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the persistence boundary the services depend on. Every
// tenant-scoped method takes the tenant id explicitly.
type Store interface {
	Tenants() TenantRepo
	Products() ProductRepo
	Categories() CategoryRepo
	Brands() BrandRepo
	TaxRates() TaxRateRepo
	ExchangeRates() ExchangeRateRepo
	Carts() CartRepo
	Orders() OrderRepo
	Shipping() ShippingRepo
	Users() UserRepo
	Audit() AuditRepo
	Outbox() OutboxRepo

	// WithTx runs fn in one transaction. Any error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type TenantRepo interface {
	GetByID(ctx context.Context, id int) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Create(ctx context.Context, t *models.Tenant) error
	Stats(ctx context.Context, tenantID int) (*models.TenantStats, error)
}

// ProductQuery is a ProductFilter with slugs already resolved to ids.
type ProductQuery struct {
	CategoryID   *int
	BrandID      *int
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FeaturedOnly bool
	ActiveOnly   bool
	Sort         models.ProductSort
	Limit        int
	Offset       int
}

type ProductRepo interface {
	List(ctx context.Context, tenantID int, q ProductQuery) ([]*models.Product, int64, error)
	GetByID(ctx context.Context, tenantID, id int) (*models.Product, error)
	// GetByIDAnyTenant ignores tenant scoping so callers can tell "missing" from "not yours".
	GetByIDAnyTenant(ctx context.Context, id int) (*models.Product, error)
	GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error)
	SkuExists(ctx context.Context, tenantID int, sku string, excludeID int) (bool, error)
	Create(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error
	Update(ctx context.Context, p *models.Product, categoryIDs, subcategoryIDs []int) error
	Delete(ctx context.Context, tenantID, id int) error
	AdjustStock(ctx context.Context, tenantID, id, delta int) error
	PriceRange(ctx context.Context, tenantID int) (*decimal.Decimal, *decimal.Decimal, error)
	ImagesByProductIDs(ctx context.Context, ids []int) (map[int][]*models.ProductImage, error)
}

type CategoryRepo interface {
	List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Category, error)
	GetByID(ctx context.Context, tenantID, id int) (*models.Category, error)
	GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Category, error)
	GetByIDs(ctx context.Context, ids []int) ([]*models.Category, error)
	SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, tenantID, id int) error
	CountChildren(ctx context.Context, tenantID, id int) (int64, error)
	GetSubcategory(ctx context.Context, tenantID, id int) (*models.Subcategory, error)
	CreateSubcategory(ctx context.Context, s *models.Subcategory) error
	UpdateSubcategory(ctx context.Context, s *models.Subcategory) error
	// DeleteSubcategory also drops the subcategory's product links.
	DeleteSubcategory(ctx context.Context, tenantID, id int) error
}

type BrandRepo interface {
	List(ctx context.Context, tenantID int, activeOnly bool) ([]*models.Brand, error)
	GetByID(ctx context.Context, tenantID, id int) (*models.Brand, error)
	GetBySlug(ctx context.Context, tenantID int, slug string) (*models.Brand, error)
	GetByIDs(ctx context.Context, ids []int) ([]*models.Brand, error)
	SlugExists(ctx context.Context, tenantID int, slug string, excludeID int) (bool, error)
	Create(ctx context.Context, b *models.Brand) error
	Update(ctx context.Context, b *models.Brand) error
	Delete(ctx context.Context, tenantID, id int) error
}

type TaxRateRepo interface {
	GetByID(ctx context.Context, tenantID, id int) (*models.TaxRate, error)
	List(ctx context.Context, tenantID int) ([]*models.TaxRate, error)
	Create(ctx context.Context, t *models.TaxRate) error
	Update(ctx context.Context, t *models.TaxRate) error
	// Delete clears tax_rate_id on the products that used the rate.
	Delete(ctx context.Context, tenantID, id int) error
}

type ExchangeRateRepo interface {
	List(ctx context.Context, tenantID int) ([]*models.ExchangeRate, error)
	GetByID(ctx context.Context, tenantID, id int) (*models.ExchangeRate, error)
	// FindPair returns NotFound when no row exists for from -> to.
	FindPair(ctx context.Context, tenantID int, from, to string) (*models.ExchangeRate, error)
	Create(ctx context.Context, r *models.ExchangeRate) error
	Update(ctx context.Context, r *models.ExchangeRate) error
	Delete(ctx context.Context, tenantID, id int) error
}

type CartRepo interface {
	// FindActive returns the owner's live cart with items, or NotFound.
	FindActive(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error)
	// FindLatest returns the owner's most recent cart in any status, or NotFound.
	FindLatest(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error)
	GetByID(ctx context.Context, tenantID, id int) (*models.Cart, error)
	Create(ctx context.Context, c *models.Cart) error
	// SaveTotals persists the cart row without touching items.
	SaveTotals(ctx context.Context, c *models.Cart) error
	AddItem(ctx context.Context, item *models.CartItem) error
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID int) error
	// MarkConverted flips an Active cart to Converted. A cart that is no
	// longer Active yields CartAlreadyConverted.
	MarkConverted(ctx context.Context, tenantID, cartID int, at time.Time) error
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, tenantID, id int) (*models.Order, error)
	GetByNumber(ctx context.Context, tenantID int, number string) (*models.Order, error)
	List(ctx context.Context, tenantID int, f models.OrderFilter, limit, offset int) ([]*models.Order, int64, error)
	UpdateStatus(ctx context.Context, tenantID, id int, status models.OrderStatus, payment models.PaymentStatus) error
}

type ShippingRepo interface {
	ListMethods(ctx context.Context, tenantID int) ([]*models.ShippingMethod, error)
	GetMethod(ctx context.Context, tenantID, id int) (*models.ShippingMethod, error)
	CreateMethod(ctx context.Context, m *models.ShippingMethod) error
	UpdateMethod(ctx context.Context, m *models.ShippingMethod) error
	ListRoutes(ctx context.Context, tenantID int) ([]*models.ShippingRoute, error)
	GetRoute(ctx context.Context, tenantID, id int) (*models.ShippingRoute, error)
	CreateRoute(ctx context.Context, r *models.ShippingRoute) error
	// ListPrices returns active rows for the pair ordered by id.
	ListPrices(ctx context.Context, tenantID, methodID, routeID int) ([]*models.ShippingMethodRoutePrice, error)
	GetPrice(ctx context.Context, tenantID, id int) (*models.ShippingMethodRoutePrice, error)
	CreatePrice(ctx context.Context, p *models.ShippingMethodRoutePrice) error
	DeletePrice(ctx context.Context, tenantID, id int) error
}

type UserRepo interface {
	GetByID(ctx context.Context, tenantID, id int) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID int, email string) (*models.User, error)
	List(ctx context.Context, tenantID int, roleSlugs []string) ([]*models.User, error)
	// Create and Update replace role membership with u.Roles.
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, tenantID, id int) error
	RolesBySlugs(ctx context.Context, slugs []string) ([]*models.Role, error)
	EnsureRoles(ctx context.Context, roles []*models.Role) error
}

type AuditRepo interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	ListForSubject(ctx context.Context, tenantID int, subjectType string, subjectID int) ([]*models.AuditLog, error)
}

type OutboxRepo interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	ListForAggregate(ctx context.Context, tenantID int, aggregateType string, aggregateID int) ([]*models.OutboxEvent, error)
	// Claim locks due PENDING or FAILED rows and stale PROCESSING rows for
	// owner. Rows already at maxAttempts go DEAD and are not returned.
	Claim(ctx context.Context, owner string, now, staleBefore time.Time, limit, maxAttempts int) ([]*models.OutboxEvent, error)
	MarkSent(ctx context.Context, id int, brokerMessageID string, at time.Time) error
	MarkFailed(ctx context.Context, id int, reason string, nextAttempt time.Time) error
	MarkDead(ctx context.Context, id int, reason string) error
}

// Repository is the gorm-backed Store.
type Repository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repository { return &Repository{DB: db} }

func (r *Repository) Tenants() TenantRepo             { return &tenantRepo{db: r.DB} }
func (r *Repository) Products() ProductRepo           { return &productRepo{db: r.DB} }
func (r *Repository) Categories() CategoryRepo        { return &categoryRepo{db: r.DB} }
func (r *Repository) Brands() BrandRepo               { return &brandRepo{db: r.DB} }
func (r *Repository) TaxRates() TaxRateRepo           { return &taxRateRepo{db: r.DB} }
func (r *Repository) ExchangeRates() ExchangeRateRepo { return &exchangeRateRepo{db: r.DB} }
func (r *Repository) Carts() CartRepo                 { return &cartRepo{db: r.DB} }
func (r *Repository) Orders() OrderRepo               { return &orderRepo{db: r.DB} }
func (r *Repository) Shipping() ShippingRepo          { return &shippingRepo{db: r.DB} }
func (r *Repository) Users() UserRepo                 { return &userRepo{db: r.DB} }
func (r *Repository) Audit() AuditRepo                { return &auditRepo{db: r.DB} }
func (r *Repository) Outbox() OutboxRepo              { return &outboxRepo{db: r.DB} }

func (r *Repository) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{DB: tx})
	})
}

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports a unique index violation from MySQL.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// translate maps driver errors onto domain kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NotFound("%s not found", what)
	case IsDuplicateKey(err):
		return &models.Error{Kind: models.KindConflict, Message: what + " already exists", Err: err}
	default:
		return err
	}
}

func likePattern(s string) string {
	return "%" + s + "%"
}
