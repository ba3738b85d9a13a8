// Package memstore is an in-memory repository.Store for tests. Writes inside
// WithTx are discarded when the callback fails, so transactional behaviour
// can be asserted without MySQL.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
)

type dataset struct {
	tenants       map[int]models.Tenant
	products      map[int]models.Product
	productCats   map[int][]int
	productSubs   map[int][]int
	images        map[int]models.ProductImage
	categories    map[int]models.Category
	subcategories map[int]models.Subcategory
	brands        map[int]models.Brand
	taxRates      map[int]models.TaxRate
	rates         map[int]models.ExchangeRate
	carts         map[int]models.Cart
	cartItems     map[int]models.CartItem
	orders        map[int]models.Order
	orderItems    map[int]models.OrderItem
	methods       map[int]models.ShippingMethod
	routes        map[int]models.ShippingRoute
	prices        map[int]models.ShippingMethodRoutePrice
	users         map[int]models.User
	userRoles     map[int][]int
	roles         map[int]models.Role
	audit         []models.AuditLog
	outbox        []models.OutboxEvent
	seq           map[string]int
}

func newDataset() *dataset {
	return &dataset{
		tenants:       map[int]models.Tenant{},
		products:      map[int]models.Product{},
		productCats:   map[int][]int{},
		productSubs:   map[int][]int{},
		images:        map[int]models.ProductImage{},
		categories:    map[int]models.Category{},
		subcategories: map[int]models.Subcategory{},
		brands:        map[int]models.Brand{},
		taxRates:      map[int]models.TaxRate{},
		rates:         map[int]models.ExchangeRate{},
		carts:         map[int]models.Cart{},
		cartItems:     map[int]models.CartItem{},
		orders:        map[int]models.Order{},
		orderItems:    map[int]models.OrderItem{},
		methods:       map[int]models.ShippingMethod{},
		routes:        map[int]models.ShippingRoute{},
		prices:        map[int]models.ShippingMethodRoutePrice{},
		users:         map[int]models.User{},
		userRoles:     map[int][]int{},
		roles:         map[int]models.Role{},
		seq:           map[string]int{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyLinks(m map[int][]int) map[int][]int {
	out := make(map[int][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func (d *dataset) clone() *dataset {
	return &dataset{
		tenants:       copyMap(d.tenants),
		products:      copyMap(d.products),
		productCats:   copyLinks(d.productCats),
		productSubs:   copyLinks(d.productSubs),
		images:        copyMap(d.images),
		categories:    copyMap(d.categories),
		subcategories: copyMap(d.subcategories),
		brands:        copyMap(d.brands),
		taxRates:      copyMap(d.taxRates),
		rates:         copyMap(d.rates),
		carts:         copyMap(d.carts),
		cartItems:     copyMap(d.cartItems),
		orders:        copyMap(d.orders),
		orderItems:    copyMap(d.orderItems),
		methods:       copyMap(d.methods),
		routes:        copyMap(d.routes),
		prices:        copyMap(d.prices),
		users:         copyMap(d.users),
		userRoles:     copyLinks(d.userRoles),
		roles:         copyMap(d.roles),
		audit:         append([]models.AuditLog(nil), d.audit...),
		outbox:        append([]models.OutboxEvent(nil), d.outbox...),
		seq:           copyMap(d.seq),
	}
}

func (d *dataset) next(table string) int {
	d.seq[table]++
	return d.seq[table]
}

// Store implements repository.Store over plain maps.
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	data   *dataset
	failOn map[string]error
	now    func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newDataset(), failOn: map[string]error{}, now: time.Now}
}

// FailOn makes the named write operation (for example "orders.create" or
// "audit.append") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOn, op)
		return
	}
	s.failOn[op] = err
}

// lock takes the data mutex and reports any injected failure for op.
func (s *Store) lock(op string) error {
	s.mu.Lock()
	if op == "" {
		return nil
	}
	return s.failOn[op]
}

func (s *Store) unlock() { s.mu.Unlock() }

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func (s *Store) Tenants() repository.TenantRepo             { return tenantRepo{s} }
func (s *Store) Products() repository.ProductRepo           { return productRepo{s} }
func (s *Store) Categories() repository.CategoryRepo        { return categoryRepo{s} }
func (s *Store) Brands() repository.BrandRepo               { return brandRepo{s} }
func (s *Store) TaxRates() repository.TaxRateRepo           { return taxRateRepo{s} }
func (s *Store) ExchangeRates() repository.ExchangeRateRepo { return exchangeRateRepo{s} }
func (s *Store) Carts() repository.CartRepo                 { return cartRepo{s} }
func (s *Store) Orders() repository.OrderRepo               { return orderRepo{s} }
func (s *Store) Shipping() repository.ShippingRepo          { return shippingRepo{s} }
func (s *Store) Users() repository.UserRepo                 { return userRepo{s} }
func (s *Store) Audit() repository.AuditRepo                { return auditRepo{s} }
func (s *Store) Outbox() repository.OutboxRepo              { return outboxRepo{s} }

// WithTx snapshots the dataset and restores it when fn fails. Transactions
// are serialized; nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(txStore{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

type txStore struct {
	*Store
}

func (t txStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

// Counts is a quick view of row counts used by assertions.
type Counts struct {
	Orders     int
	OrderItems int
	Carts      int
	CartItems  int
	AuditLogs  int
	Outbox     int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Orders:     len(s.data.orders),
		OrderItems: len(s.data.orderItems),
		Carts:      len(s.data.carts),
		CartItems:  len(s.data.cartItems),
		AuditLogs:  len(s.data.audit),
		Outbox:     len(s.data.outbox),
	}
}

func conflict(what string) error {
	return &models.Error{Kind: models.KindConflict, Message: what + " already exists"}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func ptr[T any](v T) *T { return &v }
