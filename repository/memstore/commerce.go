package memstore

import (
	"context"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
)

type exchangeRateRepo struct{ s *Store }

func (r exchangeRateRepo) List(ctx context.Context, tenantID int) ([]*models.ExchangeRate, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.ExchangeRate
	for _, id := range sortedIDs(r.s.data.rates) {
		if rate := r.s.data.rates[id]; rate.TenantId == tenantID {
			out = append(out, &rate)
		}
	}
	return out, nil
}

func (r exchangeRateRepo) GetByID(ctx context.Context, tenantID, id int) (*models.ExchangeRate, error) {
	r.s.lock("")
	defer r.s.unlock()
	rate, ok := r.s.data.rates[id]
	if !ok || rate.TenantId != tenantID {
		return nil, models.NotFound("exchange rate not found")
	}
	return &rate, nil
}

func (r exchangeRateRepo) FindPair(ctx context.Context, tenantID int, from, to string) (*models.ExchangeRate, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, rate := range r.s.data.rates {
		if rate.TenantId == tenantID && rate.CodeFrom == from && rate.CodeTo == to {
			return &rate, nil
		}
	}
	return nil, models.NotFound("exchange rate not found")
}

func (r exchangeRateRepo) pairTaken(rate *models.ExchangeRate) bool {
	for _, o := range r.s.data.rates {
		if o.TenantId == rate.TenantId && o.CodeFrom == rate.CodeFrom && o.CodeTo == rate.CodeTo && o.ID != rate.ID {
			return true
		}
	}
	return false
}

func (r exchangeRateRepo) Create(ctx context.Context, rate *models.ExchangeRate) error {
	err := r.s.lock("exchange_rates.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if r.pairTaken(rate) {
		return conflict("exchange rate pair")
	}
	rate.ID = r.s.data.next("exchange_rates")
	r.s.stamp(&rate.CreatedAt, &rate.UpdatedAt)
	r.s.data.rates[rate.ID] = *rate
	return nil
}

func (r exchangeRateRepo) Update(ctx context.Context, rate *models.ExchangeRate) error {
	err := r.s.lock("exchange_rates.update")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if old, ok := r.s.data.rates[rate.ID]; !ok || old.TenantId != rate.TenantId {
		return models.NotFound("exchange rate not found")
	}
	if r.pairTaken(rate) {
		return conflict("exchange rate pair")
	}
	r.s.stamp(nil, &rate.UpdatedAt)
	r.s.data.rates[rate.ID] = *rate
	return nil
}

func (r exchangeRateRepo) Delete(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("exchange_rates.delete")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if rate, ok := r.s.data.rates[id]; !ok || rate.TenantId != tenantID {
		return models.NotFound("exchange rate not found")
	}
	delete(r.s.data.rates, id)
	return nil
}

type cartRepo struct{ s *Store }

// withItems attaches items ordered by id. Caller holds the lock.
func (r cartRepo) withItems(c *models.Cart) {
	c.Items = nil
	for _, id := range sortedIDs(r.s.data.cartItems) {
		if it := r.s.data.cartItems[id]; it.CartId == c.ID {
			c.Items = append(c.Items, &it)
		}
	}
}

func (r cartRepo) FindActive(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error) {
	return r.find(tenantID, owner, true)
}

func (r cartRepo) FindLatest(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error) {
	return r.find(tenantID, owner, false)
}

func (r cartRepo) find(tenantID int, owner models.CartOwner, activeOnly bool) (*models.Cart, error) {
	r.s.lock("")
	defer r.s.unlock()
	ids := sortedIDs(r.s.data.carts)
	for i := len(ids) - 1; i >= 0; i-- {
		c := r.s.data.carts[ids[i]]
		if c.TenantId != tenantID || (activeOnly && c.Status != models.CartStatusActive) {
			continue
		}
		if owner.UserId != nil {
			if c.UserId == nil || *c.UserId != *owner.UserId {
				continue
			}
		} else if c.UserId != nil || c.SessionId == nil || *c.SessionId != owner.SessionId {
			continue
		}
		r.withItems(&c)
		return &c, nil
	}
	return nil, models.NotFound("cart not found")
}

func (r cartRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Cart, error) {
	r.s.lock("")
	defer r.s.unlock()
	c, ok := r.s.data.carts[id]
	if !ok || c.TenantId != tenantID {
		return nil, models.NotFound("cart not found")
	}
	r.withItems(&c)
	return &c, nil
}

func (r cartRepo) Create(ctx context.Context, c *models.Cart) error {
	err := r.s.lock("carts.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = models.CartStatusActive
	}
	c.ID = r.s.data.next("carts")
	r.s.stamp(&c.CreatedAt, &c.UpdatedAt)
	stored := *c
	stored.Items = nil
	r.s.data.carts[c.ID] = stored
	return nil
}

func (r cartRepo) SaveTotals(ctx context.Context, c *models.Cart) error {
	err := r.s.lock("carts.save")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.data.carts[c.ID]; !ok {
		return models.NotFound("cart not found")
	}
	r.s.stamp(nil, &c.UpdatedAt)
	stored := *c
	stored.Items = nil
	r.s.data.carts[c.ID] = stored
	return nil
}

func (r cartRepo) AddItem(ctx context.Context, item *models.CartItem) error {
	err := r.s.lock("carts.add_item")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	item.ID = r.s.data.next("cart_items")
	r.s.stamp(&item.CreatedAt, &item.UpdatedAt)
	r.s.data.cartItems[item.ID] = *item
	return nil
}

func (r cartRepo) SaveItem(ctx context.Context, item *models.CartItem) error {
	err := r.s.lock("carts.save_item")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.data.cartItems[item.ID]; !ok {
		return models.NotFound("cart item not found")
	}
	r.s.stamp(nil, &item.UpdatedAt)
	r.s.data.cartItems[item.ID] = *item
	return nil
}

func (r cartRepo) DeleteItem(ctx context.Context, cartID, itemID int) error {
	err := r.s.lock("carts.delete_item")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	it, ok := r.s.data.cartItems[itemID]
	if !ok || it.CartId != cartID {
		return models.NotFound("cart item not found")
	}
	delete(r.s.data.cartItems, itemID)
	return nil
}

func (r cartRepo) MarkConverted(ctx context.Context, tenantID, cartID int, at time.Time) error {
	err := r.s.lock("carts.mark_converted")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	c, ok := r.s.data.carts[cartID]
	if !ok || c.TenantId != tenantID || c.Status != models.CartStatusActive {
		return models.ErrCartAlreadyConverted
	}
	c.Status = models.CartStatusConverted
	c.ConvertedAt = &at
	r.s.data.carts[cartID] = c
	return nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) withItems(o *models.Order) {
	o.Items = nil
	for _, id := range sortedIDs(r.s.data.orderItems) {
		if it := r.s.data.orderItems[id]; it.OrderId == o.ID {
			o.Items = append(o.Items, &it)
		}
	}
}

func (r orderRepo) Create(ctx context.Context, o *models.Order) error {
	err := r.s.lock("orders.create")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, other := range r.s.data.orders {
		if other.OrderNumber == o.OrderNumber || other.CartId == o.CartId {
			return conflict("order")
		}
	}
	o.ID = r.s.data.next("orders")
	r.s.stamp(&o.CreatedAt, &o.UpdatedAt)
	for _, it := range o.Items {
		it.ID = r.s.data.next("order_items")
		it.OrderId = o.ID
		r.s.stamp(&it.CreatedAt, nil)
		r.s.data.orderItems[it.ID] = *it
	}
	stored := *o
	stored.Items = nil
	r.s.data.orders[o.ID] = stored
	return nil
}

func (r orderRepo) GetByID(ctx context.Context, tenantID, id int) (*models.Order, error) {
	r.s.lock("")
	defer r.s.unlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.TenantId != tenantID {
		return nil, models.NotFound("order not found")
	}
	r.withItems(&o)
	return &o, nil
}

func (r orderRepo) GetByNumber(ctx context.Context, tenantID int, number string) (*models.Order, error) {
	r.s.lock("")
	defer r.s.unlock()
	for _, o := range r.s.data.orders {
		if o.TenantId == tenantID && o.OrderNumber == number {
			r.withItems(&o)
			return &o, nil
		}
	}
	return nil, models.NotFound("order not found")
}

func (r orderRepo) List(ctx context.Context, tenantID int, f models.OrderFilter, limit, offset int) ([]*models.Order, int64, error) {
	r.s.lock("")
	defer r.s.unlock()
	ids := sortedIDs(r.s.data.orders)
	var out []*models.Order
	for i := len(ids) - 1; i >= 0; i-- {
		o := r.s.data.orders[ids[i]]
		if o.TenantId != tenantID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.PaymentStatus != nil && o.PaymentStatus != *f.PaymentStatus {
			continue
		}
		if f.UserId != nil && o.UserId != *f.UserId {
			continue
		}
		if f.Search != "" && !containsFold(o.OrderNumber, f.Search) && !containsFold(o.CustomerName, f.Search) && !containsFold(o.CustomerEmail, f.Search) {
			continue
		}
		r.withItems(&o)
		out = append(out, &o)
	}
	total := int64(len(out))
	if limit > 0 {
		if offset >= len(out) {
			return []*models.Order{}, total, nil
		}
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, total, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, tenantID, id int, status models.OrderStatus, payment models.PaymentStatus) error {
	err := r.s.lock("orders.update_status")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	o, ok := r.s.data.orders[id]
	if !ok || o.TenantId != tenantID {
		return models.NotFound("order not found")
	}
	o.Status = status
	o.PaymentStatus = payment
	r.s.stamp(nil, &o.UpdatedAt)
	r.s.data.orders[id] = o
	return nil
}

type shippingRepo struct{ s *Store }

func (r shippingRepo) ListMethods(ctx context.Context, tenantID int) ([]*models.ShippingMethod, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.ShippingMethod
	for _, id := range sortedIDs(r.s.data.methods) {
		if m := r.s.data.methods[id]; m.TenantId == tenantID {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r shippingRepo) GetMethod(ctx context.Context, tenantID, id int) (*models.ShippingMethod, error) {
	r.s.lock("")
	defer r.s.unlock()
	m, ok := r.s.data.methods[id]
	if !ok || m.TenantId != tenantID {
		return nil, models.NotFound("shipping method not found")
	}
	return &m, nil
}

func (r shippingRepo) CreateMethod(ctx context.Context, m *models.ShippingMethod) error {
	err := r.s.lock("shipping.create_method")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if m.IsActive == nil {
		m.IsActive = ptr(true)
	}
	m.ID = r.s.data.next("shipping_methods")
	r.s.stamp(&m.CreatedAt, &m.UpdatedAt)
	r.s.data.methods[m.ID] = *m
	return nil
}

func (r shippingRepo) UpdateMethod(ctx context.Context, m *models.ShippingMethod) error {
	err := r.s.lock("shipping.update_method")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if old, ok := r.s.data.methods[m.ID]; !ok || old.TenantId != m.TenantId {
		return models.NotFound("shipping method not found")
	}
	r.s.stamp(nil, &m.UpdatedAt)
	r.s.data.methods[m.ID] = *m
	return nil
}

func (r shippingRepo) ListRoutes(ctx context.Context, tenantID int) ([]*models.ShippingRoute, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.ShippingRoute
	for _, id := range sortedIDs(r.s.data.routes) {
		if route := r.s.data.routes[id]; route.TenantId == tenantID {
			out = append(out, &route)
		}
	}
	return out, nil
}

func (r shippingRepo) GetRoute(ctx context.Context, tenantID, id int) (*models.ShippingRoute, error) {
	r.s.lock("")
	defer r.s.unlock()
	route, ok := r.s.data.routes[id]
	if !ok || route.TenantId != tenantID {
		return nil, models.NotFound("shipping route not found")
	}
	return &route, nil
}

func (r shippingRepo) CreateRoute(ctx context.Context, route *models.ShippingRoute) error {
	err := r.s.lock("shipping.create_route")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if route.IsActive == nil {
		route.IsActive = ptr(true)
	}
	route.ID = r.s.data.next("shipping_routes")
	r.s.stamp(&route.CreatedAt, &route.UpdatedAt)
	r.s.data.routes[route.ID] = *route
	return nil
}

func (r shippingRepo) ListPrices(ctx context.Context, tenantID, methodID, routeID int) ([]*models.ShippingMethodRoutePrice, error) {
	r.s.lock("")
	defer r.s.unlock()
	var out []*models.ShippingMethodRoutePrice
	for _, id := range sortedIDs(r.s.data.prices) {
		p := r.s.data.prices[id]
		if p.TenantId != tenantID || p.ShippingMethodId != methodID || p.ShippingRouteId != routeID {
			continue
		}
		if p.IsActive != nil && !*p.IsActive {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

func (r shippingRepo) GetPrice(ctx context.Context, tenantID, id int) (*models.ShippingMethodRoutePrice, error) {
	r.s.lock("")
	defer r.s.unlock()
	p, ok := r.s.data.prices[id]
	if !ok || p.TenantId != tenantID {
		return nil, models.NotFound("shipping price not found")
	}
	return &p, nil
}

func (r shippingRepo) CreatePrice(ctx context.Context, p *models.ShippingMethodRoutePrice) error {
	err := r.s.lock("shipping.create_price")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	for _, o := range r.s.data.prices {
		if o.TenantId != p.TenantId || o.ShippingMethodId != p.ShippingMethodId || o.ShippingRouteId != p.ShippingRouteId {
			continue
		}
		if !o.MinWeightKg.Equal(p.MinWeightKg) {
			continue
		}
		if o.MaxWeightKg == nil && p.MaxWeightKg == nil ||
			o.MaxWeightKg != nil && p.MaxWeightKg != nil && o.MaxWeightKg.Equal(*p.MaxWeightKg) {
			return conflict("shipping price band")
		}
	}
	if p.IsActive == nil {
		p.IsActive = ptr(true)
	}
	p.ID = r.s.data.next("shipping_prices")
	r.s.stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.prices[p.ID] = *p
	return nil
}

func (r shippingRepo) DeletePrice(ctx context.Context, tenantID, id int) error {
	err := r.s.lock("shipping.delete_price")
	defer r.s.unlock()
	if err != nil {
		return err
	}
	if p, ok := r.s.data.prices[id]; !ok || p.TenantId != tenantID {
		return models.NotFound("shipping price not found")
	}
	delete(r.s.data.prices, id)
	return nil
}
