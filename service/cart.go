package service

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

// CartService is the cart engine. Every mutation runs under the owner's
// lock and inside one transaction, and ends with RecalculateTotals.
type CartService struct {
	store    repository.Store
	locker   Locker
	shipping *ShippingService
}

// OwnerFromContext picks the signed-in user, else the storefront session.
func OwnerFromContext(ctx context.Context) (models.CartOwner, error) {
	if userID, ok := appctx.UserId(ctx); ok {
		return models.CartOwner{UserId: &userID}, nil
	}
	if session, ok := appctx.GetString(ctx, appctx.ContextKeyCartSession); ok && strings.TrimSpace(session) != "" {
		return models.CartOwner{SessionId: strings.TrimSpace(session)}, nil
	}
	return models.CartOwner{}, models.Unauthenticated("sign in or send X-Cart-Session to use a cart")
}

// GetCart returns the live cart, or an unsaved empty one when none exists yet.
func (s *CartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.Carts().FindActive(ctx, tenantID, owner)
	if err == nil {
		return cart, nil
	}
	if models.KindOf(err) != models.KindNotFound {
		return nil, err
	}
	return s.newCart(ctx, tenantID, owner)
}

func (s *CartService) GetCartByID(ctx context.Context, id int) (*models.Cart, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Carts().GetByID(ctx, tenantID, id)
}

func (s *CartService) newCart(ctx context.Context, tenantID int, owner models.CartOwner) (*models.Cart, error) {
	tenant, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	cart := &models.Cart{
		TenantId: tenantID,
		UserId:   owner.UserId,
		Status:   models.CartStatusActive,
		Currency: tenant.BaseCurrency,
		Items:    []*models.CartItem{},
	}
	if owner.UserId == nil {
		session := owner.SessionId
		cart.SessionId = &session
	}
	return cart, nil
}

// mutate locks the owner, loads or creates the live cart inside a
// transaction, applies fn, recomputes and saves.
func (s *CartService) mutate(ctx context.Context, owner models.CartOwner, create bool, fn func(tx repository.Store, cart *models.Cart) error) (*models.Cart, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if owner.IsZero() {
		return nil, models.Unauthenticated("cart owner is required")
	}
	unlock, err := s.locker.Lock(ctx, cartLockKey(tenantID, owner))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var cartID int
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().FindActive(ctx, tenantID, owner)
		if models.KindOf(err) == models.KindNotFound {
			if !create {
				return models.NotFound("cart not found")
			}
			if cart, err = s.newCart(ctx, tenantID, owner); err != nil {
				return err
			}
			err = tx.Carts().Create(ctx, cart)
		}
		if err != nil {
			return err
		}
		cartID = cart.ID
		return s.apply(ctx, tx, cart, fn)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Carts().GetByID(ctx, tenantID, cartID)
}

// apply is the single place that refuses to touch a converted cart.
func (s *CartService) apply(ctx context.Context, tx repository.Store, cart *models.Cart, fn func(tx repository.Store, cart *models.Cart) error) error {
	if cart.IsConverted() {
		return models.ErrCartAlreadyConverted
	}
	if err := fn(tx, cart); err != nil {
		return err
	}
	if err := s.refreshShipping(ctx, tx, cart); err != nil {
		return err
	}
	RecalculateTotals(cart)
	return tx.Carts().SaveTotals(ctx, cart)
}

// AddItem snapshots the product into the cart or increments an existing line
// with the same product and options.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, productID, quantity int, options string) (*models.Cart, error) {
	ctx, span := tracer.Start(ctx, "CartService.AddItem")
	defer span.End()

	if quantity <= 0 {
		return nil, models.Validation("quantity must be greater than zero")
	}
	return s.mutate(ctx, owner, true, func(tx repository.Store, cart *models.Cart) error {
		return s.addItem(ctx, tx, cart, productID, quantity, options)
	})
}

func (s *CartService) addItem(ctx context.Context, tx repository.Store, cart *models.Cart, productID, quantity int, options string) error {
	product, err := s.productInScope(ctx, tx, cart.TenantId, productID)
	if err != nil {
		return err
	}
	if !product.Active() {
		return models.Validation("product %s is not available", product.Sku)
	}

	for _, item := range cart.Items {
		if item.ProductId != productID || item.CustomOptions != options {
			continue
		}
		if item.Quantity+quantity > product.StockQuantity {
			return models.Validation("only %d of %s in stock", product.StockQuantity, product.Sku)
		}
		item.Quantity += quantity
		computeItem(item)
		return tx.Carts().SaveItem(ctx, item)
	}

	if quantity > product.StockQuantity {
		return models.Validation("only %d of %s in stock", product.StockQuantity, product.Sku)
	}
	taxRate := decimal.Zero
	if product.TaxRateId != nil {
		rate, err := tx.TaxRates().GetByID(ctx, cart.TenantId, *product.TaxRateId)
		if err != nil && models.KindOf(err) != models.KindNotFound {
			return err
		}
		if rate != nil && (rate.IsActive == nil || *rate.IsActive) {
			taxRate = rate.Rate
		}
	}
	item := &models.CartItem{
		CartId:        cart.ID,
		ProductId:     product.ID,
		Sku:           product.Sku,
		Name:          product.Name,
		Quantity:      quantity,
		Price:         product.Price,
		UnitDiscount:  product.UnitDiscount(),
		TaxRate:       taxRate,
		WeightKg:      product.WeightKg,
		VolumeCbm:     product.VolumeCbm,
		CustomOptions: options,
	}
	computeItem(item)
	if err := tx.Carts().AddItem(ctx, item); err != nil {
		return err
	}
	cart.Items = append(cart.Items, item)
	return nil
}

// productInScope tells a product of another tenant apart from a missing one.
func (s *CartService) productInScope(ctx context.Context, tx repository.Store, tenantID, productID int) (*models.Product, error) {
	product, err := tx.Products().GetByID(ctx, tenantID, productID)
	if err == nil {
		return product, nil
	}
	if models.KindOf(err) != models.KindNotFound {
		return nil, err
	}
	if other, anyErr := tx.Products().GetByIDAnyTenant(ctx, productID); anyErr == nil && other.TenantId != tenantID {
		return nil, models.OutOfScope("product %d does not belong to this store", productID)
	}
	return nil, err
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, models.Validation("quantity must not be negative")
	}
	return s.mutate(ctx, owner, false, func(tx repository.Store, cart *models.Cart) error {
		item := findItem(cart, itemID)
		if item == nil {
			return models.NotFound("cart item not found")
		}
		if quantity == 0 {
			return removeItem(ctx, tx, cart, itemID)
		}
		product, err := tx.Products().GetByID(ctx, cart.TenantId, item.ProductId)
		if err != nil && models.KindOf(err) != models.KindNotFound {
			return err
		}
		if product != nil && quantity > product.StockQuantity {
			return models.Validation("only %d of %s in stock", product.StockQuantity, product.Sku)
		}
		item.Quantity = quantity
		computeItem(item)
		return tx.Carts().SaveItem(ctx, item)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int) (*models.Cart, error) {
	return s.mutate(ctx, owner, false, func(tx repository.Store, cart *models.Cart) error {
		if findItem(cart, itemID) == nil {
			return models.NotFound("cart item not found")
		}
		return removeItem(ctx, tx, cart, itemID)
	})
}

func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return s.mutate(ctx, owner, false, func(tx repository.Store, cart *models.Cart) error {
		for _, item := range append([]*models.CartItem(nil), cart.Items...) {
			if err := removeItem(ctx, tx, cart, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetShipping selects a method and route. The quote must succeed.
func (s *CartService) SetShipping(ctx context.Context, owner models.CartOwner, methodID, routeID int) (*models.Cart, error) {
	return s.mutate(ctx, owner, true, func(tx repository.Store, cart *models.Cart) error {
		cart.ShippingMethodId = &methodID
		cart.ShippingRouteId = &routeID
		_, err := s.quoteCart(ctx, tx, cart)
		return err
	})
}

func (s *CartService) SetPaymentMethod(ctx context.Context, owner models.CartOwner, method string) (*models.Cart, error) {
	method = strings.TrimSpace(method)
	if method == "" || len(method) > 50 {
		return nil, models.Validation("payment method must be 1 to 50 characters")
	}
	return s.mutate(ctx, owner, true, func(tx repository.Store, cart *models.Cart) error {
		cart.PaymentMethod = method
		return nil
	})
}

// refreshShipping re-quotes the selected method and route after item
// changes. A selection that no longer has a rate is cleared.
func (s *CartService) refreshShipping(ctx context.Context, tx repository.Store, cart *models.Cart) error {
	if cart.ShippingMethodId == nil || cart.ShippingRouteId == nil {
		cart.ShippingAmount = decimal.Zero
		return nil
	}
	quote, err := s.quoteCart(ctx, tx, cart)
	if models.KindOf(err) == models.KindNoShippingRate {
		cart.ShippingMethodId, cart.ShippingRouteId = nil, nil
		cart.ShippingAmount = decimal.Zero
		return nil
	}
	if err != nil {
		return err
	}
	cart.ShippingAmount = quote.Total
	return nil
}

func (s *CartService) quoteCart(ctx context.Context, tx repository.Store, cart *models.Cart) (*models.ShipmentQuote, error) {
	weight, volume, declared := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range cart.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		weight = weight.Add(item.WeightKg.Mul(qty))
		volume = volume.Add(item.VolumeCbm.Mul(qty))
		declared = declared.Add(item.RowTotal.Sub(item.DiscountAmount))
	}
	return s.shipping.quote(ctx, tx, cart.TenantId, models.QuoteInput{
		ShippingMethodId: *cart.ShippingMethodId,
		ShippingRouteId:  *cart.ShippingRouteId,
		WeightKg:         weight,
		VolumeCbm:        volume,
		DeclaredValue:    declared,
	})
}

func findItem(cart *models.Cart, itemID int) *models.CartItem {
	for _, item := range cart.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func removeItem(ctx context.Context, tx repository.Store, cart *models.Cart, itemID int) error {
	if err := tx.Carts().DeleteItem(ctx, cart.ID, itemID); err != nil {
		return err
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

// computeItem derives a line's money fields from its snapshot.
func computeItem(item *models.CartItem) {
	qty := decimal.NewFromInt(int64(item.Quantity))
	item.RowTotal = utils.RoundMoney(item.Price.Mul(qty))
	item.DiscountAmount = utils.RoundMoney(item.UnitDiscount.Mul(qty))
	item.TaxAmount = utils.RoundMoney(utils.PercentOf(item.RowTotal.Sub(item.DiscountAmount), item.TaxRate))
}

// RecalculateTotals derives the cart totals from its items and shipping amount.
// grand_total = subtotal + tax + shipping - discount, always.
func RecalculateTotals(cart *models.Cart) {
	subtotal, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.RowTotal)
		tax = tax.Add(item.TaxAmount)
		discount = discount.Add(item.DiscountAmount)
	}
	cart.Subtotal = utils.RoundMoney(subtotal)
	cart.TaxAmount = utils.RoundMoney(tax)
	cart.DiscountAmount = utils.RoundMoney(discount)
	cart.ShippingAmount = utils.RoundMoney(cart.ShippingAmount)
	cart.GrandTotal = cart.Subtotal.Add(cart.TaxAmount).Add(cart.ShippingAmount).Sub(cart.DiscountAmount)
}
