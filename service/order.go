package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
	"github.com/nanorand/nanorand"
	"github.com/sirupsen/logrus"
)

const orderNumberAttempts = 3

// OrderService converts carts into orders and manages order status afterwards.
type OrderService struct {
	store  repository.Store
	carts  *CartService
	locker Locker
	now    func() time.Time
	logger *logrus.Logger
}

// PlaceOrder converts the signed-in user's live cart.
func (s *OrderService) PlaceOrder(ctx context.Context, owner models.CartOwner, input *models.PlaceOrderInput) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if owner.UserId == nil {
		return nil, models.Unauthenticated("sign in to place an order")
	}
	cart, err := s.store.Carts().FindActive(ctx, tenantID, owner)
	if models.KindOf(err) == models.KindNotFound {
		return nil, s.noLiveCart(ctx, tenantID, owner)
	}
	if err != nil {
		return nil, err
	}
	return s.ConvertCart(ctx, cart.ID, input)
}

// noLiveCart explains a missing live cart: the last one was already checked
// out, or there was never anything to order.
func (s *OrderService) noLiveCart(ctx context.Context, tenantID int, owner models.CartOwner) error {
	latest, err := s.store.Carts().FindLatest(ctx, tenantID, owner)
	if models.KindOf(err) == models.KindNotFound {
		return models.ErrEmptyCart
	}
	if err != nil {
		return err
	}
	if latest.IsConverted() {
		return models.ErrCartAlreadyConverted
	}
	return models.ErrEmptyCart
}

// ConvertCart snapshots one cart into an order. It is all or nothing: a
// failure at any step leaves no order rows and the cart unconverted.
func (s *OrderService) ConvertCart(ctx context.Context, cartID int, input *models.PlaceOrderInput) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.ConvertCart")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	userID, ok := userFromContext(ctx)
	if !ok {
		return nil, models.Unauthenticated("sign in to place an order")
	}
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.Carts().GetByID(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.UserId == nil || *cart.UserId != userID {
		return nil, models.Forbidden("cart belongs to another customer")
	}

	unlock, err := s.locker.Lock(ctx, cartLockKey(tenantID, models.CartOwner{UserId: &userID}))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var order *models.Order
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		number, err := s.orderNumber()
		if err != nil {
			return nil, err
		}
		err = s.store.WithTx(ctx, func(tx repository.Store) error {
			var txErr error
			order, txErr = s.convert(ctx, tx, tenantID, cartID, user, number, input)
			return txErr
		})
		if err == nil {
			break
		}
		if models.KindOf(err) != models.KindConflict || attempt == orderNumberAttempts {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"tenant_id":    tenantID,
			"cart_id":      cartID,
			"order_number": number,
			"attempt":      attempt,
		}).Warn("order number collision, retrying")
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":    tenantID,
		"order_number": order.OrderNumber,
		"grand_total":  order.GrandTotal.StringFixed(2),
	}).Info("order placed")
	return s.store.Orders().GetByID(ctx, tenantID, order.ID)
}

// convert runs inside the transaction. The cart is re-read there so a
// concurrent conversion is seen as CartAlreadyConverted.
func (s *OrderService) convert(ctx context.Context, tx repository.Store, tenantID, cartID int, user *models.User, number string, input *models.PlaceOrderInput) (*models.Order, error) {
	cart, err := tx.Carts().GetByID(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.IsConverted() {
		return nil, models.ErrCartAlreadyConverted
	}
	if len(cart.Items) == 0 {
		return nil, models.ErrEmptyCart
	}

	// Totals are recomputed from the items so the order never trusts stale
	// denormalized cart columns.
	if err := s.carts.refreshShipping(ctx, tx, cart); err != nil {
		return nil, err
	}
	RecalculateTotals(cart)

	if err := tx.Carts().MarkConverted(ctx, tenantID, cart.ID, s.now()); err != nil {
		return nil, err
	}

	billing := input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = cart.PaymentMethod
	}
	order := &models.Order{
		TenantId:         tenantID,
		CartId:           cart.ID,
		UserId:           user.ID,
		OrderNumber:      number,
		Status:           models.OrderStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentMethod:    paymentMethod,
		CustomerName:     user.Name,
		CustomerEmail:    user.Email,
		ShippingAddress:  input.ShippingAddress,
		BillingAddress:   billing,
		ShippingMethodId: cart.ShippingMethodId,
		ShippingRouteId:  cart.ShippingRouteId,
		Currency:         cart.Currency,
		Subtotal:         cart.Subtotal,
		TaxAmount:        cart.TaxAmount,
		DiscountAmount:   cart.DiscountAmount,
		ShippingAmount:   cart.ShippingAmount,
		GrandTotal:       cart.GrandTotal,
		CustomerNote:     strings.TrimSpace(input.CustomerNote),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, &models.OrderItem{
			ProductId:      item.ProductId,
			Sku:            item.Sku,
			Name:           item.Name,
			Quantity:       item.Quantity,
			Price:          item.Price,
			TaxAmount:      item.TaxAmount,
			DiscountAmount: item.DiscountAmount,
			RowTotal:       item.RowTotal,
			CustomOptions:  item.CustomOptions,
		})
	}
	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if err := tx.Products().AdjustStock(ctx, tenantID, item.ProductId, -item.Quantity); err != nil {
			if models.KindOf(err) == models.KindNotFound {
				continue
			}
			return nil, err
		}
	}

	if err := recordChange(ctx, tx, tenantID, models.EventOrderPlaced, subjectOrder, order.ID, nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

func validatePlaceOrder(input *models.PlaceOrderInput) error {
	if input == nil {
		return models.Validation("shipping address is required")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.BillingAddress != nil {
		if err := utils.ValidateStruct(input.BillingAddress); err != nil {
			return err
		}
	}
	input.ShippingAddress.Country = strings.ToUpper(input.ShippingAddress.Country)
	if input.BillingAddress != nil {
		input.BillingAddress.Country = strings.ToUpper(input.BillingAddress.Country)
	}
	return nil
}

// orderNumber is ORD-YYYYMMDD-HHMMSS-<6 random chars>.
func (s *OrderService) orderNumber() (string, error) {
	suffix, err := nanorand.Gen(6)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102-150405"), strings.ToUpper(suffix)), nil
}

// UpdateOrderStatus changes status and payment status. Cancelled and refunded
// orders are final.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus, payment *models.PaymentStatus) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, models.Validation("unknown order status %q", status)
	}
	if payment != nil && !payment.IsValid() {
		return nil, models.Validation("unknown payment status %q", *payment)
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		before, err := tx.Orders().GetByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if before.Status.IsTerminal() && before.Status != status {
			return models.Validation("order %s is %s and can no longer change status", before.OrderNumber, before.Status)
		}
		nextPayment := before.PaymentStatus
		if payment != nil {
			nextPayment = *payment
		}
		if err := tx.Orders().UpdateStatus(ctx, tenantID, orderID, status, nextPayment); err != nil {
			return err
		}
		after := *before
		after.Status, after.PaymentStatus = status, nextPayment
		after.Items = nil
		before.Items = nil
		return recordChange(ctx, tx, tenantID, models.EventOrderStatusChanged, subjectOrder, orderID,
			statusSnapshot(before), statusSnapshot(&after))
	})
	if err != nil {
		return nil, err
	}
	return s.store.Orders().GetByID(ctx, tenantID, orderID)
}

func statusSnapshot(o *models.Order) map[string]any {
	return map[string]any{
		"order_number":   o.OrderNumber,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
	}
}

func (s *OrderService) AdminOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderPage, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	page, perPage, offset := models.NormalizePage(filter.Page, filter.PerPage)
	orders, total, err := s.store.Orders().List(ctx, tenantID, filter, perPage, offset)
	if err != nil {
		return nil, err
	}
	return &models.OrderPage{Items: orders, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *OrderService) MyOrders(ctx context.Context, page, perPage int) (*models.OrderPage, error) {
	userID, ok := userFromContext(ctx)
	if !ok {
		return nil, models.Unauthenticated("sign in to see your orders")
	}
	return s.AdminOrders(ctx, models.OrderFilter{UserId: &userID, Page: page, PerPage: perPage})
}

// OrderByNumber is visible to its customer and to staff.
func (s *OrderService) OrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	userID, ok := userFromContext(ctx)
	if !ok {
		return nil, models.Unauthenticated("sign in to see your orders")
	}
	order, err := s.store.Orders().GetByNumber(ctx, tenantID, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	if order.UserId != userID && !isStaff(ctx) {
		return nil, models.NotFound("order %s not found", number)
	}
	return order, nil
}
