package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderWorkedExample(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	tax := f.taxRate(t, "9")
	p := f.product(t, "Widget", "100.00", 10, &tax.ID)
	method, route := f.flatShipping(t, "10.00")

	_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 2, "")
	require.NoError(t, err)
	cart, err := f.svc.Carts.SetShipping(ctx, ownerOf(user), method.ID, route.ID)
	require.NoError(t, err)
	assertMoney(t, "200.00", cart.Subtotal, "cart subtotal")
	assertMoney(t, "18.00", cart.TaxAmount, "cart tax")
	assertMoney(t, "10.00", cart.ShippingAmount, "cart shipping")
	assertMoney(t, "228.00", cart.GrandTotal, "cart grand_total")

	order, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{
		ShippingAddress: address(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	found, err := f.svc.Orders.OrderByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assertMoney(t, "228.00", found.GrandTotal, "order grand_total")
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assertMoney(t, "200.00", found.Items[0].RowTotal, "row_total")
	assert.Equal(t, "US", found.ShippingAddress.Country)
	assert.Equal(t, found.ShippingAddress, found.BillingAddress, "billing defaults to shipping")
	assert.Equal(t, models.OrderStatusPending, found.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260314-093000-.{6}$`), found.OrderNumber)

	stock, err := f.svc.Catalog.ProductByID(f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stock.StockQuantity)
}

func TestPlaceOrderCopiesEveryItemAndConvertsCartOnce(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	a := f.product(t, "Alpha", "3.10", 10, nil)
	b := f.product(t, "Beta", "7.25", 10, nil)
	c := f.product(t, "Gamma", "12", 10, nil)
	for i, p := range []*models.Product{a, b, c} {
		_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, i+1, "")
		require.NoError(t, err)
	}
	cart, err := f.svc.Carts.GetCart(ctx, ownerOf(user))
	require.NoError(t, err)

	order, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	require.NoError(t, err)

	require.Len(t, order.Items, len(cart.Items))
	for i, item := range cart.Items {
		assert.Equal(t, item.Sku, order.Items[i].Sku)
		assert.Equal(t, item.Quantity, order.Items[i].Quantity)
		assert.True(t, item.Price.Equal(order.Items[i].Price))
	}

	converted, err := f.svc.Carts.GetCartByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.NotNil(t, converted.ConvertedAt)
	assert.True(t, converted.IsConverted())

	_, err = f.svc.Orders.ConvertCart(ctx, cart.ID, &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrCartAlreadyConverted), "got %v", err)
	assert.Equal(t, 1, f.store.Counts().Orders)
}

func TestPlaceOrderOnEmptyCartWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Solo", "5", 5, nil)

	_, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrEmptyCart), "no cart at all: %v", err)

	cart, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)
	_, err = f.svc.Carts.RemoveItem(ctx, ownerOf(user), cart.Items[0].ID)
	require.NoError(t, err)
	before := f.store.Counts()

	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrEmptyCart), "emptied cart: %v", err)

	assert.Equal(t, before, f.store.Counts())
	still, err := f.svc.Carts.GetCartByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, still.IsConverted())
}

func TestPlaceOrderSkipsStockForDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	kept := f.product(t, "Kept", "10", 5, nil)
	gone := f.product(t, "Gone", "4", 5, nil)
	for _, p := range []*models.Product{kept, gone} {
		_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 2, "")
		require.NoError(t, err)
	}
	_, err := f.svc.Catalog.DeleteProduct(f.admin, gone.ID)
	require.NoError(t, err)

	order, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Gone", order.Items[1].Name)
	assertMoney(t, "28.00", order.GrandTotal, "grand_total")

	stock, err := f.svc.Catalog.ProductByID(f.admin, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.StockQuantity)
}

func TestPlaceOrderTwiceReportsConvertedCart(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Once", "6", 5, nil)
	_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)

	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	require.NoError(t, err)
	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrCartAlreadyConverted), "got %v", err)
	assert.Equal(t, 1, f.store.Counts().Orders)

	// a fresh cart after checkout is simply empty
	_, err = f.svc.Carts.GetCart(ctx, ownerOf(user))
	require.NoError(t, err)
	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrEmptyCart), "got %v", err)
}

func TestAdjustStockKinds(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Few", "1", 2, nil)

	err := f.store.Products().AdjustStock(context.Background(), f.tenant.ID, p.ID, -3)
	assert.True(t, errors.Is(err, models.ErrValidation), "got %v", err)
	err = f.store.Products().AdjustStock(context.Background(), f.tenant.ID, p.ID+100, -1)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
}

func TestPlaceOrderFailureMidTransactionRollsBack(t *testing.T) {
	for _, op := range []string{"orders.create", "products.adjust_stock", "audit.append", "outbox.enqueue"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			ctx, user := f.customer(t)
			p := f.product(t, "Fragile", "40", 3, nil)
			cart, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 2, "")
			require.NoError(t, err)
			before := f.store.Counts()

			f.store.FailOn(op, errors.New("disk on fire"))
			_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
			require.Error(t, err)
			f.store.FailOn(op, nil)

			after := f.store.Counts()
			assert.Equal(t, before, after)
			assert.Zero(t, after.Orders)
			assert.Zero(t, after.OrderItems)

			still, err := f.svc.Carts.GetCartByID(ctx, cart.ID)
			require.NoError(t, err)
			assert.False(t, still.IsConverted())
			product, err := f.svc.Catalog.ProductByID(f.admin, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, product.StockQuantity)

			// the same cart still converts once the fault is gone
			_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
			require.NoError(t, err)
		})
	}
}

func TestPlaceOrderGivesUpAfterRepeatedNumberCollisions(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Unlucky", "1", 5, nil)
	_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)

	f.store.FailOn("orders.create", models.Conflict("order already exists"))
	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrConflict), "got %v", err)
	assert.Zero(t, f.store.Counts().Orders)
}

func TestPlaceOrderRequiresSignedInOwner(t *testing.T) {
	f := newFixture(t)
	guest := models.CartOwner{SessionId: "anon"}
	_, err := f.svc.Orders.PlaceOrder(tenantContext(f.tenant), guest, &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))

	ctx, user := f.customer(t)
	p := f.product(t, "Thing", "4", 4, nil)
	cart, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)

	otherCtx, _ := f.customer(t)
	_, err = f.svc.Orders.ConvertCart(otherCtx, cart.ID, &models.PlaceOrderInput{ShippingAddress: address()})
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)

	_, err = f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{})
	assert.True(t, errors.Is(err, models.ErrValidation), "missing address: %v", err)
}

func TestConcurrentConversionsProduceOneOrder(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Hot item", "9.99", 50, nil)
	cart, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		converted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Orders.ConvertCart(ctx, cart.ID, &models.PlaceOrderInput{ShippingAddress: address()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, models.ErrCartAlreadyConverted):
				converted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, converted)
	assert.Equal(t, 1, f.store.Counts().Orders)
}

func TestUpdateOrderStatusAuditsAndLocksTerminalStates(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Box", "12", 5, nil)
	_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)
	order, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	require.NoError(t, err)

	paid := models.PaymentStatusPaid
	updated, err := f.svc.Orders.UpdateOrderStatus(f.admin, order.ID, models.OrderStatusProcessing, &paid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

	logs, err := f.store.Audit().ListForSubject(context.Background(), f.tenant.ID, subjectOrder, order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.EventOrderStatusChanged, logs[1].Event)
	events, err := f.store.Outbox().ListForAggregate(context.Background(), f.tenant.ID, subjectOrder, order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = f.svc.Orders.UpdateOrderStatus(f.admin, order.ID, models.OrderStatusCancelled, nil)
	require.NoError(t, err)
	_, err = f.svc.Orders.UpdateOrderStatus(f.admin, order.ID, models.OrderStatusProcessing, nil)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.svc.Orders.UpdateOrderStatus(f.admin, order.ID, models.OrderStatus("Shipped"), nil)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestOrdersAreVisibleOnlyToOwnerAndStaff(t *testing.T) {
	f := newFixture(t)
	ctx, user := f.customer(t)
	p := f.product(t, "Secret", "3", 5, nil)
	_, err := f.svc.Carts.AddItem(ctx, ownerOf(user), p.ID, 1, "")
	require.NoError(t, err)
	order, err := f.svc.Orders.PlaceOrder(ctx, ownerOf(user), &models.PlaceOrderInput{ShippingAddress: address()})
	require.NoError(t, err)

	otherCtx, _ := f.customer(t)
	_, err = f.svc.Orders.OrderByNumber(otherCtx, order.OrderNumber)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = f.svc.Orders.OrderByNumber(f.admin, order.OrderNumber)
	assert.NoError(t, err)

	mine, err := f.svc.Orders.MyOrders(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)
	theirs, err := f.svc.Orders.MyOrders(otherCtx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, theirs.Total)

	all, err := f.svc.Orders.AdminOrders(f.admin, models.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total)

	_, err = f.svc.Orders.MyOrders(appctx.SetTenant(context.Background(), f.tenant.ID, f.tenant.Slug), 1, 10)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))
}
