package graph

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
)

// bind1 and bind2 adapt resolver methods with one or two decoded arguments to
// the rootField shape.
func bind1[A any, R any](name string, fn func(context.Context, A) (R, error)) rootField {
	return func(ctx context.Context, a args) (interface{}, error) {
		var arg A
		if err := a.decode(name, &arg); err != nil {
			return nil, models.Validation("invalid argument %s: %v", name, err)
		}
		return fn(ctx, arg)
	}
}

func bind2[A any, B any, R any](nameA, nameB string, fn func(context.Context, A, B) (R, error)) rootField {
	return func(ctx context.Context, a args) (interface{}, error) {
		var (
			argA A
			argB B
		)
		if err := a.decode(nameA, &argA); err != nil {
			return nil, models.Validation("invalid argument %s: %v", nameA, err)
		}
		if err := a.decode(nameB, &argB); err != nil {
			return nil, models.Validation("invalid argument %s: %v", nameB, err)
		}
		return fn(ctx, argA, argB)
	}
}

func bind0[R any](fn func(context.Context) (R, error)) rootField {
	return func(ctx context.Context, _ args) (interface{}, error) {
		return fn(ctx)
	}
}

func queryFields(r *queryResolver) map[string]rootField {
	return map[string]rootField{
		"tenant":              bind0(r.Tenant),
		"products":            bind1("filter", r.Products),
		"product":             bind1("slug", r.Product),
		"featuredProducts":    bind1("limit", r.FeaturedProducts),
		"searchProducts":      bind2("q", "limit", r.SearchProducts),
		"filterOptions":       bind0(r.FilterOptions),
		"categories":          bind0(r.Categories),
		"category":            bind1("slug", r.Category),
		"brands":              bind0(r.Brands),
		"brand":               bind1("slug", r.Brand),
		"taxRates":            bind0(r.TaxRates),
		"exchangeRates":       bind0(r.ExchangeRates),
		"convertPrice":        bind2("amount", "currency", r.ConvertPrice),
		"cart":                bind0(r.Cart),
		"myOrders":            bind2("page", "perPage", r.MyOrders),
		"order":               bind1("orderNumber", r.Order),
		"adminOrders":         bind1("filter", r.AdminOrders),
		"shippingMethods":     bind0(r.ShippingMethods),
		"shippingRoutes":      bind0(r.ShippingRoutes),
		"getMethodRoutePrice": bind2("methodId", "routeId", r.GetMethodRoutePrice),
		"shippingQuote":       bind1("input", r.ShippingQuote),
		"me":                  bind0(r.Me),
		"customers":           bind0(r.Customers),
		"adminUsers":          bind0(r.AdminUsers),
	}
}

func mutationFields(r *mutationResolver) map[string]rootField {
	return map[string]rootField{
		"login":                  bind1("input", r.Login),
		"register":               bind1("input", r.Register),
		"logout":                 bind0(r.Logout),
		"createCategory":         bind1("input", r.CreateCategory),
		"updateCategory":         bind2("id", "input", r.UpdateCategory),
		"deleteCategory":         bind1("id", r.DeleteCategory),
		"createSubcategory":      bind1("input", r.CreateSubcategory),
		"updateSubcategory":      bind2("id", "input", r.UpdateSubcategory),
		"deleteSubcategory":      bind1("id", r.DeleteSubcategory),
		"createBrand":            bind1("input", r.CreateBrand),
		"updateBrand":            bind2("id", "input", r.UpdateBrand),
		"deleteBrand":            bind1("id", r.DeleteBrand),
		"createProduct":          bind1("input", r.CreateProduct),
		"updateProduct":          bind2("id", "input", r.UpdateProduct),
		"deleteProduct":          bind1("id", r.DeleteProduct),
		"createTaxRate":          bind1("input", r.CreateTaxRate),
		"updateTaxRate":          bind2("id", "input", r.UpdateTaxRate),
		"deleteTaxRate":          bind1("id", r.DeleteTaxRate),
		"createCustomer":         bind1("input", r.CreateCustomer),
		"updateCustomer":         bind2("id", "input", r.UpdateCustomer),
		"createAdminUser":        bind1("input", r.CreateAdminUser),
		"updateAdminUser":        bind2("id", "input", r.UpdateAdminUser),
		"deleteAdminUser":        bind1("id", r.DeleteAdminUser),
		"createExchangeRate":     bind1("input", r.CreateExchangeRate),
		"updateExchangeRate":     bind2("id", "input", r.UpdateExchangeRate),
		"deleteExchangeRate":     bind1("id", r.DeleteExchangeRate),
		"createShippingMethod":   bind1("input", r.CreateShippingMethod),
		"updateShippingMethod":   bind2("id", "input", r.UpdateShippingMethod),
		"createShippingRoute":    bind1("input", r.CreateShippingRoute),
		"createMethodRoutePrice": bind1("input", r.CreateMethodRoutePrice),
		"deleteMethodRoutePrice": bind1("id", r.DeleteMethodRoutePrice),
		"addToCart": func(ctx context.Context, a args) (interface{}, error) {
			var (
				productID, quantity int
				options             string
			)
			if err := decodeAll(a, map[string]interface{}{"productId": &productID, "quantity": &quantity, "options": &options}); err != nil {
				return nil, err
			}
			return r.AddToCart(ctx, productID, quantity, options)
		},
		"updateCartItem":   bind2("itemId", "quantity", r.UpdateCartItem),
		"removeCartItem":   bind1("itemId", r.RemoveCartItem),
		"clearCart":        bind0(r.ClearCart),
		"setCartShipping":  bind2("methodId", "routeId", r.SetCartShipping),
		"setPaymentMethod": bind1("method", r.SetPaymentMethod),
		"placeOrder":       bind1("input", r.PlaceOrder),
		"updateOrderStatus": func(ctx context.Context, a args) (interface{}, error) {
			var (
				orderID       int
				status        models.OrderStatus
				paymentStatus *models.PaymentStatus
			)
			if err := decodeAll(a, map[string]interface{}{"orderId": &orderID, "status": &status, "paymentStatus": &paymentStatus}); err != nil {
				return nil, err
			}
			return r.UpdateOrderStatus(ctx, orderID, status, paymentStatus)
		},
	}
}

func productFields(r *productResolver) map[string]objectField {
	return map[string]objectField{
		"displayPrice": func(ctx context.Context, obj interface{}, a args) (interface{}, error) {
			currency, err := a.string("currency")
			if err != nil {
				return nil, err
			}
			return r.DisplayPrice(ctx, asProduct(obj), currency)
		},
		"category": func(ctx context.Context, obj interface{}, _ args) (interface{}, error) {
			return r.Category(ctx, asProduct(obj))
		},
		"brand": func(ctx context.Context, obj interface{}, _ args) (interface{}, error) {
			return r.Brand(ctx, asProduct(obj))
		},
		"images": func(ctx context.Context, obj interface{}, _ args) (interface{}, error) {
			return r.Images(ctx, asProduct(obj))
		},
	}
}

func decodeAll(a args, targets map[string]interface{}) error {
	for name, out := range targets {
		if err := a.decode(name, out); err != nil {
			return models.Validation("invalid argument %s: %v", name, err)
		}
	}
	return nil
}

func asProduct(obj interface{}) *models.Product {
	switch p := obj.(type) {
	case *models.Product:
		return p
	case models.Product:
		return &p
	default:
		return &models.Product{}
	}
}
