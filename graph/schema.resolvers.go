package graph

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/middlewares"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/shopspring/decimal"
)

// Tenant is the resolver for the tenant field.
func (r *queryResolver) Tenant(ctx context.Context) (*models.Tenant, error) {
	return r.Services.Tenants.Current(ctx)
}

// Products is the resolver for the products field.
func (r *queryResolver) Products(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	return r.Services.Catalog.ListProducts(ctx, filter)
}

// Product is the resolver for the product field.
func (r *queryResolver) Product(ctx context.Context, slug string) (*models.Product, error) {
	return r.Services.Catalog.ProductBySlug(ctx, slug)
}

// FeaturedProducts is the resolver for the featuredProducts field.
func (r *queryResolver) FeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	return r.Services.Catalog.FeaturedProducts(ctx, limit)
}

// SearchProducts is the resolver for the searchProducts field.
func (r *queryResolver) SearchProducts(ctx context.Context, q string, limit int) ([]*models.Product, error) {
	return r.Services.Catalog.SearchProducts(ctx, q, limit)
}

// FilterOptions is the resolver for the filterOptions field.
func (r *queryResolver) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	return r.Services.Catalog.FilterOptions(ctx)
}

// Categories is the resolver for the categories field.
func (r *queryResolver) Categories(ctx context.Context) ([]*models.Category, error) {
	return r.Services.Catalog.Categories(ctx)
}

// Category is the resolver for the category field.
func (r *queryResolver) Category(ctx context.Context, slug string) (*models.Category, error) {
	return r.Services.Catalog.CategoryBySlug(ctx, slug)
}

// Brands is the resolver for the brands field.
func (r *queryResolver) Brands(ctx context.Context) ([]*models.Brand, error) {
	return r.Services.Catalog.Brands(ctx)
}

// Brand is the resolver for the brand field.
func (r *queryResolver) Brand(ctx context.Context, slug string) (*models.Brand, error) {
	return r.Services.Catalog.BrandBySlug(ctx, slug)
}

// TaxRates is the resolver for the taxRates field.
func (r *queryResolver) TaxRates(ctx context.Context) ([]*models.TaxRate, error) {
	return r.Services.Catalog.TaxRates(ctx)
}

// ExchangeRates is the resolver for the exchangeRates field.
func (r *queryResolver) ExchangeRates(ctx context.Context) ([]*models.ExchangeRate, error) {
	return r.Services.Pricing.ExchangeRates(ctx)
}

// ConvertPrice is the resolver for the convertPrice field.
func (r *queryResolver) ConvertPrice(ctx context.Context, amount decimal.Decimal, currency string) (*decimal.Decimal, error) {
	return r.Services.Pricing.Convert(ctx, &amount, currency)
}

// Cart is the resolver for the cart field.
func (r *queryResolver) Cart(ctx context.Context) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.GetCart(ctx, owner)
}

// MyOrders is the resolver for the myOrders field.
func (r *queryResolver) MyOrders(ctx context.Context, page int, perPage int) (*models.OrderPage, error) {
	return r.Services.Orders.MyOrders(ctx, page, perPage)
}

// Order is the resolver for the order field.
func (r *queryResolver) Order(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.Services.Orders.OrderByNumber(ctx, orderNumber)
}

// AdminOrders is the resolver for the adminOrders field.
func (r *queryResolver) AdminOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderPage, error) {
	return r.Services.Orders.AdminOrders(ctx, filter)
}

// ShippingMethods is the resolver for the shippingMethods field.
func (r *queryResolver) ShippingMethods(ctx context.Context) ([]*models.ShippingMethod, error) {
	return r.Services.Shipping.Methods(ctx)
}

// ShippingRoutes is the resolver for the shippingRoutes field.
func (r *queryResolver) ShippingRoutes(ctx context.Context) ([]*models.ShippingRoute, error) {
	return r.Services.Shipping.Routes(ctx)
}

// GetMethodRoutePrice is the resolver for the getMethodRoutePrice field.
func (r *queryResolver) GetMethodRoutePrice(ctx context.Context, methodID int, routeID int) ([]*models.ShippingMethodRoutePrice, error) {
	return r.Services.Shipping.MethodRoutePrices(ctx, methodID, routeID)
}

// ShippingQuote is the resolver for the shippingQuote field.
func (r *queryResolver) ShippingQuote(ctx context.Context, input models.QuoteInput) (*models.ShipmentQuote, error) {
	return r.Services.Shipping.Quote(ctx, input)
}

// Me is the resolver for the me field.
func (r *queryResolver) Me(ctx context.Context) (*models.User, error) {
	return r.Services.Auth.Me(ctx)
}

// Customers is the resolver for the customers field.
func (r *queryResolver) Customers(ctx context.Context) ([]*models.User, error) {
	return r.Services.Users.Customers(ctx)
}

// AdminUsers is the resolver for the adminUsers field.
func (r *queryResolver) AdminUsers(ctx context.Context) ([]*models.User, error) {
	return r.Services.Users.AdminUsers(ctx)
}

// Login is the resolver for the login field.
func (r *mutationResolver) Login(ctx context.Context, input models.LoginInput) (*models.AuthPayload, error) {
	return r.Services.Auth.Login(ctx, input)
}

// Register is the resolver for the register field.
func (r *mutationResolver) Register(ctx context.Context, input models.NewUser) (*models.AuthPayload, error) {
	return r.Services.Auth.Register(ctx, &input)
}

// Logout is the resolver for the logout field.
func (r *mutationResolver) Logout(ctx context.Context) (bool, error) {
	return r.Services.Auth.Logout(ctx)
}

// CreateCategory is the resolver for the createCategory field.
func (r *mutationResolver) CreateCategory(ctx context.Context, input models.NewCategory) (*models.Category, error) {
	return r.Services.Catalog.CreateCategory(ctx, &input)
}

// UpdateCategory is the resolver for the updateCategory field.
func (r *mutationResolver) UpdateCategory(ctx context.Context, id int, input models.NewCategory) (*models.Category, error) {
	return r.Services.Catalog.UpdateCategory(ctx, id, &input)
}

// DeleteCategory is the resolver for the deleteCategory field.
func (r *mutationResolver) DeleteCategory(ctx context.Context, id int) (*models.Category, error) {
	return r.Services.Catalog.DeleteCategory(ctx, id)
}

// CreateSubcategory is the resolver for the createSubcategory field.
func (r *mutationResolver) CreateSubcategory(ctx context.Context, input service.NewSubcategory) (*models.Subcategory, error) {
	return r.Services.Catalog.CreateSubcategory(ctx, &input)
}

// UpdateSubcategory is the resolver for the updateSubcategory field.
func (r *mutationResolver) UpdateSubcategory(ctx context.Context, id int, input service.NewSubcategory) (*models.Subcategory, error) {
	return r.Services.Catalog.UpdateSubcategory(ctx, id, &input)
}

// DeleteSubcategory is the resolver for the deleteSubcategory field.
func (r *mutationResolver) DeleteSubcategory(ctx context.Context, id int) (*models.Subcategory, error) {
	return r.Services.Catalog.DeleteSubcategory(ctx, id)
}

// CreateBrand is the resolver for the createBrand field.
func (r *mutationResolver) CreateBrand(ctx context.Context, input models.NewBrand) (*models.Brand, error) {
	return r.Services.Catalog.CreateBrand(ctx, &input)
}

// UpdateBrand is the resolver for the updateBrand field.
func (r *mutationResolver) UpdateBrand(ctx context.Context, id int, input models.NewBrand) (*models.Brand, error) {
	return r.Services.Catalog.UpdateBrand(ctx, id, &input)
}

// DeleteBrand is the resolver for the deleteBrand field.
func (r *mutationResolver) DeleteBrand(ctx context.Context, id int) (*models.Brand, error) {
	return r.Services.Catalog.DeleteBrand(ctx, id)
}

// CreateProduct is the resolver for the createProduct field.
func (r *mutationResolver) CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error) {
	return r.Services.Catalog.CreateProduct(ctx, &input)
}

// UpdateProduct is the resolver for the updateProduct field.
func (r *mutationResolver) UpdateProduct(ctx context.Context, id int, input models.NewProduct) (*models.Product, error) {
	return r.Services.Catalog.UpdateProduct(ctx, id, &input)
}

// DeleteProduct is the resolver for the deleteProduct field.
func (r *mutationResolver) DeleteProduct(ctx context.Context, id int) (*models.Product, error) {
	return r.Services.Catalog.DeleteProduct(ctx, id)
}

// CreateTaxRate is the resolver for the createTaxRate field.
func (r *mutationResolver) CreateTaxRate(ctx context.Context, input service.NewTaxRate) (*models.TaxRate, error) {
	return r.Services.Catalog.CreateTaxRate(ctx, &input)
}

// UpdateTaxRate is the resolver for the updateTaxRate field.
func (r *mutationResolver) UpdateTaxRate(ctx context.Context, id int, input service.NewTaxRate) (*models.TaxRate, error) {
	return r.Services.Catalog.UpdateTaxRate(ctx, id, &input)
}

// DeleteTaxRate is the resolver for the deleteTaxRate field.
func (r *mutationResolver) DeleteTaxRate(ctx context.Context, id int) (*models.TaxRate, error) {
	return r.Services.Catalog.DeleteTaxRate(ctx, id)
}

// CreateCustomer is the resolver for the createCustomer field.
func (r *mutationResolver) CreateCustomer(ctx context.Context, input models.NewUser) (*models.User, error) {
	return r.Services.Users.CreateCustomer(ctx, &input)
}

// UpdateCustomer is the resolver for the updateCustomer field.
func (r *mutationResolver) UpdateCustomer(ctx context.Context, id int, input models.NewUser) (*models.User, error) {
	return r.Services.Users.UpdateCustomer(ctx, id, &input)
}

// CreateAdminUser is the resolver for the createAdminUser field.
func (r *mutationResolver) CreateAdminUser(ctx context.Context, input models.NewUser) (*models.User, error) {
	return r.Services.Users.CreateAdminUser(ctx, &input)
}

// UpdateAdminUser is the resolver for the updateAdminUser field.
func (r *mutationResolver) UpdateAdminUser(ctx context.Context, id int, input models.NewUser) (*models.User, error) {
	return r.Services.Users.UpdateAdminUser(ctx, id, &input)
}

// DeleteAdminUser is the resolver for the deleteAdminUser field.
func (r *mutationResolver) DeleteAdminUser(ctx context.Context, id int) (*models.User, error) {
	return r.Services.Users.DeleteAdminUser(ctx, id)
}

// CreateExchangeRate is the resolver for the createExchangeRate field.
func (r *mutationResolver) CreateExchangeRate(ctx context.Context, input models.NewExchangeRate) (*models.ExchangeRate, error) {
	return r.Services.Pricing.CreateExchangeRate(ctx, &input)
}

// UpdateExchangeRate is the resolver for the updateExchangeRate field.
func (r *mutationResolver) UpdateExchangeRate(ctx context.Context, id int, input models.NewExchangeRate) (*models.ExchangeRate, error) {
	return r.Services.Pricing.UpdateExchangeRate(ctx, id, &input)
}

// DeleteExchangeRate is the resolver for the deleteExchangeRate field.
func (r *mutationResolver) DeleteExchangeRate(ctx context.Context, id int) (*models.ExchangeRate, error) {
	return r.Services.Pricing.DeleteExchangeRate(ctx, id)
}

// CreateShippingMethod is the resolver for the createShippingMethod field.
func (r *mutationResolver) CreateShippingMethod(ctx context.Context, input models.NewShippingMethod) (*models.ShippingMethod, error) {
	return r.Services.Shipping.CreateMethod(ctx, &input)
}

// UpdateShippingMethod is the resolver for the updateShippingMethod field.
func (r *mutationResolver) UpdateShippingMethod(ctx context.Context, id int, input models.NewShippingMethod) (*models.ShippingMethod, error) {
	return r.Services.Shipping.UpdateMethod(ctx, id, &input)
}

// CreateShippingRoute is the resolver for the createShippingRoute field.
func (r *mutationResolver) CreateShippingRoute(ctx context.Context, input models.NewShippingRoute) (*models.ShippingRoute, error) {
	return r.Services.Shipping.CreateRoute(ctx, &input)
}

// CreateMethodRoutePrice is the resolver for the createMethodRoutePrice field.
func (r *mutationResolver) CreateMethodRoutePrice(ctx context.Context, input models.NewMethodRoutePrice) (*models.ShippingMethodRoutePrice, error) {
	return r.Services.Shipping.CreateMethodRoutePrice(ctx, &input)
}

// DeleteMethodRoutePrice is the resolver for the deleteMethodRoutePrice field.
func (r *mutationResolver) DeleteMethodRoutePrice(ctx context.Context, id int) (*models.ShippingMethodRoutePrice, error) {
	return r.Services.Shipping.DeleteMethodRoutePrice(ctx, id)
}

// AddToCart is the resolver for the addToCart field.
func (r *mutationResolver) AddToCart(ctx context.Context, productID int, quantity int, options string) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.AddItem(ctx, owner, productID, quantity, options)
}

// UpdateCartItem is the resolver for the updateCartItem field.
func (r *mutationResolver) UpdateCartItem(ctx context.Context, itemID int, quantity int) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.UpdateQuantity(ctx, owner, itemID, quantity)
}

// RemoveCartItem is the resolver for the removeCartItem field.
func (r *mutationResolver) RemoveCartItem(ctx context.Context, itemID int) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.RemoveItem(ctx, owner, itemID)
}

// ClearCart is the resolver for the clearCart field.
func (r *mutationResolver) ClearCart(ctx context.Context) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.Clear(ctx, owner)
}

// SetCartShipping is the resolver for the setCartShipping field.
func (r *mutationResolver) SetCartShipping(ctx context.Context, methodID int, routeID int) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.SetShipping(ctx, owner, methodID, routeID)
}

// SetPaymentMethod is the resolver for the setPaymentMethod field.
func (r *mutationResolver) SetPaymentMethod(ctx context.Context, method string) (*models.Cart, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Carts.SetPaymentMethod(ctx, owner, method)
}

// PlaceOrder is the resolver for the placeOrder field.
func (r *mutationResolver) PlaceOrder(ctx context.Context, input models.PlaceOrderInput) (*models.Order, error) {
	owner, err := service.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Services.Orders.PlaceOrder(ctx, owner, &input)
}

// UpdateOrderStatus is the resolver for the updateOrderStatus field.
func (r *mutationResolver) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus, paymentStatus *models.PaymentStatus) (*models.Order, error) {
	return r.Services.Orders.UpdateOrderStatus(ctx, orderID, status, paymentStatus)
}

// DisplayPrice is the resolver for the displayPrice field.
func (r *productResolver) DisplayPrice(ctx context.Context, obj *models.Product, currency string) (*decimal.Decimal, error) {
	return r.Services.Pricing.Convert(ctx, &obj.Price, currency)
}

// Category is the resolver for the category field.
func (r *productResolver) Category(ctx context.Context, obj *models.Product) (*models.Category, error) {
	if obj.CategoryId == nil {
		return nil, nil
	}
	return middlewares.GetCategory(ctx, *obj.CategoryId)
}

// Brand is the resolver for the brand field.
func (r *productResolver) Brand(ctx context.Context, obj *models.Product) (*models.Brand, error) {
	if obj.BrandId == nil {
		return nil, nil
	}
	return middlewares.GetBrand(ctx, *obj.BrandId)
}

// Images is the resolver for the images field.
func (r *productResolver) Images(ctx context.Context, obj *models.Product) ([]*models.ProductImage, error) {
	if obj.Images != nil {
		return obj.Images, nil
	}
	return middlewares.GetProductImages(ctx, obj.ID)
}
