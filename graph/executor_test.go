package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/directives"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository/memstore"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type testServer struct {
	handler http.Handler
	svc     *service.Services
	tenant  *models.Tenant
	admin   context.Context
}

func newTestServer(t *testing.T, exts ...graphql.HandlerExtension) *testServer {
	t.Helper()
	store := memstore.New()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := service.New(service.Options{
		Store:  store,
		Logger: logger,
		Now:    func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
	})
	tenant := &models.Tenant{Name: "Acme", Slug: "acme", BaseCurrency: "USD"}
	require.NoError(t, store.Tenants().Create(context.Background(), tenant))

	srv := handler.New(NewExecutableSchema(Config{
		Resolvers:  &Resolver{Services: svc, Logger: logger},
		Directives: DirectiveRoot{Auth: directives.Auth},
	}))
	srv.AddTransport(transport.POST{})
	for _, ext := range exts {
		srv.Use(ext)
	}

	return &testServer{
		handler: srv,
		svc:     svc,
		tenant:  tenant,
		admin:   appctx.SetUser(appctx.SetTenant(context.Background(), tenant.ID, tenant.Slug), 1000, "staff", []string{models.RoleSlugAdmin}, "tok"),
	}
}

func (s *testServer) guest() context.Context {
	return appctx.SetTenant(context.Background(), s.tenant.ID, s.tenant.Slug)
}

func (s *testServer) staff(roles ...string) context.Context {
	return appctx.SetUser(s.guest(), 1001, "staff", roles, "tok")
}

func (s *testServer) customer(t *testing.T) context.Context {
	t.Helper()
	user, err := s.svc.Users.CreateCustomer(s.guest(), &models.NewUser{
		Name:     "Jo Doe",
		Email:    "jo@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return appctx.SetUser(s.guest(), user.ID, user.Name, user.RoleSlugs(), "tok")
}

func (s *testServer) do(t *testing.T, ctx context.Context, query string, vars map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData(t *testing.T, resp gqlResponse, out interface{}) {
	t.Helper()
	require.Empty(t, resp.Errors)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

const createProduct = `mutation($input: NewProduct!) {
  createProduct(input: $input) { id slug price }
}`

func TestPlaceOrderThroughGraphQL(t *testing.T) {
	s := newTestServer(t)
	tax, err := s.svc.Catalog.CreateTaxRate(s.admin, &service.NewTaxRate{Name: "VAT", Rate: decimal.NewFromInt(9)})
	require.NoError(t, err)

	var created struct {
		CreateProduct struct {
			ID    int             `json:"id"`
			Slug  string          `json:"slug"`
			Price decimal.Decimal `json:"price"`
		} `json:"createProduct"`
	}
	decodeData(t, s.do(t, s.admin, createProduct, map[string]interface{}{
		"input": map[string]interface{}{
			"name": "Trail Shoe", "price": "100", "stockQuantity": 10, "taxRateId": tax.ID, "weightKg": 1.5,
		},
	}), &created)
	assert.Equal(t, "trail-shoe", created.CreateProduct.Slug)
	assert.True(t, decimal.NewFromInt(100).Equal(created.CreateProduct.Price))

	var shipping struct {
		Method struct {
			ID int `json:"id"`
		} `json:"createShippingMethod"`
		Route struct {
			ID int `json:"id"`
		} `json:"createShippingRoute"`
	}
	decodeData(t, s.do(t, s.admin, `mutation {
	  createShippingMethod(input: {name: "Standard", code: "std", mode: Land, basePrice: "25"}) { id }
	  createShippingRoute(input: {name: "Domestic", origin: "Yangon", destination: "Mandalay"}) { id }
	}`, nil), &shipping)
	resp := s.do(t, s.admin, `mutation($m: Int!, $r: Int!) {
	  createMethodRoutePrice(input: {shippingMethodId: $m, shippingRouteId: $r, flatRate: "10"}) { id flatRate }
	}`, map[string]interface{}{"m": shipping.Method.ID, "r": shipping.Route.ID})
	require.Empty(t, resp.Errors)

	customer := s.customer(t)
	resp = s.do(t, customer, `mutation($p: Int!, $m: Int!, $r: Int!) {
	  addToCart(productId: $p, quantity: 2) { id }
	  setCartShipping(methodId: $m, routeId: $r) { shippingAmount }
	}`, map[string]interface{}{"p": created.CreateProduct.ID, "m": shipping.Method.ID, "r": shipping.Route.ID})
	require.Empty(t, resp.Errors)

	var placed struct {
		PlaceOrder struct {
			OrderNumber string          `json:"orderNumber"`
			Status      string          `json:"status"`
			Subtotal    decimal.Decimal `json:"subtotal"`
			Tax         decimal.Decimal `json:"taxAmount"`
			Shipping    decimal.Decimal `json:"shippingAmount"`
			GrandTotal  decimal.Decimal `json:"grandTotal"`
			Items       []struct {
				Quantity int             `json:"quantity"`
				RowTotal decimal.Decimal `json:"rowTotal"`
			} `json:"items"`
		} `json:"placeOrder"`
	}
	decodeData(t, s.do(t, customer, `mutation {
	  placeOrder(input: {shippingAddress: {name: "Jo Doe", line1: "1 Main St", city: "Springfield", country: "us"}}) {
	    orderNumber status subtotal taxAmount shippingAmount grandTotal
	    items { quantity rowTotal }
	  }
	}`, nil), &placed)

	order := placed.PlaceOrder
	assert.Regexp(t, `^ORD-20260314-093000-`, order.OrderNumber)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, "200", order.Subtotal.String())
	assert.Equal(t, "18", order.Tax.String())
	assert.Equal(t, "10", order.Shipping.String())
	assert.Equal(t, "228", order.GrandTotal.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "200", order.Items[0].RowTotal.String())

	resp = s.do(t, customer, `mutation { placeOrder(input: {shippingAddress: {name: "Jo", line1: "1", city: "X", country: "us"}}) { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "CART_ALREADY_CONVERTED", resp.Errors[0].Extensions["code"])
}

func TestAuthDirectiveCodes(t *testing.T) {
	s := newTestServer(t)
	vars := map[string]interface{}{"input": map[string]interface{}{"name": "Hat", "price": "5"}}

	resp := s.do(t, s.guest(), createProduct, vars)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Extensions["code"])
	assert.Equal(t, []interface{}{"createProduct"}, resp.Errors[0].Path)
	assert.JSONEq(t, "null", string(resp.Data))

	resp = s.do(t, s.customer(t), createProduct, vars)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "FORBIDDEN", resp.Errors[0].Extensions["code"])

	resp = s.do(t, s.admin, createProduct, vars)
	require.Empty(t, resp.Errors)
}

func TestProductComputedFields(t *testing.T) {
	s := newTestServer(t)
	brand, err := s.svc.Catalog.CreateBrand(s.admin, &models.NewBrand{Name: "Northwind"})
	require.NoError(t, err)
	category, err := s.svc.Catalog.CreateCategory(s.admin, &models.NewCategory{Name: "Footwear"})
	require.NoError(t, err)
	_, err = s.svc.Pricing.CreateExchangeRate(s.admin, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "MMK", Rate: decimal.NewFromInt(2100)})
	require.NoError(t, err)
	for _, name := range []string{"Trail Shoe", "Road Shoe"} {
		_, err = s.svc.Catalog.CreateProduct(s.admin, &models.NewProduct{
			Name:       name,
			Price:      decimal.RequireFromString("15.99"),
			BrandId:    &brand.ID,
			CategoryId: &category.ID,
			Images:     []*models.NewProductImage{{Url: "https://cdn.example.com/" + name + ".jpg", IsPrimary: true}},
		})
		require.NoError(t, err)
	}

	var out struct {
		Products struct {
			Total int `json:"total"`
			Items []struct {
				Typename string          `json:"__typename"`
				Name     string          `json:"name"`
				Mmk      decimal.Decimal `json:"mmk"`
				Eur      *string         `json:"eur"`
				Category struct {
					Slug string `json:"slug"`
				} `json:"category"`
				Brand struct {
					Name string `json:"name"`
				} `json:"brand"`
				Images []struct {
					IsPrimary bool `json:"isPrimary"`
				} `json:"images"`
			} `json:"items"`
		} `json:"products"`
	}
	decodeData(t, s.do(t, s.guest(), `{
	  products(filter: {sort: Name}) {
	    total
	    items {
	      __typename name
	      mmk: displayPrice(currency: "MMK")
	      eur: displayPrice(currency: "EUR")
	      category { slug }
	      brand { name }
	      images { isPrimary }
	    }
	  }
	}`, nil), &out)

	require.Equal(t, 2, out.Products.Total)
	require.Len(t, out.Products.Items, 2)
	first := out.Products.Items[0]
	assert.Equal(t, "Product", first.Typename)
	assert.Equal(t, "Road Shoe", first.Name)
	assert.Equal(t, "33579", first.Mmk.String())
	assert.Nil(t, first.Eur)
	assert.Equal(t, "footwear", first.Category.Slug)
	assert.Equal(t, "Northwind", first.Brand.Name)
	require.Len(t, first.Images, 1)
	assert.True(t, first.Images[0].IsPrimary)
}

func TestIntrospectionNeedsExtension(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, s.guest(), `{ __schema { queryType { name } } }`, nil)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "introspection disabled", resp.Errors[0].Message)
}

func TestIntrospection(t *testing.T) {
	s := newTestServer(t, extension.Introspection{})

	var out struct {
		Schema struct {
			QueryType    struct{ Name string } `json:"queryType"`
			MutationType struct{ Name string } `json:"mutationType"`
			Types        []struct {
				Name string `json:"name"`
			} `json:"types"`
		} `json:"__schema"`
		Product struct {
			Kind   string `json:"kind"`
			Fields []struct {
				Name string `json:"name"`
				Type struct {
					Kind   string `json:"kind"`
					OfType *struct {
						Name string `json:"name"`
					} `json:"ofType"`
				} `json:"type"`
			} `json:"fields"`
		} `json:"product"`
		Missing *struct{ Name string } `json:"missing"`
		Kinds   struct {
			EnumValues []struct {
				Name string `json:"name"`
			} `json:"enumValues"`
		} `json:"kinds"`
	}
	decodeData(t, s.do(t, s.guest(), `{
	  __schema { queryType { name } mutationType { name } types { name } }
	  product: __type(name: "Product") { kind fields { name type { kind ofType { name } } } }
	  missing: __type(name: "Nope") { name }
	  kinds: __type(name: "OrderStatus") { enumValues(includeDeprecated: true) { name } }
	}`, nil), &out)

	assert.Equal(t, "Query", out.Schema.QueryType.Name)
	assert.Equal(t, "Mutation", out.Schema.MutationType.Name)
	var names []string
	for _, typ := range out.Schema.Types {
		names = append(names, typ.Name)
	}
	assert.Contains(t, names, "Cart")
	assert.Contains(t, names, "NewTaxRate")

	assert.Equal(t, "OBJECT", out.Product.Kind)
	found := false
	for _, f := range out.Product.Fields {
		if f.Name == "price" {
			found = true
			assert.Equal(t, "NON_NULL", f.Type.Kind)
			require.NotNil(t, f.Type.OfType)
			assert.Equal(t, "Decimal", f.Type.OfType.Name)
		}
	}
	assert.True(t, found, "Product.price is listed")
	assert.Nil(t, out.Missing)
	assert.NotEmpty(t, out.Kinds.EnumValues)
}

func TestNullableFieldErrorKeepsSiblings(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, s.guest(), `{ product(slug: "missing") { id } brands { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
	assert.JSONEq(t, `{"product": null, "brands": []}`, string(resp.Data))
}

func TestTaxRateMutations(t *testing.T) {
	s := newTestServer(t)

	var created struct {
		CreateTaxRate struct {
			ID       int             `json:"id"`
			Rate     decimal.Decimal `json:"rate"`
			IsActive bool            `json:"isActive"`
		} `json:"createTaxRate"`
	}
	decodeData(t, s.do(t, s.admin, `mutation { createTaxRate(input: {name: "VAT", rate: "7.5"}) { id rate isActive } }`, nil), &created)
	assert.Equal(t, "7.5", created.CreateTaxRate.Rate.String())
	assert.True(t, created.CreateTaxRate.IsActive)

	product, err := s.svc.Catalog.CreateProduct(s.admin, &models.NewProduct{Name: "Kettle", Price: decimal.NewFromInt(40), TaxRateId: &created.CreateTaxRate.ID})
	require.NoError(t, err)

	vars := map[string]interface{}{"id": created.CreateTaxRate.ID}
	var updated struct {
		UpdateTaxRate struct {
			Name     string          `json:"name"`
			Rate     decimal.Decimal `json:"rate"`
			IsActive bool            `json:"isActive"`
		} `json:"updateTaxRate"`
	}
	decodeData(t, s.do(t, s.admin, `mutation($id: Int!) {
	  updateTaxRate(id: $id, input: {name: "Reduced VAT", rate: "5", isActive: false}) { name rate isActive }
	}`, vars), &updated)
	assert.Equal(t, "Reduced VAT", updated.UpdateTaxRate.Name)
	assert.Equal(t, "5", updated.UpdateTaxRate.Rate.String())
	assert.False(t, updated.UpdateTaxRate.IsActive)

	resp := s.do(t, s.admin, `mutation($id: Int!) { updateTaxRate(id: $id, input: {name: "Bad", rate: "120"}) { id } }`, vars)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION", resp.Errors[0].Extensions["code"])

	resp = s.do(t, s.staff(models.RoleSlugEditor), `mutation($id: Int!) { deleteTaxRate(id: $id) { id } }`, vars)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "FORBIDDEN", resp.Errors[0].Extensions["code"])

	resp = s.do(t, s.admin, `mutation($id: Int!) { deleteTaxRate(id: $id) { id } }`, vars)
	require.Empty(t, resp.Errors)
	reloaded, err := s.svc.Catalog.ProductByID(s.admin, product.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.TaxRateId)

	resp = s.do(t, s.admin, `mutation($id: Int!) { deleteTaxRate(id: $id) { id } }`, vars)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
}

func TestSubcategoryMutations(t *testing.T) {
	s := newTestServer(t)
	shoes, err := s.svc.Catalog.CreateCategory(s.admin, &models.NewCategory{Name: "Shoes"})
	require.NoError(t, err)
	bags, err := s.svc.Catalog.CreateCategory(s.admin, &models.NewCategory{Name: "Bags"})
	require.NoError(t, err)

	var created struct {
		CreateSubcategory struct {
			ID         int    `json:"id"`
			CategoryID int    `json:"categoryId"`
			Slug       string `json:"slug"`
		} `json:"createSubcategory"`
	}
	decodeData(t, s.do(t, s.admin, `mutation($c: Int!) {
	  createSubcategory(input: {categoryId: $c, name: "Trail Runners", sortOrder: 2}) { id categoryId slug }
	}`, map[string]interface{}{"c": shoes.ID}), &created)
	sub := created.CreateSubcategory
	assert.Equal(t, shoes.ID, sub.CategoryID)
	assert.Equal(t, "trail-runners", sub.Slug)

	resp := s.do(t, s.admin, `mutation { createSubcategory(input: {categoryId: 9999, name: "Ghost"}) { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION", resp.Errors[0].Extensions["code"])

	product, err := s.svc.Catalog.CreateProduct(s.admin, &models.NewProduct{Name: "Runner", Price: decimal.NewFromInt(90), SubcategoryIds: []int{sub.ID}})
	require.NoError(t, err)

	var moved struct {
		UpdateSubcategory struct {
			CategoryID int    `json:"categoryId"`
			Name       string `json:"name"`
		} `json:"updateSubcategory"`
	}
	decodeData(t, s.do(t, s.admin, `mutation($id: Int!, $c: Int!) {
	  updateSubcategory(id: $id, input: {categoryId: $c, name: "Travel Packs"}) { categoryId name }
	}`, map[string]interface{}{"id": sub.ID, "c": bags.ID}), &moved)
	assert.Equal(t, bags.ID, moved.UpdateSubcategory.CategoryID)
	assert.Equal(t, "Travel Packs", moved.UpdateSubcategory.Name)

	var tree struct {
		Category struct {
			Subcategories []struct {
				Name string `json:"name"`
			} `json:"subcategories"`
		} `json:"category"`
	}
	decodeData(t, s.do(t, s.guest(), `{ category(slug: "bags") { subcategories { name } } }`, nil), &tree)
	require.Len(t, tree.Category.Subcategories, 1)
	assert.Equal(t, "Travel Packs", tree.Category.Subcategories[0].Name)

	resp = s.do(t, s.admin, `mutation($id: Int!) { deleteSubcategory(id: $id) { id } }`, map[string]interface{}{"id": sub.ID})
	require.Empty(t, resp.Errors)
	reloaded, err := s.svc.Catalog.ProductByID(s.admin, product.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Subcategories)
}
