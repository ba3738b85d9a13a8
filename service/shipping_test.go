package service

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestPriceShipmentBreakdown(t *testing.T) {
	row := &models.ShippingMethodRoutePrice{
		ID:                      7,
		PricePerKg:              dec("4.5"),
		PricePerCbm:             dec("120"),
		HandlingFee:             dec("3"),
		FuelSurchargePercentage: dec("12.5"),
		InsurancePercentage:     dec("1"),
		CustomsClearanceFee:     dec("15"),
		CustomsDutyPercentage:   dec("5"),
		CustomsVatPercentage:    dec("7"),
	}
	q := PriceShipment(row, models.QuoteInput{
		WeightKg:      dec("10"),
		VolumeCbm:     dec("0.25"),
		DeclaredValue: dec("333.33"),
	})

	assert.Equal(t, models.PricingModeWeightVolume, q.PricingMode)
	assertMoney(t, "75", q.BaseCost, "base")
	assertMoney(t, "3", q.HandlingFee, "handling")
	assertMoney(t, "9.75", q.FuelSurcharge, "fuel")
	assertMoney(t, "3.33", q.Insurance, "insurance")
	assertMoney(t, "15", q.CustomsClearanceFee, "clearance")
	assertMoney(t, "16.67", q.CustomsDuty, "duty")
	assertMoney(t, "23.33", q.CustomsVat, "vat")
	assertMoney(t, "146.08", q.Total, "total")
	require.NotNil(t, q.PriceId)
	assert.Equal(t, 7, *q.PriceId)
}

func TestPriceShipmentFlatRateIgnoresWeight(t *testing.T) {
	q := PriceShipment(&models.ShippingMethodRoutePrice{
		FlatRate:   ptrDec("19.999"),
		PricePerKg: dec("1000"),
	}, models.QuoteInput{WeightKg: dec("50")})

	assert.Equal(t, models.PricingModeFlatRate, q.PricingMode)
	assertMoney(t, "20", q.BaseCost, "base")
	assertMoney(t, "20", q.Total, "total")
}

func TestBandMatchingIsInclusiveAndFirstRowWins(t *testing.T) {
	f := newFixture(t)
	method, err := f.svc.Shipping.CreateMethod(f.admin, &models.NewShippingMethod{
		Name: "Sea freight", Code: "sea", Mode: models.ShippingModeSea, BasePrice: dec("99"),
	})
	require.NoError(t, err)
	route, err := f.svc.Shipping.CreateRoute(f.admin, &models.NewShippingRoute{
		Name: "Transpacific", Origin: "Shanghai", Destination: "Long Beach",
	})
	require.NoError(t, err)
	for _, band := range []struct{ min, max, flat string }{
		{"0", "10", "10"},
		{"5", "20", "20"},
	} {
		_, err := f.svc.Shipping.CreateMethodRoutePrice(f.admin, &models.NewMethodRoutePrice{
			ShippingMethodId: method.ID,
			ShippingRouteId:  route.ID,
			MinWeightKg:      dec(band.min),
			MaxWeightKg:      ptrDec(band.max),
			FlatRate:         ptrDec(band.flat),
		})
		require.NoError(t, err)
	}

	quote := func(weight string) (*models.ShipmentQuote, error) {
		return f.svc.Shipping.Quote(f.admin, models.QuoteInput{
			ShippingMethodId: method.ID,
			ShippingRouteId:  route.ID,
			WeightKg:         dec(weight),
		})
	}

	q, err := quote("10")
	require.NoError(t, err)
	assertMoney(t, "10", q.Total, "upper bound of first band")

	q, err = quote("20")
	require.NoError(t, err)
	assertMoney(t, "20", q.Total, "upper bound of second band")

	q, err = quote("7")
	require.NoError(t, err)
	assertMoney(t, "10", q.Total, "overlap resolves to the older row")

	_, err = quote("20.01")
	assert.True(t, errors.Is(err, models.ErrNoShippingRate), "got %v", err)

	_, err = quote("-1")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestBasePriceFallback(t *testing.T) {
	f := newFixture(t)
	f.svc.Shipping.fallback = true
	method, err := f.svc.Shipping.CreateMethod(f.admin, &models.NewShippingMethod{
		Name: "Courier", Code: "cr", Mode: models.ShippingModeExpress, BasePrice: dec("12.345"),
	})
	require.NoError(t, err)
	route, err := f.svc.Shipping.CreateRoute(f.admin, &models.NewShippingRoute{
		Name: "City", Origin: "X", Destination: "Y",
	})
	require.NoError(t, err)

	q, err := f.svc.Shipping.Quote(f.admin, models.QuoteInput{ShippingMethodId: method.ID, ShippingRouteId: route.ID})
	require.NoError(t, err)
	assert.True(t, q.Fallback)
	assert.Equal(t, models.PricingModeMethodBasePrice, q.PricingMode)
	assertMoney(t, "12.35", q.Total, "total")
	assert.Nil(t, q.PriceId)
}

func TestShippingRowsAreTenantScoped(t *testing.T) {
	f := newFixture(t)
	method, route := f.flatShipping(t, "5")
	other := f.newTenant(t, "initech", "USD")
	otherAdmin := f.staffContext(other, 3000, models.RoleSlugAdmin)

	_, err := f.svc.Shipping.Quote(otherAdmin, models.QuoteInput{ShippingMethodId: method.ID, ShippingRouteId: route.ID})
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	_, err = f.svc.Shipping.CreateMethodRoutePrice(otherAdmin, &models.NewMethodRoutePrice{
		ShippingMethodId: method.ID,
		ShippingRouteId:  route.ID,
	})
	assert.True(t, errors.Is(err, models.ErrValidation), "got %v", err)
}

func TestMethodRoutePriceValidationAndDelete(t *testing.T) {
	f := newFixture(t)
	method, route := f.flatShipping(t, "5")

	_, err := f.svc.Shipping.CreateMethodRoutePrice(f.admin, &models.NewMethodRoutePrice{
		ShippingMethodId: method.ID,
		ShippingRouteId:  route.ID,
		MinWeightKg:      dec("10"),
		MaxWeightKg:      ptrDec("5"),
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.svc.Shipping.CreateMethodRoutePrice(f.admin, &models.NewMethodRoutePrice{
		ShippingMethodId: method.ID,
		ShippingRouteId:  route.ID,
		HandlingFee:      dec("-1"),
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	rows, err := f.svc.Shipping.MethodRoutePrices(f.admin, method.ID, route.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	deleted, err := f.svc.Shipping.DeleteMethodRoutePrice(f.admin, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, rows[0].ID, deleted.ID)

	_, err = f.svc.Shipping.Quote(f.admin, models.QuoteInput{ShippingMethodId: method.ID, ShippingRouteId: route.ID})
	assert.True(t, errors.Is(err, models.ErrNoShippingRate))
}

func TestInactiveMethodsHiddenFromShoppers(t *testing.T) {
	f := newFixture(t)
	method, _ := f.flatShipping(t, "5")
	_, err := f.svc.Shipping.UpdateMethod(f.admin, method.ID, &models.NewShippingMethod{
		Name: method.Name, Code: method.Code, Mode: method.Mode, IsActive: new(bool),
	})
	require.NoError(t, err)

	shopper, _ := f.customer(t)
	visible, err := f.svc.Shipping.Methods(shopper)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := f.svc.Shipping.Methods(f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
