package service

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

// ShippingService resolves shipment costs from the method x route price matrix.
type ShippingService struct {
	store    repository.Store
	fallback bool
}

// Quote prices a shipment. Bands are inclusive and the lowest matching id
// wins. With no matching band the result is NoShippingRate unless the base
// price fallback is switched on.
func (s *ShippingService) Quote(ctx context.Context, input models.QuoteInput) (*models.ShipmentQuote, error) {
	ctx, span := tracer.Start(ctx, "ShippingService.Quote")
	defer span.End()

	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, s.store, tenantID, input)
}

func (s *ShippingService) quote(ctx context.Context, store repository.Store, tenantID int, input models.QuoteInput) (*models.ShipmentQuote, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, err
	}
	if input.WeightKg.IsNegative() || input.VolumeCbm.IsNegative() || input.DeclaredValue.IsNegative() {
		return nil, models.Validation("weight, volume and declared value must not be negative")
	}
	method, err := store.Shipping().GetMethod(ctx, tenantID, input.ShippingMethodId)
	if err != nil {
		return nil, err
	}
	route, err := store.Shipping().GetRoute(ctx, tenantID, input.ShippingRouteId)
	if err != nil {
		return nil, err
	}
	if !isActive(method.IsActive) || !isActive(route.IsActive) {
		return nil, models.NoShippingRate("%s is not available on route %s", method.Name, route.Name)
	}

	prices, err := store.Shipping().ListPrices(ctx, tenantID, method.ID, route.ID)
	if err != nil {
		return nil, err
	}
	for _, price := range prices {
		if price.Matches(input.WeightKg, input.VolumeCbm) {
			return PriceShipment(price, input), nil
		}
	}

	if s.fallback {
		base := utils.RoundMoney(method.BasePrice)
		return &models.ShipmentQuote{
			ShippingMethodId: method.ID,
			ShippingRouteId:  route.ID,
			PricingMode:      models.PricingModeMethodBasePrice,
			Fallback:         true,
			BaseCost:         base,
			Total:            base,
		}, nil
	}
	return nil, models.NoShippingRate("no rate for %s on %s at %s kg / %s cbm",
		method.Name, route.Name, input.WeightKg.String(), input.VolumeCbm.String())
}

// PriceShipment applies one matrix row. Every component is rounded half-up
// to 2 places and the total is their sum.
func PriceShipment(price *models.ShippingMethodRoutePrice, input models.QuoteInput) *models.ShipmentQuote {
	q := &models.ShipmentQuote{
		ShippingMethodId: price.ShippingMethodId,
		ShippingRouteId:  price.ShippingRouteId,
		PriceId:          &price.ID,
	}
	if price.FlatRate != nil {
		q.PricingMode = models.PricingModeFlatRate
		q.BaseCost = utils.RoundMoney(*price.FlatRate)
	} else {
		q.PricingMode = models.PricingModeWeightVolume
		q.BaseCost = utils.RoundMoney(input.WeightKg.Mul(price.PricePerKg).Add(input.VolumeCbm.Mul(price.PricePerCbm)))
	}
	q.HandlingFee = utils.RoundMoney(price.HandlingFee)
	q.FuelSurcharge = utils.RoundMoney(utils.PercentOf(q.BaseCost.Add(q.HandlingFee), price.FuelSurchargePercentage))
	q.Insurance = utils.RoundMoney(utils.PercentOf(input.DeclaredValue, price.InsurancePercentage))
	q.CustomsClearanceFee = utils.RoundMoney(price.CustomsClearanceFee)
	q.CustomsDuty = utils.RoundMoney(utils.PercentOf(input.DeclaredValue, price.CustomsDutyPercentage))
	q.CustomsVat = utils.RoundMoney(utils.PercentOf(input.DeclaredValue, price.CustomsVatPercentage))
	q.Total = q.BaseCost.Add(q.HandlingFee).Add(q.FuelSurcharge).Add(q.Insurance).
		Add(q.CustomsClearanceFee).Add(q.CustomsDuty).Add(q.CustomsVat)
	return q
}

func isActive(flag *bool) bool {
	return flag == nil || *flag
}

func (s *ShippingService) Methods(ctx context.Context) ([]*models.ShippingMethod, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	methods, err := s.store.Shipping().ListMethods(ctx, tenantID)
	if err != nil || isStaff(ctx) {
		return methods, err
	}
	active := methods[:0]
	for _, m := range methods {
		if isActive(m.IsActive) {
			active = append(active, m)
		}
	}
	return active, nil
}

func (s *ShippingService) Routes(ctx context.Context) ([]*models.ShippingRoute, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	routes, err := s.store.Shipping().ListRoutes(ctx, tenantID)
	if err != nil || isStaff(ctx) {
		return routes, err
	}
	active := routes[:0]
	for _, r := range routes {
		if isActive(r.IsActive) {
			active = append(active, r)
		}
	}
	return active, nil
}

// MethodRoutePrices lists the bands configured for a method and route.
func (s *ShippingService) MethodRoutePrices(ctx context.Context, methodID, routeID int) ([]*models.ShippingMethodRoutePrice, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Shipping().GetMethod(ctx, tenantID, methodID); err != nil {
		return nil, err
	}
	if _, err := s.store.Shipping().GetRoute(ctx, tenantID, routeID); err != nil {
		return nil, err
	}
	return s.store.Shipping().ListPrices(ctx, tenantID, methodID, routeID)
}

func validateMethodInput(input *models.NewShippingMethod) error {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.BasePrice.IsNegative() {
		return models.Validation("base_price must not be negative")
	}
	return nil
}

func (s *ShippingService) CreateMethod(ctx context.Context, input *models.NewShippingMethod) (*models.ShippingMethod, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMethodInput(input); err != nil {
		return nil, err
	}
	method := &models.ShippingMethod{
		TenantId:         tenantID,
		Name:             strings.TrimSpace(input.Name),
		Code:             input.Code,
		Mode:             input.Mode,
		BasePrice:        input.BasePrice,
		EstimatedDaysMin: input.EstimatedDaysMin,
		EstimatedDaysMax: input.EstimatedDaysMax,
		IsActive:         boolOr(input.IsActive, true),
	}
	if err := s.store.Shipping().CreateMethod(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *ShippingService) UpdateMethod(ctx context.Context, id int, input *models.NewShippingMethod) (*models.ShippingMethod, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateMethodInput(input); err != nil {
		return nil, err
	}
	method, err := s.store.Shipping().GetMethod(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	method.Name = strings.TrimSpace(input.Name)
	method.Code = input.Code
	method.Mode = input.Mode
	method.BasePrice = input.BasePrice
	method.EstimatedDaysMin = input.EstimatedDaysMin
	method.EstimatedDaysMax = input.EstimatedDaysMax
	if input.IsActive != nil {
		method.IsActive = input.IsActive
	}
	if err := s.store.Shipping().UpdateMethod(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *ShippingService) CreateRoute(ctx context.Context, input *models.NewShippingRoute) (*models.ShippingRoute, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	route := &models.ShippingRoute{
		TenantId:      tenantID,
		Name:          strings.TrimSpace(input.Name),
		Origin:        strings.TrimSpace(input.Origin),
		Destination:   strings.TrimSpace(input.Destination),
		TransitPoints: input.TransitPoints,
		IsActive:      boolOr(input.IsActive, true),
	}
	if err := s.store.Shipping().CreateRoute(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *ShippingService) CreateMethodRoutePrice(ctx context.Context, input *models.NewMethodRoutePrice) (*models.ShippingMethodRoutePrice, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := validateBands(input); err != nil {
		return nil, err
	}
	if _, err := s.store.Shipping().GetMethod(ctx, tenantID, input.ShippingMethodId); err != nil {
		return nil, asValidation(err, "shipping_method_id")
	}
	if _, err := s.store.Shipping().GetRoute(ctx, tenantID, input.ShippingRouteId); err != nil {
		return nil, asValidation(err, "shipping_route_id")
	}
	price := &models.ShippingMethodRoutePrice{
		TenantId:                tenantID,
		ShippingMethodId:        input.ShippingMethodId,
		ShippingRouteId:         input.ShippingRouteId,
		MinWeightKg:             input.MinWeightKg,
		MaxWeightKg:             input.MaxWeightKg,
		MinVolumeCbm:            input.MinVolumeCbm,
		MaxVolumeCbm:            input.MaxVolumeCbm,
		PricePerKg:              input.PricePerKg,
		PricePerCbm:             input.PricePerCbm,
		FlatRate:                input.FlatRate,
		HandlingFee:             input.HandlingFee,
		FuelSurchargePercentage: input.FuelSurchargePercentage,
		InsurancePercentage:     input.InsurancePercentage,
		CustomsClearanceFee:     input.CustomsClearanceFee,
		CustomsDutyPercentage:   input.CustomsDutyPercentage,
		CustomsVatPercentage:    input.CustomsVatPercentage,
		IsActive:                utils.NewTrue(),
	}
	if err := s.store.Shipping().CreatePrice(ctx, price); err != nil {
		return nil, err
	}
	return price, nil
}

func validateBands(input *models.NewMethodRoutePrice) error {
	amounts := []decimal.Decimal{
		input.MinWeightKg, input.MinVolumeCbm, input.PricePerKg, input.PricePerCbm,
		input.HandlingFee, input.FuelSurchargePercentage, input.InsurancePercentage,
		input.CustomsClearanceFee, input.CustomsDutyPercentage, input.CustomsVatPercentage,
	}
	for _, p := range []*decimal.Decimal{input.MaxWeightKg, input.MaxVolumeCbm, input.FlatRate} {
		if p != nil {
			amounts = append(amounts, *p)
		}
	}
	for _, a := range amounts {
		if a.IsNegative() {
			return models.Validation("price band values must not be negative")
		}
	}
	if input.MaxWeightKg != nil && input.MaxWeightKg.LessThan(input.MinWeightKg) {
		return models.Validation("max_weight_kg must not be below min_weight_kg")
	}
	if input.MaxVolumeCbm != nil && input.MaxVolumeCbm.LessThan(input.MinVolumeCbm) {
		return models.Validation("max_volume_cbm must not be below min_volume_cbm")
	}
	return nil
}

func (s *ShippingService) DeleteMethodRoutePrice(ctx context.Context, id int) (*models.ShippingMethodRoutePrice, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.store.Shipping().GetPrice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Shipping().DeletePrice(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return price, nil
}
