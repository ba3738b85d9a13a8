package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
)

type shippingRepo struct {
	db *gorm.DB
}

func (r *shippingRepo) ListMethods(ctx context.Context, tenantID int) ([]*models.ShippingMethod, error) {
	var methods []*models.ShippingMethod
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *shippingRepo) GetMethod(ctx context.Context, tenantID, id int) (*models.ShippingMethod, error) {
	var m models.ShippingMethod
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m, id).Error; err != nil {
		return nil, translate(err, "shipping method")
	}
	return &m, nil
}

func (r *shippingRepo) CreateMethod(ctx context.Context, m *models.ShippingMethod) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, "shipping method")
}

func (r *shippingRepo) UpdateMethod(ctx context.Context, m *models.ShippingMethod) error {
	return translate(r.db.WithContext(ctx).Save(m).Error, "shipping method")
}

func (r *shippingRepo) ListRoutes(ctx context.Context, tenantID int) ([]*models.ShippingRoute, error) {
	var routes []*models.ShippingRoute
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *shippingRepo) GetRoute(ctx context.Context, tenantID, id int) (*models.ShippingRoute, error) {
	var route models.ShippingRoute
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&route, id).Error; err != nil {
		return nil, translate(err, "shipping route")
	}
	return &route, nil
}

func (r *shippingRepo) CreateRoute(ctx context.Context, route *models.ShippingRoute) error {
	return translate(r.db.WithContext(ctx).Create(route).Error, "shipping route")
}

func (r *shippingRepo) ListPrices(ctx context.Context, tenantID, methodID, routeID int) ([]*models.ShippingMethodRoutePrice, error) {
	var prices []*models.ShippingMethodRoutePrice
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shipping_method_id = ? AND shipping_route_id = ? AND is_active = ?", tenantID, methodID, routeID, true).
		Order("id asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *shippingRepo) GetPrice(ctx context.Context, tenantID, id int) (*models.ShippingMethodRoutePrice, error) {
	var p models.ShippingMethodRoutePrice
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&p, id).Error; err != nil {
		return nil, translate(err, "shipping price")
	}
	return &p, nil
}

func (r *shippingRepo) CreatePrice(ctx context.Context, p *models.ShippingMethodRoutePrice) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "shipping price band")
}

func (r *shippingRepo) DeletePrice(ctx context.Context, tenantID, id int) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&models.ShippingMethodRoutePrice{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("shipping price not found")
	}
	return nil
}
