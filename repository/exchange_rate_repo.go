package repository

import (
	"context"

	"github.com/mmdatafocus/commerce_backend/models"
	"gorm.io/gorm"
)

type exchangeRateRepo struct {
	db *gorm.DB
}

func (r *exchangeRateRepo) List(ctx context.Context, tenantID int) ([]*models.ExchangeRate, error) {
	var rates []*models.ExchangeRate
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("code_from asc, code_to asc").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *exchangeRateRepo) GetByID(ctx context.Context, tenantID, id int) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&rate, id).Error; err != nil {
		return nil, translate(err, "exchange rate")
	}
	return &rate, nil
}

func (r *exchangeRateRepo) FindPair(ctx context.Context, tenantID int, from, to string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code_from = ? AND code_to = ?", tenantID, from, to).
		First(&rate).Error
	if err != nil {
		return nil, translate(err, "exchange rate")
	}
	return &rate, nil
}

func (r *exchangeRateRepo) Create(ctx context.Context, rate *models.ExchangeRate) error {
	return translate(r.db.WithContext(ctx).Create(rate).Error, "exchange rate pair")
}

func (r *exchangeRateRepo) Update(ctx context.Context, rate *models.ExchangeRate) error {
	return translate(r.db.WithContext(ctx).Save(rate).Error, "exchange rate pair")
}

func (r *exchangeRateRepo) Delete(ctx context.Context, tenantID, id int) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&models.ExchangeRate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NotFound("exchange rate not found")
	}
	return nil
}
