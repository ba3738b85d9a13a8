package service

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

// PricingService converts base-currency amounts for display and manages the
// tenant's exchange-rate table.
type PricingService struct {
	store repository.Store
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Convert returns amount in target currency, rounded half-up to 2 places.
// A nil amount gives nil. When neither a direct nor an inverse positive rate
// exists the result is nil: the price is unavailable, not zero.
func (s *PricingService) Convert(ctx context.Context, amount *decimal.Decimal, target string) (*decimal.Decimal, error) {
	if amount == nil {
		return nil, nil
	}
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tenant, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, tenantID, *amount, tenant.BaseCurrency, target)
}

// ConvertBetween converts between two arbitrary codes with the same lookup rules.
func (s *PricingService) ConvertBetween(ctx context.Context, amount decimal.Decimal, from, to string) (*decimal.Decimal, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, tenantID, amount, from, to)
}

func (s *PricingService) convert(ctx context.Context, tenantID int, amount decimal.Decimal, from, to string) (*decimal.Decimal, error) {
	from, to = normalizeCode(from), normalizeCode(to)
	if len(to) != 3 {
		return nil, models.Validation("currency code must be 3 letters")
	}
	if from == to {
		out := utils.RoundMoney(amount)
		return &out, nil
	}

	direct, err := s.store.ExchangeRates().FindPair(ctx, tenantID, from, to)
	if err != nil && models.KindOf(err) != models.KindNotFound {
		return nil, err
	}
	if direct != nil && direct.Rate.IsPositive() {
		out := utils.RoundMoney(amount.Mul(direct.Rate))
		return &out, nil
	}

	inverse, err := s.store.ExchangeRates().FindPair(ctx, tenantID, to, from)
	if err != nil && models.KindOf(err) != models.KindNotFound {
		return nil, err
	}
	if inverse != nil && inverse.Rate.IsPositive() {
		out := utils.RoundMoney(amount.Div(inverse.Rate))
		return &out, nil
	}
	return nil, nil
}

func (s *PricingService) ExchangeRates(ctx context.Context) ([]*models.ExchangeRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ExchangeRates().List(ctx, tenantID)
}

func validateRateInput(input *models.NewExchangeRate) error {
	input.CodeFrom = normalizeCode(input.CodeFrom)
	input.CodeTo = normalizeCode(input.CodeTo)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.CodeFrom == input.CodeTo {
		return models.Validation("code_from and code_to must differ")
	}
	if !input.Rate.IsPositive() {
		return models.Validation("rate must be greater than zero")
	}
	return nil
}

func (s *PricingService) CreateExchangeRate(ctx context.Context, input *models.NewExchangeRate) (*models.ExchangeRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRateInput(input); err != nil {
		return nil, err
	}
	rate := &models.ExchangeRate{TenantId: tenantID, CodeFrom: input.CodeFrom, CodeTo: input.CodeTo, Rate: input.Rate}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.ExchangeRates().FindPair(ctx, tenantID, rate.CodeFrom, rate.CodeTo); err == nil {
			return models.Conflict("exchange rate %s->%s already exists", rate.CodeFrom, rate.CodeTo)
		}
		if err := tx.ExchangeRates().Create(ctx, rate); err != nil {
			return err
		}
		return recordChange(ctx, tx, tenantID, models.EventExchangeRateChanged, subjectExchangeRate, rate.ID, nil, rate)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// UpdateExchangeRate overwrites the pair and rate; no history is kept.
func (s *PricingService) UpdateExchangeRate(ctx context.Context, id int, input *models.NewExchangeRate) (*models.ExchangeRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRateInput(input); err != nil {
		return nil, err
	}
	var rate *models.ExchangeRate
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.ExchangeRates().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		before := *existing
		if other, err := tx.ExchangeRates().FindPair(ctx, tenantID, input.CodeFrom, input.CodeTo); err == nil && other.ID != id {
			return models.Conflict("exchange rate %s->%s already exists", input.CodeFrom, input.CodeTo)
		}
		existing.CodeFrom, existing.CodeTo, existing.Rate = input.CodeFrom, input.CodeTo, input.Rate
		if err := tx.ExchangeRates().Update(ctx, existing); err != nil {
			return err
		}
		rate = existing
		return recordChange(ctx, tx, tenantID, models.EventExchangeRateChanged, subjectExchangeRate, id, &before, existing)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *PricingService) DeleteExchangeRate(ctx context.Context, id int) (*models.ExchangeRate, error) {
	tenantID, err := TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var rate *models.ExchangeRate
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if rate, err = tx.ExchangeRates().GetByID(ctx, tenantID, id); err != nil {
			return err
		}
		if err := tx.ExchangeRates().Delete(ctx, tenantID, id); err != nil {
			return err
		}
		return recordChange(ctx, tx, tenantID, models.EventExchangeRateDeleted, subjectExchangeRate, id, rate, nil)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}
