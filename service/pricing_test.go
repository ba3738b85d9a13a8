package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDirectInverseAndMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "usd", CodeTo: "eur", Rate: dec("0.9")})
	require.NoError(t, err)
	_, err = f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "GBP", CodeTo: "USD", Rate: dec("1.25")})
	require.NoError(t, err)

	amount := dec("19.99")
	same, err := f.svc.Pricing.Convert(f.admin, &amount, "usd")
	require.NoError(t, err)
	assertMoney(t, "19.99", *same, "same currency")

	eur, err := f.svc.Pricing.Convert(f.admin, &amount, "EUR")
	require.NoError(t, err)
	assertMoney(t, "17.99", *eur, "direct")

	gbp, err := f.svc.Pricing.Convert(f.admin, &amount, "GBP")
	require.NoError(t, err)
	assertMoney(t, "15.99", *gbp, "inverse")

	jpy, err := f.svc.Pricing.Convert(f.admin, &amount, "JPY")
	require.NoError(t, err)
	assert.Nil(t, jpy, "missing rate means unavailable, not zero")

	none, err := f.svc.Pricing.Convert(f.admin, nil, "EUR")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestConvertRoundTripWithinRounding(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "MMK", Rate: dec("2100.5")})
	require.NoError(t, err)

	for _, s := range []string{"0.01", "1", "13.37", "999.99"} {
		amount := dec(s)
		there, err := f.svc.Pricing.ConvertBetween(f.admin, amount, "USD", "MMK")
		require.NoError(t, err)
		back, err := f.svc.Pricing.ConvertBetween(f.admin, *there, "MMK", "USD")
		require.NoError(t, err)
		assert.True(t, back.Sub(amount).Abs().LessThanOrEqual(dec("0.01")), "%s came back as %s", s, back)
	}
}

func TestExchangeRatePairIsUnique(t *testing.T) {
	f := newFixture(t)
	rate, err := f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "THB", Rate: dec("36")})
	require.NoError(t, err)

	_, err = f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "usd", CodeTo: "thb", Rate: dec("35")})
	assert.True(t, errors.Is(err, models.ErrConflict))

	_, err = f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "USD", Rate: dec("1")})
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = f.svc.Pricing.CreateExchangeRate(f.admin, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "SGD", Rate: dec("0")})
	assert.True(t, errors.Is(err, models.ErrValidation))

	updated, err := f.svc.Pricing.UpdateExchangeRate(f.admin, rate.ID, &models.NewExchangeRate{CodeFrom: "USD", CodeTo: "THB", Rate: dec("35.5")})
	require.NoError(t, err)
	assertMoney(t, "35.5", updated.Rate, "rate")

	_, err = f.svc.Pricing.DeleteExchangeRate(f.admin, rate.ID)
	require.NoError(t, err)
	logs, err := f.store.Audit().ListForSubject(context.Background(), f.tenant.ID, subjectExchangeRate, rate.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
