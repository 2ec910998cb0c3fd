package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/internal/models"
	"tickethub/internal/pricing"
)

type stubTypes map[string]*models.TicketType

func (s stubTypes) TicketTypeByID(_ context.Context, id string) (*models.TicketType, error) {
	return s[id], nil
}

type stubPromos map[string]*models.PromoCode

func (s stubPromos) PromoByCode(_ context.Context, code string) (*models.PromoCode, error) {
	return s[code], nil
}

func fixtures() (stubTypes, stubPromos) {
	types := stubTypes{
		"ga": {
			TicketTypeID: "ga",
			EventID:      "event1",
			Name:         "General Admission",
			Price:        decimal.RequireFromString("45.00"),
		},
		"vip": {
			TicketTypeID: "vip",
			EventID:      "event1",
			Name:         "VIP",
			Price:        decimal.RequireFromString("120.00"),
		},
	}
	promos := stubPromos{
		"SAVE10": {
			PromoID:       "promo1",
			Code:          "SAVE10",
			DiscountType:  models.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
			ValidFrom:     time.Now().Add(-time.Hour),
			ValidUntil:    time.Now().Add(time.Hour),
			IsActive:      true,
		},
		"FLAT100": {
			PromoID:       "promo2",
			Code:          "FLAT100",
			DiscountType:  models.DiscountFixedAmount,
			DiscountValue: decimal.NewFromInt(100),
			ValidFrom:     time.Now().Add(-time.Hour),
			ValidUntil:    time.Now().Add(time.Hour),
			IsActive:      true,
		},
	}
	return types, promos
}

func TestQuoteNoPromo(t *testing.T) {
	types, promos := fixtures()
	e := pricing.NewEngine(types, promos, decimal.RequireFromString("0.08"))

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "ga", Quantity: 2},
		{TicketTypeID: "vip", Quantity: 1},
	}, "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "210.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "16.80", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "226.80", totals.TotalAmount.StringFixed(2))
	assert.Empty(t, totals.PromoID)
}

func TestQuoteTotalsInvariant(t *testing.T) {
	types, promos := fixtures()
	e := pricing.NewEngine(types, promos, decimal.RequireFromString("0.07"))

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "ga", Quantity: 3},
	}, "SAVE10", time.Now())
	require.NoError(t, err)

	// total = subtotal - discount + tax, all fixed to 2 places.
	want := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
	assert.True(t, totals.TotalAmount.Equal(want),
		"total %s != subtotal %s - discount %s + tax %s",
		totals.TotalAmount, totals.Subtotal, totals.DiscountAmount, totals.TaxAmount)
	assert.Equal(t, "promo1", totals.PromoID)
	assert.Equal(t, "13.50", totals.DiscountAmount.StringFixed(2))
}

func TestQuoteFixedDiscountCappedAtSubtotal(t *testing.T) {
	types, promos := fixtures()
	types["cheap"] = &models.TicketType{
		TicketTypeID: "cheap",
		Name:         "Lawn",
		Price:        decimal.RequireFromString("40.00"),
	}
	e := pricing.NewEngine(types, promos, decimal.Zero)

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "cheap", Quantity: 1},
	}, "FLAT100", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "40.00", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "0.00", totals.TotalAmount.StringFixed(2))
}

func TestQuoteUnknownPromoIgnored(t *testing.T) {
	types, promos := fixtures()
	e := pricing.NewEngine(types, promos, decimal.Zero)

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "ga", Quantity: 1},
	}, "NOPE", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "0.00", totals.DiscountAmount.StringFixed(2))
	assert.Empty(t, totals.PromoID)
}

func TestQuoteExpiredPromoIgnored(t *testing.T) {
	types, promos := fixtures()
	promos["SAVE10"].ValidUntil = time.Now().Add(-time.Minute)
	e := pricing.NewEngine(types, promos, decimal.Zero)

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "ga", Quantity: 1},
	}, "SAVE10", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "0.00", totals.DiscountAmount.StringFixed(2))
	assert.Empty(t, totals.PromoID)
}

func TestQuoteMissingTypeSkipped(t *testing.T) {
	types, promos := fixtures()
	e := pricing.NewEngine(types, promos, decimal.Zero)

	totals, err := e.Quote(context.Background(), []models.TicketLineItem{
		{TicketTypeID: "ga", Quantity: 1},
		{TicketTypeID: "ghost", Quantity: 5},
	}, "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "45.00", totals.Subtotal.StringFixed(2))
}
