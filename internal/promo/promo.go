package promo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tickethub/internal/models"
)

var (
	ErrNotActive         = errors.New("promotional code is not active")
	ErrNotYetValid       = errors.New("promotional code is not yet valid")
	ErrExpired           = errors.New("promotional code has expired")
	ErrUsageLimitReached = errors.New("promotional code usage limit reached")
)

// Evaluator validates promotional codes and computes discounts.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Validate checks the code's window and usage limits. Conditions are
// checked in a fixed order and the first failure is the reported reason.
func (e *Evaluator) Validate(p *models.PromoCode, now time.Time) error {
	if !p.IsActive {
		return ErrNotActive
	}
	if now.Before(p.ValidFrom) {
		return ErrNotYetValid
	}
	if now.After(p.ValidUntil) {
		return ErrExpired
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// Discount computes the discount for the given amount. A fixed-amount
// discount is capped at the amount itself, so the result is always in
// [0, amount].
func (e *Evaluator) Discount(p *models.PromoCode, amount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.DiscountType {
	case models.DiscountPercentage:
		d = amount.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
	case models.DiscountFixedAmount:
		d = decimal.Min(p.DiscountValue, amount)
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// IncrementUsage bumps usage_count atomically, refusing to pass the
// limit. Zero rows affected means the limit was hit by a concurrent
// order between validation and commit.
func (e *Evaluator) IncrementUsage(ctx context.Context, idb bun.IDB, promoID string) error {
	res, err := idb.NewUpdate().
		Model((*models.PromoCode)(nil)).
		Set("usage_count = usage_count + 1").
		Where("promo_id = ?", promoID).
		Where("usage_limit = 0 OR usage_count < usage_limit").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUsageLimitReached
	}
	return nil
}
