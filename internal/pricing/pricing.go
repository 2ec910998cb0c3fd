package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tickethub/internal/models"
	"tickethub/internal/promo"
)

// TicketTypeSource resolves ticket types by id. A (nil, nil) return means
// the type does not exist; the engine skips it silently, so callers that
// care must pre-validate existence.
type TicketTypeSource interface {
	TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error)
}

// PromoSource resolves promotional codes by their code string. (nil, nil)
// means no such code.
type PromoSource interface {
	PromoByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// Totals is the priced breakdown of an order. All amounts are rounded
// half-up to 2 decimal places; PromoID is empty when no valid promo
// applied.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PromoID        string          `json:"promo_id,omitempty"`
}

type Engine struct {
	Types   TicketTypeSource
	Promos  PromoSource
	Eval    *promo.Evaluator
	TaxRate decimal.Decimal
}

func NewEngine(types TicketTypeSource, promos PromoSource, taxRate decimal.Decimal) *Engine {
	return &Engine{
		Types:   types,
		Promos:  promos,
		Eval:    promo.NewEvaluator(),
		TaxRate: taxRate,
	}
}

// Quote prices the given line items. An unknown or invalid promo code
// yields a zero discount without error; the orchestrator surfaces promo
// errors explicitly if that UX is wanted. Rounding happens once, on the
// final figures, not per line item.
func (e *Engine) Quote(ctx context.Context, items []models.TicketLineItem, promoCode string, now time.Time) (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		tt, err := e.Types.TicketTypeByID(ctx, item.TicketTypeID)
		if err != nil {
			return Totals{}, err
		}
		if tt == nil {
			continue
		}
		subtotal = subtotal.Add(tt.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := decimal.Zero
	promoID := ""
	if promoCode != "" {
		p, err := e.Promos.PromoByCode(ctx, promoCode)
		if err != nil {
			return Totals{}, err
		}
		if p != nil && e.Eval.Validate(p, now) == nil {
			discount = e.Eval.Discount(p, subtotal)
			promoID = p.PromoID
		}
	}

	tax := subtotal.Sub(discount).Mul(e.TaxRate)
	total := subtotal.Sub(discount).Add(tax)

	return Totals{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount.Round(2),
		TaxAmount:      tax.Round(2),
		TotalAmount:    total.Round(2),
		PromoID:        promoID,
	}, nil
}
