package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// PromoCode is a discount token. UsageLimit of zero means unlimited;
// UsageCount only ever increases and never passes UsageLimit when set.
type PromoCode struct {
	bun.BaseModel `bun:"table:promo_codes"`

	PromoID       string          `bun:"promo_id,pk" json:"promo_id"`
	EventID       string          `bun:"event_id,nullzero" json:"event_id,omitempty"`
	Code          string          `bun:"code,unique,notnull" json:"code"`
	DiscountType  DiscountType    `bun:"discount_type,notnull" json:"discount_type"`
	DiscountValue decimal.Decimal `bun:"discount_value,notnull,type:numeric(10,2)" json:"discount_value"`
	UsageLimit    int             `bun:"usage_limit,notnull,default:0" json:"usage_limit"`
	UsageCount    int             `bun:"usage_count,notnull,default:0" json:"usage_count"`
	ValidFrom     time.Time       `bun:"valid_from,notnull" json:"valid_from"`
	ValidUntil    time.Time       `bun:"valid_until,notnull" json:"valid_until"`
	IsActive      bool            `bun:"is_active,notnull" json:"is_active"`
	CreatedAt     time.Time       `bun:"created_at,notnull" json:"created_at"`
}
