package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderRefunded  OrderStatus = "refunded"
)

// Order invariant: TotalAmount = Subtotal - DiscountAmount + TaxAmount,
// all four non-negative and fixed to 2 decimal places.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID        string          `bun:"order_id,pk" json:"order_id"`
	UserID         string          `bun:"user_id,notnull" json:"user_id"`
	EventID        string          `bun:"event_id,notnull" json:"event_id"`
	PromoID        string          `bun:"promo_id,nullzero" json:"promo_id,omitempty"`
	OrderNumber    string          `bun:"order_number,unique,notnull" json:"order_number"`
	Subtotal       decimal.Decimal `bun:"subtotal,notnull,type:numeric(10,2)" json:"subtotal"`
	DiscountAmount decimal.Decimal `bun:"discount_amount,notnull,type:numeric(10,2)" json:"discount_amount"`
	TaxAmount      decimal.Decimal `bun:"tax_amount,notnull,type:numeric(10,2)" json:"tax_amount"`
	TotalAmount    decimal.Decimal `bun:"total_amount,notnull,type:numeric(10,2)" json:"total_amount"`
	Status         OrderStatus     `bun:"status,notnull" json:"status"`
	CreatedAt      time.Time       `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type OrderWithTickets struct {
	Order
	Tickets []Ticket `json:"tickets"`
}
