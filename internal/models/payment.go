package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment records a wallet debit against an order. At most one completed
// payment exists per order at any time.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	PaymentID     string          `bun:"payment_id,pk" json:"payment_id"`
	OrderID       string          `bun:"order_id,notnull" json:"order_id"`
	Method        string          `bun:"method,notnull" json:"method"`
	Amount        decimal.Decimal `bun:"amount,notnull,type:numeric(10,2)" json:"amount"`
	Currency      string          `bun:"currency,notnull" json:"currency"`
	TransactionID string          `bun:"transaction_id,unique,notnull" json:"transaction_id"`
	Status        PaymentStatus   `bun:"status,notnull" json:"status"`
	Gateway       string          `bun:"gateway,notnull" json:"gateway"`
	ProcessedAt   time.Time       `bun:"processed_at,nullzero" json:"processed_at,omitempty"`
	CreatedAt     time.Time       `bun:"created_at,notnull" json:"created_at"`
}
