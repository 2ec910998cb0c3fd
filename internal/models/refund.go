package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundCompleted RefundStatus = "completed"
	RefundFailed    RefundStatus = "failed"
)

type Refund struct {
	bun.BaseModel `bun:"table:refunds"`

	RefundID    string          `bun:"refund_id,pk" json:"refund_id"`
	PaymentID   string          `bun:"payment_id,notnull" json:"payment_id"`
	TicketID    string          `bun:"ticket_id,nullzero" json:"ticket_id,omitempty"`
	Amount      decimal.Decimal `bun:"amount,notnull,type:numeric(10,2)" json:"amount"`
	Reason      string          `bun:"reason,nullzero" json:"reason,omitempty"`
	Status      RefundStatus    `bun:"status,notnull" json:"status"`
	ProcessedAt time.Time       `bun:"processed_at,nullzero" json:"processed_at,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,notnull" json:"created_at"`
}
