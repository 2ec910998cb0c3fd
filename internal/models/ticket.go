package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// Ticket PricePaid is a snapshot of the ticket type's price at purchase
// time and is never recalculated.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID      string          `bun:"ticket_id,pk" json:"ticket_id"`
	OrderID       string          `bun:"order_id,notnull" json:"order_id"`
	TicketTypeID  string          `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	SeatID        string          `bun:"seat_id,nullzero" json:"seat_id,omitempty"`
	TicketNumber  string          `bun:"ticket_number,unique,notnull" json:"ticket_number"`
	AttendeeName  string          `bun:"attendee_name,nullzero" json:"attendee_name,omitempty"`
	AttendeeEmail string          `bun:"attendee_email,nullzero" json:"attendee_email,omitempty"`
	PricePaid     decimal.Decimal `bun:"price_paid,notnull,type:numeric(10,2)" json:"price_paid"`
	Status        TicketStatus    `bun:"status,notnull" json:"status"`
	QRCode        []byte          `bun:"qr_code,nullzero" json:"qr_code,omitempty"`
	CheckedInAt   time.Time       `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
	CreatedAt     time.Time       `bun:"created_at,notnull" json:"created_at"`
}
