package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Attendee is the per-seat holder info attached to a purchased ticket.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketLineItem is one line of a purchase request. Quantity tickets of
// one type; Attendees may be shorter than Quantity, in which case the
// first entry is reused.
type TicketLineItem struct {
	TicketTypeID string     `json:"ticket_type_id"`
	Quantity     int        `json:"quantity"`
	Attendees    []Attendee `json:"attendees,omitempty"`
	SeatID       string     `json:"seat_id,omitempty"`
}

type CreateOrderRequest struct {
	UserID        string           `json:"user_id"`
	EventID       string           `json:"event_id"`
	TicketItems   []TicketLineItem `json:"ticket_items"`
	PromoCode     string           `json:"promo_code,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
}

// Validate rejects malformed requests before they reach the transaction.
func (r *CreateOrderRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.EventID == "" {
		return errors.New("event_id is required")
	}
	if len(r.TicketItems) == 0 {
		return errors.New("ticket_items is required")
	}
	for i, item := range r.TicketItems {
		if item.TicketTypeID == "" {
			return fmt.Errorf("ticket_items[%d]: ticket_type_id is required", i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("ticket_items[%d]: quantity must be at least 1", i)
		}
	}
	return nil
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

type CheckInRequest struct {
	TicketID    string        `json:"ticket_id"`
	EventID     string        `json:"event_id"`
	Method      CheckInMethod `json:"method,omitempty"`
	CheckedInBy string        `json:"checked_in_by"`
	Location    string        `json:"location,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	if r.TicketID == "" {
		return errors.New("ticket_id is required")
	}
	if r.EventID == "" {
		return errors.New("event_id is required")
	}
	return nil
}

// RefundedOrder is one entry in a whole-event cancellation summary.
type RefundedOrder struct {
	OrderID      string          `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type CancelEventResult struct {
	RefundedCount  int             `json:"refunded_orders_count"`
	RefundedOrders []RefundedOrder `json:"refunded_orders"`
	RefundErrors   []string        `json:"refund_errors,omitempty"`
}
