package inventory

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"tickethub/internal/models"
)

var (
	ErrInsufficientInventory = errors.New("insufficient tickets available")
	ErrTicketTypeMismatch    = errors.New("ticket type does not belong to this event")
)

// Ledger mutates per-ticket-type availability. Decrements are conditional
// UPDATEs judged by rows affected, so two concurrent purchases cannot both
// pass an availability check and oversell.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve takes qty units from the type's availability within the caller's
// transaction. Zero rows affected means not enough inventory was left.
func (l *Ledger) Reserve(ctx context.Context, idb bun.IDB, ticketTypeID string, qty int) error {
	res, err := idb.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("quantity_available = quantity_available - ?", qty).
		Where("ticket_type_id = ?", ticketTypeID).
		Where("quantity_available >= ?", qty).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientInventory
	}
	return nil
}

// Release puts qty units back, capped at quantity_total. Refund and
// cancellation do not call this today; refunded tickets stay out of the
// sellable pool.
func (l *Ledger) Release(ctx context.Context, idb bun.IDB, ticketTypeID string, qty int) error {
	_, err := idb.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("quantity_available = quantity_available + ?", qty).
		Where("ticket_type_id = ?", ticketTypeID).
		Where("quantity_available + ? <= quantity_total", qty).
		Exec(ctx)
	return err
}
