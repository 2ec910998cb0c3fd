package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"tickethub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func NewDB(bdb *bun.DB) *DB {
	return &DB{Bun: bdb}
}

func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, fn)
}

// ---------------- LOOKUPS ----------------

func (d *DB) PaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("payment_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("user_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) EventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CompletedOrdersByEvent fetches the orders a whole-event cancellation has
// to refund.
func (d *DB) CompletedOrdersByEvent(ctx context.Context, idb bun.IDB, eventID string) ([]models.Order, error) {
	var orders []models.Order
	err := idb.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID).
		Where("status = ?", models.OrderCompleted).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CompletedPaymentByOrder finds the order's completed payment, nil when
// the order has none.
func (d *DB) CompletedPaymentByOrder(ctx context.Context, idb bun.IDB, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := idb.NewSelect().
		Model(&payment).
		Where("order_id = ?", orderID).
		Where("status = ?", models.PaymentCompleted).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) TicketsByOrder(ctx context.Context, idb bun.IDB, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := idb.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ---------------- WRITES ----------------

func (d *DB) InsertRefund(ctx context.Context, idb bun.IDB, refund *models.Refund) error {
	_, err := idb.NewInsert().Model(refund).Exec(ctx)
	return err
}

func (d *DB) UpdatePaymentStatus(ctx context.Context, idb bun.IDB, paymentID string, status models.PaymentStatus) error {
	_, err := idb.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", status).
		Where("payment_id = ?", paymentID).
		Exec(ctx)
	return err
}

func (d *DB) UpdateOrderStatus(ctx context.Context, idb bun.IDB, orderID string, status models.OrderStatus) error {
	_, err := idb.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("order_id = ?", orderID).
		Exec(ctx)
	return err
}

func (d *DB) UpdateTicketsStatusByOrder(ctx context.Context, idb bun.IDB, orderID string, status models.TicketStatus) error {
	_, err := idb.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", status).
		Where("order_id = ?", orderID).
		Exec(ctx)
	return err
}

func (d *DB) UpdateEventStatus(ctx context.Context, idb bun.IDB, eventID string, status models.EventStatus) error {
	_, err := idb.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("event_id = ?", eventID).
		Exec(ctx)
	return err
}
