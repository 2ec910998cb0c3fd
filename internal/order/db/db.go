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

// RunInTx runs fn inside a single database transaction.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, fn)
}

// ---------------- LOOKUPS ----------------

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

func (d *DB) TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error) {
	var tt models.TicketType
	err := d.Bun.NewSelect().
		Model(&tt).
		Where("ticket_type_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (d *DB) PromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := d.Bun.NewSelect().
		Model(&promo).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
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

// ---------------- WRITES ----------------

func (d *DB) InsertOrder(ctx context.Context, idb bun.IDB, order *models.Order) error {
	_, err := idb.NewInsert().Model(order).Exec(ctx)
	return err
}

func (d *DB) InsertTickets(ctx context.Context, idb bun.IDB, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	_, err := idb.NewInsert().Model(&tickets).Exec(ctx)
	return err
}

func (d *DB) InsertPayment(ctx context.Context, idb bun.IDB, payment *models.Payment) error {
	_, err := idb.NewInsert().Model(payment).Exec(ctx)
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

// ---------------- RELATION QUERIES ----------------

// TicketsByOrder fetches all tickets linked to an order.
func (d *DB) TicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// AttachTicketQR stores the rendered QR image on an issued ticket.
func (d *DB) AttachTicketQR(ctx context.Context, ticketID string, png []byte) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("qr_code = ?", png).
		Where("ticket_id = ?", ticketID).
		Exec(ctx)
	return err
}

// OrderWithTicketsByID fetches an order and its tickets for the response
// payload.
func (d *DB) OrderWithTicketsByID(ctx context.Context, orderID string) (*models.OrderWithTickets, error) {
	order, err := d.OrderByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, err
	}
	tickets, err := d.TicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return &models.OrderWithTickets{Order: *order, Tickets: tickets}, nil
}
