package analytics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tickethub/internal/models"
	"tickethub/internal/utils"
)

// SaleDelta is one order's worth of increments. Map keys are ticket type
// names.
type SaleDelta struct {
	TicketsSold   int
	Attendees     int
	TotalAmount   decimal.Decimal
	TicketsByType map[string]int
	RevenueByType map[string]float64
}

// Service maintains the per-event running sales totals. Rows are created
// lazily on first write or read; increments merge into the breakdown maps
// without disturbing untouched keys. Totals only ever grow; refunds and
// cancellations do not subtract.
type Service struct {
	Bun *bun.DB
}

func NewService(bdb *bun.DB) *Service {
	return &Service{Bun: bdb}
}

// RecordSale applies one order's delta inside its own transaction. Callers
// treat a failure here as non-fatal; the purchase has already committed.
func (s *Service) RecordSale(ctx context.Context, eventID string, delta SaleDelta) error {
	return s.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.rowForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}

		row.TotalTicketsSold += delta.TicketsSold
		row.TotalAttendees += delta.Attendees
		row.TotalRevenue = row.TotalRevenue.Add(delta.TotalAmount)
		for k, v := range delta.TicketsByType {
			row.TicketsByType[k] += v
		}
		for k, v := range delta.RevenueByType {
			row.RevenueByType[k] += v
		}
		row.LastUpdated = time.Now()

		_, err = tx.NewUpdate().
			Model(row).
			Column("total_tickets_sold", "total_revenue", "total_attendees",
				"tickets_by_type", "revenue_by_type", "last_updated").
			Where("event_id = ?", eventID).
			Exec(ctx)
		return err
	})
}

// GetEventAnalytics returns the event's totals, backfilling a zeroed row
// for events that have not sold anything yet.
func (s *Service) GetEventAnalytics(ctx context.Context, eventID string) (*models.EventAnalytics, error) {
	var row models.EventAnalytics
	err := s.Bun.NewSelect().
		Model(&row).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		fresh := zeroRow(eventID)
		if _, err := s.Bun.NewInsert().Model(fresh).Exec(ctx); err != nil {
			return nil, err
		}
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	normalize(&row)
	return &row, nil
}

// rowForUpdate loads the event's row inside tx, creating a zeroed one if
// none exists yet.
func (s *Service) rowForUpdate(ctx context.Context, tx bun.Tx, eventID string) (*models.EventAnalytics, error) {
	var row models.EventAnalytics
	err := tx.NewSelect().
		Model(&row).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		fresh := zeroRow(eventID)
		if _, err := tx.NewInsert().Model(fresh).Exec(ctx); err != nil {
			return nil, err
		}
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	normalize(&row)
	return &row, nil
}

func zeroRow(eventID string) *models.EventAnalytics {
	return &models.EventAnalytics{
		AnalyticsID:   utils.NewID(),
		EventID:       eventID,
		TotalRevenue:  decimal.Zero,
		TicketsByType: map[string]int{},
		RevenueByType: map[string]float64{},
		LastUpdated:   time.Now(),
	}
}

func normalize(row *models.EventAnalytics) {
	if row.TicketsByType == nil {
		row.TicketsByType = map[string]int{}
	}
	if row.RevenueByType == nil {
		row.RevenueByType = map[string]float64{}
	}
}
