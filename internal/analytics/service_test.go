package analytics_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"tickethub/internal/analytics"
	"tickethub/internal/models"
)

func setupTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = bunDB.NewCreateTable().Model((*models.EventAnalytics)(nil)).Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })
	return bunDB
}

func TestRecordSaleCreatesRowLazily(t *testing.T) {
	svc := analytics.NewService(setupTestDB(t))
	ctx := context.Background()

	err := svc.RecordSale(ctx, "event1", analytics.SaleDelta{
		TicketsSold:   2,
		Attendees:     2,
		TotalAmount:   decimal.RequireFromString("90.00"),
		TicketsByType: map[string]int{"GA": 2},
		RevenueByType: map[string]float64{"GA": 90},
	})
	require.NoError(t, err)

	row, err := svc.GetEventAnalytics(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalTicketsSold)
	assert.Equal(t, 2, row.TotalAttendees)
	assert.Equal(t, "90.00", row.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, row.TicketsByType["GA"])
}

func TestRecordSaleMergePreservesUntouchedKeys(t *testing.T) {
	svc := analytics.NewService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.RecordSale(ctx, "event1", analytics.SaleDelta{
		TicketsSold:   2,
		Attendees:     2,
		TotalAmount:   decimal.RequireFromString("90.00"),
		TicketsByType: map[string]int{"GA": 2},
		RevenueByType: map[string]float64{"GA": 90},
	}))
	require.NoError(t, svc.RecordSale(ctx, "event1", analytics.SaleDelta{
		TicketsSold:   1,
		Attendees:     1,
		TotalAmount:   decimal.RequireFromString("120.00"),
		TicketsByType: map[string]int{"VIP": 1},
		RevenueByType: map[string]float64{"VIP": 120},
	}))

	row, err := svc.GetEventAnalytics(ctx, "event1")
	require.NoError(t, err)

	// The second delta must not wipe the GA entry.
	assert.Equal(t, 2, row.TicketsByType["GA"])
	assert.Equal(t, 1, row.TicketsByType["VIP"])
	assert.Equal(t, float64(90), row.RevenueByType["GA"])
	assert.Equal(t, float64(120), row.RevenueByType["VIP"])
	assert.Equal(t, 3, row.TotalTicketsSold)
	assert.Equal(t, "210.00", row.TotalRevenue.StringFixed(2))
}

func TestRecordSaleAccumulatesSameKey(t *testing.T) {
	svc := analytics.NewService(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordSale(ctx, "event1", analytics.SaleDelta{
			TicketsSold:   1,
			Attendees:     1,
			TotalAmount:   decimal.RequireFromString("45.00"),
			TicketsByType: map[string]int{"GA": 1},
			RevenueByType: map[string]float64{"GA": 45},
		}))
	}

	row, err := svc.GetEventAnalytics(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 3, row.TicketsByType["GA"])
	assert.Equal(t, "135.00", row.TotalRevenue.StringFixed(2))
}

func TestGetEventAnalyticsBackfillsZeroRow(t *testing.T) {
	svc := analytics.NewService(setupTestDB(t))
	ctx := context.Background()

	row, err := svc.GetEventAnalytics(ctx, "quiet-event")
	require.NoError(t, err)
	assert.Equal(t, 0, row.TotalTicketsSold)
	assert.Equal(t, "0.00", row.TotalRevenue.StringFixed(2))
	assert.NotNil(t, row.TicketsByType)
	assert.NotNil(t, row.RevenueByType)

	// The backfilled row persists.
	again, err := svc.GetEventAnalytics(ctx, "quiet-event")
	require.NoError(t, err)
	assert.Equal(t, row.AnalyticsID, again.AnalyticsID)
}
