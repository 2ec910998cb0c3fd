package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// EventAnalytics keeps per-event running sales totals. Rows are created
// lazily and mutated only by increments; the breakdown maps are merged
// key-by-key, never replaced wholesale.
type EventAnalytics struct {
	bun.BaseModel `bun:"table:event_analytics"`

	AnalyticsID      string             `bun:"analytics_id,pk" json:"analytics_id"`
	EventID          string             `bun:"event_id,unique,notnull" json:"event_id"`
	TotalTicketsSold int                `bun:"total_tickets_sold,notnull" json:"total_tickets_sold"`
	TotalRevenue     decimal.Decimal    `bun:"total_revenue,notnull,type:numeric(12,2)" json:"total_revenue"`
	TotalAttendees   int                `bun:"total_attendees,notnull" json:"total_attendees"`
	TicketsByType    map[string]int     `bun:"tickets_by_type,type:jsonb" json:"tickets_by_type"`
	RevenueByType    map[string]float64 `bun:"revenue_by_type,type:jsonb" json:"revenue_by_type"`
	LastUpdated      time.Time          `bun:"last_updated,notnull" json:"last_updated"`
}
