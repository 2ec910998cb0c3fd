package models

import (
	"time"

	"github.com/uptrace/bun"
)

type CheckInMethod string

const (
	CheckInQRScan    CheckInMethod = "qr_scan"
	CheckInManual    CheckInMethod = "manual"
	CheckInMobileApp CheckInMethod = "mobile_app"
)

// CheckIn marks a ticket as used at the gate. One row per ticket.
type CheckIn struct {
	bun.BaseModel `bun:"table:check_ins"`

	CheckInID   string        `bun:"check_in_id,pk" json:"check_in_id"`
	TicketID    string        `bun:"ticket_id,unique,notnull" json:"ticket_id"`
	EventID     string        `bun:"event_id,notnull" json:"event_id"`
	Method      CheckInMethod `bun:"method,notnull" json:"method"`
	CheckedInBy string        `bun:"checked_in_by,notnull" json:"checked_in_by"`
	Location    string        `bun:"location,nullzero" json:"location,omitempty"`
	CheckedAt   time.Time     `bun:"checked_at,notnull" json:"checked_at"`
}
