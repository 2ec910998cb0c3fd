package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID     string      `bun:"event_id,pk" json:"event_id"`
	OrganizerID string      `bun:"organizer_id,notnull" json:"organizer_id"`
	VenueID     string      `bun:"venue_id,notnull" json:"venue_id"`
	Name        string      `bun:"name,notnull" json:"name"`
	Description string      `bun:"description,nullzero" json:"description,omitempty"`
	Category    string      `bun:"category,nullzero" json:"category,omitempty"`
	Status      EventStatus `bun:"status,notnull" json:"status"`
	StartAt     time.Time   `bun:"start_at,notnull" json:"start_at"`
	EndAt       time.Time   `bun:"end_at,notnull" json:"end_at"`
	CreatedAt   time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
