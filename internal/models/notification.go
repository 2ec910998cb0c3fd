package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationKind string

const (
	NotifyOrderConfirmation NotificationKind = "order_confirmation"
	NotifyTicketIssued      NotificationKind = "ticket_issued"
	NotifyEventReminder     NotificationKind = "event_reminder"
	NotifyRefundProcessed   NotificationKind = "refund_processed"
	NotifyEventCancelled    NotificationKind = "event_cancelled"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationBounced NotificationStatus = "bounced"
)

// EmailNotification is the persisted record of an outbound notification.
// Delivery is fire-and-forget; failures here never affect order state.
type EmailNotification struct {
	bun.BaseModel `bun:"table:email_notifications"`

	NotificationID string             `bun:"notification_id,pk" json:"notification_id"`
	UserID         string             `bun:"user_id,nullzero" json:"user_id,omitempty"`
	OrderID        string             `bun:"order_id,nullzero" json:"order_id,omitempty"`
	EventID        string             `bun:"event_id,nullzero" json:"event_id,omitempty"`
	Kind           NotificationKind   `bun:"kind,notnull" json:"kind"`
	Recipient      string             `bun:"recipient,notnull" json:"recipient"`
	Subject        string             `bun:"subject,notnull" json:"subject"`
	Status         NotificationStatus `bun:"status,notnull" json:"status"`
	SentAt         time.Time          `bun:"sent_at,nullzero" json:"sent_at,omitempty"`
	CreatedAt      time.Time          `bun:"created_at,notnull" json:"created_at"`
}
