package notify

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"tickethub/internal/kafka"
	"tickethub/internal/models"
	"tickethub/internal/utils"
)

// Notifier records an outbound notification and hands it to whatever
// actually delivers it. Callers treat every error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, kind models.NotificationKind, recipient string, data map[string]interface{}) error
}

// EmailNotifier persists an email_notifications row and publishes the
// payload to the notifications topic for the delivery worker. A nil
// producer (kafka disabled) leaves rows in pending for a later sweep.
type EmailNotifier struct {
	Bun      *bun.DB
	Producer *kafka.Producer
}

func NewEmailNotifier(bdb *bun.DB, producer *kafka.Producer) *EmailNotifier {
	return &EmailNotifier{Bun: bdb, Producer: producer}
}

func (n *EmailNotifier) Notify(ctx context.Context, kind models.NotificationKind, recipient string, data map[string]interface{}) error {
	row := models.EmailNotification{
		NotificationID: utils.NewID(),
		Kind:           kind,
		Recipient:      recipient,
		Subject:        subjectFor(kind),
		Status:         models.NotificationPending,
		CreatedAt:      time.Now(),
	}
	if v, ok := data["order_id"].(string); ok {
		row.OrderID = v
	}
	if v, ok := data["event_id"].(string); ok {
		row.EventID = v
	}

	if _, err := n.Bun.NewInsert().Model(&row).Exec(ctx); err != nil {
		return err
	}

	if n.Producer == nil {
		return nil
	}
	payload := map[string]interface{}{
		"notification_id": row.NotificationID,
		"kind":            kind,
		"recipient":       recipient,
		"subject":         row.Subject,
		"data":            data,
	}
	return n.Producer.Publish(ctx, row.NotificationID, payload)
}

func subjectFor(kind models.NotificationKind) string {
	switch kind {
	case models.NotifyOrderConfirmation:
		return "Your order is confirmed"
	case models.NotifyTicketIssued:
		return "Your ticket is ready"
	case models.NotifyEventReminder:
		return "Your event is coming up"
	case models.NotifyRefundProcessed:
		return "Your refund has been processed"
	case models.NotifyEventCancelled:
		return "Your event has been cancelled"
	default:
		return "Notification"
	}
}
