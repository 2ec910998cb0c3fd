package refund

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tickethub/internal/logger"
	"tickethub/internal/models"
	"tickethub/internal/utils"
	"tickethub/internal/wallet"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotCompleted = errors.New("only completed payments can be refunded")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrEventCompleted      = errors.New("cannot cancel a completed event")
	ErrInvalidAmount       = errors.New("refund amount must be positive and no greater than the payment amount")
)

type DBLayer interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	PaymentByID(ctx context.Context, id string) (*models.Payment, error)
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	EventByID(ctx context.Context, id string) (*models.Event, error)
	CompletedOrdersByEvent(ctx context.Context, idb bun.IDB, eventID string) ([]models.Order, error)
	CompletedPaymentByOrder(ctx context.Context, idb bun.IDB, orderID string) (*models.Payment, error)
	TicketsByOrder(ctx context.Context, idb bun.IDB, orderID string) ([]models.Ticket, error)
	InsertRefund(ctx context.Context, idb bun.IDB, refund *models.Refund) error
	UpdatePaymentStatus(ctx context.Context, idb bun.IDB, paymentID string, status models.PaymentStatus) error
	UpdateOrderStatus(ctx context.Context, idb bun.IDB, orderID string, status models.OrderStatus) error
	UpdateTicketsStatusByOrder(ctx context.Context, idb bun.IDB, orderID string, status models.TicketStatus) error
	UpdateEventStatus(ctx context.Context, idb bun.IDB, eventID string, status models.EventStatus) error
}

type Notifier interface {
	Notify(ctx context.Context, kind models.NotificationKind, recipient string, data map[string]interface{}) error
}

// RefundService reverses completed payments, singly or for a whole event.
// Refunded inventory is not returned to the sellable pool and analytics
// totals are not decremented.
type RefundService struct {
	DB       DBLayer
	Wallet   *wallet.Ledger
	Notifier Notifier
	Logger   *logger.Logger
}

func NewRefundService(db DBLayer, notifier Notifier, log *logger.Logger) *RefundService {
	return &RefundService{
		DB:       db,
		Wallet:   wallet.NewLedger(),
		Notifier: notifier,
		Logger:   log,
	}
}

// ProcessRefund refunds a completed payment. The refund record, payment
// flip, wallet credit and order flip commit together or not at all.
func (s *RefundService) ProcessRefund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string) (*models.Refund, error) {
	payment, err := s.DB.PaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != models.PaymentCompleted {
		return nil, ErrPaymentNotCompleted
	}

	order, err := s.DB.OrderByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	user, err := s.DB.UserByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if amount.IsZero() {
		amount = payment.Amount
	}
	if !amount.IsPositive() || amount.GreaterThan(payment.Amount) {
		return nil, ErrInvalidAmount
	}

	refund := models.Refund{
		RefundID:    utils.NewID(),
		PaymentID:   paymentID,
		Amount:      amount,
		Reason:      reason,
		Status:      models.RefundCompleted,
		ProcessedAt: time.Now(),
		CreatedAt:   time.Now(),
	}

	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.DB.InsertRefund(ctx, tx, &refund); err != nil {
			return err
		}
		if err := s.DB.UpdatePaymentStatus(ctx, tx, paymentID, models.PaymentRefunded); err != nil {
			return err
		}
		if err := s.Wallet.Credit(ctx, tx, order.UserID, amount); err != nil {
			return err
		}
		return s.DB.UpdateOrderStatus(ctx, tx, order.OrderID, models.OrderRefunded)
	})
	if err != nil {
		s.Logger.LogRefund("PROCESS", refund.RefundID, fmt.Sprintf("failed: %v", err))
		return nil, err
	}

	s.Logger.LogRefund("PROCESS", refund.RefundID,
		fmt.Sprintf("refunded %s to user %s for order %s", amount.StringFixed(2), order.UserID, order.OrderNumber))

	if err := s.Notifier.Notify(ctx, models.NotifyRefundProcessed, user.Email, map[string]interface{}{
		"refund_id":     refund.RefundID,
		"order_number":  order.OrderNumber,
		"refund_amount": amount.StringFixed(2),
	}); err != nil {
		s.Logger.Warn("NOTIFY", fmt.Sprintf("refund processed for %s: %v", order.OrderNumber, err))
	}

	return &refund, nil
}

// CancelEvent cancels an event and refunds every completed order in one
// transaction. Orders without a completed payment are skipped with a
// recorded error; the event ends up cancelled either way. Cancelling an
// already cancelled event is a no-op that refunds nothing.
func (s *RefundService) CancelEvent(ctx context.Context, eventID string) (*models.CancelEventResult, error) {
	event, err := s.DB.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status == models.EventCompleted {
		return nil, ErrEventCompleted
	}

	result := &models.CancelEventResult{
		RefundedOrders: []models.RefundedOrder{},
	}
	var holders []string

	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		orders, err := s.DB.CompletedOrdersByEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		for _, order := range orders {
			payment, err := s.DB.CompletedPaymentByOrder(ctx, tx, order.OrderID)
			if err != nil {
				return err
			}
			if payment == nil {
				result.RefundErrors = append(result.RefundErrors,
					fmt.Sprintf("order %s: no completed payment to refund", order.OrderNumber))
				continue
			}

			tickets, err := s.DB.TicketsByOrder(ctx, tx, order.OrderID)
			if err != nil {
				return err
			}

			refund := models.Refund{
				RefundID:    utils.NewID(),
				PaymentID:   payment.PaymentID,
				Amount:      order.TotalAmount,
				Reason:      "event cancelled",
				Status:      models.RefundCompleted,
				ProcessedAt: time.Now(),
				CreatedAt:   time.Now(),
			}
			if len(tickets) > 0 {
				refund.TicketID = tickets[0].TicketID
			}
			if err := s.DB.InsertRefund(ctx, tx, &refund); err != nil {
				return err
			}
			if err := s.DB.UpdatePaymentStatus(ctx, tx, payment.PaymentID, models.PaymentRefunded); err != nil {
				return err
			}
			if err := s.Wallet.Credit(ctx, tx, order.UserID, order.TotalAmount); err != nil {
				return err
			}
			if err := s.DB.UpdateOrderStatus(ctx, tx, order.OrderID, models.OrderRefunded); err != nil {
				return err
			}
			if err := s.DB.UpdateTicketsStatusByOrder(ctx, tx, order.OrderID, models.TicketRefunded); err != nil {
				return err
			}

			result.RefundedCount++
			result.RefundedOrders = append(result.RefundedOrders, models.RefundedOrder{
				OrderID:      order.OrderID,
				OrderNumber:  order.OrderNumber,
				RefundAmount: order.TotalAmount,
			})
			for _, t := range tickets {
				if t.AttendeeEmail != "" {
					holders = append(holders, t.AttendeeEmail)
				}
			}
		}

		return s.DB.UpdateEventStatus(ctx, tx, eventID, models.EventCancelled)
	})
	if err != nil {
		s.Logger.Error("REFUND", fmt.Sprintf("event cancellation %s failed: %v", eventID, err))
		return nil, err
	}

	s.Logger.Info("REFUND", fmt.Sprintf("event %s cancelled: %d orders refunded, %d errors",
		eventID, result.RefundedCount, len(result.RefundErrors)))

	for _, email := range holders {
		if err := s.Notifier.Notify(ctx, models.NotifyEventCancelled, email, map[string]interface{}{
			"event_id":   eventID,
			"event_name": event.Name,
		}); err != nil {
			s.Logger.Warn("NOTIFY", fmt.Sprintf("event cancelled notice to %s: %v", email, err))
		}
	}

	return result, nil
}
