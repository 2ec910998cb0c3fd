package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"tickethub/internal/analytics"
	"tickethub/internal/inventory"
	"tickethub/internal/logger"
	"tickethub/internal/models"
	"tickethub/internal/pricing"
	"tickethub/internal/promo"
	"tickethub/internal/utils"
	"tickethub/internal/wallet"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrEventNotAvailable  = errors.New("event is not available for purchase")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTypesLocked        = errors.New("ticket types are locked by another purchase")
)

type DBLayer interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	EventByID(ctx context.Context, id string) (*models.Event, error)
	TicketTypeByID(ctx context.Context, id string) (*models.TicketType, error)
	PromoByCode(ctx context.Context, code string) (*models.PromoCode, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	InsertOrder(ctx context.Context, idb bun.IDB, order *models.Order) error
	InsertTickets(ctx context.Context, idb bun.IDB, tickets []models.Ticket) error
	InsertPayment(ctx context.Context, idb bun.IDB, payment *models.Payment) error
	UpdateOrderStatus(ctx context.Context, idb bun.IDB, orderID string, status models.OrderStatus) error
	TicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
	AttachTicketQR(ctx context.Context, ticketID string, png []byte) error
	OrderWithTicketsByID(ctx context.Context, orderID string) (*models.OrderWithTickets, error)
}

type TypeLocker interface {
	LockTypes(typeIDs []string, orderID string) (bool, error)
	UnlockTypes(typeIDs []string, orderID string) error
}

type AnalyticsRecorder interface {
	RecordSale(ctx context.Context, eventID string, delta analytics.SaleDelta) error
}

type QRRenderer interface {
	Render(payload string) ([]byte, error)
}

type Notifier interface {
	Notify(ctx context.Context, kind models.NotificationKind, recipient string, data map[string]interface{}) error
}

type OrderService struct {
	DB        DBLayer
	Redis     TypeLocker
	Pricing   *pricing.Engine
	Promo     *promo.Evaluator
	Inventory *inventory.Ledger
	Wallet    *wallet.Ledger
	Analytics AnalyticsRecorder
	QR        QRRenderer
	Notifier  Notifier
	Logger    *logger.Logger
	Currency  string
	Gateway   string
}

func NewOrderService(
	db DBLayer,
	redis TypeLocker,
	engine *pricing.Engine,
	analytics AnalyticsRecorder,
	qr QRRenderer,
	notifier Notifier,
	log *logger.Logger,
	currency, gateway string,
) *OrderService {
	return &OrderService{
		DB:        db,
		Redis:     redis,
		Pricing:   engine,
		Promo:     promo.NewEvaluator(),
		Inventory: inventory.NewLedger(),
		Wallet:    wallet.NewLedger(),
		Analytics: analytics,
		QR:        qr,
		Notifier:  notifier,
		Logger:    log,
		Currency:  currency,
		Gateway:   gateway,
	}
}

// CreateOrder runs the whole purchase: validation, pricing, inventory
// reservation, wallet debit and ticket issuance in one transaction, then
// best-effort analytics, QR and notification work after commit. Any error
// inside the transaction rolls everything back, so a failed payment leaves
// inventory, promo usage and wallet untouched.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.OrderWithTickets, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.DB.UserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	event, err := s.DB.EventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status == models.EventCancelled || event.Status == models.EventCompleted {
		return nil, ErrEventNotAvailable
	}

	// Pre-validate every line before the first mutation.
	types := make(map[string]*models.TicketType, len(req.TicketItems))
	typeIDs := make([]string, 0, len(req.TicketItems))
	for _, item := range req.TicketItems {
		tt, err := s.DB.TicketTypeByID(ctx, item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		if tt == nil {
			return nil, fmt.Errorf("%w: %s", ErrTicketTypeNotFound, item.TicketTypeID)
		}
		if tt.EventID != req.EventID {
			return nil, fmt.Errorf("%w: %s", inventory.ErrTicketTypeMismatch, item.TicketTypeID)
		}
		if tt.QuantityAvailable < item.Quantity {
			return nil, fmt.Errorf("%w: %s", inventory.ErrInsufficientInventory, tt.Name)
		}
		types[item.TicketTypeID] = tt
		typeIDs = append(typeIDs, item.TicketTypeID)
	}

	totals, err := s.Pricing.Quote(ctx, req.TicketItems, req.PromoCode, time.Now())
	if err != nil {
		return nil, err
	}

	orderID := utils.NewID()

	ok, err := s.Redis.LockTypes(typeIDs, orderID)
	if err != nil {
		return nil, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		return nil, ErrTypesLocked
	}
	defer func() {
		if err := s.Redis.UnlockTypes(typeIDs, orderID); err != nil {
			s.Logger.Warn("ORDER", fmt.Sprintf("failed to unlock ticket types for order %s: %v", orderID, err))
		}
	}()

	order := models.Order{
		OrderID:        orderID,
		UserID:         req.UserID,
		EventID:        req.EventID,
		PromoID:        totals.PromoID,
		OrderNumber:    utils.GenerateOrderNumber(),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		Status:         models.OrderPending,
		CreatedAt:      time.Now(),
	}

	tickets := s.buildTickets(orderID, req.TicketItems, types, user)
	payment := models.Payment{
		PaymentID:     utils.NewID(),
		OrderID:       orderID,
		Method:        paymentMethod(req.PaymentMethod),
		Amount:        totals.TotalAmount,
		Currency:      s.Currency,
		TransactionID: utils.GenerateTransactionID(),
		Status:        models.PaymentCompleted,
		Gateway:       s.Gateway,
		ProcessedAt:   time.Now(),
		CreatedAt:     time.Now(),
	}

	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.DB.InsertOrder(ctx, tx, &order); err != nil {
			return err
		}
		if err := s.DB.InsertTickets(ctx, tx, tickets); err != nil {
			return err
		}
		for _, item := range req.TicketItems {
			if err := s.Inventory.Reserve(ctx, tx, item.TicketTypeID, item.Quantity); err != nil {
				return fmt.Errorf("%w: %s", err, types[item.TicketTypeID].Name)
			}
		}
		if totals.PromoID != "" {
			if err := s.Promo.IncrementUsage(ctx, tx, totals.PromoID); err != nil {
				return err
			}
		}
		if err := s.Wallet.Debit(ctx, tx, req.UserID, totals.TotalAmount); err != nil {
			return err
		}
		if err := s.DB.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}
		return s.DB.UpdateOrderStatus(ctx, tx, orderID, models.OrderCompleted)
	})
	if err != nil {
		s.Logger.LogOrder("CREATE", order.OrderNumber, fmt.Sprintf("purchase failed: %v", err))
		return nil, err
	}

	s.Logger.LogOrder("CREATE", order.OrderNumber,
		fmt.Sprintf("completed: %d tickets, total %s %s", len(tickets), totals.TotalAmount.StringFixed(2), s.Currency))

	s.afterPurchase(ctx, &order, tickets, types, user)

	return s.DB.OrderWithTicketsByID(ctx, orderID)
}

// buildTickets issues one ticket per unit. Attendee info falls back to the
// line's first entry, then to the purchasing user.
func (s *OrderService) buildTickets(orderID string, items []models.TicketLineItem, types map[string]*models.TicketType, user *models.User) []models.Ticket {
	var tickets []models.Ticket
	for _, item := range items {
		tt := types[item.TicketTypeID]
		for i := 0; i < item.Quantity; i++ {
			name := user.FirstName + " " + user.LastName
			email := user.Email
			if len(item.Attendees) > 0 {
				att := item.Attendees[0]
				if i < len(item.Attendees) {
					att = item.Attendees[i]
				}
				name, email = att.Name, att.Email
			}
			tickets = append(tickets, models.Ticket{
				TicketID:      utils.NewID(),
				OrderID:       orderID,
				TicketTypeID:  item.TicketTypeID,
				SeatID:        item.SeatID,
				TicketNumber:  utils.GenerateTicketNumber(),
				AttendeeName:  name,
				AttendeeEmail: email,
				PricePaid:     tt.Price,
				Status:        models.TicketValid,
				CreatedAt:     time.Now(),
			})
		}
	}
	return tickets
}

// afterPurchase does the post-commit work. Nothing here can fail the
// order; every error is logged and dropped.
func (s *OrderService) afterPurchase(ctx context.Context, order *models.Order, tickets []models.Ticket, types map[string]*models.TicketType, user *models.User) {
	delta := analytics.SaleDelta{
		TicketsSold:   len(tickets),
		Attendees:     len(tickets),
		TotalAmount:   order.TotalAmount,
		TicketsByType: map[string]int{},
		RevenueByType: map[string]float64{},
	}
	for _, t := range tickets {
		name := types[t.TicketTypeID].Name
		delta.TicketsByType[name]++
		delta.RevenueByType[name] += t.PricePaid.InexactFloat64()
	}
	if err := s.Analytics.RecordSale(ctx, order.EventID, delta); err != nil {
		s.Logger.Warn("ANALYTICS", fmt.Sprintf("failed to record sale for order %s: %v", order.OrderNumber, err))
	}

	for _, t := range tickets {
		png, err := s.QR.Render(t.TicketNumber)
		if err != nil {
			s.Logger.Warn("TICKET", fmt.Sprintf("failed to render QR for ticket %s: %v", t.TicketNumber, err))
			continue
		}
		if err := s.DB.AttachTicketQR(ctx, t.TicketID, png); err != nil {
			s.Logger.Warn("TICKET", fmt.Sprintf("failed to attach QR for ticket %s: %v", t.TicketNumber, err))
		}
	}

	if err := s.Notifier.Notify(ctx, models.NotifyOrderConfirmation, user.Email, map[string]interface{}{
		"order_id":     order.OrderID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.StringFixed(2),
	}); err != nil {
		s.Logger.Warn("NOTIFY", fmt.Sprintf("order confirmation for %s: %v", order.OrderNumber, err))
	}
	for _, t := range tickets {
		if err := s.Notifier.Notify(ctx, models.NotifyTicketIssued, t.AttendeeEmail, map[string]interface{}{
			"ticket_number": t.TicketNumber,
			"order_number":  order.OrderNumber,
		}); err != nil {
			s.Logger.Warn("NOTIFY", fmt.Sprintf("ticket issued for %s: %v", t.TicketNumber, err))
		}
	}
}

// GetOrder returns an order with its tickets, nil when absent.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.OrderWithTickets, error) {
	return s.DB.OrderWithTicketsByID(ctx, orderID)
}

func paymentMethod(m string) string {
	if m == "" {
		return "credits"
	}
	return m
}
