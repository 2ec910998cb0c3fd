package order_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"tickethub/internal/analytics"
	"tickethub/internal/inventory"
	"tickethub/internal/logger"
	"tickethub/internal/models"
	"tickethub/internal/order"
	orderdb "tickethub/internal/order/db"
	"tickethub/internal/pricing"
	"tickethub/internal/wallet"
)

// ---------------- Fakes ----------------

type fakeLocker struct {
	deny     bool
	locked   [][]string
	unlocked [][]string
}

func (f *fakeLocker) LockTypes(typeIDs []string, orderID string) (bool, error) {
	if f.deny {
		return false, nil
	}
	f.locked = append(f.locked, typeIDs)
	return true, nil
}

func (f *fakeLocker) UnlockTypes(typeIDs []string, orderID string) error {
	f.unlocked = append(f.unlocked, typeIDs)
	return nil
}

type fakeAnalytics struct {
	deltas []analytics.SaleDelta
}

func (f *fakeAnalytics) RecordSale(_ context.Context, _ string, delta analytics.SaleDelta) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

type fakeQR struct{}

func (fakeQR) Render(payload string) ([]byte, error) {
	return []byte("png:" + payload), nil
}

type fakeNotifier struct {
	kinds      []models.NotificationKind
	recipients []string
}

func (f *fakeNotifier) Notify(_ context.Context, kind models.NotificationKind, recipient string, _ map[string]interface{}) error {
	f.kinds = append(f.kinds, kind)
	f.recipients = append(f.recipients, recipient)
	return nil
}

// ---------------- Fixture ----------------

type fixture struct {
	bunDB     *bun.DB
	svc       *order.OrderService
	locker    *fakeLocker
	analytics *fakeAnalytics
	notifier  *fakeNotifier
}

func setup(t *testing.T, taxRate string) *fixture {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.TicketType)(nil),
		(*models.PromoCode)(nil),
		(*models.Order)(nil),
		(*models.Ticket)(nil),
		(*models.Payment)(nil),
	}
	for _, m := range tables {
		_, err := bunDB.NewCreateTable().Model(m).Exec(context.Background())
		require.NoError(t, err)
	}
	t.Cleanup(func() { bunDB.Close() })

	repo := orderdb.NewDB(bunDB)
	engine := pricing.NewEngine(repo, repo, decimal.RequireFromString(taxRate))
	locker := &fakeLocker{}
	analyticsStub := &fakeAnalytics{}
	notifier := &fakeNotifier{}

	svc := order.NewOrderService(repo, locker, engine, analyticsStub, fakeQR{}, notifier,
		logger.NewLogger(), "USD", "wallet")

	return &fixture{
		bunDB:     bunDB,
		svc:       svc,
		locker:    locker,
		analytics: analyticsStub,
		notifier:  notifier,
	}
}

func (f *fixture) seedUser(t *testing.T, id, credits string, role models.UserRole) {
	user := models.User{
		UserID:    id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  "Buyer",
		Role:      role,
		Credits:   decimal.RequireFromString(credits),
		CreatedAt: time.Now(),
	}
	_, err := f.bunDB.NewInsert().Model(&user).Exec(context.Background())
	require.NoError(t, err)
}

func (f *fixture) seedEvent(t *testing.T, id string, status models.EventStatus) {
	event := models.Event{
		EventID:     id,
		OrganizerID: "org1",
		VenueID:     "venue1",
		Name:        "Test Event",
		Status:      status,
		StartAt:     time.Now().Add(24 * time.Hour),
		EndAt:       time.Now().Add(28 * time.Hour),
		CreatedAt:   time.Now(),
	}
	_, err := f.bunDB.NewInsert().Model(&event).Exec(context.Background())
	require.NoError(t, err)
}

func (f *fixture) seedType(t *testing.T, id, eventID, name, price string, available int) {
	tt := models.TicketType{
		TicketTypeID:      id,
		EventID:           eventID,
		Name:              name,
		Price:             decimal.RequireFromString(price),
		QuantityTotal:     available,
		QuantityAvailable: available,
		SaleStart:         time.Now().Add(-time.Hour),
		SaleEnd:           time.Now().Add(48 * time.Hour),
		MinPurchase:       1,
		MaxPurchase:       10,
	}
	_, err := f.bunDB.NewInsert().Model(&tt).Exec(context.Background())
	require.NoError(t, err)
}

func (f *fixture) seedPromo(t *testing.T, id, code string, kind models.DiscountType, value string, limit int) {
	promo := models.PromoCode{
		PromoID:       id,
		Code:          code,
		DiscountType:  kind,
		DiscountValue: decimal.RequireFromString(value),
		UsageLimit:    limit,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	_, err := f.bunDB.NewInsert().Model(&promo).Exec(context.Background())
	require.NoError(t, err)
}

func (f *fixture) userCredits(t *testing.T, id string) string {
	var user models.User
	require.NoError(t, f.bunDB.NewSelect().Model(&user).Where("user_id = ?", id).Scan(context.Background()))
	return user.Credits.StringFixed(2)
}

func (f *fixture) typeAvailable(t *testing.T, id string) int {
	var tt models.TicketType
	require.NoError(t, f.bunDB.NewSelect().Model(&tt).Where("ticket_type_id = ?", id).Scan(context.Background()))
	return tt.QuantityAvailable
}

func (f *fixture) promoUsage(t *testing.T, id string) int {
	var promo models.PromoCode
	require.NoError(t, f.bunDB.NewSelect().Model(&promo).Where("promo_id = ?", id).Scan(context.Background()))
	return promo.UsageCount
}

func (f *fixture) orderCount(t *testing.T) int {
	count, err := f.bunDB.NewSelect().Model((*models.Order)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}

// ---------------- Tests ----------------

func TestCreateOrderSuccess(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "500.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "45.00", 10)
	f.seedPromo(t, "promo1", "SAVE10", models.DiscountPercentage, "10.00", 5)

	result, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:  "buyer",
		EventID: "event1",
		TicketItems: []models.TicketLineItem{
			{TicketTypeID: "ga", Quantity: 2, Attendees: []models.Attendee{{Name: "Ana", Email: "ana@example.com"}}},
		},
		PromoCode: "SAVE10",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Totals: 90.00 subtotal, 10% off, no tax.
	assert.Equal(t, models.OrderCompleted, result.Status)
	assert.Equal(t, "90.00", result.Subtotal.StringFixed(2))
	assert.Equal(t, "9.00", result.DiscountAmount.StringFixed(2))
	assert.Equal(t, "81.00", result.TotalAmount.StringFixed(2))
	assert.True(t, strings.HasPrefix(result.OrderNumber, "ORD_"))

	require.Len(t, result.Tickets, 2)
	for _, ticket := range result.Tickets {
		assert.Equal(t, models.TicketValid, ticket.Status)
		assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TKT_"))
		assert.Equal(t, "45.00", ticket.PricePaid.StringFixed(2))
		// One attendee entry covers both seats.
		assert.Equal(t, "Ana", ticket.AttendeeName)
		assert.NotEmpty(t, ticket.QRCode)
	}

	assert.Equal(t, 8, f.typeAvailable(t, "ga"))
	assert.Equal(t, 1, f.promoUsage(t, "promo1"))
	assert.Equal(t, "419.00", f.userCredits(t, "buyer"))

	var payment models.Payment
	require.NoError(t, f.bunDB.NewSelect().Model(&payment).Where("order_id = ?", result.OrderID).Scan(context.Background()))
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, "81.00", payment.Amount.StringFixed(2))
	assert.True(t, strings.HasPrefix(payment.TransactionID, "TXN_"))
	assert.Equal(t, "wallet", payment.Gateway)

	require.Len(t, f.analytics.deltas, 1)
	assert.Equal(t, 2, f.analytics.deltas[0].TicketsByType["General Admission"])

	// One confirmation plus one ticket-issued per ticket.
	assert.Equal(t, []models.NotificationKind{
		models.NotifyOrderConfirmation,
		models.NotifyTicketIssued,
		models.NotifyTicketIssued,
	}, f.notifier.kinds)

	require.Len(t, f.locker.unlocked, 1)
}

func TestCreateOrderAttendeeFallbackToBuyer(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "100.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "20.00", 10)

	result, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:  "buyer",
		EventID: "event1",
		TicketItems: []models.TicketLineItem{
			{TicketTypeID: "ga", Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Test Buyer", result.Tickets[0].AttendeeName)
	assert.Equal(t, "buyer@example.com", result.Tickets[0].AttendeeEmail)
}

func TestCreateOrderInsufficientCreditsRollsBack(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "10.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "25.00", 10)
	f.seedPromo(t, "promo1", "SAVE10", models.DiscountPercentage, "0.00", 5)

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:  "buyer",
		EventID: "event1",
		TicketItems: []models.TicketLineItem{
			{TicketTypeID: "ga", Quantity: 1},
		},
		PromoCode: "SAVE10",
	})
	assert.ErrorIs(t, err, wallet.ErrInsufficientCredits)

	// Everything inside the transaction rolled back.
	assert.Equal(t, "10.00", f.userCredits(t, "buyer"))
	assert.Equal(t, 10, f.typeAvailable(t, "ga"))
	assert.Equal(t, 0, f.promoUsage(t, "promo1"))
	assert.Equal(t, 0, f.orderCount(t))
	assert.Empty(t, f.analytics.deltas)
	assert.Empty(t, f.notifier.kinds)
}

func TestCreateOrderFixedPromoCanZeroTotal(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "5.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "40.00", 10)
	f.seedPromo(t, "promo1", "FLAT100", models.DiscountFixedAmount, "100.00", 0)

	result, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:  "buyer",
		EventID: "event1",
		TicketItems: []models.TicketLineItem{
			{TicketTypeID: "ga", Quantity: 1},
		},
		PromoCode: "FLAT100",
	})
	require.NoError(t, err)

	// Discount is capped at the subtotal, never driving the total negative.
	assert.Equal(t, "40.00", result.DiscountAmount.StringFixed(2))
	assert.Equal(t, "0.00", result.TotalAmount.StringFixed(2))
	assert.Equal(t, "5.00", f.userCredits(t, "buyer"))
}

func TestCreateOrderEventNotAvailable(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "100.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventCancelled)
	f.seedType(t, "ga", "event1", "General Admission", "20.00", 10)

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:      "buyer",
		EventID:     "event1",
		TicketItems: []models.TicketLineItem{{TicketTypeID: "ga", Quantity: 1}},
	})
	assert.ErrorIs(t, err, order.ErrEventNotAvailable)
}

func TestCreateOrderTicketTypeMismatch(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "100.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedEvent(t, "event2", models.EventPublished)
	f.seedType(t, "other", "event2", "Other", "20.00", 10)

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:      "buyer",
		EventID:     "event1",
		TicketItems: []models.TicketLineItem{{TicketTypeID: "other", Quantity: 1}},
	})
	assert.ErrorIs(t, err, inventory.ErrTicketTypeMismatch)
}

func TestCreateOrderInsufficientInventoryPreCheck(t *testing.T) {
	f := setup(t, "0")
	f.seedUser(t, "buyer", "1000.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "20.00", 2)

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:      "buyer",
		EventID:     "event1",
		TicketItems: []models.TicketLineItem{{TicketTypeID: "ga", Quantity: 3}},
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
	assert.Equal(t, 2, f.typeAvailable(t, "ga"))
	assert.Equal(t, 0, f.orderCount(t))
}

func TestCreateOrderTypesLocked(t *testing.T) {
	f := setup(t, "0")
	f.locker.deny = true
	f.seedUser(t, "buyer", "100.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "20.00", 10)

	_, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:      "buyer",
		EventID:     "event1",
		TicketItems: []models.TicketLineItem{{TicketTypeID: "ga", Quantity: 1}},
	})
	assert.ErrorIs(t, err, order.ErrTypesLocked)
	assert.Equal(t, 0, f.orderCount(t))
}

func TestCreateOrderWithTax(t *testing.T) {
	f := setup(t, "0.10")
	f.seedUser(t, "buyer", "100.00", models.RoleAttendee)
	f.seedEvent(t, "event1", models.EventPublished)
	f.seedType(t, "ga", "event1", "General Admission", "50.00", 10)

	result, err := f.svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:      "buyer",
		EventID:     "event1",
		TicketItems: []models.TicketLineItem{{TicketTypeID: "ga", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "5.00", result.TaxAmount.StringFixed(2))
	assert.Equal(t, "55.00", result.TotalAmount.StringFixed(2))
	// total = subtotal - discount + tax
	want := result.Subtotal.Sub(result.DiscountAmount).Add(result.TaxAmount)
	assert.True(t, result.TotalAmount.Equal(want))
}
