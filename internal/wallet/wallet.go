package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tickethub/internal/models"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRoleNotPermitted    = errors.New("only attendees can purchase tickets")
	ErrUserNotFound        = errors.New("user not found")
)

// Ledger moves credits in and out of user wallets. Debits are conditional
// UPDATEs so a balance can never go negative, even under concurrent spend.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Debit removes amount from the user's wallet. Only attendees may be
// debited. Zero rows affected on the conditional UPDATE means the balance
// was short.
func (l *Ledger) Debit(ctx context.Context, idb bun.IDB, userID string, amount decimal.Decimal) error {
	var user models.User
	err := idb.NewSelect().
		Model(&user).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.Role != models.RoleAttendee {
		return ErrRoleNotPermitted
	}

	res, err := idb.NewUpdate().
		Model((*models.User)(nil)).
		Set("credits = credits - ?", amount).
		Where("user_id = ?", userID).
		Where("credits >= ?", amount).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// Credit adds amount to the user's wallet unconditionally. Any role may
// be credited; refunds go back regardless of who holds the account now.
func (l *Ledger) Credit(ctx context.Context, idb bun.IDB, userID string, amount decimal.Decimal) error {
	res, err := idb.NewUpdate().
		Model((*models.User)(nil)).
		Set("credits = credits + ?", amount).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
