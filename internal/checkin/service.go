package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"tickethub/internal/logger"
	"tickethub/internal/models"
	"tickethub/internal/utils"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrWrongEvent       = errors.New("ticket does not belong to this event")
	ErrTicketNotValid   = errors.New("ticket is not valid for check-in")
	ErrAlreadyCheckedIn = errors.New("ticket has already been checked in")
)

// Service handles gate check-ins. A ticket checks in once; the unique
// ticket_id column on check_ins backstops the application-level guard.
type Service struct {
	DB     *DB
	Logger *logger.Logger
}

func NewService(db *DB, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

func (s *Service) CheckIn(ctx context.Context, req models.CheckInRequest) (*models.CheckIn, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ticket, err := s.DB.TicketByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	event, err := s.DB.EventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	order, err := s.DB.OrderByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.EventID != req.EventID {
		return nil, ErrWrongEvent
	}

	if ticket.Status == models.TicketUsed {
		return nil, ErrAlreadyCheckedIn
	}
	if ticket.Status != models.TicketValid {
		return nil, fmt.Errorf("%w: status %s", ErrTicketNotValid, ticket.Status)
	}
	existing, err := s.DB.CheckInByTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	method := req.Method
	if method == "" {
		method = models.CheckInManual
	}
	row := models.CheckIn{
		CheckInID:   utils.NewID(),
		TicketID:    req.TicketID,
		EventID:     req.EventID,
		Method:      method,
		CheckedInBy: req.CheckedInBy,
		Location:    req.Location,
		CheckedAt:   time.Now(),
	}

	err = s.DB.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return s.DB.markCheckedIn(ctx, tx, &row)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("CHECKIN", fmt.Sprintf("ticket %s checked in at event %s", ticket.TicketNumber, req.EventID))
	return &row, nil
}
