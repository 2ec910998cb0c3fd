package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type UserRole string

const (
	RoleOrganizer UserRole = "organizer"
	RoleAttendee  UserRole = "attendee"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	UserID    string          `bun:"user_id,pk" json:"user_id"`
	Email     string          `bun:"email,unique,notnull" json:"email"`
	FirstName string          `bun:"first_name,notnull" json:"first_name"`
	LastName  string          `bun:"last_name,notnull" json:"last_name"`
	Role      UserRole        `bun:"role,notnull" json:"role"`
	Credits   decimal.Decimal `bun:"credits,notnull,type:numeric(10,2)" json:"credits"`
	CreatedAt time.Time       `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
