package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TicketType is a purchasable SKU for an event. QuantityAvailable is the
// only mutable field in the purchase path and is always decremented with a
// conditional UPDATE, never a read-modify-write.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	TicketTypeID      string          `bun:"ticket_type_id,pk" json:"ticket_type_id"`
	EventID           string          `bun:"event_id,notnull" json:"event_id"`
	SectionID         string          `bun:"section_id,nullzero" json:"section_id,omitempty"`
	Name              string          `bun:"name,notnull" json:"name"`
	Description       string          `bun:"description,nullzero" json:"description,omitempty"`
	Price             decimal.Decimal `bun:"price,notnull,type:numeric(10,2)" json:"price"`
	QuantityTotal     int             `bun:"quantity_total,notnull" json:"quantity_total"`
	QuantityAvailable int             `bun:"quantity_available,notnull" json:"quantity_available"`
	SaleStart         time.Time       `bun:"sale_start,notnull" json:"sale_start"`
	SaleEnd           time.Time       `bun:"sale_end,notnull" json:"sale_end"`
	MinPurchase       int             `bun:"min_purchase,notnull,default:1" json:"min_purchase"`
	MaxPurchase       int             `bun:"max_purchase,notnull,default:10" json:"max_purchase"`
}
