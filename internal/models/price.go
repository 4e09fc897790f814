package models

import "github.com/uptrace/bun"

// Price maps (event, ticket type) to a unit price. At most one row per pair.
type Price struct {
	bun.BaseModel `bun:"table:prices"`

	ID        string     `bun:"id,pk" json:"id"`
	EventID   string     `bun:"event_id" json:"event_id"`
	Type      TicketType `bun:"type" json:"type"`
	UnitPrice float64    `bun:"unit_price" json:"unit_price"`
}

// PriceRequest is one (type, unit price) line of a bulk price-catalog request.
type PriceRequest struct {
	Type      TicketType `json:"type"`
	UnitPrice float64    `json:"unit_price"`
}
