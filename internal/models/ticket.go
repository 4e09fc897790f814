package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TicketType string

const (
	TicketTypeGeneral TicketType = "GENERAL"
	TicketTypeVIP     TicketType = "VIP"
)

// TicketStatus follows AVAILABLE -> RESERVED -> SOLD. SOLD is terminal.
type TicketStatus string

const (
	TicketAvailable TicketStatus = "AVAILABLE"
	TicketReserved  TicketStatus = "RESERVED"
	TicketSold      TicketStatus = "SOLD"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID         string       `bun:"id,pk" json:"id"`
	CalendarID string       `bun:"calendar_id" json:"calendar_id"`
	Type       TicketType   `bun:"type" json:"type"`
	Status     TicketStatus `bun:"status" json:"status"`
	CustomerID string       `bun:"customer_id,nullzero" json:"customer_id,omitempty"`
	OrderID    string       `bun:"order_id,nullzero" json:"order_id,omitempty"`
	CreatedAt  time.Time    `bun:"created_at,nullzero" json:"created_at"`
}

// TicketRequest is one (type, quantity) line of a bulk inventory request.
type TicketRequest struct {
	Type     TicketType `json:"type"`
	Quantity int        `json:"quantity"`
}

// TicketTypeSummary reports how many tickets of a type were created and at what unit price.
type TicketTypeSummary struct {
	Type      TicketType `json:"type"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unit_price"`
}

// TicketTotals is the aggregation returned for a calendar's inventory.
type TicketTotals struct {
	Total    int                  `json:"total"`
	ByType   map[TicketType]int   `json:"by_type"`
	ByStatus map[TicketStatus]int `json:"by_status"`
}
