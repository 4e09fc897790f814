package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Company struct {
	bun.BaseModel `bun:"table:companies"`

	ID      string `bun:"id,pk" json:"id"`
	Name    string `bun:"name" json:"name"`
	Country string `bun:"country" json:"country"`
}

// Event owns its prices and calendars. Currency comes from the owning
// country and is passed through to the payment provider unchanged.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID        string `bun:"id,pk" json:"id"`
	CompanyID string `bun:"company_id" json:"company_id"`
	Name      string `bun:"name" json:"name"`
	Currency  string `bun:"currency" json:"currency"`
}

// Calendar is one scheduled occurrence of an event and owns a ticket batch.
type Calendar struct {
	bun.BaseModel `bun:"table:calendars"`

	ID       string    `bun:"id,pk" json:"id"`
	EventID  string    `bun:"event_id" json:"event_id"`
	StartsAt time.Time `bun:"starts_at" json:"starts_at"`
	EndsAt   time.Time `bun:"ends_at" json:"ends_at"`
}
