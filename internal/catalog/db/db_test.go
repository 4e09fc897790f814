package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticketly/internal/catalog/db"
	"ticketly/internal/models"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Event)(nil), (*models.Price)(nil)); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	// The unique index backing ON CONFLICT; ResetModel does not create it.
	if _, err := bunDB.ExecContext(ctx,
		"CREATE UNIQUE INDEX prices_event_type_unique ON prices (event_id, type)"); err != nil {
		t.Fatalf("Failed to create unique index: %v", err)
	}

	return &db.DB{Bun: bunDB}
}

func seedEvent(t *testing.T, d *db.DB, id string) {
	t.Helper()
	event := models.Event{ID: id, CompanyID: "company-1", Name: "Summer Fest", Currency: "USD"}
	if _, err := d.Bun.NewInsert().Model(&event).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
}

func TestEventExists(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "event-1")

	exists, err := d.EventExists(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("EventExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected event-1 to exist")
	}

	exists, err = d.EventExists(context.Background(), "event-2")
	if err != nil {
		t.Fatalf("EventExists failed: %v", err)
	}
	if exists {
		t.Error("Expected event-2 to not exist")
	}
}

func TestUpsertPrices_InsertAndOverwrite(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "event-1")
	ctx := context.Background()

	first := []models.Price{
		{ID: "event-1:GENERAL", EventID: "event-1", Type: models.TicketTypeGeneral, UnitPrice: 10},
		{ID: "event-1:VIP", EventID: "event-1", Type: models.TicketTypeVIP, UnitPrice: 30},
	}
	if err := d.UpsertPrices(ctx, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	second := []models.Price{
		{ID: "event-1:VIP", EventID: "event-1", Type: models.TicketTypeVIP, UnitPrice: 35},
	}
	if err := d.UpsertPrices(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	prices, err := d.GetPricesByTypesAndEvent(ctx, "event-1",
		[]models.TicketType{models.TicketTypeGeneral, models.TicketTypeVIP})
	if err != nil {
		t.Fatalf("GetPricesByTypesAndEvent failed: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("Expected 2 prices, got %d", len(prices))
	}

	byType := make(map[models.TicketType]float64)
	for _, p := range prices {
		byType[p.Type] = p.UnitPrice
	}
	if byType[models.TicketTypeGeneral] != 10 {
		t.Errorf("Expected GENERAL price 10, got %.2f", byType[models.TicketTypeGeneral])
	}
	if byType[models.TicketTypeVIP] != 35 {
		t.Errorf("Expected VIP price overwritten to 35, got %.2f", byType[models.TicketTypeVIP])
	}
}

func TestGetPricesByTypesAndEvent_ScopedToEvent(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "event-1")
	seedEvent(t, d, "event-2")
	ctx := context.Background()

	if err := d.UpsertPrices(ctx, []models.Price{
		{ID: "event-1:GENERAL", EventID: "event-1", Type: models.TicketTypeGeneral, UnitPrice: 10},
		{ID: "event-2:GENERAL", EventID: "event-2", Type: models.TicketTypeGeneral, UnitPrice: 99},
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	prices, err := d.GetPricesByTypesAndEvent(ctx, "event-1", []models.TicketType{models.TicketTypeGeneral})
	if err != nil {
		t.Fatalf("GetPricesByTypesAndEvent failed: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("Expected 1 price, got %d", len(prices))
	}
	if prices[0].UnitPrice != 10 {
		t.Errorf("Expected event-1 price, got %.2f", prices[0].UnitPrice)
	}
}
