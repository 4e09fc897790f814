package catalog_test

import (
	"context"
	"errors"
	"testing"

	"ticketly/internal/catalog"
	"ticketly/internal/logger"
	"ticketly/internal/models"
)

// MockPriceDB is a mock implementation of the PriceDBLayer interface
type MockPriceDB struct {
	events        map[string]bool
	prices        map[string]models.Price
	shouldFailOn  string
	errorToReturn error
}

func NewMockPriceDB() *MockPriceDB {
	return &MockPriceDB{
		events: make(map[string]bool),
		prices: make(map[string]models.Price),
	}
}

func (m *MockPriceDB) EventExists(ctx context.Context, eventID string) (bool, error) {
	if m.shouldFailOn == "EventExists" {
		return false, m.errorToReturn
	}
	return m.events[eventID], nil
}

func (m *MockPriceDB) UpsertPrices(ctx context.Context, prices []models.Price) error {
	if m.shouldFailOn == "UpsertPrices" {
		return m.errorToReturn
	}
	for _, p := range prices {
		m.prices[p.ID] = p
	}
	return nil
}

func (m *MockPriceDB) GetPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error) {
	if m.shouldFailOn == "GetPricesByTypesAndEvent" {
		return nil, m.errorToReturn
	}
	var out []models.Price
	for _, p := range m.prices {
		if p.EventID != eventID {
			continue
		}
		for _, t := range types {
			if p.Type == t {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func newPriceService(db *MockPriceDB) *catalog.PriceService {
	return catalog.NewPriceService(db, logger.NewLogger())
}

func TestBulkCreatePrices_EventNotFound(t *testing.T) {
	mockDB := NewMockPriceDB()
	service := newPriceService(mockDB)

	_, err := service.BulkCreatePrices(context.Background(), "missing-event", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
	})
	if !errors.Is(err, models.ErrEventNotFound) {
		t.Fatalf("Expected ErrEventNotFound, got %v", err)
	}
	if len(mockDB.prices) != 0 {
		t.Errorf("Expected no prices written, got %d", len(mockDB.prices))
	}
}

func TestBulkCreatePrices_NegativePrice(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	service := newPriceService(mockDB)

	_, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
		{Type: models.TicketTypeVIP, UnitPrice: -5},
	})
	if !errors.Is(err, models.ErrNegativePrice) {
		t.Fatalf("Expected ErrNegativePrice, got %v", err)
	}
	if len(mockDB.prices) != 0 {
		t.Errorf("Expected rejected batch to write nothing, got %d prices", len(mockDB.prices))
	}
}

func TestBulkCreatePrices_ZeroPriceAllowed(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	service := newPriceService(mockDB)

	prices, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 0},
	})
	if err != nil {
		t.Fatalf("Expected free tickets to be accepted, got %v", err)
	}
	if len(prices) != 1 || prices[0].UnitPrice != 0 {
		t.Errorf("Expected one zero price, got %+v", prices)
	}
}

func TestBulkCreatePrices_DuplicateTypeLastWins(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	service := newPriceService(mockDB)

	prices, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeVIP, UnitPrice: 25},
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
		{Type: models.TicketTypeVIP, UnitPrice: 30},
	})
	if err != nil {
		t.Fatalf("BulkCreatePrices failed: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("Expected 2 deduped prices, got %d", len(prices))
	}

	var vip models.Price
	for _, p := range prices {
		if p.Type == models.TicketTypeVIP {
			vip = p
		}
	}
	if vip.UnitPrice != 30 {
		t.Errorf("Expected last VIP price 30 to win, got %.2f", vip.UnitPrice)
	}
}

func TestBulkCreatePrices_RepriceOverwrites(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	service := newPriceService(mockDB)

	if _, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
	}); err != nil {
		t.Fatalf("First batch failed: %v", err)
	}
	if _, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 12.5},
	}); err != nil {
		t.Fatalf("Second batch failed: %v", err)
	}

	prices, err := service.FindPricesByTypesAndEvent(context.Background(), "event-1", []models.TicketType{models.TicketTypeGeneral})
	if err != nil {
		t.Fatalf("FindPricesByTypesAndEvent failed: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("Expected a single row per (event, type), got %d", len(prices))
	}
	if prices[0].UnitPrice != 12.5 {
		t.Errorf("Expected reprice to overwrite, got %.2f", prices[0].UnitPrice)
	}
}

func TestFindPrices_MissingTypeOmitted(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	service := newPriceService(mockDB)

	if _, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
	}); err != nil {
		t.Fatalf("BulkCreatePrices failed: %v", err)
	}

	prices, err := service.FindPricesByTypesAndEvent(context.Background(), "event-1",
		[]models.TicketType{models.TicketTypeGeneral, models.TicketTypeVIP})
	if err != nil {
		t.Fatalf("FindPricesByTypesAndEvent failed: %v", err)
	}
	if len(prices) != 1 {
		t.Errorf("Expected only priced types in result, got %d rows", len(prices))
	}
}

func TestBulkCreatePrices_StorageFailure(t *testing.T) {
	mockDB := NewMockPriceDB()
	mockDB.events["event-1"] = true
	mockDB.shouldFailOn = "UpsertPrices"
	mockDB.errorToReturn = errors.New("connection reset")
	service := newPriceService(mockDB)

	_, err := service.BulkCreatePrices(context.Background(), "event-1", []models.PriceRequest{
		{Type: models.TicketTypeGeneral, UnitPrice: 10},
	})

	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Expected StorageError, got %v", err)
	}
}
