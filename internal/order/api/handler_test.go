package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/order"
	"ticketly/internal/order/api"
	"ticketly/internal/payment"
)

// Stubs wire a real OrderService to canned behavior so the handler's
// status-code mapping can be exercised end to end.
type stubDB struct {
	claimErr error
	released int
}

func (s *stubDB) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return &models.Event{ID: eventID, Currency: "USD"}, nil
}
func (s *stubDB) CalendarBelongsToEvent(ctx context.Context, calendarID, eventID string) (bool, error) {
	return true, nil
}
func (s *stubDB) UserExists(ctx context.Context, userID string) (bool, error) { return true, nil }
func (s *stubDB) ClaimTickets(ctx context.Context, calendarID string, ticketType models.TicketType, quantity int, customerID, orderID string) ([]string, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	return []string{"t1", "t2"}, nil
}
func (s *stubDB) MarkOrderSold(ctx context.Context, orderID string) (int, error) { return 2, nil }
func (s *stubDB) ReleaseOrder(ctx context.Context, orderID string) (int, error) {
	return s.released, nil
}
func (s *stubDB) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	return nil, nil
}

type stubCatalog struct{}

func (stubCatalog) FindPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error) {
	return []models.Price{{EventID: eventID, Type: models.TicketTypeVIP, UnitPrice: 30.0}}, nil
}

type stubProvider struct{}

func (stubProvider) CreateOrder(ctx context.Context, amount float64, currency, returnURL string) (*payment.ProviderOrder, error) {
	return &payment.ProviderOrder{
		ID:    "PAY-123",
		Links: []payment.Link{{Href: "https://provider.example/approve/PAY-123", Rel: "approve"}},
	}, nil
}
func (stubProvider) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	return "COMPLETED", nil
}

type stubPublisher struct{}

func (stubPublisher) PublishOrderReserved(string, []string, string) error { return nil }
func (stubPublisher) PublishOrderCompleted(string, int) error             { return nil }
func (stubPublisher) PublishOrderReleased(string, int) error              { return nil }

func newRouter(db *stubDB) *chi.Mux {
	svc := order.NewOrderService(db, stubCatalog{}, stubProvider{}, stubPublisher{},
		"http://localhost:8080/api/v1/orders/capture", logger.NewLogger())
	handler := api.NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/orders", handler.Checkout)
	r.Get("/orders/capture", handler.Capture)
	r.Post("/orders/{orderID}/release", handler.Release)
	return r
}

func checkoutBody() *bytes.Buffer {
	body, _ := json.Marshal(models.CheckoutRequest{
		EventID:         "event-1",
		CalendarID:      "cal-1",
		CustomerID:      "user-1",
		TicketType:      models.TicketTypeVIP,
		NumberOfTickets: 2,
		TotalAmount:     60.0,
	})
	return bytes.NewBuffer(body)
}

func TestCheckoutHandler_Created(t *testing.T) {
	r := newRouter(&stubDB{})

	req := httptest.NewRequest(http.MethodPost, "/orders", checkoutBody())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID     string `json:"order_id"`
			PaymentLink string `json:"payment_link"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success || resp.Data.OrderID != "PAY-123" || resp.Data.PaymentLink == "" {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestCheckoutHandler_ConflictWhenSoldOut(t *testing.T) {
	r := newRouter(&stubDB{claimErr: models.ErrTicketUnavailable})

	req := httptest.NewRequest(http.MethodPost, "/orders", checkoutBody())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for sold-out inventory, got %d", rec.Code)
	}
}

func TestCheckoutHandler_UnprocessableOnBadQuantity(t *testing.T) {
	r := newRouter(&stubDB{})

	body, _ := json.Marshal(models.CheckoutRequest{
		EventID:         "event-1",
		CalendarID:      "cal-1",
		CustomerID:      "user-1",
		TicketType:      models.TicketTypeVIP,
		NumberOfTickets: 0,
		TotalAmount:     60.0,
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for zero quantity, got %d", rec.Code)
	}
}

func TestCaptureHandler_RequiresToken(t *testing.T) {
	r := newRouter(&stubDB{})

	req := httptest.NewRequest(http.MethodGet, "/orders/capture", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without token, got %d", rec.Code)
	}
}

func TestCaptureHandler_ReturnsProviderStatus(t *testing.T) {
	r := newRouter(&stubDB{})

	req := httptest.NewRequest(http.MethodGet, "/orders/capture?token=PAY-123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.Status != "COMPLETED" {
		t.Errorf("Expected COMPLETED, got %q", resp.Data.Status)
	}
}

func TestReleaseHandler(t *testing.T) {
	r := newRouter(&stubDB{released: 2})

	req := httptest.NewRequest(http.MethodPost, "/orders/PAY-123/release", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Released int `json:"released"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Data.Released != 2 {
		t.Errorf("Expected 2 released, got %d", resp.Data.Released)
	}
}
