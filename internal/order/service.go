package order

import (
	"context"
	"fmt"
	"math"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/payment"
)

type OrderDBLayer interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	CalendarBelongsToEvent(ctx context.Context, calendarID, eventID string) (bool, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ClaimTickets(ctx context.Context, calendarID string, ticketType models.TicketType, quantity int, customerID, orderID string) ([]string, error)
	MarkOrderSold(ctx context.Context, orderID string) (int, error)
	ReleaseOrder(ctx context.Context, orderID string) (int, error)
	GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
}

type PriceCatalog interface {
	FindPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error)
}

type EventPublisher interface {
	PublishOrderReserved(orderID string, ticketIDs []string, customerID string) error
	PublishOrderCompleted(orderID string, soldCount int) error
	PublishOrderReleased(orderID string, releasedCount int) error
}

// OrderService drives checkout: it validates the request, creates the
// provider order, claims inventory, and reconciles ticket state with the
// capture outcome. The database claim is the only concurrency-correctness
// mechanism; there are no application-level locks.
type OrderService struct {
	DB        OrderDBLayer
	Catalog   PriceCatalog
	Provider  payment.Provider
	Kafka     EventPublisher
	ReturnURL string
	Logger    *logger.Logger
}

func NewOrderService(db OrderDBLayer, catalog PriceCatalog, provider payment.Provider, kafka EventPublisher, returnURL string, log *logger.Logger) *OrderService {
	return &OrderService{
		DB:        db,
		Catalog:   catalog,
		Provider:  provider,
		Kafka:     kafka,
		ReturnURL: returnURL,
		Logger:    log,
	}
}

// ValidationError marks boundary-level request problems (422 at the HTTP layer).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Checkout reserves quantity tickets for the customer and returns the
// external order id plus the link the payer is redirected to. The provider
// order is created before the claim, so a provider failure leaves no tickets
// reserved; a failed claim leaves an order the payer never approves.
func (s *OrderService) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if req.NumberOfTickets < 1 {
		return nil, &ValidationError{Field: "number_of_tickets", Reason: "must be at least 1"}
	}
	if req.TotalAmount < 1 {
		return nil, &ValidationError{Field: "total_amount", Reason: "must be at least 1"}
	}

	event, err := s.DB.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, models.ErrEventNotFound
	}

	ok, err := s.DB.CalendarBelongsToEvent(ctx, req.CalendarID, req.EventID)
	if err != nil {
		return nil, &models.StorageError{Op: "calendar lookup", Err: err}
	}
	if !ok {
		return nil, models.ErrCalendarNotFound
	}

	ok, err = s.DB.UserExists(ctx, req.CustomerID)
	if err != nil {
		return nil, &models.StorageError{Op: "customer lookup", Err: err}
	}
	if !ok {
		return nil, models.ErrUserNotFound
	}

	prices, err := s.Catalog.FindPricesByTypesAndEvent(ctx, req.EventID, []models.TicketType{req.TicketType})
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidTicketType, req.TicketType)
	}

	expectedTotal := prices[0].UnitPrice * float64(req.NumberOfTickets)
	if math.Abs(expectedTotal-req.TotalAmount) > 0.009 {
		s.Logger.Warn("ORDER", fmt.Sprintf("Total mismatch for event %s: requested %.2f, catalog %.2f", req.EventID, req.TotalAmount, expectedTotal))
		return nil, models.ErrTotalAmountMismatch
	}

	providerOrder, err := s.Provider.CreateOrder(ctx, expectedTotal, event.Currency, s.ReturnURL)
	if err != nil {
		return nil, err
	}

	approveLink, err := providerOrder.ApproveLink()
	if err != nil {
		return nil, &models.PaymentOrderError{Err: err}
	}

	ticketIDs, err := s.DB.ClaimTickets(ctx, req.CalendarID, req.TicketType, req.NumberOfTickets, req.CustomerID, providerOrder.ID)
	if err != nil {
		if err == models.ErrTicketUnavailable {
			s.Logger.Warn("ORDER", fmt.Sprintf("Insufficient %s tickets in calendar %s for order %s", req.TicketType, req.CalendarID, providerOrder.ID))
			return nil, err
		}
		return nil, &models.StorageError{Op: "ticket claim", Err: err}
	}

	s.Logger.LogOrder("RESERVE", providerOrder.ID, fmt.Sprintf("claimed %d %s tickets for customer %s", len(ticketIDs), req.TicketType, req.CustomerID))

	if err := s.Kafka.PublishOrderReserved(providerOrder.ID, ticketIDs, req.CustomerID); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish order_reserved for %s: %v", providerOrder.ID, err))
	}

	return &models.CheckoutResponse{
		OrderID:     providerOrder.ID,
		PaymentLink: approveLink,
		TicketIDs:   ticketIDs,
	}, nil
}

// Capture asks the provider to capture the order, then reconciles ticket
// state with the outcome. The provider's status string is returned verbatim.
func (s *OrderService) Capture(ctx context.Context, orderID string) (string, error) {
	status, err := s.Provider.CaptureOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return s.Finalize(ctx, orderID, status)
}

// Finalize is the reconciler: only a COMPLETED capture moves tickets to SOLD.
// The update predicate (status=RESERVED AND order_id=X) makes re-delivery of
// the same result a no-op. Any other status is returned untouched and the
// reservation stays in place.
func (s *OrderService) Finalize(ctx context.Context, orderID, status string) (string, error) {
	if status != models.CaptureCompleted {
		s.Logger.LogOrder("CAPTURE", orderID, fmt.Sprintf("capture status %s, tickets stay reserved", status))
		return status, nil
	}

	sold, err := s.DB.MarkOrderSold(ctx, orderID)
	if err != nil {
		// The provider has already captured the payment; surface the failure
		// so the caller can retry reconciliation.
		s.Logger.Error("ORDER", fmt.Sprintf("Payment captured but finalize failed for order %s: %v", orderID, err))
		return "", &models.StorageError{Op: "order finalize", Err: err}
	}

	if sold == 0 {
		s.Logger.LogOrder("CAPTURE", orderID, "already finalized, no-op")
		return status, nil
	}

	s.Logger.LogOrder("CAPTURE", orderID, fmt.Sprintf("%d tickets sold", sold))

	if err := s.Kafka.PublishOrderCompleted(orderID, sold); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish order_completed for %s: %v", orderID, err))
	}

	return status, nil
}

// Release returns a RESERVED order's tickets to AVAILABLE. There is no
// automatic expiry; this is the explicit path for abandoned or declined
// checkouts.
func (s *OrderService) Release(ctx context.Context, orderID string) (int, error) {
	released, err := s.DB.ReleaseOrder(ctx, orderID)
	if err != nil {
		return 0, &models.StorageError{Op: "order release", Err: err}
	}

	s.Logger.LogOrder("RELEASE", orderID, fmt.Sprintf("%d tickets returned to inventory", released))

	if released > 0 {
		if err := s.Kafka.PublishOrderReleased(orderID, released); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish order_released for %s: %v", orderID, err))
		}
	}

	return released, nil
}

// GetTicketsByOrder returns the tickets tagged with an external order id.
func (s *OrderService) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, &models.StorageError{Op: "order ticket lookup", Err: err}
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("no tickets found for order %s", orderID)
	}
	return tickets, nil
}
