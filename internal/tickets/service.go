package tickets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/tickets/qr"
)

type TicketDBLayer interface {
	GetCalendar(ctx context.Context, calendarID string) (*models.Calendar, error)
	CalendarBelongsToCompany(ctx context.Context, calendarID, companyID string) (bool, error)
	InsertTickets(ctx context.Context, tickets []models.Ticket) error
	CountNonAvailableByCalendar(ctx context.Context, calendarID string) (int, error)
	DeleteTicketsByCalendar(ctx context.Context, calendarID string) error
	GetTicketTotals(ctx context.Context, calendarID string) (*models.TicketTotals, error)
	GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
}

type PriceCatalog interface {
	FindPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error)
}

// TicketService seeds and guards a calendar's ticket inventory. Reserving and
// selling tickets is the order service's job; nothing here mutates a ticket
// that has left AVAILABLE.
type TicketService struct {
	DB      TicketDBLayer
	Catalog PriceCatalog
	QR      *qr.Generator
	Logger  *logger.Logger
}

func NewTicketService(db TicketDBLayer, catalog PriceCatalog, qrGen *qr.Generator, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Catalog: catalog, QR: qrGen, Logger: log}
}

// CreateTickets bulk-creates sum(quantity) AVAILABLE tickets for a calendar.
// Every requested type must have a price on the calendar's event; otherwise
// the entire batch is rejected and nothing is created.
func (s *TicketService) CreateTickets(ctx context.Context, calendarID string, requests []models.TicketRequest) ([]models.TicketTypeSummary, error) {
	calendar, err := s.DB.GetCalendar(ctx, calendarID)
	if err != nil {
		return nil, models.ErrCalendarNotFound
	}

	// Distinct requested types, in request order.
	var types []models.TicketType
	quantities := make(map[models.TicketType]int)
	for _, req := range requests {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for type %s", req.Quantity, req.Type)
		}
		if _, seen := quantities[req.Type]; !seen {
			types = append(types, req.Type)
		}
		quantities[req.Type] += req.Quantity
	}

	prices, err := s.Catalog.FindPricesByTypesAndEvent(ctx, calendar.EventID, types)
	if err != nil {
		return nil, err
	}

	priced := make(map[models.TicketType]float64, len(prices))
	for _, p := range prices {
		priced[p.Type] = p.UnitPrice
	}
	for _, t := range types {
		if _, ok := priced[t]; !ok {
			s.Logger.Warn("INVENTORY", fmt.Sprintf("Rejected ticket batch for calendar %s: type %s has no price", calendarID, t))
			return nil, fmt.Errorf("%w: %s", models.ErrInvalidTicketType, t)
		}
	}

	now := time.Now()
	var batch []models.Ticket
	for _, t := range types {
		for i := 0; i < quantities[t]; i++ {
			batch = append(batch, models.Ticket{
				ID:         uuid.NewString(),
				CalendarID: calendarID,
				Type:       t,
				Status:     models.TicketAvailable,
				CreatedAt:  now,
			})
		}
	}

	// One batch insert: either every row lands or none do.
	if err := s.DB.InsertTickets(ctx, batch); err != nil {
		s.Logger.Error("INVENTORY", fmt.Sprintf("Failed to insert ticket batch for calendar %s: %v", calendarID, err))
		return nil, &models.StorageError{Op: "ticket batch create", Err: err}
	}

	summary := make([]models.TicketTypeSummary, 0, len(types))
	for _, t := range types {
		summary = append(summary, models.TicketTypeSummary{
			Type:      t,
			Quantity:  quantities[t],
			UnitPrice: priced[t],
		})
	}

	s.Logger.LogInventory("CREATE", calendarID, fmt.Sprintf("created %d tickets across %d types", len(batch), len(types)))
	return summary, nil
}

// DeleteTicketsByCalendar removes a calendar's whole batch. The batch may be
// deleted only while no ticket in it has left AVAILABLE.
func (s *TicketService) DeleteTicketsByCalendar(ctx context.Context, companyID, calendarID string) error {
	owned, err := s.DB.CalendarBelongsToCompany(ctx, calendarID, companyID)
	if err != nil {
		return &models.StorageError{Op: "calendar ownership lookup", Err: err}
	}
	if !owned {
		return models.ErrCalendarNotFound
	}

	claimed, err := s.DB.CountNonAvailableByCalendar(ctx, calendarID)
	if err != nil {
		return &models.StorageError{Op: "delete-guard check", Err: err}
	}
	if claimed > 0 {
		s.Logger.Warn("INVENTORY", fmt.Sprintf("Refused to delete tickets for calendar %s: %d reserved or sold", calendarID, claimed))
		return models.ErrTicketCantBeDeleted
	}

	if err := s.DB.DeleteTicketsByCalendar(ctx, calendarID); err != nil {
		return &models.StorageError{Op: "ticket batch delete", Err: err}
	}

	s.Logger.LogInventory("DELETE", calendarID, "ticket batch deleted")
	return nil
}

// GetTotalOfTickets is a pure aggregation read.
func (s *TicketService) GetTotalOfTickets(ctx context.Context, calendarID string) (*models.TicketTotals, error) {
	totals, err := s.DB.GetTicketTotals(ctx, calendarID)
	if err != nil {
		return nil, &models.StorageError{Op: "ticket totals", Err: err}
	}
	return totals, nil
}

// TicketPass renders the encrypted QR pass for a sold ticket. Nothing is
// stored; the pass is generated on demand.
func (s *TicketService) TicketPass(ctx context.Context, ticketID string) ([]byte, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, models.ErrTicketNotFound
	}
	if ticket.Status != models.TicketSold {
		return nil, models.ErrTicketNotSold
	}

	pass, err := s.QR.GeneratePass(*ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pass for ticket %s: %w", ticketID, err)
	}
	return pass, nil
}
