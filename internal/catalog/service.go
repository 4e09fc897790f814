package catalog

import (
	"context"
	"fmt"

	"ticketly/internal/logger"
	"ticketly/internal/models"
)

type PriceDBLayer interface {
	EventExists(ctx context.Context, eventID string) (bool, error)
	UpsertPrices(ctx context.Context, prices []models.Price) error
	GetPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error)
}

// PriceService is the price catalog: it owns the (event, type) -> unit price
// mapping read by inventory creation and checkout validation.
type PriceService struct {
	DB     PriceDBLayer
	Logger *logger.Logger
}

func NewPriceService(db PriceDBLayer, log *logger.Logger) *PriceService {
	return &PriceService{DB: db, Logger: log}
}

// BulkCreatePrices writes the whole batch atomically. A repeated type within
// the batch, or a type that already has a price on the event, is overwritten:
// last write wins on the (event_id, type) unique index.
func (s *PriceService) BulkCreatePrices(ctx context.Context, eventID string, requests []models.PriceRequest) ([]models.Price, error) {
	exists, err := s.DB.EventExists(ctx, eventID)
	if err != nil {
		return nil, &models.StorageError{Op: "event lookup", Err: err}
	}
	if !exists {
		return nil, models.ErrEventNotFound
	}

	// Dedupe within the batch first: a single upsert statement must not touch
	// the same (event_id, type) row twice.
	byType := make(map[models.TicketType]int, len(requests))
	prices := make([]models.Price, 0, len(requests))
	for _, req := range requests {
		if req.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: %s", models.ErrNegativePrice, req.Type)
		}
		price := models.Price{
			ID:        priceID(eventID, req.Type),
			EventID:   eventID,
			Type:      req.Type,
			UnitPrice: req.UnitPrice,
		}
		if i, seen := byType[req.Type]; seen {
			prices[i] = price
			continue
		}
		byType[req.Type] = len(prices)
		prices = append(prices, price)
	}

	if err := s.DB.UpsertPrices(ctx, prices); err != nil {
		s.Logger.Error("CATALOG", fmt.Sprintf("Failed to create prices for event %s: %v", eventID, err))
		return nil, &models.StorageError{Op: "price batch create", Err: err}
	}

	s.Logger.Info("CATALOG", fmt.Sprintf("Created %d prices for event %s", len(prices), eventID))
	return prices, nil
}

// FindPricesByTypesAndEvent returns only the types that exist. Absence of a
// requested type in the result is the caller's signal of an invalid type.
func (s *PriceService) FindPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error) {
	prices, err := s.DB.GetPricesByTypesAndEvent(ctx, eventID, types)
	if err != nil {
		return nil, &models.StorageError{Op: "price lookup", Err: err}
	}
	return prices, nil
}

// priceID keeps bulk upserts deterministic: re-pricing a type rewrites the
// same row instead of accumulating history.
func priceID(eventID string, t models.TicketType) string {
	return fmt.Sprintf("%s:%s", eventID, t)
}
