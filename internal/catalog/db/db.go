package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"ticketly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) EventExists(ctx context.Context, eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exists(ctx)
}

// UpsertPrices writes the batch in one transaction. The unique index on
// (event_id, type) makes a re-priced type overwrite its existing row.
func (d *DB) UpsertPrices(ctx context.Context, prices []models.Price) error {
	if len(prices) == 0 {
		return nil
	}
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&prices).
			On("CONFLICT (event_id, type) DO UPDATE").
			Set("unit_price = EXCLUDED.unit_price").
			Exec(ctx)
		return err
	})
}

func (d *DB) GetPricesByTypesAndEvent(ctx context.Context, eventID string, types []models.TicketType) ([]models.Price, error) {
	var prices []models.Price
	err := d.Bun.NewSelect().
		Model(&prices).
		Where("event_id = ?", eventID).
		Where("type IN (?)", bun.In(types)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return prices, nil
}
