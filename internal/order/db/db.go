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

func (d *DB) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CalendarBelongsToEvent(ctx context.Context, calendarID, eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Calendar)(nil)).
		Where("id = ?", calendarID).
		Where("event_id = ?", eventID).
		Exists(ctx)
}

func (d *DB) UserExists(ctx context.Context, userID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(ctx)
}

// ClaimTickets atomically flips quantity AVAILABLE tickets of the given type
// to RESERVED, stamping the customer and external order id. The status guard
// sits in the outer UPDATE predicate, so a row another transaction reserved
// between subquery and update no longer matches; when fewer than quantity
// rows are flipped the transaction rolls back and nothing stays claimed.
// This is the only code path allowed to move tickets out of AVAILABLE.
func (d *DB) ClaimTickets(ctx context.Context, calendarID string, ticketType models.TicketType, quantity int, customerID, orderID string) ([]string, error) {
	var claimed []string

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		candidates := tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Column("id").
			Where("calendar_id = ?", calendarID).
			Where("type = ?", ticketType).
			Where("status = ?", models.TicketAvailable).
			Limit(quantity)

		res, err := tx.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("status = ?", models.TicketReserved).
			Set("customer_id = ?", customerID).
			Set("order_id = ?", orderID).
			Where("status = ?", models.TicketAvailable).
			Where("id IN (?)", candidates).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if int(rows) != quantity {
			return models.ErrTicketUnavailable
		}

		return tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Column("id").
			Where("order_id = ?", orderID).
			Scan(ctx, &claimed)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// MarkOrderSold finalizes a captured order. The predicate makes re-delivery a
// no-op: already-SOLD rows no longer match.
func (d *DB) MarkOrderSold(ctx context.Context, orderID string) (int, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.TicketSold).
		Where("order_id = ?", orderID).
		Where("status = ?", models.TicketReserved).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	return int(rows), err
}

// ReleaseOrder returns a reservation to inventory. Sold tickets never match.
func (d *DB) ReleaseOrder(ctx context.Context, orderID string) (int, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.TicketAvailable).
		Set("customer_id = NULL").
		Set("order_id = NULL").
		Where("order_id = ?", orderID).
		Where("status = ?", models.TicketReserved).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	return int(rows), err
}

func (d *DB) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
