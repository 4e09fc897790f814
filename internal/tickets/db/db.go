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

func (d *DB) GetCalendar(ctx context.Context, calendarID string) (*models.Calendar, error) {
	var calendar models.Calendar
	err := d.Bun.NewSelect().
		Model(&calendar).
		Where("id = ?", calendarID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (d *DB) CalendarBelongsToCompany(ctx context.Context, calendarID, companyID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Calendar)(nil)).
		Join("JOIN events e ON e.id = calendar.event_id").
		Where("calendar.id = ?", calendarID).
		Where("e.company_id = ?", companyID).
		Exists(ctx)
}

// InsertTickets writes the whole batch in one transaction: create-or-fail.
func (d *DB) InsertTickets(ctx context.Context, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&tickets).Exec(ctx)
		return err
	})
}

func (d *DB) CountNonAvailableByCalendar(ctx context.Context, calendarID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("calendar_id = ?", calendarID).
		Where("status != ?", models.TicketAvailable).
		Count(ctx)
}

func (d *DB) DeleteTicketsByCalendar(ctx context.Context, calendarID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("calendar_id = ?", calendarID).
		Exec(ctx)
	return err
}

func (d *DB) GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", ticketID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketTotals aggregates a calendar's inventory by type and by status.
func (d *DB) GetTicketTotals(ctx context.Context, calendarID string) (*models.TicketTotals, error) {
	var rows []struct {
		Type   models.TicketType   `bun:"type"`
		Status models.TicketStatus `bun:"status"`
		Count  int                 `bun:"count"`
	}

	err := d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Column("type", "status").
		ColumnExpr("COUNT(*) AS count").
		Where("calendar_id = ?", calendarID).
		Group("type", "status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	totals := &models.TicketTotals{
		ByType:   make(map[models.TicketType]int),
		ByStatus: make(map[models.TicketStatus]int),
	}
	for _, row := range rows {
		totals.Total += row.Count
		totals.ByType[row.Type] += row.Count
		totals.ByStatus[row.Status] += row.Count
	}
	return totals, nil
}
