package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/domain"
)

// SQLiteItemRepo implements ItemRepo.
type SQLiteItemRepo struct {
	conn db.DBTX
}

func NewSQLiteItemRepo(conn db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{conn: conn}
}

const itemColumns = `id, lane_id, position, start_at, end_at, start_date, end_date,
	locked, priority, status, wo_number, customer, assembly, revision`

func (r *SQLiteItemRepo) ReplaceAll(ctx context.Context, items []domain.ScheduledItem) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	for seq, it := range items {
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO items (`+itemColumns+`, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID,
			nullableString(it.LaneID),
			nullableIntToValue(it.Position),
			nullableTimeToString(it.StartAt, instantLayout),
			nullableTimeToString(it.EndAt, instantLayout),
			nullableDateToString(it.StartDate),
			nullableDateToString(it.EndDate),
			boolToInt(it.Locked),
			string(it.Priority),
			it.Status,
			it.Number,
			it.Customer,
			it.Assembly,
			it.Revision,
			seq,
		)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *SQLiteItemRepo) List(ctx context.Context) ([]domain.ScheduledItem, error) {
	return r.query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY seq`)
}

func (r *SQLiteItemRepo) ListByLane(ctx context.Context, laneID string) ([]domain.ScheduledItem, error) {
	if laneID == "" {
		return r.query(ctx, `SELECT `+itemColumns+` FROM items WHERE lane_id IS NULL ORDER BY seq`)
	}
	return r.query(ctx, `SELECT `+itemColumns+` FROM items WHERE lane_id = ? ORDER BY seq`, laneID)
}

func (r *SQLiteItemRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledItem, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return it, err
}

func (r *SQLiteItemRepo) query(ctx context.Context, query string, args ...any) ([]domain.ScheduledItem, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []domain.ScheduledItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func scanItem(s scanner) (*domain.ScheduledItem, error) {
	var it domain.ScheduledItem
	var laneID, startAt, endAt, startDate, endDate sql.NullString
	var position sql.NullInt64
	var locked int
	var priority string

	err := s.Scan(
		&it.ID, &laneID, &position, &startAt, &endAt, &startDate, &endDate,
		&locked, &priority, &it.Status, &it.Number, &it.Customer, &it.Assembly, &it.Revision,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	it.LaneID = laneID.String
	it.Position = parseNullableInt(position)
	it.StartAt = parseNullableTime(startAt, instantLayout)
	it.EndAt = parseNullableTime(endAt, instantLayout)
	it.StartDate = parseNullableDate(startDate)
	it.EndDate = parseNullableDate(endDate)
	it.Locked = intToBool(locked)
	it.Priority = domain.Priority(priority)
	return &it, nil
}
