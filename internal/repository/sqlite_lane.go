package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/domain"
)

// SQLiteLaneRepo implements LaneRepo. Overrides are stored separately by
// SQLiteDowntimeRepo and are not populated on read.
type SQLiteLaneRepo struct {
	conn db.DBTX
}

func NewSQLiteLaneRepo(conn db.DBTX) *SQLiteLaneRepo {
	return &SQLiteLaneRepo{conn: conn}
}

const laneColumns = `id, name, active, hours_per_day, order_position`

func (r *SQLiteLaneRepo) ReplaceAll(ctx context.Context, lanes []domain.ResourceLane) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM lanes`); err != nil {
		return fmt.Errorf("clearing lanes: %w", err)
	}
	for seq, l := range lanes {
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO lanes (`+laneColumns+`, seq) VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, boolToInt(l.Active), l.HoursPerDay, l.Order, seq,
		)
		if err != nil {
			return fmt.Errorf("inserting lane %s: %w", l.ID, err)
		}
	}
	return nil
}

func (r *SQLiteLaneRepo) List(ctx context.Context) ([]domain.ResourceLane, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT `+laneColumns+` FROM lanes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing lanes: %w", err)
	}
	defer rows.Close()

	var lanes []domain.ResourceLane
	for rows.Next() {
		l, err := scanLane(rows)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lanes: %w", err)
	}
	return lanes, nil
}

func (r *SQLiteLaneRepo) GetByID(ctx context.Context, id string) (*domain.ResourceLane, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+laneColumns+` FROM lanes WHERE id = ?`, id)
	l, err := scanLane(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lane %s: %w", id, ErrNotFound)
	}
	return l, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLane(s scanner) (*domain.ResourceLane, error) {
	var l domain.ResourceLane
	var active int
	if err := s.Scan(&l.ID, &l.Name, &active, &l.HoursPerDay, &l.Order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning lane: %w", err)
	}
	l.Active = intToBool(active)
	return &l, nil
}
