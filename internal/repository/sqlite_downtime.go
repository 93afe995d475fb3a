package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/domain"
)

// SQLiteDowntimeRepo implements DowntimeRepo. Every override must name a
// stored lane.
type SQLiteDowntimeRepo struct {
	conn db.DBTX
}

func NewSQLiteDowntimeRepo(conn db.DBTX) *SQLiteDowntimeRepo {
	return &SQLiteDowntimeRepo{conn: conn}
}

const downtimeColumns = `lane_id, start_date, end_date, is_down, total_hours, reason`

func (r *SQLiteDowntimeRepo) ReplaceAll(ctx context.Context, overrides []domain.DowntimeOverride) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM downtime_overrides`); err != nil {
		return fmt.Errorf("clearing downtime overrides: %w", err)
	}
	for seq, o := range overrides {
		_, err := r.conn.ExecContext(ctx,
			`INSERT INTO downtime_overrides (`+downtimeColumns+`, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.LaneID, o.StartDate.String(), o.EndDate.String(), boolToInt(o.IsDown), o.TotalHours, o.Reason, seq,
		)
		if err != nil {
			return fmt.Errorf("inserting downtime override for lane %s: %w", o.LaneID, err)
		}
	}
	return nil
}

func (r *SQLiteDowntimeRepo) List(ctx context.Context) ([]domain.DowntimeOverride, error) {
	return r.query(ctx, `SELECT `+downtimeColumns+` FROM downtime_overrides ORDER BY seq`)
}

func (r *SQLiteDowntimeRepo) ListInRange(ctx context.Context, from, to domain.Date) ([]domain.DowntimeOverride, error) {
	// ISO dates compare correctly as text.
	return r.query(ctx,
		`SELECT `+downtimeColumns+` FROM downtime_overrides
		WHERE start_date <= ? AND end_date >= ? ORDER BY seq`,
		to.String(), from.String(),
	)
}

func (r *SQLiteDowntimeRepo) query(ctx context.Context, query string, args ...any) ([]domain.DowntimeOverride, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing downtime overrides: %w", err)
	}
	defer rows.Close()

	var out []domain.DowntimeOverride
	for rows.Next() {
		var o domain.DowntimeOverride
		var start, end string
		var isDown int
		if err := rows.Scan(&o.LaneID, &start, &end, &isDown, &o.TotalHours, &o.Reason); err != nil {
			return nil, fmt.Errorf("scanning downtime override: %w", err)
		}
		if o.StartDate, err = domain.ParseDate(start); err != nil {
			return nil, fmt.Errorf("parsing start_date: %w", err)
		}
		if o.EndDate, err = domain.ParseDate(end); err != nil {
			return nil, fmt.Errorf("parsing end_date: %w", err)
		}
		o.IsDown = intToBool(isDown)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating downtime overrides: %w", err)
	}
	return out, nil
}
