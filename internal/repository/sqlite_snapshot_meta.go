package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/domain"
)

// SQLiteSnapshotMetaRepo implements SnapshotMetaRepo as a single-row table.
type SQLiteSnapshotMetaRepo struct {
	conn db.DBTX
}

func NewSQLiteSnapshotMetaRepo(conn db.DBTX) *SQLiteSnapshotMetaRepo {
	return &SQLiteSnapshotMetaRepo{conn: conn}
}

func (r *SQLiteSnapshotMetaRepo) Save(ctx context.Context, m SnapshotMeta) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, generation, fetched_at, range_start, range_end, source)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generation = excluded.generation,
			fetched_at = excluded.fetched_at,
			range_start = excluded.range_start,
			range_end = excluded.range_end,
			source = excluded.source`,
		int64(m.Generation), m.FetchedAt.UTC().Format(time.RFC3339Nano), m.From.String(), m.To.String(), m.Source,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot meta: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotMetaRepo) Get(ctx context.Context) (*SnapshotMeta, error) {
	var m SnapshotMeta
	var generation int64
	var fetchedAt, from, to string
	err := r.conn.QueryRowContext(ctx,
		`SELECT generation, fetched_at, range_start, range_end, source FROM snapshot_meta WHERE id = 1`,
	).Scan(&generation, &fetchedAt, &from, &to, &m.Source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot meta: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot meta: %w", err)
	}

	m.Generation = uint64(generation)
	if m.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return nil, fmt.Errorf("parsing fetched_at: %w", err)
	}
	if m.From, err = domain.ParseDate(from); err != nil {
		return nil, fmt.Errorf("parsing range_start: %w", err)
	}
	if m.To, err = domain.ParseDate(to); err != nil {
		return nil, fmt.Errorf("parsing range_end: %w", err)
	}
	return &m, nil
}
