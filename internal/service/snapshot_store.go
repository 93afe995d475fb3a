package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/repository"
)

// SQLiteSnapshotStore keeps the last-known-good snapshot in SQLite. Each
// Save replaces lanes, items, overrides and metadata in one transaction, so
// a failed save leaves the previous snapshot intact.
type SQLiteSnapshotStore struct {
	uow    db.UnitOfWork
	source string
}

// NewSQLiteSnapshotStore records source (the backend endpoint) alongside
// each saved snapshot.
func NewSQLiteSnapshotStore(uow db.UnitOfWork, source string) *SQLiteSnapshotStore {
	return &SQLiteSnapshotStore{uow: uow, source: source}
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteLaneRepo(tx).ReplaceAll(ctx, snap.Lanes); err != nil {
			return err
		}
		if err := repository.NewSQLiteItemRepo(tx).ReplaceAll(ctx, snap.Items); err != nil {
			return err
		}
		if err := repository.NewSQLiteDowntimeRepo(tx).ReplaceAll(ctx, snap.Overrides()); err != nil {
			return err
		}
		return repository.NewSQLiteSnapshotMetaRepo(tx).Save(ctx, repository.SnapshotMeta{
			Generation: snap.Generation,
			FetchedAt:  snap.FetchedAt,
			From:       snap.From,
			To:         snap.To,
			Source:     s.source,
		})
	})
}

// Load returns ErrNoSnapshot when nothing has been saved yet.
func (s *SQLiteSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		meta, err := repository.NewSQLiteSnapshotMetaRepo(tx).Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoSnapshot
			}
			return err
		}
		lanes, err := repository.NewSQLiteLaneRepo(tx).List(ctx)
		if err != nil {
			return err
		}
		items, err := repository.NewSQLiteItemRepo(tx).List(ctx)
		if err != nil {
			return err
		}
		overrides, err := repository.NewSQLiteDowntimeRepo(tx).List(ctx)
		if err != nil {
			return err
		}
		snap = &Snapshot{
			Generation: meta.Generation,
			FetchedAt:  meta.FetchedAt,
			From:       meta.From,
			To:         meta.To,
			Items:      items,
			Lanes:      assembleLanes(lanes, overrides),
			Stored:     true,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}
