package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// SnapshotMeta describes the stored snapshot: which refresh produced it,
// when, from which backend and for which date range of overrides.
type SnapshotMeta struct {
	Generation uint64
	FetchedAt  time.Time
	From       domain.Date
	To         domain.Date
	Source     string
}

// The ReplaceAll methods swap the whole collection; listing returns rows
// in the order they were given.

type LaneRepo interface {
	ReplaceAll(ctx context.Context, lanes []domain.ResourceLane) error
	List(ctx context.Context) ([]domain.ResourceLane, error)
	GetByID(ctx context.Context, id string) (*domain.ResourceLane, error)
}

type ItemRepo interface {
	ReplaceAll(ctx context.Context, items []domain.ScheduledItem) error
	List(ctx context.Context) ([]domain.ScheduledItem, error)
	ListByLane(ctx context.Context, laneID string) ([]domain.ScheduledItem, error)
	GetByID(ctx context.Context, id string) (*domain.ScheduledItem, error)
}

type DowntimeRepo interface {
	ReplaceAll(ctx context.Context, overrides []domain.DowntimeOverride) error
	List(ctx context.Context) ([]domain.DowntimeOverride, error)
	// ListInRange returns overrides whose inclusive range touches [from, to].
	ListInRange(ctx context.Context, from, to domain.Date) ([]domain.DowntimeOverride, error)
}

type SnapshotMetaRepo interface {
	Save(ctx context.Context, m SnapshotMeta) error
	Get(ctx context.Context) (*SnapshotMeta, error)
}
