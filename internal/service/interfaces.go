package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/reassign"
)

var (
	// ErrNoSnapshot indicates nothing has been fetched or stored yet.
	ErrNoSnapshot = errors.New("no board snapshot available")

	// ErrItemNotFound indicates a move named an item missing from the
	// current snapshot.
	ErrItemNotFound = errors.New("item not in current snapshot")
)

// BoardService owns the board's snapshot of backend data and derives
// layouts from it.
type BoardService interface {
	// Refresh fetches a new snapshot. Concurrent refreshes are
	// last-write-wins by start order: a response older than the applied
	// snapshot is discarded.
	Refresh(ctx context.Context) error

	// Current returns the applied snapshot, falling back to the stored
	// last-known-good one.
	Current(ctx context.Context) (*Snapshot, error)

	// Layout lays out the current snapshot in w, refreshing first if the
	// snapshot does not cover w's downtime range.
	Layout(ctx context.Context, w domain.TimeWindow) (*BoardView, error)
}

// MoveService performs a one-shot lane move for non-interactive callers.
type MoveService interface {
	Move(ctx context.Context, itemID, laneID string) (reassign.Result, error)
}

// SnapshotStore persists the last-known-good snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Backend is the subset of backend.Client the board reads from.
type Backend interface {
	ListItems(ctx context.Context) ([]domain.ScheduledItem, error)
	ListLanes(ctx context.Context) ([]domain.ResourceLane, error)
	ListOverrides(ctx context.Context, laneIDs []string, from, to domain.Date) ([]domain.DowntimeOverride, error)
}
