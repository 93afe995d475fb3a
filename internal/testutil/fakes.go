package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// FakeBackend is an in-memory scheduling backend. ListOverrides serves the
// overrides attached to the requested lanes, so fixtures built with
// WithDowntime show up as downtime. MoveItem applies moves to Items unless
// Err or MoveErr is set.
type FakeBackend struct {
	mu      sync.Mutex
	Items   []domain.ScheduledItem
	Lanes   []domain.ResourceLane
	Err     error
	MoveErr error

	Moves     []domain.MoveRequest
	ItemCalls int
}

func (f *FakeBackend) ListItems(ctx context.Context) ([]domain.ScheduledItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ItemCalls++
	return slices.Clone(f.Items), f.Err
}

func (f *FakeBackend) ListLanes(ctx context.Context) ([]domain.ResourceLane, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Lanes), f.Err
}

func (f *FakeBackend) ListOverrides(ctx context.Context, laneIDs []string, from, to domain.Date) ([]domain.DowntimeOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.DowntimeOverride
	for _, l := range f.Lanes {
		if !slices.Contains(laneIDs, l.ID) {
			continue
		}
		for _, o := range l.Overrides {
			if !o.EndDate.Before(from) && !o.StartDate.After(to) {
				out = append(out, o)
			}
		}
	}
	return out, f.Err
}

func (f *FakeBackend) MoveItem(ctx context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Moves = append(f.Moves, req)
	if f.MoveErr != nil {
		return nil, f.MoveErr
	}
	for i := range f.Items {
		if f.Items[i].ID == req.ItemID {
			f.Items[i].LaneID = req.LaneID
			moved := f.Items[i]
			return &moved, nil
		}
	}
	return &domain.ScheduledItem{ID: req.ItemID, LaneID: req.LaneID}, nil
}

func (f *FakeBackend) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *FakeBackend) MoveRequests() []domain.MoveRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Moves)
}

// LaneOf returns the backend's current lane for itemID.
func (f *FakeBackend) LaneOf(itemID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.Items {
		if it.ID == itemID {
			return it.LaneID, true
		}
	}
	return "", false
}

func (f *FakeBackend) ItemCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ItemCalls
}
