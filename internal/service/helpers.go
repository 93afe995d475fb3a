package service

import (
	"slices"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// Snapshot is one consistent read of the backend.
type Snapshot struct {
	Generation uint64
	FetchedAt  time.Time
	// From and To bound the fetched downtime overrides.
	From domain.Date
	To   domain.Date

	Items []domain.ScheduledItem
	// Lanes are ordered by their board position and carry their overrides.
	Lanes []domain.ResourceLane

	// Stored is set when the snapshot was read back from the store rather
	// than fetched in this process.
	Stored bool
}

// Covers reports whether the snapshot's downtime range spans w.
func (s *Snapshot) Covers(w domain.TimeWindow) bool {
	dates := w.Dates()
	if len(dates) == 0 {
		return true
	}
	return !dates[0].Before(s.From) && !dates[len(dates)-1].After(s.To)
}

// Item looks an item up by id.
func (s *Snapshot) Item(id string) (domain.ScheduledItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.ScheduledItem{}, false
}

// Overrides flattens the lanes' overrides in lane order.
func (s *Snapshot) Overrides() []domain.DowntimeOverride {
	var out []domain.DowntimeOverride
	for _, l := range s.Lanes {
		out = append(out, l.Overrides...)
	}
	return out
}

// assembleLanes orders lanes by board position (backend order breaks ties)
// and attaches each lane's overrides. Overrides for unknown lanes are
// dropped.
func assembleLanes(lanes []domain.ResourceLane, overrides []domain.DowntimeOverride) []domain.ResourceLane {
	out := slices.Clone(lanes)
	slices.SortStableFunc(out, func(a, b domain.ResourceLane) int {
		return a.Order - b.Order
	})

	idx := make(map[string]int, len(out))
	for i := range out {
		out[i].Overrides = nil
		idx[out[i].ID] = i
	}
	for _, o := range overrides {
		if i, ok := idx[o.LaneID]; ok {
			out[i].Overrides = append(out[i].Overrides, o)
		}
	}
	return out
}

// horizon is the override range fetched around a window: the window itself
// padded by one window length on each side, so paging does not refetch.
func horizon(w domain.TimeWindow) (from, to domain.Date) {
	first := domain.DateOf(w.Start)
	return first.AddDays(-w.Days), first.AddDays(2*w.Days - 1)
}
