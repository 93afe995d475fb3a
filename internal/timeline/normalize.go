package timeline

import (
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// Interval is an item's absolute time span, already clipped to a window.
// Index is the item's position in the caller's input and breaks sort ties.
type Interval struct {
	ItemID string
	Index  int
	Start  time.Time
	End    time.Time
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two intervals share time. Touching intervals
// (one ends exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// ExclusionReason explains why an item has no place on the timeline.
type ExclusionReason string

const (
	Included            ExclusionReason = ""
	ExcludedOutside     ExclusionReason = "outside-window"
	ExcludedNoSchedule  ExclusionReason = "no-schedule"
	ExcludedInverted    ExclusionReason = "inverted"
	ExcludedUnknownLane ExclusionReason = "unknown-lane"
	ExcludedInactive    ExclusionReason = "inactive-lane"
)

// Exclusion records an item left out of a layout.
type Exclusion struct {
	ItemID string
	Reason ExclusionReason
}

// Normalize resolves an item's schedule into an interval clipped to w.
// Exact instants win; otherwise the dates are expanded with the shift
// hours (shift start on the first day, shift end on the last). A missing
// end collapses to a point at the start.
func Normalize(item domain.ScheduledItem, w domain.TimeWindow, hours domain.WorkingHours) (Interval, ExclusionReason) {
	start, end, ok := resolveSpan(item, w.Start.Location(), hours)
	if !ok {
		return Interval{}, ExcludedNoSchedule
	}
	if end.Before(start) {
		return Interval{}, ExcludedInverted
	}

	ws, we := w.Start, w.End()
	if !start.Before(we) || end.Before(ws) {
		return Interval{}, ExcludedOutside
	}
	if end.Equal(ws) && start.Before(ws) {
		return Interval{}, ExcludedOutside
	}

	if start.Before(ws) {
		start = ws
	}
	if end.After(we) {
		end = we
	}
	return Interval{ItemID: item.ID, Start: start, End: end}, Included
}

func resolveSpan(item domain.ScheduledItem, loc *time.Location, hours domain.WorkingHours) (time.Time, time.Time, bool) {
	if item.StartAt != nil && item.EndAt != nil {
		return *item.StartAt, *item.EndAt, true
	}

	var start time.Time
	switch {
	case item.StartDate != nil:
		start = item.StartDate.At(loc, hours.Start)
	case item.StartAt != nil:
		start = *item.StartAt
	default:
		return time.Time{}, time.Time{}, false
	}

	switch {
	case item.EndDate != nil:
		return start, item.EndDate.At(loc, hours.End), true
	case item.EndAt != nil:
		return start, *item.EndAt, true
	default:
		return start, start, true
	}
}
