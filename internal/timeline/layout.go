package timeline

import (
	"slices"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// Options configures ComputeLayout.
type Options struct {
	Hours           domain.WorkingHours
	Geometry        Geometry
	IncludeInactive bool
}

// DefaultOptions uses the plant shift and the default board geometry.
func DefaultOptions() Options {
	return Options{
		Hours:    domain.DefaultWorkingHours,
		Geometry: DefaultGeometry(),
	}
}

// Placement is where one item is drawn.
type Placement struct {
	ItemID string
	LaneID string
	Row    int
	Left   float64
	Width  float64
	Top    float64
	Start  time.Time // clipped to the window
	End    time.Time
}

// LaneLayout summarizes one laid-out lane.
type LaneLayout struct {
	LaneID string
	Name   string
	Rows   int
	Height float64
	// ItemIDs lists the lane's placed items by row, then start.
	ItemIDs []string
}

// Layout is the full derived view of a window. It is recomputed, never
// patched, and callers must treat it as read-only.
type Layout struct {
	Window     domain.TimeWindow
	Lanes      []LaneLayout
	Placements map[string]Placement
	Downtime   map[string]DaySet
	Unassigned []string
	Excluded   []Exclusion
}

// ComputeLayout normalizes, packs and positions every assigned item of the
// given lanes and computes their downtime overlay. Lanes keep their input
// order. It never fails: items that cannot be placed are listed in
// Excluded, unassigned items in Unassigned.
func ComputeLayout(items []domain.ScheduledItem, lanes []domain.ResourceLane, w domain.TimeWindow, opts Options) Layout {
	out := Layout{
		Window:     w,
		Placements: make(map[string]Placement),
	}

	visible := make([]domain.ResourceLane, 0, len(lanes))
	inactive := make(map[string]bool)
	for _, lane := range lanes {
		if !lane.Active && !opts.IncludeInactive {
			inactive[lane.ID] = true
			continue
		}
		visible = append(visible, lane)
	}

	byLane := make(map[string][]Interval, len(visible))
	for _, lane := range visible {
		byLane[lane.ID] = nil
	}

	for idx, item := range items {
		if item.Unassigned() {
			out.Unassigned = append(out.Unassigned, item.ID)
			continue
		}
		if _, ok := byLane[item.LaneID]; !ok {
			reason := ExcludedUnknownLane
			if inactive[item.LaneID] {
				reason = ExcludedInactive
			}
			out.Excluded = append(out.Excluded, Exclusion{ItemID: item.ID, Reason: reason})
			continue
		}
		iv, reason := Normalize(item, w, opts.Hours)
		if reason != Included {
			out.Excluded = append(out.Excluded, Exclusion{ItemID: item.ID, Reason: reason})
			continue
		}
		iv.Index = idx
		byLane[item.LaneID] = append(byLane[item.LaneID], iv)
	}

	geom := opts.Geometry
	for _, lane := range visible {
		intervals := byLane[lane.ID]
		rows, rowCount := PackRows(intervals)

		ids := make([]string, 0, len(intervals))
		for _, iv := range intervals {
			row := rows[iv.ItemID]
			box := MapCoordinates(row, iv, w, geom)
			out.Placements[iv.ItemID] = Placement{
				ItemID: iv.ItemID,
				LaneID: lane.ID,
				Row:    row,
				Left:   box.Left,
				Width:  box.Width,
				Top:    box.Top,
				Start:  iv.Start,
				End:    iv.End,
			}
			ids = append(ids, iv.ItemID)
		}
		slices.SortStableFunc(ids, func(a, b string) int {
			pa, pb := out.Placements[a], out.Placements[b]
			if pa.Row != pb.Row {
				return pa.Row - pb.Row
			}
			return pa.Start.Compare(pb.Start)
		})

		out.Lanes = append(out.Lanes, LaneLayout{
			LaneID:  lane.ID,
			Name:    lane.Name,
			Rows:    rowCount,
			Height:  float64(max(rowCount, 1))*geom.RowHeight + geom.HeaderHeight,
			ItemIDs: ids,
		})
	}

	out.Downtime = DowntimeByLane(visible, w)
	return out
}
