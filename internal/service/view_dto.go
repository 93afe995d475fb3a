package service

import (
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/timeline"
)

// BoardViewDTO is the JSON shape of a BoardView, shared by `layout --json`
// and the HTTP API.
type BoardViewDTO struct {
	Zoom       domain.ZoomLevel `json:"zoom"`
	Offset     int              `json:"offset"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	Generation uint64           `json:"generation"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Stale      bool             `json:"stale"`
	Error      string           `json:"error,omitempty"`

	Lanes      []LaneDTO                  `json:"lanes"`
	Placements map[string]PlacementDTO    `json:"placements"`
	Downtime   map[string]timeline.DaySet `json:"downtime"`
	Unassigned []ItemDTO                  `json:"unassigned"`
	Excluded   []ExclusionDTO             `json:"excluded"`
}

type LaneDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Height  float64  `json:"height"`
	ItemIDs []string `json:"item_ids"`
}

type ItemDTO struct {
	ID       string          `json:"id"`
	LaneID   string          `json:"lane_id,omitempty"`
	Label    string          `json:"label"`
	Number   string          `json:"wo_number,omitempty"`
	Customer string          `json:"customer,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
	Status   string          `json:"status,omitempty"`
	Locked   bool            `json:"locked"`
}

type PlacementDTO struct {
	Item  ItemDTO   `json:"item"`
	Row   int       `json:"row"`
	Left  float64   `json:"left"`
	Width float64   `json:"width"`
	Top   float64   `json:"top"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ExclusionDTO struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

func itemDTO(it domain.ScheduledItem) ItemDTO {
	return ItemDTO{
		ID:       it.ID,
		LaneID:   it.LaneID,
		Label:    it.Label(),
		Number:   it.Number,
		Customer: it.Customer,
		Priority: it.Priority,
		Status:   it.Status,
		Locked:   it.Locked,
	}
}

// DTO flattens the view, resolving item ids against its snapshot.
func (v *BoardView) DTO() BoardViewDTO {
	l := v.Layout
	out := BoardViewDTO{
		Zoom:       l.Window.Zoom,
		Offset:     l.Window.Offset,
		Start:      l.Window.Start,
		End:        l.Window.End(),
		Generation: v.Snapshot.Generation,
		FetchedAt:  v.Snapshot.FetchedAt,
		Stale:      v.Stale,
		Lanes:      make([]LaneDTO, 0, len(l.Lanes)),
		Placements: make(map[string]PlacementDTO, len(l.Placements)),
		Downtime:   l.Downtime,
		Unassigned: make([]ItemDTO, 0, len(l.Unassigned)),
		Excluded:   make([]ExclusionDTO, 0, len(l.Excluded)),
	}
	if v.RefreshErr != nil {
		out.Error = v.RefreshErr.Error()
	}

	byID := make(map[string]domain.ScheduledItem, len(v.Snapshot.Items))
	for _, it := range v.Snapshot.Items {
		byID[it.ID] = it
	}

	for _, lane := range l.Lanes {
		out.Lanes = append(out.Lanes, LaneDTO{
			ID:      lane.LaneID,
			Name:    lane.Name,
			Rows:    lane.Rows,
			Height:  lane.Height,
			ItemIDs: lane.ItemIDs,
		})
	}
	for id, p := range l.Placements {
		out.Placements[id] = PlacementDTO{
			Item:  itemDTO(byID[id]),
			Row:   p.Row,
			Left:  p.Left,
			Width: p.Width,
			Top:   p.Top,
			Start: p.Start,
			End:   p.End,
		}
	}
	for _, id := range l.Unassigned {
		out.Unassigned = append(out.Unassigned, itemDTO(byID[id]))
	}
	for _, e := range l.Excluded {
		out.Excluded = append(out.Excluded, ExclusionDTO{ItemID: e.ItemID, Reason: string(e.Reason)})
	}
	return out
}
