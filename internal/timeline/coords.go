package timeline

import (
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// RenderMode selects the horizontal basis of a day-zoom timeline. Week and
// month zoom always use the whole window.
type RenderMode string

const (
	RenderFullDay    RenderMode = "full-day"
	RenderShiftHours RenderMode = "shift-hours"
)

// Geometry is the fixed vertical metrics and horizontal policy of a view.
type Geometry struct {
	RowHeight    float64
	HeaderHeight float64
	Mode         RenderMode
	Hours        domain.WorkingHours
}

// DefaultGeometry matches the board's 40px rows under a 30px lane header.
func DefaultGeometry() Geometry {
	return Geometry{
		RowHeight:    40,
		HeaderHeight: 30,
		Mode:         RenderFullDay,
		Hours:        domain.DefaultWorkingHours,
	}
}

// Box is a block's position: Left and Width are percentages of the basis,
// Top is in the same units as the geometry heights.
type Box struct {
	Left  float64
	Width float64
	Top   float64
}

// Basis returns the time span that maps onto 0-100%.
func Basis(w domain.TimeWindow, g Geometry) (time.Time, time.Time) {
	if w.Zoom == domain.ZoomDay && g.Mode == RenderShiftHours {
		day := domain.DateOf(w.Start)
		loc := w.Start.Location()
		return day.At(loc, g.Hours.Start), day.At(loc, g.Hours.End)
	}
	return w.Start, w.End()
}

// MapCoordinates positions an interval assigned to row. The result always
// satisfies 0 <= Left <= 100 and 0 <= Left+Width <= 100.
func MapCoordinates(row int, iv Interval, w domain.TimeWindow, g Geometry) Box {
	box := Box{Top: float64(row)*g.RowHeight + g.HeaderHeight}

	bs, be := Basis(w, g)
	total := be.Sub(bs).Minutes()
	if total <= 0 {
		return box
	}

	left := clampPct(iv.Start.Sub(bs).Minutes() / total * 100)
	right := clampPct(iv.End.Sub(bs).Minutes() / total * 100)
	if right < left {
		right = left
	}
	box.Left = left
	box.Width = right - left
	return box
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
