package timeline

import (
	"fmt"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// WindowConfig holds the calendar conventions used to align windows.
type WindowConfig struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// DefaultWindowConfig aligns weeks on Monday in the local timezone.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{Location: time.Local, WeekStart: time.Monday}
}

func (c WindowConfig) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// NewWindow derives the visible window for zoom and offset. Offset 0 is the
// period containing now; each step moves by one full period.
func NewWindow(zoom domain.ZoomLevel, offset int, now time.Time, cfg WindowConfig) domain.TimeWindow {
	days := zoom.Days()
	today := domain.DateOf(now.In(cfg.location()))

	anchor := today
	if zoom != domain.ZoomDay {
		back := (int(today.Weekday()) - int(cfg.WeekStart) + 7) % 7
		anchor = today.AddDays(-back)
	}

	return domain.TimeWindow{
		Zoom:   zoom,
		Offset: offset,
		Start:  anchor.AddDays(offset * days).In(cfg.location()),
		Days:   days,
	}
}

// Nav is the navigable position of the timeline: a zoom level plus a step
// offset from the current period.
type Nav struct {
	Zoom   domain.ZoomLevel
	Offset int
}

// Window resolves the navigation position against now.
func (n Nav) Window(now time.Time, cfg WindowConfig) domain.TimeWindow {
	return NewWindow(n.Zoom, n.Offset, now, cfg)
}

// WithZoom switches zoom level and returns to the current period.
func (n Nav) WithZoom(z domain.ZoomLevel) Nav {
	return Nav{Zoom: z, Offset: 0}
}

type NavAction string

const (
	NavPrevious  NavAction = "previous"
	NavNext      NavAction = "next"
	NavToday     NavAction = "today"
	NavTomorrow  NavAction = "tomorrow"
	NavNextWeek  NavAction = "next-week"
	NavNextMonth NavAction = "next-month"
)

// NavActions lists every action in display order.
var NavActions = []NavAction{NavPrevious, NavNext, NavToday, NavTomorrow, NavNextWeek, NavNextMonth}

// ParseNavAction validates an action name.
func ParseNavAction(s string) (NavAction, error) {
	for _, a := range NavActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown navigation action %q", s)
}

// Apply returns the position after a navigation action:
//
//	previous    offset-1, zoom unchanged
//	next        offset+1, zoom unchanged
//	today       offset 0, zoom unchanged
//	tomorrow    day zoom, offset 1
//	next-week   week zoom, offset 1
//	next-month  month zoom, offset 1
//
// Unknown actions leave the position unchanged.
func (n Nav) Apply(a NavAction) Nav {
	switch a {
	case NavPrevious:
		return Nav{Zoom: n.Zoom, Offset: n.Offset - 1}
	case NavNext:
		return Nav{Zoom: n.Zoom, Offset: n.Offset + 1}
	case NavToday:
		return Nav{Zoom: n.Zoom, Offset: 0}
	case NavTomorrow:
		return Nav{Zoom: domain.ZoomDay, Offset: 1}
	case NavNextWeek:
		return Nav{Zoom: domain.ZoomWeek, Offset: 1}
	case NavNextMonth:
		return Nav{Zoom: domain.ZoomMonth, Offset: 1}
	default:
		return n
	}
}
