package domain

import "time"

// TimeWindow is the visible slice of the timeline.
type TimeWindow struct {
	Zoom   ZoomLevel
	Offset int
	Start  time.Time // local midnight
	Days   int
}

// End is local midnight Days calendar days after Start.
func (w TimeWindow) End() time.Time {
	return w.Start.AddDate(0, 0, w.Days)
}

// Duration is the wall-clock length of the window. It differs from
// Days*24h across a DST transition.
func (w TimeWindow) Duration() time.Duration {
	return w.End().Sub(w.Start)
}

// Dates lists the calendar days in the window.
func (w TimeWindow) Dates() []Date {
	first := DateOf(w.Start)
	days := make([]Date, w.Days)
	for i := range days {
		days[i] = first.AddDays(i)
	}
	return days
}

// Contains reports whether t lies in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}
