package timeline

import (
	"encoding/json"
	"slices"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// DaySet is a set of calendar days.
type DaySet map[domain.Date]struct{}

func (s DaySet) Has(d domain.Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []domain.Date {
	days := make([]domain.Date, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b domain.Date) int { return a.Compare(b) })
	return days
}

// MarshalJSON renders the set as a sorted array of YYYY-MM-DD strings.
func (s DaySet) MarshalJSON() ([]byte, error) {
	days := s.Sorted()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return json.Marshal(out)
}

func (s *DaySet) UnmarshalJSON(b []byte) error {
	var days []domain.Date
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	set := make(DaySet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	*s = set
	return nil
}

// Downtime returns the days in days on which some override marks the lane
// down. Ranges are compared as calendar dates.
func Downtime(overrides []domain.DowntimeOverride, days []domain.Date) DaySet {
	down := make(DaySet)
	for _, day := range days {
		for _, o := range overrides {
			if o.IsDown && o.Covers(day) {
				down[day] = struct{}{}
				break
			}
		}
	}
	return down
}

// DowntimeByLane computes the overlay for every lane over the window's days.
func DowntimeByLane(lanes []domain.ResourceLane, w domain.TimeWindow) map[string]DaySet {
	days := w.Dates()
	out := make(map[string]DaySet, len(lanes))
	for _, lane := range lanes {
		out[lane.ID] = Downtime(lane.Overrides, days)
	}
	return out
}
