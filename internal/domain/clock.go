package domain

import (
	"fmt"
	"time"
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parsing clock %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// WorkingHours is the shift window used to synthesize times for items that
// only carry dates.
type WorkingHours struct {
	Start Clock
	End   Clock
}

// DefaultWorkingHours is the plant day shift, 07:30-16:30.
var DefaultWorkingHours = WorkingHours{Start: 7*60 + 30, End: 16*60 + 30}

// Validate rejects empty or inverted shifts.
func (h WorkingHours) Validate() error {
	if h.Start < 0 || h.End > 24*60 {
		return fmt.Errorf("working hours %s-%s out of range", h.Start, h.End)
	}
	if h.End <= h.Start {
		return fmt.Errorf("working hours end %s must be after start %s", h.End, h.Start)
	}
	return nil
}

func (h WorkingHours) String() string {
	return h.Start.String() + "-" + h.End.String()
}
