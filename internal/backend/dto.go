package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// id accepts both numeric and string identifiers.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = id(n.String())
	return nil
}

type workOrderDTO struct {
	ID                      id      `json:"id"`
	LineID                  id      `json:"line_id"`
	LinePosition            *int    `json:"line_position"`
	WONumber                string  `json:"wo_number"`
	Customer                string  `json:"customer"`
	Assembly                string  `json:"assembly"`
	Revision                string  `json:"revision"`
	Status                  string  `json:"status"`
	Priority                string  `json:"priority"`
	IsLocked                bool    `json:"is_locked"`
	CalculatedStartDatetime *string `json:"calculated_start_datetime"`
	CalculatedEndDatetime   *string `json:"calculated_end_datetime"`
	CalculatedStartDate     *string `json:"calculated_start_date"`
	CalculatedEndDate       *string `json:"calculated_end_date"`
}

type lineDTO struct {
	ID            id      `json:"id"`
	Name          string  `json:"name"`
	IsActive      *bool   `json:"is_active"`
	HoursPerDay   float64 `json:"hours_per_day"`
	OrderPosition *int    `json:"order_position"`
}

// calendarDTO is the capacity calendar of one line. Only its overrides are
// read; their rows carry no line id.
type calendarDTO struct {
	Overrides []overrideDTO `json:"overrides"`
}

type overrideDTO struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalHours float64 `json:"total_hours"`
	Reason     string  `json:"reason"`
	IsDown     *bool   `json:"is_down"`
}

// moveDTO always serializes both fields; null means unassigned / append.
type moveDTO struct {
	LineID       *string `json:"line_id"`
	LinePosition *int    `json:"line_position"`
}

type errorDTO struct {
	Detail json.RawMessage `json:"detail"`
}

// message flattens FastAPI-style details, which may be a string or a list
// of validation errors.
func (e errorDTO) message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, m := range list {
			if m.Msg != "" {
				msgs = append(msgs, m.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(e.Detail)
}

func (d workOrderDTO) toDomain(loc *time.Location) domain.ScheduledItem {
	item := domain.ScheduledItem{
		ID:       string(d.ID),
		LaneID:   string(d.LineID),
		Position: d.LinePosition,
		Locked:   d.IsLocked,
		Priority: domain.Priority(d.Priority),
		Status:   d.Status,
		Number:   d.WONumber,
		Customer: d.Customer,
		Assembly: d.Assembly,
		Revision: d.Revision,
	}
	item.StartAt = parseInstant(d.CalculatedStartDatetime, loc)
	item.EndAt = parseInstant(d.CalculatedEndDatetime, loc)
	item.StartDate = parseDay(d.CalculatedStartDate)
	item.EndDate = parseDay(d.CalculatedEndDate)
	return item
}

func (d lineDTO) toDomain() domain.ResourceLane {
	lane := domain.ResourceLane{
		ID:          string(d.ID),
		Name:        d.Name,
		Active:      true,
		HoursPerDay: d.HoursPerDay,
	}
	if d.IsActive != nil {
		lane.Active = *d.IsActive
	}
	if d.OrderPosition != nil {
		lane.Order = *d.OrderPosition
	}
	return lane
}

// toDomain reports ok=false for rows whose dates cannot be read.
func (d overrideDTO) toDomain(laneID string) (domain.DowntimeOverride, bool) {
	start := parseDay(&d.StartDate)
	end := parseDay(&d.EndDate)
	if start == nil || end == nil {
		return domain.DowntimeOverride{}, false
	}
	o := domain.DowntimeOverride{
		LaneID:     laneID,
		StartDate:  *start,
		EndDate:    *end,
		TotalHours: d.TotalHours,
		Reason:     d.Reason,
		IsDown:     d.TotalHours == 0,
	}
	if d.IsDown != nil {
		o.IsDown = *d.IsDown
	}
	return o, true
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// parseInstant reads an ISO-8601 timestamp. Timestamps without an offset
// are taken to be in loc. Unreadable values yield nil so the normalizer
// can fall back to the calendar dates.
func parseInstant(s *string, loc *time.Location) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, *s); err == nil {
		return &t
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, *s, loc); err == nil {
			return &t
		}
	}
	return nil
}

func parseDay(s *string) *domain.Date {
	if s == nil || len(*s) < len("2006-01-02") {
		return nil
	}
	d, err := domain.ParseDate((*s)[:len("2006-01-02")])
	if err != nil {
		return nil
	}
	return &d
}
