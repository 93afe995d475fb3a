package domain

// ResourceLane is a production line or workcenter.
type ResourceLane struct {
	ID          string
	Name        string
	Active      bool
	HoursPerDay float64
	Order       int

	// Overrides are attached from the downtime collection, in backend order.
	Overrides []DowntimeOverride
}

// DowntimeOverride marks a lane's capacity for an inclusive date range.
type DowntimeOverride struct {
	LaneID     string
	StartDate  Date
	EndDate    Date
	IsDown     bool
	TotalHours float64
	Reason     string
}

// Covers reports whether day falls inside the override's inclusive range.
func (o DowntimeOverride) Covers(day Date) bool {
	return day.Between(o.StartDate, o.EndDate)
}
