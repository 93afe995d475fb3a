package domain

import "fmt"

type Priority string

const (
	PriorityCriticalMass   Priority = "Critical Mass"
	PriorityOverclocked    Priority = "Overclocked"
	PriorityFactoryDefault Priority = "Factory Default"
	PriorityTrickleCharge  Priority = "Trickle Charge"
	PriorityPowerDown      Priority = "Power Down"
)

// Rank orders priorities from most (0) to least urgent. Unknown tags sort
// with the default priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityCriticalMass:
		return 0
	case PriorityOverclocked:
		return 1
	case PriorityTrickleCharge:
		return 3
	case PriorityPowerDown:
		return 4
	default:
		return 2
	}
}

type ZoomLevel string

const (
	ZoomDay   ZoomLevel = "day"
	ZoomWeek  ZoomLevel = "week"
	ZoomMonth ZoomLevel = "month"
)

// Days returns the number of calendar days a window at this zoom spans.
// A month is four aligned weeks, not a calendar month.
func (z ZoomLevel) Days() int {
	switch z {
	case ZoomDay:
		return 1
	case ZoomMonth:
		return 28
	default:
		return 7
	}
}

// ParseZoomLevel validates a zoom level string.
func ParseZoomLevel(s string) (ZoomLevel, error) {
	switch z := ZoomLevel(s); z {
	case ZoomDay, ZoomWeek, ZoomMonth:
		return z, nil
	default:
		return "", fmt.Errorf("unknown zoom level %q (want day, week or month)", s)
	}
}
