package domain

import (
	"strings"
	"time"
)

// ScheduledItem is a work order as reported by the scheduling backend.
// Either the instant pair or the date pair (or both) may be set.
type ScheduledItem struct {
	ID       string
	LaneID   string // empty means the unassigned pool
	Position *int

	StartAt   *time.Time
	EndAt     *time.Time
	StartDate *Date
	EndDate   *Date

	Locked   bool
	Priority Priority
	Status   string

	Number   string
	Customer string
	Assembly string
	Revision string
}

// Unassigned reports whether the item sits in the unassigned pool.
func (i ScheduledItem) Unassigned() bool {
	return i.LaneID == ""
}

// Label is the short text shown on a timeline block.
func (i ScheduledItem) Label() string {
	var parts []string
	if i.Number != "" {
		parts = append(parts, i.Number)
	}
	if i.Assembly != "" {
		asm := i.Assembly
		if i.Revision != "" {
			asm += " rev " + i.Revision
		}
		parts = append(parts, asm)
	}
	if len(parts) == 0 {
		return i.ID
	}
	return strings.Join(parts, " ")
}
