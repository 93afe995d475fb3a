package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/google/uuid"
)

var testNumberCounter atomic.Int64

// Item options
type ItemOption func(*domain.ScheduledItem)

func OnLane(laneID string) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.LaneID = laneID
	}
}

func Unassigned() ItemOption {
	return func(i *domain.ScheduledItem) {
		i.LaneID = ""
		i.Position = nil
	}
}

func WithPosition(p int) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.Position = &p
	}
}

func WithInstants(start, end time.Time) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.StartAt = &start
		i.EndAt = &end
	}
}

func WithDates(start, end domain.Date) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.StartDate = &start
		i.EndDate = &end
	}
}

func Locked() ItemOption {
	return func(i *domain.ScheduledItem) {
		i.Locked = true
	}
}

func WithPriority(p domain.Priority) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.Priority = p
	}
}

func WithID(id string) ItemOption {
	return func(i *domain.ScheduledItem) {
		i.ID = id
	}
}

// NewTestItem builds an unscheduled work order on laneID with a unique id
// and work order number.
func NewTestItem(laneID string, opts ...ItemOption) domain.ScheduledItem {
	n := testNumberCounter.Add(1)
	it := domain.ScheduledItem{
		ID:       uuid.New().String(),
		LaneID:   laneID,
		Priority: domain.PriorityFactoryDefault,
		Status:   "Ready",
		Number:   fmt.Sprintf("WO-%04d", n),
		Customer: "Test Customer",
		Assembly: "PCB-TEST",
		Revision: "A",
	}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}

// Lane options
type LaneOption func(*domain.ResourceLane)

func Inactive() LaneOption {
	return func(l *domain.ResourceLane) {
		l.Active = false
	}
}

func WithOrder(n int) LaneOption {
	return func(l *domain.ResourceLane) {
		l.Order = n
	}
}

func WithDowntime(from, to domain.Date, reason string) LaneOption {
	return func(l *domain.ResourceLane) {
		l.Overrides = append(l.Overrides, domain.DowntimeOverride{
			LaneID:    l.ID,
			StartDate: from,
			EndDate:   to,
			IsDown:    true,
			Reason:    reason,
		})
	}
}

// NewTestLane builds an active eight-hour lane. Options run after the id
// is set, so WithDowntime can stamp it on its overrides.
func NewTestLane(id, name string, opts ...LaneOption) domain.ResourceLane {
	l := domain.ResourceLane{
		ID:          id,
		Name:        name,
		Active:      true,
		HoursPerDay: 8,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
