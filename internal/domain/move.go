package domain

import "errors"

// ErrReassignmentRejected is wrapped by every error that means the backend
// refused a lane move (lock, capacity or validation conflict).
var ErrReassignmentRejected = errors.New("reassignment rejected")

// MoveRequest is the reassignment mutation sent to the backend. An empty
// LaneID moves the item to the unassigned pool; a nil Position appends the
// item to the end of the target lane's queue.
type MoveRequest struct {
	ItemID   string
	LaneID   string
	Position *int
}
