package reassign

import "errors"

var (
	// ErrItemLocked indicates a drag was started on a locked item.
	ErrItemLocked = errors.New("item is locked")

	// ErrItemInFlight indicates the item already has a move outstanding.
	ErrItemInFlight = errors.New("item has a move in flight")

	// ErrBusy indicates the controller is committing a previous drop.
	ErrBusy = errors.New("a move is being committed")

	// ErrNotDragging indicates a drag operation was called with nothing
	// being dragged.
	ErrNotDragging = errors.New("no drag in progress")

	// ErrInvalidTarget indicates the hovered lane is not a drop target.
	ErrInvalidTarget = errors.New("not a valid drop target")
)
