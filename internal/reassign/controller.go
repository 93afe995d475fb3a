// Package reassign drives moving a scheduled item between resource lanes.
//
// A drag runs Idle -> Dragging -> HoverTarget -> Committing -> Idle. The
// controller never edits layout state itself: after the backend accepts a
// move it asks its Refresher for fresh data, and after a rejection it
// surfaces the error and leaves the board as the backend last reported it.
package reassign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
)

type State int

const (
	Idle State = iota
	Dragging
	HoverTarget
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case HoverTarget:
		return "hover"
	case Committing:
		return "committing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mover submits a move to the scheduling backend.
type Mover interface {
	MoveItem(ctx context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error)
}

// Refresher reloads board data after a successful move.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomeNoop      Outcome = "noop"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeRejected  Outcome = "rejected"
)

// Result describes how a Drop settled. Request is set whenever a request
// was sent; Item is the backend's copy of the moved item on success.
type Result struct {
	Outcome Outcome
	Request *domain.MoveRequest
	Item    *domain.ScheduledItem
}

const DefaultCommitTimeout = 20 * time.Second

type Option func(*Controller)

// WithAllowUnassign makes the unassigned pool (empty lane id) a valid drop
// target.
func WithAllowUnassign() Option {
	return func(c *Controller) { c.allowUnassign = true }
}

func WithCommitTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.commitTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInFlight shares an in-flight registry between controllers.
func WithInFlight(f *InFlight) Option {
	return func(c *Controller) {
		if f != nil {
			c.inflight = f
		}
	}
}

type Controller struct {
	mover     Mover
	refresher Refresher

	allowUnassign bool
	commitTimeout time.Duration
	logger        *slog.Logger
	inflight      *InFlight

	mu      sync.Mutex
	lanes   map[string]bool
	state   State
	dragged *domain.ScheduledItem
	target  string
}

// NewController builds an idle controller. refresher may be nil.
func NewController(mover Mover, refresher Refresher, opts ...Option) *Controller {
	c := &Controller{
		mover:         mover,
		refresher:     refresher,
		commitTimeout: DefaultCommitTimeout,
		logger:        slog.New(slog.DiscardHandler),
		inflight:      NewInFlight(),
		lanes:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLanes replaces the set of lanes that accept drops. Only active lanes
// are drop targets.
func (c *Controller) SetLanes(lanes []domain.ResourceLane) {
	known := make(map[string]bool, len(lanes))
	for _, l := range lanes {
		if l.Active {
			known[l.ID] = true
		}
	}
	c.mu.Lock()
	c.lanes = known
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dragged returns the item being dragged, or nil.
func (c *Controller) Dragged() *domain.ScheduledItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragged == nil {
		return nil
	}
	item := *c.dragged
	return &item
}

// Target returns the hovered lane id; ok is false outside HoverTarget.
func (c *Controller) Target() (laneID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.state == HoverTarget
}

// CanDrag reports whether item may be picked up.
func (c *Controller) CanDrag(item domain.ScheduledItem) bool {
	return !item.Locked && !c.inflight.Has(item.ID)
}

func (c *Controller) BeginDrag(item domain.ScheduledItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state == Committing:
		return ErrBusy
	case item.Locked:
		return fmt.Errorf("drag %s: %w", item.ID, ErrItemLocked)
	case c.inflight.Has(item.ID):
		return fmt.Errorf("drag %s: %w", item.ID, ErrItemInFlight)
	}

	c.dragged = &item
	c.target = ""
	c.state = Dragging
	return nil
}

// DragOver hovers the dragged item over a lane. Hovering an invalid target
// leaves the state unchanged.
func (c *Controller) DragOver(laneID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Dragging && c.state != HoverTarget {
		return ErrNotDragging
	}
	if !c.validTargetLocked(laneID) {
		return fmt.Errorf("lane %q: %w", laneID, ErrInvalidTarget)
	}
	c.target = laneID
	c.state = HoverTarget
	return nil
}

func (c *Controller) DragLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == HoverTarget {
		c.target = ""
		c.state = Dragging
	}
}

// Cancel abandons the drag without a request.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Committing {
		return
	}
	c.resetLocked()
}

// Drop settles the drag on laneID. Dropping on an invalid target cancels,
// dropping on the item's current lane is a no-op; neither sends anything.
// Otherwise one request is sent on a context detached from ctx, so callers
// going away do not abort a move the backend may already have applied.
func (c *Controller) Drop(ctx context.Context, laneID string) (Result, error) {
	c.mu.Lock()
	if c.state != Dragging && c.state != HoverTarget {
		c.mu.Unlock()
		return Result{}, ErrNotDragging
	}
	item := *c.dragged

	if !c.validTargetLocked(laneID) {
		c.resetLocked()
		c.mu.Unlock()
		return Result{Outcome: OutcomeCancelled}, nil
	}
	if laneID == item.LaneID {
		c.resetLocked()
		c.mu.Unlock()
		return Result{Outcome: OutcomeNoop}, nil
	}
	if !c.inflight.Acquire(item.ID) {
		c.resetLocked()
		c.mu.Unlock()
		return Result{Outcome: OutcomeCancelled}, fmt.Errorf("drop %s: %w", item.ID, ErrItemInFlight)
	}
	c.state = Committing
	c.target = laneID
	c.mu.Unlock()

	req := domain.MoveRequest{ItemID: item.ID, LaneID: laneID}
	updated, err := c.commit(ctx, req)

	c.inflight.Release(item.ID)
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.WarnContext(ctx, "reassign_rejected", "item", item.ID, "from", item.LaneID, "to", laneID, "error", err)
		return Result{Outcome: OutcomeRejected, Request: &req}, fmt.Errorf("move %s to %q: %w", item.ID, laneID, err)
	}
	c.logger.InfoContext(ctx, "reassign_committed", "item", item.ID, "from", item.LaneID, "to", laneID)

	c.refresh(ctx)
	return Result{Outcome: OutcomeMoved, Request: &req, Item: updated}, nil
}

func (c *Controller) commit(ctx context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error) {
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.commitTimeout)
	defer cancel()
	return c.mover.MoveItem(commitCtx, req)
}

// refresh failures are left to the next poll.
func (c *Controller) refresh(ctx context.Context) {
	if c.refresher == nil {
		return
	}
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.commitTimeout)
	defer cancel()
	if err := c.refresher.Refresh(refreshCtx); err != nil {
		c.logger.WarnContext(ctx, "reassign_refresh_failed", "error", err)
	}
}

func (c *Controller) validTargetLocked(laneID string) bool {
	if laneID == "" {
		return c.allowUnassign
	}
	return c.lanes[laneID]
}

func (c *Controller) resetLocked() {
	c.state = Idle
	c.dragged = nil
	c.target = ""
}
