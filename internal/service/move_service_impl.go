package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/lineboard/internal/reassign"
)

// MoveConfig configures NewMoveService.
type MoveConfig struct {
	AllowUnassign bool
	CommitTimeout time.Duration
	Logger        *slog.Logger
}

type moveService struct {
	board    BoardService
	mover    reassign.Mover
	inflight *reassign.InFlight
	cfg      MoveConfig
	observer UseCaseObserver
}

// NewMoveService runs each move through its own reassign.Controller.
// inflight is shared with every other controller of the process, so a move
// issued here is refused while the same item is committing elsewhere.
func NewMoveService(board BoardService, mover reassign.Mover, inflight *reassign.InFlight, cfg MoveConfig, observers ...UseCaseObserver) MoveService {
	if inflight == nil {
		inflight = reassign.NewInFlight()
	}
	return &moveService{
		board:    board,
		mover:    mover,
		inflight: inflight,
		cfg:      cfg,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Move moves itemID to laneID ("" is the unassigned pool). Unlike a
// dropped drag, naming a lane that cannot take the item is an error.
func (s *moveService) Move(ctx context.Context, itemID, laneID string) (res reassign.Result, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "board.move",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields: map[string]any{
				"item_id": itemID,
				"lane_id": laneID,
				"outcome": string(res.Outcome),
			},
		})
	}()

	snap, err := s.board.Current(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			return reassign.Result{}, err
		}
		if err := s.board.Refresh(ctx); err != nil {
			return reassign.Result{}, err
		}
		if snap, err = s.board.Current(ctx); err != nil {
			return reassign.Result{}, err
		}
	}
	item, ok := snap.Item(itemID)
	if !ok {
		return reassign.Result{}, fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
	}

	opts := []reassign.Option{
		reassign.WithInFlight(s.inflight),
		reassign.WithCommitTimeout(s.cfg.CommitTimeout),
		reassign.WithLogger(s.cfg.Logger),
	}
	if s.cfg.AllowUnassign {
		opts = append(opts, reassign.WithAllowUnassign())
	}
	ctrl := reassign.NewController(s.mover, s.board, opts...)
	ctrl.SetLanes(snap.Lanes)

	if err := ctrl.BeginDrag(item); err != nil {
		return reassign.Result{}, err
	}
	if err := ctrl.DragOver(laneID); err != nil {
		ctrl.Cancel()
		return reassign.Result{Outcome: reassign.OutcomeCancelled}, err
	}
	return ctrl.Drop(ctx, laneID)
}
