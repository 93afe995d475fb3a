package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/lineboard/internal/backend"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMover struct {
	mu       sync.Mutex
	requests []domain.MoveRequest
	err      error
}

func (m *fakeMover) MoveItem(_ context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ScheduledItem{ID: req.ItemID, LaneID: req.LaneID}, nil
}

func moveFixture(t *testing.T, cfg MoveConfig) (*fakeBackend, *fakeMover, *reassign.InFlight, MoveService) {
	t.Helper()
	fb := &fakeBackend{
		lanes: []domain.ResourceLane{
			testutil.NewTestLane("L1", "Line 1", testutil.WithOrder(1)),
			testutil.NewTestLane("L2", "Line 2", testutil.WithOrder(2)),
			testutil.NewTestLane("old", "Retired", testutil.WithOrder(3), testutil.Inactive()),
		},
		items: []domain.ScheduledItem{
			testutil.NewTestItem("L1", testutil.WithID("wo-1")),
			testutil.NewTestItem("L1", testutil.WithID("wo-locked"), testutil.Locked()),
		},
	}
	board := NewBoardService(fb, nil, testBoardConfig())
	require.NoError(t, board.Refresh(context.Background()))

	mover := &fakeMover{}
	inflight := reassign.NewInFlight()
	return fb, mover, inflight, NewMoveService(board, mover, inflight, cfg)
}

func TestMoveService_MovesAndRefreshes(t *testing.T) {
	fb, mover, _, svc := moveFixture(t, MoveConfig{})

	res, err := svc.Move(context.Background(), "wo-1", "L2")
	require.NoError(t, err)
	assert.Equal(t, reassign.OutcomeMoved, res.Outcome)
	require.NotNil(t, res.Item)
	assert.Equal(t, "L2", res.Item.LaneID)
	assert.Equal(t, []domain.MoveRequest{{ItemID: "wo-1", LaneID: "L2"}}, mover.requests)
	assert.Equal(t, 2, fb.itemCalls(), "successful move refreshes the board")
}

func TestMoveService_SameLaneIsNoop(t *testing.T) {
	_, mover, _, svc := moveFixture(t, MoveConfig{})

	res, err := svc.Move(context.Background(), "wo-1", "L1")
	require.NoError(t, err)
	assert.Equal(t, reassign.OutcomeNoop, res.Outcome)
	assert.Empty(t, mover.requests)
}

func TestMoveService_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		itemID string
		laneID string
		want   error
	}{
		{"unknown item", "wo-404", "L2", ErrItemNotFound},
		{"locked item", "wo-locked", "L2", reassign.ErrItemLocked},
		{"unknown lane", "wo-1", "L9", reassign.ErrInvalidTarget},
		{"inactive lane", "wo-1", "old", reassign.ErrInvalidTarget},
		{"unassign not allowed", "wo-1", "", reassign.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mover, _, svc := moveFixture(t, MoveConfig{})
			_, err := svc.Move(context.Background(), tt.itemID, tt.laneID)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, mover.requests)
		})
	}
}

func TestMoveService_Unassign(t *testing.T) {
	_, mover, _, svc := moveFixture(t, MoveConfig{AllowUnassign: true})

	res, err := svc.Move(context.Background(), "wo-1", "")
	require.NoError(t, err)
	assert.Equal(t, reassign.OutcomeMoved, res.Outcome)
	assert.Equal(t, []domain.MoveRequest{{ItemID: "wo-1", LaneID: ""}}, mover.requests)
}

func TestMoveService_InFlightItemRefused(t *testing.T) {
	_, mover, inflight, svc := moveFixture(t, MoveConfig{})
	require.True(t, inflight.Acquire("wo-1"))

	_, err := svc.Move(context.Background(), "wo-1", "L2")
	assert.ErrorIs(t, err, reassign.ErrItemInFlight)
	assert.Empty(t, mover.requests)
}

func TestMoveService_RejectionSurfaces(t *testing.T) {
	fb, mover, inflight, svc := moveFixture(t, MoveConfig{})
	mover.err = &backend.RejectedError{Status: 409, Detail: "line is down"}

	res, err := svc.Move(context.Background(), "wo-1", "L2")
	require.ErrorIs(t, err, domain.ErrReassignmentRejected)
	assert.Contains(t, err.Error(), "line is down")
	assert.Equal(t, reassign.OutcomeRejected, res.Outcome)
	assert.Equal(t, 1, fb.itemCalls(), "no refresh after a rejection")
	assert.False(t, inflight.Has("wo-1"))
}
