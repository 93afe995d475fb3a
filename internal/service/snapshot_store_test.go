package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedSnapshot(gen uint64, itemIDs ...string) *Snapshot {
	lanes := assembleLanes([]domain.ResourceLane{
		testutil.NewTestLane("L1", "Line 1", testutil.WithOrder(1)),
		testutil.NewTestLane("L2", "Line 2", testutil.WithOrder(2), testutil.Inactive()),
	}, []domain.DowntimeOverride{
		{LaneID: "L1", StartDate: march(12), EndDate: march(12), IsDown: true, Reason: "PM"},
	})
	items := make([]domain.ScheduledItem, len(itemIDs))
	for i, id := range itemIDs {
		items[i] = testutil.NewTestItem("L1", testutil.WithID(id), testutil.WithPosition(i+1),
			testutil.WithDates(march(10), march(11)))
	}
	return &Snapshot{
		Generation: gen,
		FetchedAt:  time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC),
		From:       march(3),
		To:         march(23),
		Items:      items,
		Lanes:      lanes,
	}
}

func TestSnapshotStore_EmptyLoad(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend")

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend")
	ctx := context.Background()

	want := storedSnapshot(4, "wo-1", "wo-2")
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Stored)
	assert.Equal(t, uint64(4), got.Generation)
	assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, march(3), got.From)
	assert.Equal(t, march(23), got.To)

	require.Len(t, got.Lanes, 2)
	assert.Equal(t, "L1", got.Lanes[0].ID)
	assert.False(t, got.Lanes[1].Active)
	require.Len(t, got.Lanes[0].Overrides, 1)
	assert.Equal(t, "PM", got.Lanes[0].Overrides[0].Reason)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "wo-1", got.Items[0].ID)
	require.NotNil(t, got.Items[1].Position)
	assert.Equal(t, 2, *got.Items[1].Position)
	assert.Equal(t, march(11), *got.Items[0].EndDate)
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSnapshot(1, "wo-1", "wo-2")))
	require.NoError(t, store.Save(ctx, storedSnapshot(2, "wo-3")))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Generation)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "wo-3", got.Items[0].ID)
}

func TestSnapshotStore_RollbackKeepsPreviousSnapshot(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend").
		Save(ctx, storedSnapshot(1, "wo-1")))

	// Exec #1 clears lanes, #2 inserts the first lane.
	failing := NewSQLiteSnapshotStore(&testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 2,
		Err:    fmt.Errorf("injected lane insert failure"),
	}, "http://backend")
	err := failing.Save(ctx, storedSnapshot(2, "wo-9"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected lane insert failure")

	got, err := NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Generation)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "wo-1", got.Items[0].ID)
	require.Len(t, got.Lanes, 2)
	assert.Len(t, got.Lanes[0].Overrides, 1, "cascade delete rolled back")
}
