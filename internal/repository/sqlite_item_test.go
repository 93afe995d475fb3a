package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepo_RoundTripsEveryField(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteItemRepo(db)
	ctx := context.Background()

	chicago := time.FixedZone("CST", -6*3600)
	start := time.Date(2025, time.March, 12, 7, 30, 0, 0, chicago)
	end := time.Date(2025, time.March, 12, 16, 30, 0, 500, chicago)
	item := testutil.NewTestItem("L1",
		testutil.WithPosition(3),
		testutil.WithInstants(start, end),
		testutil.WithDates(domain.NewDate(2025, time.March, 12), domain.NewDate(2025, time.March, 13)),
		testutil.Locked(),
		testutil.WithPriority(domain.PriorityCriticalMass),
	)
	require.NoError(t, repo.ReplaceAll(ctx, []domain.ScheduledItem{item}))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)

	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "L1", got.LaneID)
	require.NotNil(t, got.Position)
	assert.Equal(t, 3, *got.Position)
	require.NotNil(t, got.StartAt)
	assert.True(t, start.Equal(*got.StartAt))
	assert.True(t, end.Equal(*got.EndAt), "sub-second precision survives")
	assert.Equal(t, *item.StartDate, *got.StartDate)
	assert.Equal(t, *item.EndDate, *got.EndDate)
	assert.True(t, got.Locked)
	assert.Equal(t, domain.PriorityCriticalMass, got.Priority)
	assert.Equal(t, item.Number, got.Number)
	assert.Equal(t, item.Label(), got.Label())
}

func TestItemRepo_NullableFieldsStayNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteItemRepo(db)
	ctx := context.Background()

	item := testutil.NewTestItem("", testutil.Unassigned())
	require.NoError(t, repo.ReplaceAll(ctx, []domain.ScheduledItem{item}))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Unassigned())
	assert.Nil(t, got.Position)
	assert.Nil(t, got.StartAt)
	assert.Nil(t, got.EndAt)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
}

func TestItemRepo_ListByLane(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteItemRepo(db)
	ctx := context.Background()

	a := testutil.NewTestItem("L1")
	b := testutil.NewTestItem("L2")
	c := testutil.NewTestItem("L1")
	pool := testutil.NewTestItem("")
	require.NoError(t, repo.ReplaceAll(ctx, []domain.ScheduledItem{a, b, c, pool}))

	l1, err := repo.ListByLane(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(l1))

	unassigned, err := repo.ListByLane(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{pool.ID}, ids(unassigned))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID, pool.ID}, ids(all), "backend order is preserved")
}

func TestItemRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteItemRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func ids(items []domain.ScheduledItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
