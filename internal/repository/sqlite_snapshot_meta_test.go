package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotMetaRepo_EmptyIsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteSnapshotMetaRepo(db).Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotMetaRepo_SaveOverwrites(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotMetaRepo(db)
	ctx := context.Background()

	first := SnapshotMeta{
		Generation: 1,
		FetchedAt:  time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		From:       march(10),
		To:         march(16),
		Source:     "http://backend",
	}
	require.NoError(t, repo.Save(ctx, first))

	second := first
	second.Generation = 7
	second.FetchedAt = first.FetchedAt.Add(time.Minute)
	second.To = march(23)
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.Generation)
	assert.True(t, second.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, march(10), got.From)
	assert.Equal(t, march(23), got.To)
	assert.Equal(t, "http://backend", got.Source)
}
