package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/backend"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardBackend() *fakeBackend {
	at := func(day, hour int) time.Time { return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC) }
	return &fakeBackend{
		lanes: []domain.ResourceLane{
			testutil.NewTestLane("smt-2", "SMT 2", testutil.WithOrder(2)),
			testutil.NewTestLane("smt-1", "SMT 1", testutil.WithOrder(1)),
		},
		items: []domain.ScheduledItem{
			testutil.NewTestItem("smt-1", testutil.WithID("wo-1"), testutil.WithInstants(at(11, 8), at(11, 12))),
			testutil.NewTestItem("smt-2", testutil.WithID("wo-2"), testutil.WithInstants(at(12, 8), at(13, 8))),
			testutil.NewTestItem("", testutil.WithID("wo-3")),
		},
		overrides: []domain.DowntimeOverride{
			{LaneID: "smt-1", StartDate: march(13), EndDate: march(13), IsDown: true, Reason: "PM"},
		},
	}
}

func TestBoardService_RefreshAppliesSnapshot(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig())
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))

	snap, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, testNow, snap.FetchedAt)
	assert.Len(t, snap.Items, 3)
	require.Len(t, snap.Lanes, 2)
	assert.Equal(t, "smt-1", snap.Lanes[0].ID, "lanes ordered by board position")
	assert.Len(t, snap.Lanes[0].Overrides, 1)
	assert.False(t, snap.Stored)

	r := fb.lastRange()
	assert.Equal(t, march(3), r.from)
	assert.Equal(t, march(23), r.to)
	assert.Equal(t, []string{"smt-2", "smt-1"}, r.laneIDs, "downtime is read for every fetched lane")
}

func TestBoardService_StaleResponseDiscarded(t *testing.T) {
	fb := boardBackend()
	fb.hold = make(chan struct{})
	fb.entered = make(chan struct{})
	obs := &recordingObserver{}
	svc := NewBoardService(fb, nil, testBoardConfig(), obs)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- svc.Refresh(ctx) }()
	<-fb.entered

	fresh := []domain.ScheduledItem{testutil.NewTestItem("smt-1", testutil.WithID("wo-new"))}
	fb.setItems(fresh)
	require.NoError(t, svc.Refresh(ctx))

	close(fb.hold)
	require.NoError(t, <-slow)

	snap, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Generation)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "wo-new", snap.Items[0].ID)

	events := obs.named("board.refresh")
	require.Len(t, events, 2)
	discarded := 0
	for _, e := range events {
		if e.Fields["discarded"] == true {
			discarded++
			assert.Equal(t, uint64(1), e.Fields["generation"])
		}
	}
	assert.Equal(t, 1, discarded)
}

func TestBoardService_FailedRefreshKeepsLastKnownGood(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig())
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	down := errors.New("connection refused")
	fb.setErr(down)
	err := svc.Refresh(ctx)
	require.ErrorIs(t, err, down)

	view, err := svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), view.Snapshot.Generation)
	assert.True(t, view.Stale)
	assert.ErrorIs(t, view.RefreshErr, down)
	assert.Contains(t, view.Layout.Placements, "wo-1")

	fb.setErr(nil)
	require.NoError(t, svc.Refresh(ctx))
	view, err = svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.False(t, view.Stale)
	assert.NoError(t, view.RefreshErr)
}

func TestBoardService_DowntimeFailureKeepsFreshItemsAndLanes(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig())
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	calendarDown := errors.New("calendar unavailable")
	fb.setDowntimeErr(calendarDown)
	moved := []domain.ScheduledItem{testutil.NewTestItem("smt-2", testutil.WithID("wo-1"))}
	fb.setItems(moved)

	err := svc.Refresh(ctx)
	require.ErrorIs(t, err, calendarDown)

	view, err := svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), view.Snapshot.Generation, "items and lanes were applied")
	item, ok := view.Item("wo-1")
	require.True(t, ok)
	assert.Equal(t, "smt-2", item.LaneID)
	assert.True(t, view.Layout.Downtime["smt-1"].Has(march(13)), "previous downtime kept")
	assert.True(t, view.Stale)
	assert.ErrorIs(t, view.RefreshErr, calendarDown)

	fb.setDowntimeErr(nil)
	require.NoError(t, svc.Refresh(ctx))
	view, err = svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.False(t, view.Stale)
}

func TestBoardService_DowntimeFailureOnFirstRefresh(t *testing.T) {
	fb := boardBackend()
	fb.downtimeErr = errors.New("calendar unavailable")
	svc := NewBoardService(fb, nil, testBoardConfig())
	ctx := context.Background()

	require.Error(t, svc.Refresh(ctx))

	snap, err := svc.Current(ctx)
	require.NoError(t, err, "items and lanes are usable without downtime")
	assert.Len(t, snap.Items, 3)
	assert.Empty(t, snap.Overrides())
	assert.False(t, snap.Covers(thisWeek()), "the downtime range is fetched again")
}

func TestBoardService_RefreshOverHTTPReadsLineCalendars(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/work-orders", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 11, "line_id": 1, "wo_number": "WO-11",
			"calculated_start_datetime": "2025-03-11T08:00:00", "calculated_end_datetime": "2025-03-11T12:00:00"}]`)
	})
	mux.HandleFunc("GET /api/lines", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 1, "name": "SMT 1", "is_active": true, "order_position": 1},
			{"id": 2, "name": "SMT 2", "is_active": true, "order_position": 2}]`)
	})
	mux.HandleFunc("POST /api/capacity/overrides", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/capacity/calendar/{line_id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("line_id") != "1" {
			io.WriteString(w, `{"overrides": []}`)
			return
		}
		io.WriteString(w, `{"line": {"id": 1}, "overrides": [
			{"id": 3, "start_date": "2025-03-13", "end_date": "2025-03-13", "total_hours": 0, "reason": "reflow oven PM"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := backend.DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.Location = time.UTC
	svc := NewBoardService(backend.NewHTTPClient(cfg, nil), nil, testBoardConfig())
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	view, err := svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.False(t, view.Stale)
	assert.Contains(t, view.Layout.Placements, "11")
	assert.True(t, view.Layout.Downtime["1"].Has(march(13)))
	assert.False(t, view.Layout.Downtime["2"].Has(march(13)))
}

func TestBoardService_LayoutFetchesOnFirstUse(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig())

	view, err := svc.Layout(context.Background(), thisWeek())
	require.NoError(t, err)
	assert.Equal(t, 1, fb.itemCalls())

	require.Len(t, view.Layout.Lanes, 2)
	assert.Equal(t, "smt-1", view.Layout.Lanes[0].LaneID)
	assert.Equal(t, []string{"wo-3"}, view.Layout.Unassigned)
	assert.True(t, view.Layout.Downtime["smt-1"].Has(march(13)))

	item, ok := view.Item("wo-2")
	require.True(t, ok)
	assert.Equal(t, "smt-2", item.LaneID)
}

func TestBoardService_LayoutWithoutAnyDataFails(t *testing.T) {
	fb := boardBackend()
	fb.err = errors.New("backend down")
	svc := NewBoardService(fb, nil, testBoardConfig())

	_, err := svc.Layout(context.Background(), thisWeek())
	require.ErrorIs(t, err, ErrNoSnapshot)
	assert.ErrorIs(t, err, fb.err)
}

func TestBoardService_PagingPastHorizonRefetches(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig())
	ctx := context.Background()
	cfg := testBoardConfig()

	_, err := svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	_, err = svc.Layout(ctx, timeline.NewWindow(domain.ZoomWeek, 1, testNow, cfg.Window))
	require.NoError(t, err)
	assert.Equal(t, 1, fb.itemCalls(), "next week is inside the padded range")

	_, err = svc.Layout(ctx, timeline.NewWindow(domain.ZoomWeek, 3, testNow, cfg.Window))
	require.NoError(t, err)
	assert.Equal(t, 2, fb.itemCalls())
	r := fb.lastRange()
	assert.Equal(t, march(24), r.from)
	assert.Equal(t, domain.NewDate(2025, time.April, 13), r.to)
}

func TestBoardService_RestartServesStoredSnapshot(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteSnapshotStore(testutil.NewTestUoW(database), "http://backend")
	ctx := context.Background()

	first := NewBoardService(boardBackend(), store, testBoardConfig())
	require.NoError(t, first.Refresh(ctx))

	down := boardBackend()
	down.err = errors.New("backend down")
	second := NewBoardService(down, store, testBoardConfig())

	view, err := second.Layout(ctx, thisWeek())
	require.NoError(t, err)
	assert.True(t, view.Stale)
	assert.True(t, view.Snapshot.Stored)
	assert.Contains(t, view.Layout.Placements, "wo-1")
	assert.Contains(t, view.Layout.Placements, "wo-2")
	assert.True(t, view.Layout.Downtime["smt-1"].Has(march(13)))
}

func TestBoardService_LayoutIsMemoized(t *testing.T) {
	fb := boardBackend()
	svc := NewBoardService(fb, nil, testBoardConfig()).(*boardService)
	ctx := context.Background()

	_, err := svc.Layout(ctx, thisWeek())
	require.NoError(t, err)
	_, err = svc.Layout(ctx, thisWeek())
	require.NoError(t, err)

	hits, misses := svc.memo.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}
