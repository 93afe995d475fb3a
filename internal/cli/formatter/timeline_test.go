package formatter

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/testutil"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ansiPattern matches ANSI escape sequences so assertions are
// terminal-independent.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func march(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func sampleBoard() (timeline.Layout, map[string]domain.ScheduledItem) {
	items := []domain.ScheduledItem{
		testutil.NewTestItem("smt-1", testutil.WithID("a"), testutil.WithInstants(march(10, 0), march(12, 0))),
		testutil.NewTestItem("smt-1", testutil.WithID("b"), testutil.WithInstants(march(11, 0), march(13, 0))),
		testutil.NewTestItem("smt-2", testutil.WithID("c"), testutil.WithInstants(march(14, 0), march(15, 0)), testutil.Locked()),
		testutil.NewTestItem("", testutil.WithID("pool")),
		testutil.NewTestItem("smt-2", testutil.WithID("late"), testutil.WithInstants(march(20, 0), march(21, 0))),
	}
	items[0].Number, items[0].Assembly, items[0].Revision = "WO-1", "PCB-9", "B"
	items[3].Number = "WO-POOL"

	day := domain.NewDate(2025, time.March, 16)
	lanes := []domain.ResourceLane{
		testutil.NewTestLane("smt-1", "SMT 1"),
		testutil.NewTestLane("smt-2", "SMT 2", testutil.WithDowntime(day, day, "PM")),
	}
	w := timeline.NewWindow(domain.ZoomWeek, 0, march(12, 9), timeline.WindowConfig{Location: time.UTC, WeekStart: time.Monday})
	opts := timeline.DefaultOptions()

	byID := make(map[string]domain.ScheduledItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return timeline.ComputeLayout(items, lanes, w, opts), byID
}

func lookupIn(m map[string]domain.ScheduledItem) func(string) (domain.ScheduledItem, bool) {
	return func(id string) (domain.ScheduledItem, bool) {
		it, ok := m[id]
		return it, ok
	}
}

func TestRenderTimeline_LanesRowsAndPool(t *testing.T) {
	l, items := sampleBoard()
	out := stripANSI(RenderTimeline(l, TimelineOptions{Width: 70, Items: lookupIn(items)}))
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines[0], "│Mon 10")
	assert.Contains(t, lines[0], "│Sun 16")

	// smt-1 packs into two rows, smt-2 into one.
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[1], "  SMT 1"))
	assert.True(t, strings.HasPrefix(lines[2], "   "), "second row has no lane label")
	assert.True(t, strings.HasPrefix(lines[3], "  SMT 2"))

	assert.Contains(t, lines[1], "WO-1 PCB-9 rev B")
	assert.Contains(t, lines[3], "*", "locked marker")
	assert.Contains(t, lines[3], string(downCell))

	assert.Contains(t, out, "Unassigned  WO-POOL")
	assert.Contains(t, out, "1 item(s) not shown in this window")
}

func TestRenderTimeline_TargetMarker(t *testing.T) {
	l, items := sampleBoard()
	out := stripANSI(RenderTimeline(l, TimelineOptions{
		Width: 70, Items: lookupIn(items), Dragged: "a", Target: "smt-2", HasTarget: true,
	}))
	assert.Contains(t, out, "▶ SMT 2")
	assert.NotContains(t, out, "▶ SMT 1")
}

func TestRenderTimeline_MarksItemsWithMoveInFlight(t *testing.T) {
	l, items := sampleBoard()
	canDrag := func(it domain.ScheduledItem) bool { return !it.Locked && it.ID != "a" }
	out := stripANSI(RenderTimeline(l, TimelineOptions{Width: 70, Items: lookupIn(items), CanDrag: canDrag}))

	assert.Contains(t, out, movingMark+"WO-1")
	assert.Contains(t, out, "Unassigned  WO-POOL", "draggable items are unmarked")
	assert.NotContains(t, out, movingMark+lockedMark, "locked items keep their own marker")

	plain := stripANSI(RenderTimeline(l, TimelineOptions{Width: 70, Items: lookupIn(items)}))
	assert.NotContains(t, plain, movingMark)
}

func TestColumns_AtLeastOneWideAndClamped(t *testing.T) {
	tests := []struct {
		name     string
		p        timeline.Placement
		from, to int
	}{
		{"zero width", timeline.Placement{Left: 50, Width: 0}, 35, 36},
		{"full window", timeline.Placement{Left: 0, Width: 100}, 0, 70},
		{"flush right point", timeline.Placement{Left: 100, Width: 0}, 69, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := columns(tt.p, 70)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"LANE", "DAY"}, [][]string{
		{"SMT 1", "2025-03-12"},
		{"Wave solder", "2025-03-13"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[0], "DAY"), strings.Index(lines[2], "2025"))
	assert.Equal(t, strings.Index(lines[0], "DAY"), strings.Index(lines[3], "2025"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "WO-17", Truncate("WO-17", 5))
	assert.Equal(t, "WO-…", Truncate("WO-17", 4))
	assert.Equal(t, "…", Truncate("WO-17", 1))
	assert.Equal(t, "", Truncate("WO-17", 0))
}

func TestSpan(t *testing.T) {
	start, end := march(12, 8), march(12, 12)
	item := testutil.NewTestItem("L1", testutil.WithInstants(start, end))
	assert.Equal(t, "Wed Mar 12 08:00–12:00", Span(item, time.UTC))

	d := domain.NewDate(2025, time.March, 12)
	dated := testutil.NewTestItem("L1", testutil.WithDates(d, d.AddDays(1)))
	assert.Equal(t, "2025-03-12 → 2025-03-13", Span(dated, time.UTC))

	assert.Equal(t, "unscheduled", Span(testutil.NewTestItem("L1"), time.UTC))
}

func TestWindowTitle(t *testing.T) {
	cfg := timeline.WindowConfig{Location: time.UTC, WeekStart: time.Monday}
	assert.Equal(t, "Week of Mon Mar 10 2025", WindowTitle(timeline.NewWindow(domain.ZoomWeek, 0, march(12, 9), cfg)))
	assert.Equal(t, "Wed Mar 12 2025", WindowTitle(timeline.NewWindow(domain.ZoomDay, 0, march(12, 9), cfg)))
	assert.Equal(t, "Mar 10 – Apr 6 2025", WindowTitle(timeline.NewWindow(domain.ZoomMonth, 0, march(12, 9), cfg)))
}

func TestSpinner_ClearsLineOnStop(t *testing.T) {
	var buf safeBuffer
	stop := StartSpinner(&buf, "Fetching board")
	stop()
	stop()

	out := buf.String()
	assert.Contains(t, out, "Fetching board")
	assert.True(t, strings.HasSuffix(out, "\r\033[K"))
}

type safeBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
