package timeline

import (
	"testing"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcConfig() WindowConfig {
	return WindowConfig{Location: time.UTC, WeekStart: time.Monday}
}

// Wednesday 2025-03-12 14:20 UTC.
var wednesday = time.Date(2025, time.March, 12, 14, 20, 0, 0, time.UTC)

func TestNewWindow_DayStartsAtLocalMidnight(t *testing.T) {
	w := NewWindow(domain.ZoomDay, 0, wednesday, utcConfig())

	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 1, w.Days)
	assert.True(t, w.Contains(wednesday), "offset 0 must contain now")
}

func TestNewWindow_WeekAlignsToWeekStart(t *testing.T) {
	w := NewWindow(domain.ZoomWeek, 0, wednesday, utcConfig())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 7, w.Days)

	sunday := WindowConfig{Location: time.UTC, WeekStart: time.Sunday}
	w = NewWindow(domain.ZoomWeek, 0, wednesday, sunday)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestNewWindow_WeekStartDayIsItsOwnAnchor(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	w := NewWindow(domain.ZoomWeek, 0, monday, utcConfig())
	assert.Equal(t, monday, w.Start)
}

func TestNewWindow_MonthIsFourAlignedWeeks(t *testing.T) {
	w := NewWindow(domain.ZoomMonth, 0, wednesday, utcConfig())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 28, w.Days)
	assert.Equal(t, time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC), w.End())

	next := NewWindow(domain.ZoomMonth, 1, wednesday, utcConfig())
	assert.Equal(t, w.End(), next.Start, "consecutive months must tile without gaps")
	assert.Equal(t, time.Monday, next.Start.Weekday())
}

func TestNewWindow_OffsetsStepWholePeriods(t *testing.T) {
	cfg := utcConfig()
	for _, zoom := range []domain.ZoomLevel{domain.ZoomDay, domain.ZoomWeek, domain.ZoomMonth} {
		for offset := -5; offset <= 5; offset++ {
			w := NewWindow(zoom, offset, wednesday, cfg)
			next := NewWindow(zoom, offset+1, wednesday, cfg)
			assert.Equal(t, w.End(), next.Start, "zoom %s offset %d", zoom, offset)
			assert.Equal(t, 0, w.Start.Hour())
		}
	}
}

func TestNewWindow_LocalMidnightAcrossDST(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	cfg := WindowConfig{Location: chicago, WeekStart: time.Monday}

	// DST starts Sunday 2025-03-09 in the US.
	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, chicago)
	w := NewWindow(domain.ZoomWeek, 0, now, cfg)

	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, chicago), w.Start)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, chicago), w.End())
	assert.Equal(t, 7*24*time.Hour-time.Hour, w.Duration())
}

func TestNewWindow_UsesConfiguredLocationForToday(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 12th is already the 13th in Tokyo.
	now := time.Date(2025, time.March, 12, 20, 0, 0, 0, time.UTC)
	w := NewWindow(domain.ZoomDay, 0, now, WindowConfig{Location: tokyo, WeekStart: time.Monday})
	assert.Equal(t, time.Date(2025, time.March, 13, 0, 0, 0, 0, tokyo), w.Start)
}

func TestNav_Apply(t *testing.T) {
	start := Nav{Zoom: domain.ZoomWeek, Offset: 3}

	tests := []struct {
		action NavAction
		want   Nav
	}{
		{NavPrevious, Nav{Zoom: domain.ZoomWeek, Offset: 2}},
		{NavNext, Nav{Zoom: domain.ZoomWeek, Offset: 4}},
		{NavToday, Nav{Zoom: domain.ZoomWeek, Offset: 0}},
		{NavTomorrow, Nav{Zoom: domain.ZoomDay, Offset: 1}},
		{NavNextWeek, Nav{Zoom: domain.ZoomWeek, Offset: 1}},
		{NavNextMonth, Nav{Zoom: domain.ZoomMonth, Offset: 1}},
		{NavAction("sideways"), start},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, start.Apply(tt.action))
		})
	}
}

func TestNav_TomorrowIsTheDayAfterToday(t *testing.T) {
	n := Nav{Zoom: domain.ZoomMonth, Offset: -2}.Apply(NavTomorrow)
	w := n.Window(wednesday, utcConfig())
	assert.Equal(t, time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestNav_WithZoomResetsOffset(t *testing.T) {
	n := Nav{Zoom: domain.ZoomDay, Offset: 9}.WithZoom(domain.ZoomMonth)
	assert.Equal(t, Nav{Zoom: domain.ZoomMonth}, n)
}

func TestParseNavAction(t *testing.T) {
	a, err := ParseNavAction("next-week")
	require.NoError(t, err)
	assert.Equal(t, NavNextWeek, a)

	_, err = ParseNavAction("later")
	assert.Error(t, err)
}
