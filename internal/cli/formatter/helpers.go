package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// WindowTitle describes a window, e.g. "Week of Mon Mar 10 2025".
func WindowTitle(w domain.TimeWindow) string {
	start := w.Start
	switch w.Zoom {
	case domain.ZoomDay:
		return start.Format("Mon Jan 2 2006")
	case domain.ZoomMonth:
		last := w.End().AddDate(0, 0, -1)
		return fmt.Sprintf("%s – %s", start.Format("Jan 2"), last.Format("Jan 2 2006"))
	default:
		return "Week of " + start.Format("Mon Jan 2 2006")
	}
}

// Span formats an item's schedule compactly, preferring instants over
// dates. Items with neither return "unscheduled".
func Span(item domain.ScheduledItem, loc *time.Location) string {
	switch {
	case item.StartAt != nil && item.EndAt != nil:
		s, e := item.StartAt.In(loc), item.EndAt.In(loc)
		if domain.DateOf(s) == domain.DateOf(e) {
			return fmt.Sprintf("%s %s–%s", s.Format("Mon Jan 2"), s.Format("15:04"), e.Format("15:04"))
		}
		return fmt.Sprintf("%s → %s", s.Format("Mon Jan 2 15:04"), e.Format("Mon Jan 2 15:04"))
	case item.StartDate != nil && item.EndDate != nil:
		if *item.StartDate == *item.EndDate {
			return item.StartDate.String()
		}
		return item.StartDate.String() + " → " + item.EndDate.String()
	case item.StartDate != nil:
		return item.StartDate.String()
	default:
		return "unscheduled"
	}
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
