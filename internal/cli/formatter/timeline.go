package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

// DefaultTrackWidth is the number of terminal columns a window spans.
const DefaultTrackWidth = 84

const (
	downCell  = '░'
	fillCell  = '─'
	emptyCell = ' '

	lockedMark = "*"
	movingMark = "↻"
)

// TimelineOptions controls RenderTimeline. Items resolves placement ids to
// their work orders; Cursor and Dragged name items to highlight and Target
// names the lane a drag hovers over. Unlocked items CanDrag refuses have a
// move in flight and are drawn dimmed.
type TimelineOptions struct {
	Width     int
	Items     func(id string) (domain.ScheduledItem, bool)
	CanDrag   func(item domain.ScheduledItem) bool
	Cursor    string
	Dragged   string
	Target    string
	HasTarget bool
}

func (o TimelineOptions) moving(item domain.ScheduledItem) bool {
	return o.CanDrag != nil && !item.Locked && !o.CanDrag(item)
}

type cell struct {
	r     rune
	style lipgloss.Style
	key   string
}

// RenderTimeline draws a layout as a text Gantt chart: one block of rows per
// lane, blocks positioned from their placement percentages, downtime days
// shaded, then the unassigned pool and a count of excluded items.
func RenderTimeline(l timeline.Layout, opts TimelineOptions) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultTrackWidth
	}
	lookup := opts.Items
	if lookup == nil {
		lookup = func(string) (domain.ScheduledItem, bool) { return domain.ScheduledItem{}, false }
	}

	labelW := 10
	for _, lane := range l.Lanes {
		labelW = max(labelW, lipgloss.Width(lane.Name))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelW+2))
	b.WriteString(StyleDim.Render(ruler(l.Window, width)))
	b.WriteString("\n")

	dates := l.Window.Dates()
	for _, lane := range l.Lanes {
		rows := renderLane(l, lane, dates, width, lookup, opts)

		marker, nameStyle := "  ", StyleBold
		if opts.HasTarget && opts.Target == lane.LaneID {
			marker, nameStyle = "▶ ", StyleTarget
		}
		for i, row := range rows {
			label := ""
			if i == 0 {
				label = lane.Name
			}
			pad := strings.Repeat(" ", labelW-lipgloss.Width(label))
			if i == 0 {
				b.WriteString(nameStyle.Render(marker + label))
			} else {
				b.WriteString("  " + label)
			}
			b.WriteString(pad)
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	if len(l.Unassigned) > 0 || (opts.HasTarget && opts.Target == "") {
		marker := "  "
		if opts.HasTarget && opts.Target == "" {
			marker = StyleTarget.Render("▶ ")
		}
		labels := make([]string, 0, len(l.Unassigned))
		for _, id := range l.Unassigned {
			labels = append(labels, blockStyle(id, lookup, opts).Render(itemLabel(id, lookup, opts)))
		}
		b.WriteString("\n" + marker + StyleHeader.Render("Unassigned") + "  " + strings.Join(labels, StyleDim.Render(", ")) + "\n")
	}
	if n := len(l.Excluded); n > 0 {
		b.WriteString(Dim(fmt.Sprintf("\n  %d item(s) not shown in this window\n", n)))
	}
	return b.String()
}

func renderLane(l timeline.Layout, lane timeline.LaneLayout, dates []domain.Date, width int, lookup func(string) (domain.ScheduledItem, bool), opts TimelineOptions) []string {
	base := make([]cell, width)
	down := l.Downtime[lane.LaneID]
	for i := range base {
		base[i] = cell{r: emptyCell}
	}
	for d, day := range dates {
		if !down.Has(day) {
			continue
		}
		from, to := d*width/len(dates), (d+1)*width/len(dates)
		for c := from; c < to; c++ {
			base[c] = cell{r: downCell, style: StyleDowntime, key: "down"}
		}
	}

	rows := make([][]cell, max(lane.Rows, 1))
	for i := range rows {
		rows[i] = append([]cell(nil), base...)
	}

	for _, id := range lane.ItemIDs {
		p := l.Placements[id]
		from, to := columns(p, width)
		style := blockStyle(id, lookup, opts)
		text := []rune(Truncate(itemLabel(id, lookup, opts), to-from))
		for c := from; c < to; c++ {
			r := fillCell
			if k := c - from; k < len(text) {
				r = text[k]
			}
			rows[p.Row][c] = cell{r: r, style: style, key: id}
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = renderCells(row)
	}
	return out
}

// columns maps a placement onto [from, to) track columns, at least one
// column wide.
func columns(p timeline.Placement, width int) (int, int) {
	from := int(math.Floor(p.Left * float64(width) / 100))
	to := int(math.Ceil((p.Left + p.Width) * float64(width) / 100))
	from = min(max(from, 0), width-1)
	to = min(max(to, from+1), width)
	return from, to
}

func renderCells(cells []cell) string {
	var b strings.Builder
	var run strings.Builder
	key := ""
	var style lipgloss.Style
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if key == "" {
			b.WriteString(run.String())
		} else {
			b.WriteString(style.Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range cells {
		if c.key != key {
			flush()
			key, style = c.key, c.style
		}
		run.WriteRune(c.r)
	}
	flush()
	return b.String()
}

func blockStyle(id string, lookup func(string) (domain.ScheduledItem, bool), opts TimelineOptions) lipgloss.Style {
	switch id {
	case opts.Dragged:
		return StyleDragged
	case opts.Cursor:
		return StyleCursor
	}
	item, ok := lookup(id)
	switch {
	case !ok:
		return StyleFg
	case opts.moving(item):
		return StyleDim
	}
	return PriorityStyle(item.Priority)
}

func itemLabel(id string, lookup func(string) (domain.ScheduledItem, bool), opts TimelineOptions) string {
	item, ok := lookup(id)
	switch {
	case !ok:
		return id
	case item.Locked:
		return lockedMark + item.Label()
	case opts.moving(item):
		return movingMark + item.Label()
	}
	return item.Label()
}

// ruler labels the track with day marks. Day zoom shows the date alone.
func ruler(w domain.TimeWindow, width int) string {
	line := []rune(strings.Repeat(" ", width))
	put := func(col int, s string) {
		for i, r := range []rune(s) {
			if col+i < width {
				line[col+i] = r
			}
		}
	}

	dates := w.Dates()
	switch {
	case w.Zoom == domain.ZoomDay || len(dates) == 0:
		put(0, w.Start.Format("Mon Jan 2"))
	case len(dates) <= 7:
		for d, day := range dates {
			put(d*width/len(dates), "│"+day.Weekday().String()[:3]+" "+fmt.Sprint(day.Day))
		}
	default:
		for d := 0; d < len(dates); d += 7 {
			day := dates[d]
			put(d*width/len(dates), "│"+day.Month.String()[:3]+" "+fmt.Sprint(day.Day))
		}
	}
	return string(line)
}
