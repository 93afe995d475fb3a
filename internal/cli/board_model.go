package cli

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/lineboard/internal/cli/formatter"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/alexanderramin/lineboard/internal/service"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// boardLoadedMsg carries a freshly laid-out window. seq orders loads so a
// slow load never overwrites a newer one.
type boardLoadedMsg struct {
	seq  int
	view *service.BoardView
	err  error
}

// pollMsg fires on the poll interval.
type pollMsg struct{}

// dropDoneMsg reports how a committed drag settled.
type dropDoneMsg struct {
	itemID string
	res    reassign.Result
	err    error
}

// boardModel is the interactive timeline. The cursor is held as a lane id
// plus an item id, never as screen coordinates, so it survives re-layouts.
type boardModel struct {
	ctx  context.Context
	app  *App
	ctrl *reassign.Controller
	keys boardKeyMap
	help help.Model

	nav     timeline.Nav
	view    *service.BoardView
	err     error
	loading bool
	seq     int

	cursorLane string
	cursorItem string
	status     string
	// dropping is set from the drop key until its dropDoneMsg arrives.
	dropping bool

	width  int
	height int
}

// poolLane is the cursor lane id of the unassigned pool.
const poolLane = ""

func newBoardModel(ctx context.Context, app *App) boardModel {
	opts := []reassign.Option{
		reassign.WithInFlight(app.InFlight),
		reassign.WithLogger(app.logger()),
	}
	if app.Config.Board.AllowUnassign {
		opts = append(opts, reassign.WithAllowUnassign())
	}
	return boardModel{
		ctx:  ctx,
		app:  app,
		ctrl: reassign.NewController(app.Mover, app.Board, opts...),
		keys: defaultBoardKeys(),
		help: help.New(),
		nav:  timeline.Nav{Zoom: app.Config.Zoom()},

		loading: true,
	}
}

func (m boardModel) window() domain.TimeWindow {
	return m.nav.Window(m.app.now(), m.app.Config.WindowConfig())
}

// load lays out the current window, refreshing first when refresh is set.
func (m *boardModel) load(refresh bool) tea.Cmd {
	m.seq++
	m.loading = true
	return m.loadCmd(refresh)
}

func (m boardModel) loadCmd(refresh bool) tea.Cmd {
	seq, ctx, app, w := m.seq, m.ctx, m.app, m.window()
	return func() tea.Msg {
		if refresh {
			if err := app.Board.Refresh(ctx); err != nil {
				app.logger().WarnContext(ctx, "board_refresh_failed", "error", err)
			}
		}
		view, err := app.Board.Layout(ctx, w)
		return boardLoadedMsg{seq: seq, view: view, err: err}
	}
}

func (m boardModel) tick() tea.Cmd {
	interval := m.app.Config.PollInterval
	if interval <= 0 {
		interval = service.DefaultPollInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return pollMsg{} })
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(true), m.tick())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.view = msg.view
			m.ctrl.SetLanes(msg.view.Snapshot.Lanes)
			m.fixCursor()
		}
		return m, nil

	case pollMsg:
		if m.ctrl.State() != reassign.Idle {
			// Keep the board still under a drag; the next tick catches up.
			return m, m.tick()
		}
		return m, tea.Batch(m.load(true), m.tick())

	case tea.FocusMsg:
		if m.ctrl.State() != reassign.Idle {
			return m, nil
		}
		return m, m.load(true)

	case dropDoneMsg:
		m.dropping = false
		m.status = dropStatus(msg)
		return m, m.load(false)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.dropping {
		return m, nil
	}
	switch m.ctrl.State() {
	case reassign.Committing:
		return m, nil
	case reassign.Dragging, reassign.HoverTarget:
		return m.handleDragKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, m.load(true)
	case key.Matches(msg, m.keys.Up):
		m.moveLane(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveLane(1)
	case key.Matches(msg, m.keys.NextItem):
		m.moveItem(1)
	case key.Matches(msg, m.keys.PrevItem):
		m.moveItem(-1)
	case key.Matches(msg, m.keys.Grab):
		m.grab()
	case key.Matches(msg, m.keys.ZoomDay):
		return m.navigate(m.nav.WithZoom(domain.ZoomDay))
	case key.Matches(msg, m.keys.ZoomWeek):
		return m.navigate(m.nav.WithZoom(domain.ZoomWeek))
	case key.Matches(msg, m.keys.ZoomMonth):
		return m.navigate(m.nav.WithZoom(domain.ZoomMonth))
	default:
		if a, ok := m.navAction(msg); ok {
			return m.navigate(m.nav.Apply(a))
		}
	}
	return m, nil
}

func (m boardModel) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.Cancel()
		m.status = "Move cancelled"
	case key.Matches(msg, m.keys.Up):
		m.moveLane(-1)
		m.hover()
	case key.Matches(msg, m.keys.Down):
		m.moveLane(1)
		m.hover()
	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Drop):
		cmd := m.drop()
		return m, cmd
	}
	return m, nil
}

func (m boardModel) navAction(msg tea.KeyMsg) (timeline.NavAction, bool) {
	switch {
	case key.Matches(msg, m.keys.Prev):
		return timeline.NavPrevious, true
	case key.Matches(msg, m.keys.Next):
		return timeline.NavNext, true
	case key.Matches(msg, m.keys.Today):
		return timeline.NavToday, true
	case key.Matches(msg, m.keys.Tomorrow):
		return timeline.NavTomorrow, true
	case key.Matches(msg, m.keys.NextWeek):
		return timeline.NavNextWeek, true
	case key.Matches(msg, m.keys.NextMonth):
		return timeline.NavNextMonth, true
	}
	return "", false
}

func (m boardModel) navigate(to timeline.Nav) (tea.Model, tea.Cmd) {
	if to == m.nav {
		return m, nil
	}
	m.nav = to
	return m, m.load(false)
}

// ── cursor ───────────────────────────────────────────────────────────────────

// cursorLanes lists the lanes the cursor visits: laid-out lanes, then the
// unassigned pool when it has items or accepts drops.
func (m boardModel) cursorLanes() []string {
	if m.view == nil {
		return nil
	}
	ids := make([]string, 0, len(m.view.Layout.Lanes)+1)
	for _, l := range m.view.Layout.Lanes {
		ids = append(ids, l.LaneID)
	}
	if len(m.view.Layout.Unassigned) > 0 || m.app.Config.Board.AllowUnassign {
		ids = append(ids, poolLane)
	}
	return ids
}

func (m boardModel) laneItems(laneID string) []string {
	if m.view == nil {
		return nil
	}
	if laneID == poolLane {
		return m.view.Layout.Unassigned
	}
	for _, l := range m.view.Layout.Lanes {
		if l.LaneID == laneID {
			return l.ItemIDs
		}
	}
	return nil
}

// fixCursor keeps the cursor on ids that still exist after a re-layout.
func (m *boardModel) fixCursor() {
	lanes := m.cursorLanes()
	if len(lanes) == 0 {
		m.cursorLane, m.cursorItem = poolLane, ""
		return
	}
	if !slices.Contains(lanes, m.cursorLane) {
		m.cursorLane, m.cursorItem = lanes[0], ""
	}
	items := m.laneItems(m.cursorLane)
	if !slices.Contains(items, m.cursorItem) {
		m.cursorItem = ""
		if len(items) > 0 {
			m.cursorItem = items[0]
		}
	}
}

func (m *boardModel) moveLane(delta int) {
	lanes := m.cursorLanes()
	if len(lanes) == 0 {
		return
	}
	i := max(slices.Index(lanes, m.cursorLane), 0)
	i = min(max(i+delta, 0), len(lanes)-1)
	m.cursorLane = lanes[i]
	if m.ctrl.State() == reassign.Idle {
		m.cursorItem = ""
		m.fixCursor()
	}
}

func (m *boardModel) moveItem(delta int) {
	items := m.laneItems(m.cursorLane)
	if len(items) == 0 {
		return
	}
	i := slices.Index(items, m.cursorItem)
	m.cursorItem = items[(i+delta+len(items))%len(items)]
}

// ── drag and drop ────────────────────────────────────────────────────────────

func (m *boardModel) grab() {
	if m.view == nil {
		return
	}
	item, ok := m.view.Item(m.cursorItem)
	if !ok {
		return
	}
	if err := m.ctrl.BeginDrag(item); err != nil {
		m.status = dragRefusal(item, err)
		return
	}
	m.status = "Moving " + item.Label() + ": choose a lane and press space"
	m.hover()
}

// hover targets the cursor lane, or leaves the current target when the
// cursor lane cannot take the item.
func (m *boardModel) hover() {
	if err := m.ctrl.DragOver(m.cursorLane); err != nil {
		m.ctrl.DragLeave()
	}
}

func (m *boardModel) drop() tea.Cmd {
	dragged := m.ctrl.Dragged()
	if dragged == nil {
		return nil
	}
	ctrl, ctx, laneID, itemID := m.ctrl, m.ctx, m.cursorLane, dragged.ID
	m.dropping = true
	m.status = "Moving " + dragged.Label() + "…"
	return func() tea.Msg {
		res, err := ctrl.Drop(ctx, laneID)
		return dropDoneMsg{itemID: itemID, res: res, err: err}
	}
}

func dragRefusal(item domain.ScheduledItem, err error) string {
	switch {
	case errors.Is(err, reassign.ErrItemLocked):
		return item.Label() + " is locked"
	case errors.Is(err, reassign.ErrItemInFlight):
		return item.Label() + " is already being moved"
	case errors.Is(err, reassign.ErrBusy):
		return "Another move is still committing"
	default:
		return err.Error()
	}
}

func dropStatus(msg dropDoneMsg) string {
	switch {
	case msg.err != nil && errors.Is(msg.err, domain.ErrReassignmentRejected):
		return "Move refused: " + msg.err.Error()
	case msg.err != nil:
		return "Move failed: " + msg.err.Error()
	case msg.res.Outcome == reassign.OutcomeMoved:
		return "Moved " + msg.itemID
	case msg.res.Outcome == reassign.OutcomeNoop:
		return msg.itemID + " is already on that lane"
	default:
		return "Move cancelled"
	}
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m boardModel) View() string {
	var b strings.Builder
	w := m.window()

	title := formatter.WindowTitle(w)
	if m.loading {
		title += formatter.Dim("  refreshing…")
	}
	b.WriteString(formatter.Header(title) + "\n")

	if m.view == nil {
		if m.err != nil {
			b.WriteString(formatter.StyleRed.Render("Board unavailable: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(formatter.Dim("Loading board…") + "\n")
		}
		b.WriteString("\n" + m.help.View(m.keys))
		return b.String()
	}

	b.WriteString(staleNote(m.view))

	opts := formatter.TimelineOptions{
		Width:     m.trackWidth(),
		Items:     m.view.Item,
		CanDrag:   m.ctrl.CanDrag,
		Cursor:    m.cursorItem,
		Target:    m.cursorLane,
		HasTarget: slices.Contains(m.cursorLanes(), m.cursorLane),
	}
	if d := m.ctrl.Dragged(); d != nil {
		opts.Dragged = d.ID
		opts.Target, opts.HasTarget = m.ctrl.Target()
	}
	b.WriteString(formatter.RenderTimeline(m.view.Layout, opts))

	if item, ok := m.view.Item(m.cursorItem); ok {
		b.WriteString("\n" + m.itemDetail(item) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + formatter.StyleYellow.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m boardModel) itemDetail(item domain.ScheduledItem) string {
	loc := m.app.Config.WindowConfig().Location
	parts := []string{
		formatter.Bold(item.Label()),
		formatter.PriorityIndicator(item.Priority),
		formatter.Span(item, loc),
	}
	if item.Customer != "" {
		parts = append(parts, item.Customer)
	}
	if item.Status != "" {
		parts = append(parts, item.Status)
	}
	if item.Locked {
		parts = append(parts, formatter.StyleRed.Render("locked"))
	}
	return strings.Join(parts, formatter.Dim(" · "))
}

func (m boardModel) trackWidth() int {
	if m.width <= 0 {
		return formatter.DefaultTrackWidth
	}
	labelW := 10
	for _, l := range m.view.Layout.Lanes {
		labelW = max(labelW, len(l.Name))
	}
	return max(m.width-labelW-4, 28)
}
