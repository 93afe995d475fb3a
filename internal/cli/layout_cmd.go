package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/cli/formatter"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/service"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/spf13/cobra"
)

// windowFlags selects a window the way the board's navigation does: a zoom
// level, a step offset and an optional navigation action applied on top.
type windowFlags struct {
	zoom   string
	offset int
	nav    string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.zoom, "zoom", "", "zoom level: day, week or month (default from config)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "periods from the current one (negative for the past)")
	cmd.Flags().StringVar(&f.nav, "nav", "", "navigation action: previous, next, today, tomorrow, next-week, next-month")
}

func (f *windowFlags) window(app *App) (domain.TimeWindow, error) {
	zoom := app.Config.Zoom()
	if f.zoom != "" {
		z, err := domain.ParseZoomLevel(f.zoom)
		if err != nil {
			return domain.TimeWindow{}, err
		}
		zoom = z
	}
	pos := timeline.Nav{Zoom: zoom, Offset: f.offset}
	if f.nav != "" {
		a, err := timeline.ParseNavAction(f.nav)
		if err != nil {
			return domain.TimeWindow{}, err
		}
		pos = pos.Apply(a)
	}
	return pos.Window(app.now(), app.Config.WindowConfig()), nil
}

// loadView refreshes and lays out w. A failed refresh is reported through
// the view's Stale flag rather than as an error while a stored snapshot is
// available.
func loadView(ctx context.Context, app *App, w domain.TimeWindow) (*service.BoardView, error) {
	if err := app.Board.Refresh(ctx); err != nil {
		app.logger().WarnContext(ctx, "refresh_failed", "error", err)
	}
	return app.Board.Layout(ctx, w)
}

func staleNote(v *service.BoardView) string {
	if !v.Stale {
		return ""
	}
	note := "showing last known data from " + v.Snapshot.FetchedAt.Format("Jan 2 15:04")
	if v.RefreshErr != nil {
		note += ": " + v.RefreshErr.Error()
	}
	return formatter.StyleYellow.Render("⚠ "+note) + "\n"
}

func newLayoutCmd(app *App) *cobra.Command {
	var (
		win    windowFlags
		width  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the timeline for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := win.window(app)
			if err != nil {
				return err
			}
			view, err := loadView(cmd.Context(), app, w)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view.DTO())
			}

			fmt.Fprintln(out, formatter.Header(formatter.WindowTitle(w)))
			fmt.Fprint(out, staleNote(view))
			fmt.Fprint(out, formatter.RenderTimeline(view.Layout, formatter.TimelineOptions{
				Width: width,
				Items: view.Item,
			}))
			return nil
		},
	}

	win.register(cmd)
	cmd.Flags().IntVar(&width, "width", formatter.DefaultTrackWidth, "timeline width in columns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")

	return cmd
}
