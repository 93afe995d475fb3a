package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/lineboard/internal/cli/formatter"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/spf13/cobra"
)

func newDowntimeCmd(app *App) *cobra.Command {
	var win windowFlags

	cmd := &cobra.Command{
		Use:   "downtime",
		Short: "List lane downtime days in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := win.window(app)
			if err != nil {
				return err
			}
			view, err := loadView(cmd.Context(), app, w)
			if err != nil {
				return err
			}

			lanes := make(map[string]domain.ResourceLane, len(view.Snapshot.Lanes))
			for _, l := range view.Snapshot.Lanes {
				lanes[l.ID] = l
			}

			var rows [][]string
			for _, ll := range view.Layout.Lanes {
				for _, day := range view.Layout.Downtime[ll.LaneID].Sorted() {
					rows = append(rows, []string{
						ll.Name,
						day.Weekday().String()[:3] + " " + day.String(),
						downtimeReason(lanes[ll.LaneID], day),
					})
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Downtime · "+formatter.WindowTitle(w)))
			fmt.Fprint(out, staleNote(view))
			if len(rows) == 0 {
				fmt.Fprintln(out, formatter.Dim("No lanes are down in this window."))
				return nil
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"LANE", "DAY", "REASON"}, rows))
			return nil
		},
	}

	win.register(cmd)
	return cmd
}

func downtimeReason(lane domain.ResourceLane, day domain.Date) string {
	var reasons []string
	for _, o := range lane.Overrides {
		if o.IsDown && o.Covers(day) && o.Reason != "" {
			reasons = append(reasons, o.Reason)
		}
	}
	if len(reasons) == 0 {
		return formatter.Dim("—")
	}
	return strings.Join(reasons, "; ")
}
