package cli

import (
	"fmt"

	"github.com/alexanderramin/lineboard/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a fresh snapshot from the scheduling backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.interactive() {
				stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching board…")
				err := app.Board.Refresh(ctx)
				stop()
				if err != nil {
					return err
				}
			} else if err := app.Board.Refresh(ctx); err != nil {
				return err
			}

			snap, err := app.Board.Current(ctx)
			if err != nil {
				return err
			}
			overrides := len(snap.Overrides())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d work orders, %d lanes, %d downtime overrides (%s to %s)\n",
				formatter.StyleGreen.Render("✓"), len(snap.Items), len(snap.Lanes), overrides, snap.From, snap.To)
			return nil
		},
	}
}
