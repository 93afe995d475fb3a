package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive scheduling board",
		Long: `Open the interactive scheduling board.

Move the cursor with the arrow keys and tab, pick up a work order with
space, choose a lane with up/down and press space or enter to drop it.
The board refreshes on an interval and whenever the terminal regains focus.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("the board needs a terminal; use `lineboard layout` instead")
			}
			ctx := cmd.Context()
			p := tea.NewProgram(
				newBoardModel(ctx, app),
				tea.WithAltScreen(),
				tea.WithReportFocus(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
