package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/cli/formatter"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// unassignOption is the select value standing for the unassigned pool; lane
// ids are never empty.
const unassignOption = ""

// lineboardHuhTheme returns a huh theme using the board's Gruvbox palette.
func lineboardHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// laneOptions lists the lanes item may move to, current lane first.
func laneOptions(lanes []domain.ResourceLane, item domain.ScheduledItem, allowUnassign bool) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, l := range lanes {
		if !l.Active {
			continue
		}
		label := l.Name
		if l.ID == item.LaneID {
			label += " (current)"
			opts = append([]huh.Option[string]{huh.NewOption(label, l.ID)}, opts...)
			continue
		}
		opts = append(opts, huh.NewOption(label, l.ID))
	}
	if allowUnassign && !item.Unassigned() {
		opts = append(opts, huh.NewOption("Unassigned pool", unassignOption))
	}
	return opts
}

func pickLane(ctx context.Context, app *App, itemID string) (string, error) {
	snap, err := app.Board.Current(ctx)
	if err != nil {
		return "", err
	}
	item, ok := snap.Item(itemID)
	if !ok {
		return "", fmt.Errorf("work order %s is not on the board", itemID)
	}

	choice := item.LaneID
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Move " + item.Label() + " to").
				Options(laneOptions(snap.Lanes, item, app.Config.Board.AllowUnassign)...).
				Value(&choice),
		),
	).WithTheme(lineboardHuhTheme()).WithShowHelp(false)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return choice, nil
}

func newMoveCmd(app *App) *cobra.Command {
	var (
		lane     string
		unassign bool
	)

	cmd := &cobra.Command{
		Use:   "move WORK_ORDER_ID",
		Short: "Move a work order to another lane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			itemID := args[0]

			switch {
			case unassign && lane != "":
				return errors.New("--lane and --unassign are mutually exclusive")
			case unassign:
				lane = unassignOption
			case lane == "":
				if !app.interactive() {
					return errors.New("--lane is required when not running in a terminal")
				}
				if err := app.Board.Refresh(ctx); err != nil {
					app.logger().WarnContext(ctx, "refresh_failed", "error", err)
				}
				picked, err := pickLane(ctx, app, itemID)
				if err != nil {
					return err
				}
				lane = picked
			}

			res, err := app.Moves.Move(ctx, itemID, lane)
			if err != nil {
				if errors.Is(err, domain.ErrReassignmentRejected) {
					return fmt.Errorf("the scheduler refused the move: %w", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Outcome {
			case reassign.OutcomeMoved:
				target := lane
				if target == unassignOption {
					target = "the unassigned pool"
				}
				fmt.Fprintf(out, "%s Moved %s to %s\n", formatter.StyleGreen.Render("✓"), itemID, target)
			case reassign.OutcomeNoop:
				fmt.Fprintf(out, "%s %s is already there\n", formatter.Dim("·"), itemID)
			default:
				fmt.Fprintf(out, "%s Move of %s cancelled\n", formatter.Dim("·"), itemID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lane, "lane", "", "target lane id")
	cmd.Flags().BoolVar(&unassign, "unassign", false, "move to the unassigned pool")

	return cmd
}
