// Package cli implements the lineboard command line and the interactive
// board. Every command lays out data through service.BoardService, so the
// terminal board, the `layout` printout and the HTTP API share one engine.
package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/lineboard/internal/config"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/alexanderramin/lineboard/internal/service"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// App holds the services and settings the commands run against.
type App struct {
	Board    service.BoardService
	Moves    service.MoveService
	Mover    reassign.Mover
	InFlight *reassign.InFlight
	Config   config.Config

	Logger *slog.Logger
	// LogHandler backs Logger; --verbose lowers its level.
	LogHandler *charmlog.Logger

	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "lineboard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "lineboard",
		Short:        "Production line scheduling board",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose && app.LogHandler != nil {
				app.LogHandler.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLayoutCmd(app),
		newDowntimeCmd(app),
		newMoveCmd(app),
		newRefreshCmd(app),
		newBoardCmd(app),
		newServeCmd(app),
	)

	return root
}
