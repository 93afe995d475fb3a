package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/alexanderramin/lineboard/internal/backend"
	"github.com/alexanderramin/lineboard/internal/cli"
	"github.com/alexanderramin/lineboard/internal/config"
	"github.com/alexanderramin/lineboard/internal/db"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/alexanderramin/lineboard/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config: ~/.lineboard/config.yaml (or LINEBOARD_CONFIG) plus LINEBOARD_* env
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, logHandler := cli.NewLogger(os.Stderr, cfg.LogLevel)

	// Open the snapshot database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	store := service.NewSQLiteSnapshotStore(uow, cfg.Backend.URL)

	// Wire the backend client and services
	client := backend.NewHTTPClient(cfg.BackendConfig(), backend.NewLogObserver(logger))
	observer := service.NewLogUseCaseObserver(logger)

	board := service.NewBoardService(client, store, service.BoardConfig{
		Layout: cfg.LayoutOptions(),
		Window: cfg.WindowConfig(),
	}, observer)

	// One registry for the process, so the TUI, `move` and the HTTP API
	// never commit the same item twice.
	inflight := reassign.NewInFlight()
	moves := service.NewMoveService(board, client, inflight, service.MoveConfig{
		AllowUnassign: cfg.Board.AllowUnassign,
		CommitTimeout: cfg.Backend.Timeout,
		Logger:        logger,
	}, observer)

	app := &cli.App{
		Board:      board,
		Moves:      moves,
		Mover:      client,
		InFlight:   inflight,
		Config:     cfg,
		Logger:     logger,
		LogHandler: logHandler,
	}

	// Detect interactive terminal for the board and the lane picker.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
