package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/lineboard/internal/httpapi"
	"github.com/alexanderramin/lineboard/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board as a JSON API and keep it refreshed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := app.logger()

			poller := service.NewPoller(app.Board, app.Config.PollInterval, logger)
			api := httpapi.NewServer(app.Board, app.Moves, httpapi.Config{
				Window:      app.Config.WindowConfig(),
				DefaultZoom: app.Config.Zoom(),
				Now:         app.now,
			}, httpapi.WithLogger(logger), httpapi.WithRefreshTrigger(poller.Trigger))

			if addr == "" {
				addr = app.Config.ListenAddr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return poller.Run(gctx) })
			g.Go(func() error {
				logger.InfoContext(ctx, "serve_listening", "addr", ln.Addr().String())
				if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			err = g.Wait()
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				logger.InfoContext(ctx, "serve_stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
