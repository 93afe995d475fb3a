package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/lineboard/internal/reassign"
)

// DefaultPollInterval matches the board's historical refresh cadence.
const DefaultPollInterval = 15 * time.Second

// Poller refreshes the board on an interval and on demand.
type Poller struct {
	board    reassign.Refresher
	interval time.Duration
	logger   *slog.Logger
	trigger  chan struct{}
}

func NewPoller(board reassign.Refresher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		board:    board,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a refresh as soon as the poller is free. Triggers that
// arrive while one is pending collapse into it.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once immediately and then until ctx is done. Refresh
// failures are logged and retried on the next tick; the board keeps its
// last-known-good snapshot meanwhile.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		case <-p.trigger:
			p.poll(ctx)
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.board.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.WarnContext(ctx, "poll_failed", "error", err)
	}
}
