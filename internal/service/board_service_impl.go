package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"golang.org/x/sync/errgroup"
)

// BoardView is a laid-out window together with the snapshot it came from.
type BoardView struct {
	Snapshot *Snapshot
	Layout   timeline.Layout
	// Stale is set when the snapshot was not confirmed by the most recent
	// refresh: it was loaded from the store, or the last refresh failed.
	Stale      bool
	RefreshErr error
}

// Item returns the snapshot's copy of an item.
func (v *BoardView) Item(id string) (domain.ScheduledItem, bool) {
	return v.Snapshot.Item(id)
}

// BoardConfig configures NewBoardService.
type BoardConfig struct {
	Layout   timeline.Options
	Window   timeline.WindowConfig
	MemoSize int
	Now      func() time.Time
}

func (c BoardConfig) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

type boardService struct {
	backend  Backend
	store    SnapshotStore
	cfg      BoardConfig
	memo     *timeline.Memo
	observer UseCaseObserver

	issued atomic.Uint64

	mu       sync.RWMutex
	current  *Snapshot
	applied  uint64
	lastErr  error
	from, to domain.Date

	saveMu sync.Mutex
	saved  uint64
}

// NewBoardService builds a board over backend. store may be nil, in which
// case nothing survives a restart.
func NewBoardService(backend Backend, store SnapshotStore, cfg BoardConfig, observers ...UseCaseObserver) BoardService {
	s := &boardService{
		backend:  backend,
		store:    store,
		cfg:      cfg,
		memo:     timeline.NewMemo(max(cfg.MemoSize, 8)),
		observer: useCaseObserverOrNoop(observers),
	}
	s.from, s.to = horizon(timeline.NewWindow(domain.ZoomWeek, 0, cfg.now(), cfg.Window))
	return s
}

// Refresh applies a new snapshot. When only the downtime read fails, the
// fresh items and lanes are still applied with the previous snapshot's
// overrides, and the downtime error is returned and reported as stale.
func (s *boardService) Refresh(ctx context.Context) (err error) {
	startedAt := time.Now()
	gen := s.issued.Add(1)
	discarded := false
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "board.refresh",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields: map[string]any{
				"generation": gen,
				"discarded":  discarded,
			},
		})
	}()

	s.mu.RLock()
	from, to := s.from, s.to
	s.mu.RUnlock()

	items, lanes, err := s.fetch(ctx)
	if err != nil {
		s.mu.Lock()
		if gen > s.applied {
			s.lastErr = err
		}
		s.mu.Unlock()
		return err
	}
	overrides, downtimeErr := s.fetchDowntime(ctx, lanes, from, to)

	snap := &Snapshot{
		Generation: gen,
		FetchedAt:  s.cfg.now(),
		From:       from,
		To:         to,
		Items:      items,
	}

	s.mu.Lock()
	if gen <= s.applied {
		s.mu.Unlock()
		discarded = true
		return nil
	}
	if downtimeErr != nil {
		// Keep showing the downtime last seen; a zero range makes the next
		// layout fetch it again.
		snap.From, snap.To = domain.Date{}, domain.Date{}
		if s.current != nil {
			overrides = s.current.Overrides()
			snap.From, snap.To = s.current.From, s.current.To
		}
	}
	snap.Lanes = assembleLanes(lanes, overrides)
	s.current = snap
	s.applied = gen
	s.lastErr = downtimeErr
	s.mu.Unlock()

	return errors.Join(downtimeErr, s.persist(ctx, snap))
}

// fetch reads items and lanes concurrently; the first failure cancels the
// other.
func (s *boardService) fetch(ctx context.Context) ([]domain.ScheduledItem, []domain.ResourceLane, error) {
	var (
		items []domain.ScheduledItem
		lanes []domain.ResourceLane
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if items, err = s.backend.ListItems(gctx); err != nil {
			return fmt.Errorf("refreshing items: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if lanes, err = s.backend.ListLanes(gctx); err != nil {
			return fmt.Errorf("refreshing lanes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, lanes, nil
}

// fetchDowntime reads the overrides of lanes in [from, to].
func (s *boardService) fetchDowntime(ctx context.Context, lanes []domain.ResourceLane, from, to domain.Date) ([]domain.DowntimeOverride, error) {
	ids := make([]string, len(lanes))
	for i, l := range lanes {
		ids[i] = l.ID
	}
	overrides, err := s.backend.ListOverrides(ctx, ids, from, to)
	if err != nil {
		return nil, fmt.Errorf("refreshing downtime: %w", err)
	}
	return overrides, nil
}

// persist writes snap unless a newer snapshot has already been written.
func (s *boardService) persist(ctx context.Context, snap *Snapshot) error {
	if s.store == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if snap.Generation <= s.saved {
		return nil
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	s.saved = snap.Generation
	return nil
}

func (s *boardService) Current(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil {
		return cur, nil
	}
	if s.store == nil {
		return nil, ErrNoSnapshot
	}

	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A refresh may have landed while the store was read.
	if s.current != nil {
		return s.current, nil
	}
	s.current = stored
	return stored, nil
}

func (s *boardService) Layout(ctx context.Context, w domain.TimeWindow) (view *BoardView, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "board.layout",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields: map[string]any{
				"zoom":  string(w.Zoom),
				"start": domain.DateOf(w.Start).String(),
			},
		})
	}()

	_, err = s.Current(ctx)
	uncovered := s.watch(w)
	if err != nil || uncovered {
		// A failed fetch falls through to the last-known-good snapshot.
		_ = s.Refresh(ctx)
	}

	snap, err := s.Current(ctx)
	if err != nil {
		s.mu.RLock()
		refreshErr := s.lastErr
		s.mu.RUnlock()
		if refreshErr != nil {
			return nil, fmt.Errorf("%w: %w", err, refreshErr)
		}
		return nil, err
	}

	s.mu.RLock()
	refreshErr := s.lastErr
	s.mu.RUnlock()

	return &BoardView{
		Snapshot:   snap,
		Layout:     s.memo.Layout(snap.Items, snap.Lanes, w, s.cfg.Layout),
		Stale:      snap.Stored || refreshErr != nil,
		RefreshErr: refreshErr,
	}, nil
}

// watch widens the downtime range to cover w and reports whether the
// current snapshot misses part of it.
func (s *boardService) watch(w domain.TimeWindow) bool {
	dates := w.Dates()
	if len(dates) == 0 {
		return false
	}
	first, last := dates[0], dates[len(dates)-1]

	s.mu.Lock()
	defer s.mu.Unlock()
	if first.Before(s.from) || last.After(s.to) {
		s.from, s.to = horizon(w)
	}
	return s.current != nil && !s.current.Covers(w)
}
