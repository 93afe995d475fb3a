// Package httpapi serves the board's layout and move operations as JSON for
// a web front end. It renders nothing itself: /api/layout returns the same
// view the terminal board draws.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/lineboard/internal/backend"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/reassign"
	"github.com/alexanderramin/lineboard/internal/service"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps POST bodies; a move request is a few dozen bytes.
const maxBodyBytes = 16 << 10

// Config controls how query parameters resolve to a window.
type Config struct {
	Window      timeline.WindowConfig
	DefaultZoom domain.ZoomLevel
	Now         func() time.Time
}

type Server struct {
	board   service.BoardService
	moves   service.MoveService
	cfg     Config
	logger  *slog.Logger
	trigger func()
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRefreshTrigger routes POST /api/refresh to trigger instead of a
// synchronous refresh; serve passes its poller's Trigger.
func WithRefreshTrigger(trigger func()) Option {
	return func(s *Server) { s.trigger = trigger }
}

func NewServer(board service.BoardService, moves service.MoveService, cfg Config, opts ...Option) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultZoom == "" {
		cfg.DefaultZoom = domain.ZoomWeek
	}
	s := &Server{
		board:  board,
		moves:  moves,
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(withSecurityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Post("/reassign", s.handleReassign)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout serves GET /api/layout?zoom=week&offset=-1&nav=next.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	nav, err := s.parseNav(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.board.Layout(r.Context(), nav.Window(s.cfg.Now(), s.cfg.Window))
	if err != nil {
		writeError(w, layoutStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view.DTO())
}

func (s *Server) parseNav(r *http.Request) (timeline.Nav, error) {
	q := r.URL.Query()
	nav := timeline.Nav{Zoom: s.cfg.DefaultZoom}
	if z := q.Get("zoom"); z != "" {
		zoom, err := domain.ParseZoomLevel(z)
		if err != nil {
			return timeline.Nav{}, err
		}
		nav.Zoom = zoom
	}
	if o := q.Get("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil {
			return timeline.Nav{}, errors.New("offset must be an integer")
		}
		nav.Offset = offset
	}
	if a := q.Get("nav"); a != "" {
		action, err := timeline.ParseNavAction(a)
		if err != nil {
			return timeline.Nav{}, err
		}
		nav = nav.Apply(action)
	}
	return nav, nil
}

// handleRefresh asks for a refresh. With a trigger it returns 202 at once;
// otherwise it refreshes inline and reports the backend error, if any.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.trigger != nil {
		s.trigger()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	if err := s.board.Refresh(r.Context()); err != nil {
		writeError(w, moveStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

type reassignRequest struct {
	ItemID string `json:"item_id"`
	LaneID string `json:"lane_id"`
}

type reassignResponse struct {
	Outcome reassign.Outcome `json:"outcome"`
	ItemID  string           `json:"item_id"`
	LaneID  string           `json:"lane_id"`
}

// handleReassign serves POST /api/reassign. An empty lane_id moves the item
// to the unassigned pool.
func (s *Server) handleReassign(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.New("payload exceeds limit"))
			return
		}
		writeError(w, http.StatusBadRequest, errors.New("unable to read body"))
		return
	}
	var req reassignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON"))
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, errors.New("item_id is required"))
		return
	}

	res, err := s.moves.Move(r.Context(), req.ItemID, req.LaneID)
	if err != nil {
		writeError(w, moveStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reassignResponse{Outcome: res.Outcome, ItemID: req.ItemID, LaneID: req.LaneID})
}

func layoutStatus(err error) int {
	if errors.Is(err, service.ErrNoSnapshot) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func moveStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, reassign.ErrInvalidTarget):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reassign.ErrItemLocked),
		errors.Is(err, reassign.ErrItemInFlight),
		errors.Is(err, reassign.ErrBusy),
		errors.Is(err, domain.ErrReassignmentRejected):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoSnapshot),
		errors.Is(err, backend.ErrBackendUnavailable),
		errors.Is(err, backend.ErrRetryExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
