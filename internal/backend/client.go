// Package backend is the HTTP client for the production scheduling backend:
// work orders, lines and capacity overrides in, lane moves out.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds the backend connection settings.
type Config struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration // per call, across retries
	MaxRetries int
	RetryDelay time.Duration
	// Location interprets timestamps sent without an offset.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:8000",
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		RetryDelay: 250 * time.Millisecond,
		Location:   time.Local,
	}
}

// Client provides access to the scheduling backend.
type Client interface {
	ListItems(ctx context.Context) ([]domain.ScheduledItem, error)
	// ListLanes includes inactive lanes.
	ListLanes(ctx context.Context) ([]domain.ResourceLane, error)
	// ListOverrides returns the capacity overrides of laneIDs touching
	// [from, to], read from each line's capacity calendar.
	ListOverrides(ctx context.Context, laneIDs []string, from, to domain.Date) ([]domain.DowntimeOverride, error)
	// MoveItem is never retried: a lost response may still have applied.
	MoveItem(ctx context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error)
}

type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewHTTPClient creates a Client for cfg.Endpoint.
func NewHTTPClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type call struct {
	op         string
	method     string
	path       string
	query      url.Values
	body       any
	retryable  bool
	rejectable bool
}

func (c *httpClient) ListItems(ctx context.Context) ([]domain.ScheduledItem, error) {
	var rows []workOrderDTO
	err := c.do(ctx, call{op: "list_items", method: http.MethodGet, path: "/api/work-orders", retryable: true}, &rows)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ScheduledItem, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain(c.cfg.Location)
	}
	return items, nil
}

func (c *httpClient) ListLanes(ctx context.Context) ([]domain.ResourceLane, error) {
	var rows []lineDTO
	q := url.Values{"include_inactive": {"true"}}
	err := c.do(ctx, call{op: "list_lanes", method: http.MethodGet, path: "/api/lines", query: q, retryable: true}, &rows)
	if err != nil {
		return nil, err
	}
	lanes := make([]domain.ResourceLane, len(rows))
	for i, r := range rows {
		lanes[i] = r.toDomain()
	}
	return lanes, nil
}

// calendarConcurrency bounds the per-line calendar reads of one
// ListOverrides call.
const calendarConcurrency = 4

func (c *httpClient) ListOverrides(ctx context.Context, laneIDs []string, from, to domain.Date) ([]domain.DowntimeOverride, error) {
	q := url.Values{
		"start_date": {from.String()},
		"weeks":      {strconv.Itoa(calendarWeeks(from, to))},
	}

	perLane := make([][]domain.DowntimeOverride, len(laneIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(calendarConcurrency)
	for i, laneID := range laneIDs {
		g.Go(func() error {
			var cal calendarDTO
			err := c.do(gctx, call{
				op:        "list_overrides",
				method:    http.MethodGet,
				path:      "/api/capacity/calendar/" + url.PathEscape(laneID),
				query:     q,
				retryable: true,
			}, &cal)
			if errors.Is(err, ErrNotFound) {
				// The line was removed after it was listed.
				return nil
			}
			if err != nil {
				return fmt.Errorf("line %s: %w", laneID, err)
			}
			for _, r := range cal.Overrides {
				if o, ok := r.toDomain(laneID); ok {
					perLane[i] = append(perLane[i], o)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.DowntimeOverride
	for _, lane := range perLane {
		out = append(out, lane...)
	}
	return out, nil
}

// calendarWeeks is the number of whole weeks from from that reach to.
func calendarWeeks(from, to domain.Date) int {
	days := from.DaysTo(to) + 1
	return max((days+6)/7, 1)
}

func (c *httpClient) MoveItem(ctx context.Context, req domain.MoveRequest) (*domain.ScheduledItem, error) {
	body := moveDTO{LinePosition: req.Position}
	if req.LaneID != "" {
		lane := req.LaneID
		body.LineID = &lane
	}
	var row workOrderDTO
	err := c.do(ctx, call{
		op:         "move_item",
		method:     http.MethodPut,
		path:       "/api/work-orders/" + url.PathEscape(req.ItemID),
		body:       body,
		rejectable: true,
	}, &row)
	if err != nil {
		return nil, err
	}
	item := row.toDomain(c.cfg.Location)
	return &item, nil
}

func (c *httpClient) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	attempts := 1
	if cl.retryable {
		attempts += max(c.cfg.MaxRetries, 0)
	}

	made, status := 0, 0
	err := retry(ctx, attempts, c.cfg.RetryDelay, func() error {
		made++
		var err error
		status, err = c.once(ctx, cl, requestID, out)
		return err
	})
	err = classify(cl.op, err, made, attempts)

	c.observer.OnCallComplete(ctx, CallEvent{
		Op:        cl.op,
		Method:    cl.method,
		Path:      cl.path,
		RequestID: requestID,
		Status:    status,
		Attempts:  made,
		Latency:   time.Since(start),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return err
}

func classify(op string, err error, made, attempts int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case isRetryable(err) && attempts > 1 && made >= attempts:
		return fmt.Errorf("%s: %w: %w", op, ErrRetryExhausted, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (c *httpClient) once(ctx context.Context, cl call, requestID string, out any) (int, error) {
	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	u := strings.TrimRight(c.cfg.Endpoint, "/") + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &retryableError{fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &retryableError{fmt.Errorf("reading response: %w", err)}
	}

	switch code := resp.StatusCode; {
	case code >= 500:
		return code, &retryableError{fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, code, snippet(data))}
	case cl.rejectable && (code == http.StatusBadRequest || code == http.StatusConflict || code == http.StatusUnprocessableEntity):
		var e errorDTO
		_ = json.Unmarshal(data, &e)
		return code, &RejectedError{Status: code, Detail: e.message()}
	case code == http.StatusNotFound:
		return code, fmt.Errorf("%w: %w %d: %s", ErrNotFound, ErrUnexpectedStatus, code, snippet(data))
	case code < 200 || code >= 300:
		return code, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, code, snippet(data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
