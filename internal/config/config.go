// Package config loads lineboard settings: built-in defaults, then an
// optional yaml file (~/.lineboard/config.yaml), then LINEBOARD_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/alexanderramin/lineboard/internal/backend"
	"github.com/alexanderramin/lineboard/internal/domain"
	"github.com/alexanderramin/lineboard/internal/timeline"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the per-user settings directory under $HOME.
	Dir      = ".lineboard"
	FileName = "config.yaml"
)

type BackendConfig struct {
	URL        string        `yaml:"url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

type ShiftConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type BoardConfig struct {
	Zoom            string  `yaml:"zoom"`
	DayMode         string  `yaml:"day_mode"`
	RowHeight       float64 `yaml:"row_height"`
	HeaderHeight    float64 `yaml:"header_height"`
	IncludeInactive bool    `yaml:"include_inactive"`
	AllowUnassign   bool    `yaml:"allow_unassign"`
}

// Config models ~/.lineboard/config.yaml.
type Config struct {
	Backend      BackendConfig `yaml:"backend"`
	PollInterval time.Duration `yaml:"poll_interval"`
	DBPath       string        `yaml:"db_path"`
	Timezone     string        `yaml:"timezone"`
	WeekStart    string        `yaml:"week_start"`
	Shift        ShiftConfig   `yaml:"shift"`
	Board        BoardConfig   `yaml:"board"`
	ListenAddr   string        `yaml:"listen_addr"`
	LogLevel     string        `yaml:"log_level"`
}

// Default returns the built-in settings. The plant runs one 07:30-16:30
// shift in America/Chicago, with Monday-aligned weeks.
func Default() Config {
	bc := backend.DefaultConfig()
	return Config{
		Backend: BackendConfig{
			URL:        bc.Endpoint,
			Timeout:    bc.Timeout,
			MaxRetries: bc.MaxRetries,
			RetryDelay: bc.RetryDelay,
		},
		PollInterval: 15 * time.Second,
		Timezone:     "America/Chicago",
		WeekStart:    "monday",
		Shift:        ShiftConfig{Start: "07:30", End: "16:30"},
		Board: BoardConfig{
			Zoom:         string(domain.ZoomWeek),
			DayMode:      string(timeline.RenderFullDay),
			RowHeight:    40,
			HeaderHeight: 30,
		},
		ListenAddr: "127.0.0.1:8080",
		LogLevel:   "info",
	}
}

// DefaultPath is ~/.lineboard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, Dir, FileName), nil
}

// Load layers path (if it exists) and the environment over Default. An
// empty path means LINEBOARD_CONFIG or DefaultPath; only an explicitly
// named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("LINEBOARD_CONFIG"); v != "" {
			path, explicit = v, true
		} else if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	cfg.applyEnv()

	if cfg.DBPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DBPath = filepath.Join(home, Dir, "lineboard.db")
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LINEBOARD_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("LINEBOARD_TOKEN"); v != "" {
		c.Backend.Token = v
	}
	if v := os.Getenv("LINEBOARD_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.Timeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("LINEBOARD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backend.MaxRetries = n
		}
	}
	if v := os.Getenv("LINEBOARD_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("LINEBOARD_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LINEBOARD_TZ"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("LINEBOARD_WEEK_START"); v != "" {
		c.WeekStart = v
	}
	if v := os.Getenv("LINEBOARD_SHIFT_START"); v != "" {
		c.Shift.Start = v
	}
	if v := os.Getenv("LINEBOARD_SHIFT_END"); v != "" {
		c.Shift.End = v
	}
	if v := os.Getenv("LINEBOARD_DAY_MODE"); v != "" {
		c.Board.DayMode = v
	}
	if v := os.Getenv("LINEBOARD_INCLUDE_INACTIVE"); v != "" {
		c.Board.IncludeInactive, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LINEBOARD_ALLOW_UNASSIGN"); v != "" {
		c.Board.AllowUnassign, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LINEBOARD_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("LINEBOARD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks every derived setting parses.
func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.WeekStartDay(); err != nil {
		return err
	}
	if _, err := c.WorkingHours(); err != nil {
		return err
	}
	if _, err := domain.ParseZoomLevel(c.Board.Zoom); err != nil {
		return err
	}
	switch timeline.RenderMode(c.Board.DayMode) {
	case timeline.RenderFullDay, timeline.RenderShiftHours:
	default:
		return fmt.Errorf("unknown day mode %q (want full-day or shift-hours)", c.Board.DayMode)
	}
	if c.Board.RowHeight <= 0 || c.Board.HeaderHeight < 0 {
		return errors.New("row height must be positive and header height non-negative")
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) WeekStartDay() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(c.WeekStart, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown week start %q", c.WeekStart)
}

func (c Config) WorkingHours() (domain.WorkingHours, error) {
	start, err := domain.ParseClock(c.Shift.Start)
	if err != nil {
		return domain.WorkingHours{}, fmt.Errorf("shift start: %w", err)
	}
	end, err := domain.ParseClock(c.Shift.End)
	if err != nil {
		return domain.WorkingHours{}, fmt.Errorf("shift end: %w", err)
	}
	h := domain.WorkingHours{Start: start, End: end}
	if err := h.Validate(); err != nil {
		return domain.WorkingHours{}, err
	}
	return h, nil
}

// The accessors below assume Validate has passed.

func (c Config) BackendConfig() backend.Config {
	loc, _ := c.Location()
	return backend.Config{
		Endpoint:   c.Backend.URL,
		Token:      c.Backend.Token,
		Timeout:    c.Backend.Timeout,
		MaxRetries: c.Backend.MaxRetries,
		RetryDelay: c.Backend.RetryDelay,
		Location:   loc,
	}
}

func (c Config) WindowConfig() timeline.WindowConfig {
	loc, _ := c.Location()
	day, _ := c.WeekStartDay()
	return timeline.WindowConfig{Location: loc, WeekStart: day}
}

func (c Config) LayoutOptions() timeline.Options {
	hours, _ := c.WorkingHours()
	return timeline.Options{
		Hours: hours,
		Geometry: timeline.Geometry{
			RowHeight:    c.Board.RowHeight,
			HeaderHeight: c.Board.HeaderHeight,
			Mode:         timeline.RenderMode(c.Board.DayMode),
			Hours:        hours,
		},
		IncludeInactive: c.Board.IncludeInactive,
	}
}

func (c Config) Zoom() domain.ZoomLevel {
	z, err := domain.ParseZoomLevel(c.Board.Zoom)
	if err != nil {
		return domain.ZoomWeek
	}
	return z
}
