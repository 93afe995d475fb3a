package cli

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// NewLogger builds the process logger. The charm logger is returned too so
// the root command can lower its level for --verbose. Unknown level names
// fall back to info.
func NewLogger(w io.Writer, level string) (*slog.Logger, *charmlog.Logger) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
	})
	return slog.New(handler), handler
}
