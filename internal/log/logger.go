package log

import (
	"io"
	"log/slog"
)

// NewLogger creates a structured logger writing to w.
// The default level is Warn so normal runs stay quiet; verbose lowers the
// level to Debug. Path attributes are rewritten relative to root.
func NewLogger(w io.Writer, root string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewPathHandler(handler, root))
}
