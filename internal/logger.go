package internal

import (
	"io"
	"log/slog"
	"os"

	"github.com/Roma7-7-7/study-attendance-bot/pkg/logctx"
)

// NewLogger writes human-readable DEBUG logs with source locations in dev and
// INFO JSON logs otherwise. Attributes attached with logctx.With, such as the
// webhook request id, are added to every record logged with that context.
func NewLogger(isDev bool) *slog.Logger {
	return NewLoggerTo(os.Stdout, isDev)
}

// NewLoggerTo is NewLogger writing to w. Tools that print results on stdout
// log to stderr.
func NewLoggerTo(w io.Writer, isDev bool) *slog.Logger {
	var handler slog.Handler
	if isDev {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(logctx.NewHandler(handler))
}
