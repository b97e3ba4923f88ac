package handex

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the field names the store's enlargement
// engine and public operations use consistently: row, bit_width, fill,
// capacity.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps an existing slog.Handler. If handler is nil, a text
// handler writing to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON-formatted records to
// stderr at the given minimum level.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards all log output. It is the default logger for stores
// constructed without an explicit WithLogger option.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // above any real level, so nothing is emitted
	}))}
}

func (l *Logger) horizontalGrow(row uint64, bitWidth int, fill, capacity int32) {
	l.Debug("row capacity grown", "row", row, "bit_width", bitWidth, "fill", fill, "capacity", capacity)
}

func (l *Logger) verticalGrow(bitWidth int, rowCount int) {
	l.Info("store bit width grown", "bit_width", bitWidth, "row_count", rowCount)
}

func (l *Logger) outOfCapacity(row uint64, bitWidth int) {
	l.Warn("out of capacity", "row", row, "bit_width", bitWidth)
}

func (l *Logger) lockTimeout(op string, row uint64) {
	l.Warn("lock acquisition timed out", "op", op, "row", row)
}
