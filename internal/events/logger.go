package events

import (
	"context"
	"log/slog"
)

// LogObserver writes every event to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Notify implements Observer.
func (l *LogObserver) Notify(ctx context.Context, e Event) {
	attrs := []slog.Attr{slog.String("event", e.Name)}
	if e.Record != nil {
		attrs = append(attrs,
			slog.String("id", e.Record.ID.String()),
			slog.String("name", e.Record.Name))
	}
	if e.Path != "" {
		attrs = append(attrs, slog.String("path", e.Path))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "vault event", attrs...)
}
