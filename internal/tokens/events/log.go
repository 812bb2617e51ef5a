package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a structured logger. It is the default sink
// when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evs ...Event) error {
	for _, ev := range evs {
		p.Logger.LogAttrs(ctx, slog.LevelInfo, "token event",
			slog.String("event_id", ev.ID.String()),
			slog.String("kind", string(ev.Kind)),
			slog.String("account", ev.AccountID),
			slog.Int64("storage_id", ev.StorageID),
			slog.String("reason", ev.Reason),
			slog.Int64("count", ev.Count),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
