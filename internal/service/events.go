package service

import (
	"context"
	"log/slog"
	"time"

	"rbac/internal/observability/metrics"
)

// Event describes a committed identity change.
type Event struct {
	Action     string    `json:"action"`
	ActorID    string    `json:"actorId,omitempty"`
	EntityID   string    `json:"entityId"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher is a sink for identity events.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NamedPublisher is a sink with a label used in logs and metrics.
type NamedPublisher struct {
	Name string
	EventPublisher
}

// FanOut delivers each event to every sink. Delivery is best effort: a failing sink is logged
// and counted, never reported to the caller, and never stops delivery to the others.
type FanOut struct {
	sinks  []NamedPublisher
	logger *slog.Logger
}

func NewFanOut(logger *slog.Logger, sinks ...NamedPublisher) *FanOut {
	return &FanOut{sinks: sinks, logger: logger}
}

func (f *FanOut) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	for _, s := range f.sinks {
		if s.EventPublisher == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			metrics.ObservePublishFailure(s.Name)
			f.logger.Warn("event publish failed",
				slog.String("sink", s.Name),
				slog.String("action", ev.Action),
				slog.String("entity_id", ev.EntityID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// publish is the call every service uses; a nil publisher drops the event.
func publish(ctx context.Context, p EventPublisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	_ = p.Publish(ctx, ev)
}
