package service

import (
	"context"
	"time"

	"blizz/internal/events"
	"blizz/internal/observability"
)

// UserNotifier delivers a payload to one user's live notification channel.
type UserNotifier interface {
	PublishUserJSON(ctx context.Context, userID uint, v any) error
}

// dispatcher fans a domain event out to the event log and, when a recipient
// is given, to that user's notification channel. Both are best effort.
type dispatcher struct {
	events   events.Publisher
	notifier UserNotifier
}

func newDispatcher(publisher events.Publisher, notifier UserNotifier) dispatcher {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return dispatcher{events: publisher, notifier: notifier}
}

func (d dispatcher) emit(ctx context.Context, e events.Event, recipient uint) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := d.events.Publish(ctx, e); err != nil {
		observability.EventPublishFailures.WithLabelValues("kafka").Inc()
		observability.LogEventFailure(ctx, "kafka", e.Type, err)
	}

	if d.notifier == nil || recipient == 0 || recipient == e.ActorID {
		return
	}
	if err := d.notifier.PublishUserJSON(ctx, recipient, e); err != nil {
		observability.EventPublishFailures.WithLabelValues("redis").Inc()
		observability.LogEventFailure(ctx, "redis", e.Type, err)
	}
}
