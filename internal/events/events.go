// Package events publishes highlight domain events to Kafka.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeHighlightCreated     = "highlight.created"
	TypeHighlightDeleted     = "highlight.deleted"
	TypeHighlightAppreciated = "highlight.appreciated"
	TypeHighlightCommented   = "highlight.commented"
	TypeHighlightShared      = "highlight.shared"
	TypeUserSubscribed       = "user.subscribed"
)

// Event is one domain event. Fields that do not apply to Type are left zero.
type Event struct {
	Type        string    `json:"type"`
	HighlightID uint      `json:"highlight_id,omitempty"`
	ActorID     uint      `json:"actor_id"`
	TargetID    uint      `json:"target_id,omitempty"`
	Level       int       `json:"level,omitempty"`
	Delta       int       `json:"delta,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher delivers events. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
