package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventClaim    EventType = "claim"
	EventHandoff  EventType = "handoff"
	EventProgress EventType = "progress"
	EventChat     EventType = "chat"
)

// Event is the human-readable description of a state change, produced by the
// coordination service and fanned out to whatever transports are configured.
// Delivery is at-least-once, best-effort; a lost event never invalidates the
// state change it describes.
type Event struct {
	Type      EventType  `json:"type"`
	ActorID   string     `json:"actor_id"` // agent id, "human", or "system"
	ActorName string     `json:"actor_name"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	TaskTitle string     `json:"task_title,omitempty"`
	Message   string     `json:"message"`
	Note      string     `json:"note,omitempty"`
	Channel   string     `json:"channel,omitempty"` // chat channel, defaults to "general"
	Timestamp time.Time  `json:"timestamp"`
}

// Notifier fans an event out to consumers. Implementations decide the
// transport: poll-visible store rows, Redis push, Slack, or several at once.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout publishes to every notifier and reports the joined errors. One
// failing transport does not stop the others.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
