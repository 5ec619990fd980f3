package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
	redisstore "github.com/missiondeck/missiondeck/internal/store/redis"
)

// Pusher is the push half of the event stream. *redis.PubSub satisfies it.
type Pusher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Broadcaster realizes both halves of the event stream contract: it writes
// poll-visible rows (status feed, and a chat message for claim/handoff
// events) and pushes the same event over Redis for WebSocket subscribers.
// Pusher may be nil, in which case consumers fall back to polling alone.
type Broadcaster struct {
	statuses domain.StatusRepository
	messages domain.MessageRepository
	pusher   Pusher
}

func NewBroadcaster(statuses domain.StatusRepository, messages domain.MessageRepository, pusher Pusher) *Broadcaster {
	return &Broadcaster{statuses: statuses, messages: messages, pusher: pusher}
}

func (b *Broadcaster) Publish(ctx context.Context, e Event) error {
	var errs []error

	if e.Type != EventChat {
		update := &domain.StatusUpdate{
			ID:        uuid.New(),
			AgentID:   e.ActorID,
			AgentName: e.ActorName,
			Type:      statusType(e.Type),
			Message:   e.Message,
			TaskID:    e.TaskID,
			TaskTitle: e.TaskTitle,
			CreatedAt: e.Timestamp,
		}
		if err := b.statuses.Create(ctx, update); err != nil {
			errs = append(errs, fmt.Errorf("notify.Broadcaster: status: %w", err))
		}
	}

	if t, ok := messageType(e.Type); ok {
		channel := e.Channel
		if channel == "" {
			channel = "general"
		}
		msg := &domain.ChatMessage{
			ID:         uuid.New(),
			SenderID:   e.ActorID,
			SenderName: e.ActorName,
			Content:    e.Message,
			Channel:    channel,
			Type:       t,
			TaskRef:    e.TaskID,
			CreatedAt:  e.Timestamp,
		}
		if err := b.messages.Create(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify.Broadcaster: message: %w", err))
		}
	}

	if b.pusher != nil {
		payload, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("notify.Broadcaster: marshal: %w", err))
		} else {
			if err := b.pusher.Publish(ctx, redisstore.FeedChannel(), payload); err != nil {
				errs = append(errs, fmt.Errorf("notify.Broadcaster: push feed: %w", err))
			}
			if _, chat := messageType(e.Type); chat {
				if err := b.pusher.Publish(ctx, redisstore.ChatChannel(), payload); err != nil {
					errs = append(errs, fmt.Errorf("notify.Broadcaster: push chat: %w", err))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func statusType(t EventType) domain.StatusType {
	switch t {
	case EventClaim:
		return domain.StatusTypeClaim
	case EventHandoff:
		return domain.StatusTypeHandoff
	default:
		return domain.StatusTypeProgress
	}
}

// messageType reports which events appear in team chat and under which type.
func messageType(t EventType) (domain.MessageType, bool) {
	switch t {
	case EventClaim:
		return domain.MessageTypeClaim, true
	case EventHandoff:
		return domain.MessageTypeHandoff, true
	case EventChat:
		return domain.MessageTypeMessage, true
	default:
		return "", false
	}
}
