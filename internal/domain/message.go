package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeMessage MessageType = "message"
	MessageTypeSystem  MessageType = "system"
	MessageTypeHandoff MessageType = "handoff"
	MessageTypeClaim   MessageType = "claim"
	MessageTypeStatus  MessageType = "status"
)

// ChatMessage is one entry in the team chat. Claim and handoff events append
// typed messages here as their poll-visible side channel.
type ChatMessage struct {
	ID         uuid.UUID   `json:"id"`
	SenderID   string      `json:"sender_id"` // agent id or "human"
	SenderName string      `json:"sender_name"`
	Content    string      `json:"content"`
	Channel    string      `json:"channel"`
	Type       MessageType `json:"type"`
	TaskRef    *uuid.UUID  `json:"task_ref,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, m *ChatMessage) error
	// List returns messages in chronological order, restricted to a channel
	// when one is given, and to messages created strictly after `after` when
	// it is non-zero (the polling cursor).
	List(ctx context.Context, channel string, after time.Time, limit int) ([]*ChatMessage, error)
	Clear(ctx context.Context) error
}
