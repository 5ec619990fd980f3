package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StatusType string

const (
	StatusTypeClaim    StatusType = "claim"
	StatusTypeProgress StatusType = "progress"
	StatusTypeComplete StatusType = "complete"
	StatusTypeHandoff  StatusType = "handoff"
	StatusTypeBlocked  StatusType = "blocked"
	StatusTypeOnline   StatusType = "online"
	StatusTypeOffline  StatusType = "offline"
)

// StatusUpdate is one row of the live status feed: the poll-visible record of
// a coordination or simulation event.
type StatusUpdate struct {
	ID        uuid.UUID  `json:"id"`
	AgentID   string     `json:"agent_id"`
	AgentName string     `json:"agent_name"`
	Type      StatusType `json:"type"`
	Message   string     `json:"message"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	TaskTitle string     `json:"task_title,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type StatusRepository interface {
	Create(ctx context.Context, u *StatusUpdate) error
	// List returns updates newest first, restricted to entries created
	// strictly after `since` when it is non-zero.
	List(ctx context.Context, since time.Time, limit int) ([]*StatusUpdate, error)
}
