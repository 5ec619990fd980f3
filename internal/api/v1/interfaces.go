package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Agents() domain.AgentRepository
	Tasks() domain.TaskRepository
	Messages() domain.MessageRepository
	StatusFeed() domain.StatusRepository
}

// Coordinator abstracts the task coordination service for handler testing.
// *coord.Service satisfies this interface.
type Coordinator interface {
	CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Claim(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error)
	Unclaim(ctx context.Context, taskID uuid.UUID) error
	Handoff(ctx context.Context, taskID uuid.UUID, from, to domain.Actor, note string) error
	Update(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
	LogWork(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, id, name, password string, role domain.AgentRole) (*domain.Agent, error)
	Login(ctx context.Context, id, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Pusher is the optional realtime push transport used by the chat handlers.
// *redis.PubSub and *ws.Hub satisfy it; nil disables push.
type Pusher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
