package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "online"
	AgentStatusBusy    AgentStatus = "busy"
	AgentStatusIdle    AgentStatus = "idle"
	AgentStatusOffline AgentStatus = "offline"
)

// Valid reports whether s is a known agent status.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusOnline, AgentStatusBusy, AgentStatusIdle, AgentStatusOffline:
		return true
	}
	return false
}

type AgentRole string

const (
	AgentRoleFrontend AgentRole = "frontend"
	AgentRoleBackend  AgentRole = "backend"
	AgentRoleDevops   AgentRole = "devops"
	AgentRoleSecurity AgentRole = "security"
	AgentRoleQA       AgentRole = "qa"
	AgentRoleGeneral  AgentRole = "general"
	AgentRoleAdmin    AgentRole = "admin"
)

// Agent is an identity (human-operated or automated) that can own at most one
// task at a time. CurrentTaskID and Status are mutated only by the
// coordination service and by the direct status-set endpoint.
type Agent struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Role           AgentRole   `json:"role"`
	Status         AgentStatus `json:"status"`
	Avatar         string      `json:"avatar,omitempty"`
	CurrentTaskID  *uuid.UUID  `json:"current_task_id"`
	Skills         []string    `json:"skills"`
	CompletedTasks int         `json:"completed_tasks"`
	LastActive     time.Time   `json:"last_active"`

	PasswordHash string `json:"-"`
}

// AgentPatch is the direct status-set path: nil means "not mentioned".
// Setting CurrentTaskID to a non-nil pointer holding nil clears it.
type AgentPatch struct {
	Status         *AgentStatus
	CurrentTaskID  **uuid.UUID
	CompletedTasks *int
}

type AgentRepository interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id string) (*Agent, error)
	List(ctx context.Context) ([]*Agent, error)
	Patch(ctx context.Context, id string, p AgentPatch, now time.Time) error
}
