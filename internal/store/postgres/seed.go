package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
)

// SeedDemo inserts the demo crew and board when the agent table is empty.
// Returns true if seeding happened.
func (s *Store) SeedDemo(ctx context.Context) (bool, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count); err != nil {
		return false, fmt.Errorf("postgres.SeedDemo: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	now := time.Now()

	agents := []*domain.Agent{
		{ID: "axis", Name: "AXIS", Role: domain.AgentRoleGeneral, Status: domain.AgentStatusOnline, Avatar: "🤖", Skills: []string{"coordination", "planning", "monitoring"}, CompletedTasks: 12, LastActive: now},
		{ID: "nova", Name: "NOVA", Role: domain.AgentRoleFrontend, Status: domain.AgentStatusOnline, Avatar: "🎨", Skills: []string{"react", "css", "ui-design", "accessibility"}, CompletedTasks: 8, LastActive: now},
		{ID: "cipher", Name: "CIPHER", Role: domain.AgentRoleSecurity, Status: domain.AgentStatusOnline, Avatar: "🔒", Skills: []string{"pen-testing", "audit", "encryption", "auth"}, CompletedTasks: 15, LastActive: now},
		{ID: "forge", Name: "FORGE", Role: domain.AgentRoleBackend, Status: domain.AgentStatusIdle, Avatar: "⚡", Skills: []string{"api", "database", "microservices", "websockets"}, CompletedTasks: 10, LastActive: now},
		{ID: "sentinel", Name: "SENTINEL", Role: domain.AgentRoleDevops, Status: domain.AgentStatusOnline, Avatar: "🛡️", Skills: []string{"docker", "ci-cd", "kubernetes", "monitoring"}, CompletedTasks: 7, LastActive: now},
	}
	for _, a := range agents {
		if err := s.agents.Create(ctx, a); err != nil {
			return false, fmt.Errorf("postgres.SeedDemo: %w", err)
		}
	}

	tasks := []*domain.Task{
		{Title: "Audit NGINX Config", Description: "Full security review of the NGINX reverse proxy configuration", Priority: domain.PriorityHigh, Column: domain.ColumnTodo, Tags: []string{"security", "infra"}},
		{Title: "Scaffold Mission Deck UI", Description: "Build the initial dashboard layout and components", Priority: domain.PriorityMedium, Column: domain.ColumnDone, Tags: []string{"frontend"}},
		{Title: "Optimize Docker Containers", Description: "Reduce image sizes and optimize build layers", Priority: domain.PriorityCritical, Column: domain.ColumnTodo, Tags: []string{"devops", "infra"}},
		{Title: "Update MEMORY.md", Description: "Document all recent architecture decisions", Priority: domain.PriorityLow, Column: domain.ColumnBacklog, Tags: []string{"docs"}},
		{Title: "API Rate Limiter", Description: "Implement rate limiting middleware for all endpoints", Priority: domain.PriorityHigh, Column: domain.ColumnReview, Tags: []string{"backend", "security"}},
		{Title: "CI/CD Pipeline Refactor", Description: "Migrate from Jenkins to GitHub Actions", Priority: domain.PriorityMedium, Column: domain.ColumnBacklog, Tags: []string{"devops"}},
		{Title: "WebSocket Gateway", Description: "Real-time event streaming for agent communication", Priority: domain.PriorityCritical, Column: domain.ColumnTodo, Tags: []string{"backend", "infra"}},
		{Title: "Dark Mode Persistence", Description: "Save theme preference across sessions", Priority: domain.PriorityLow, Column: domain.ColumnDone, Tags: []string{"frontend"}},
	}
	for _, t := range tasks {
		t.ID = uuid.New()
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := s.tasks.Create(ctx, t); err != nil {
			return false, fmt.Errorf("postgres.SeedDemo: %w", err)
		}
	}

	return true, nil
}
