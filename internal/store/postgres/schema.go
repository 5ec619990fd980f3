package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates the Mission Deck tables in dependency order.
// Bootstrap only: there is no migration machinery, the statements are
// idempotent and run at every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'general',
		status TEXT NOT NULL DEFAULT 'online',
		avatar TEXT,
		current_task_id UUID,
		skills TEXT[] NOT NULL DEFAULT '{}',
		completed_tasks INTEGER NOT NULL DEFAULT 0,
		last_active TIMESTAMPTZ NOT NULL DEFAULT now(),
		password_hash TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		assignee TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		"column" TEXT NOT NULL DEFAULT 'backlog',
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		claimed_by TEXT,
		claimed_at TIMESTAMPTZ,
		locked_by TEXT,
		handoff_from TEXT,
		handoff_to TEXT,
		handoff_note TEXT,
		is_handoff BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS worklog (
		id BIGSERIAL PRIMARY KEY,
		task_id UUID NOT NULL,
		agent_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		sender_id TEXT NOT NULL,
		sender_name TEXT NOT NULL,
		content TEXT NOT NULL,
		channel TEXT NOT NULL DEFAULT 'general',
		type TEXT NOT NULL DEFAULT 'message',
		task_ref UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS status_updates (
		id UUID PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		task_id UUID,
		task_title TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks("column")`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_claimed_by ON tasks(claimed_by)`,
	`CREATE INDEX IF NOT EXISTS idx_worklog_task_id ON worklog(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_channel_ts ON messages(channel, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_status_updates_ts ON status_updates(created_at)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres.EnsureSchema: %w", err)
		}
	}
	return nil
}
