package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

const agentColumns = `id, name, role, status, COALESCE(avatar, ''), current_task_id, skills,
	completed_tasks, last_active, COALESCE(password_hash, '')`

func (r *AgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agents (id, name, role, status, avatar, current_task_id, skills, completed_tasks, last_active, password_hash)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''))`,
		a.ID, a.Name, a.Role, a.Status, a.Avatar, a.CurrentTaskID, a.Skills,
		a.CompletedTasks, a.LastActive, a.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Create: %w", err)
	}

	return nil
}

func (r *AgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	a, err := scanAgentRow(r.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("agentRepo.GetByID: %w", err)
	}

	return a, nil
}

func (r *AgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+agentColumns+` FROM agents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("agentRepo.List: %w", err)
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		a, scanErr := scanAgentRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("agentRepo.List: scan: %w", scanErr)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agentRepo.List: rows: %w", err)
	}

	return agents, nil
}

func (r *AgentRepo) Patch(ctx context.Context, id string, p domain.AgentPatch, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("agentRepo.Patch: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	a, err := scanAgentRow(tx.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("agentRepo.Patch: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("agentRepo.Patch: %w", err)
	}

	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.CurrentTaskID != nil {
		a.CurrentTaskID = *p.CurrentTaskID
	}
	if p.CompletedTasks != nil {
		a.CompletedTasks = *p.CompletedTasks
	}

	_, err = tx.Exec(ctx,
		`UPDATE agents SET status = $1, current_task_id = $2, completed_tasks = $3, last_active = $4
		 WHERE id = $5`,
		a.Status, a.CurrentTaskID, a.CompletedTasks, now, id,
	)
	if err != nil {
		return fmt.Errorf("agentRepo.Patch: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("agentRepo.Patch: commit: %w", err)
	}

	return nil
}

func scanAgentRow(row rowScanner) (*domain.Agent, error) {
	var a domain.Agent
	err := row.Scan(
		&a.ID, &a.Name, &a.Role, &a.Status, &a.Avatar, &a.CurrentTaskID, &a.Skills,
		&a.CompletedTasks, &a.LastActive, &a.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
