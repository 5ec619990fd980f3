package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type StatusRepo struct {
	pool *pgxpool.Pool
}

func NewStatusRepo(pool *pgxpool.Pool) *StatusRepo {
	return &StatusRepo{pool: pool}
}

func (r *StatusRepo) Create(ctx context.Context, u *domain.StatusUpdate) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO status_updates (id, agent_id, agent_name, type, message, task_id, task_title, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
		u.ID, u.AgentID, u.AgentName, u.Type, u.Message, u.TaskID, u.TaskTitle, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("statusRepo.Create: %w", err)
	}

	return nil
}

func (r *StatusRepo) List(ctx context.Context, since time.Time, limit int) ([]*domain.StatusUpdate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agent_id, agent_name, type, message, task_id, COALESCE(task_title, ''), created_at
		 FROM status_updates
		 WHERE ($1::timestamptz IS NULL OR created_at > $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		nullableTime(since), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("statusRepo.List: %w", err)
	}
	defer rows.Close()

	var updates []*domain.StatusUpdate
	for rows.Next() {
		var u domain.StatusUpdate
		if err := rows.Scan(&u.ID, &u.AgentID, &u.AgentName, &u.Type, &u.Message, &u.TaskID, &u.TaskTitle, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("statusRepo.List: scan: %w", err)
		}
		updates = append(updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statusRepo.List: rows: %w", err)
	}

	return updates, nil
}
