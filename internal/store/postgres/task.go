package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, title, COALESCE(description, ''), COALESCE(assignee, ''), priority, "column", tags,
	created_at, updated_at, COALESCE(claimed_by, ''), claimed_at, COALESCE(locked_by, ''),
	COALESCE(handoff_from, ''), COALESCE(handoff_to, ''), COALESCE(handoff_note, ''), is_handoff`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, assignee, priority, "column", tags, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9)`,
		t.ID, t.Title, t.Description, t.Assignee, t.Priority, t.Column, t.Tags,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTaskRow(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	t.Worklog, err = r.loadWorklog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	byID := make(map[uuid.UUID]*domain.Task)
	for rows.Next() {
		t, scanErr := scanTaskRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("taskRepo.List: scan: %w", scanErr)
		}
		tasks = append(tasks, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.List: rows: %w", err)
	}

	// Attach worklogs in one pass, oldest entry first per task.
	wlRows, err := r.pool.Query(ctx,
		`SELECT task_id, agent_id, action, COALESCE(detail, ''), created_at
		 FROM worklog ORDER BY task_id, id`)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: worklog: %w", err)
	}
	defer wlRows.Close()

	for wlRows.Next() {
		var taskID uuid.UUID
		var e domain.WorklogEntry
		if scanErr := wlRows.Scan(&taskID, &e.AgentID, &e.Action, &e.Detail, &e.Timestamp); scanErr != nil {
			return nil, fmt.Errorf("taskRepo.List: worklog scan: %w", scanErr)
		}
		if t, ok := byID[taskID]; ok {
			t.Worklog = append(t.Worklog, e)
		}
	}
	if err := wlRows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.List: worklog rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) Patch(ctx context.Context, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Patch: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	t, err := scanTaskRow(tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.Patch: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Patch: %w", err)
	}

	p.Apply(t)
	t.UpdatedAt = time.Now()

	_, err = tx.Exec(ctx,
		`UPDATE tasks SET title = $1, description = NULLIF($2, ''), assignee = NULLIF($3, ''),
		        priority = $4, "column" = $5, tags = $6, updated_at = $7
		 WHERE id = $8`,
		t.Title, t.Description, t.Assignee, t.Priority, t.Column, t.Tags, t.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Patch: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("taskRepo.Patch: commit: %w", err)
	}

	t.Worklog, err = r.loadWorklog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Patch: %w", err)
	}

	return t, nil
}

// Claim performs the atomic check-then-set: the conditional UPDATE takes the
// row lock and succeeds only while claimed_by is NULL, so two concurrent
// claims on the same task serialize into exactly one success and one
// ErrConflict. The agent update and worklog insert ride the same transaction.
func (r *TaskRepo) Claim(ctx context.Context, id uuid.UUID, agentID string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Claim: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET
		        claimed_by = $1, claimed_at = $2, assignee = $1, locked_by = $1,
		        "column" = CASE WHEN "column" IN ('backlog', 'todo') THEN 'in-progress' ELSE "column" END,
		        updated_at = $2
		 WHERE id = $3 AND claimed_by IS NULL`,
		agentID, now, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("taskRepo.Claim: %w", err)
		}
		if !exists {
			return fmt.Errorf("taskRepo.Claim: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("taskRepo.Claim: already claimed: %w", domain.ErrConflict)
	}

	_, err = tx.Exec(ctx,
		`UPDATE agents SET current_task_id = $1, status = 'busy', last_active = $2 WHERE id = $3`,
		id, now, agentID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Claim: agent: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO worklog (task_id, agent_id, action, created_at) VALUES ($1, $2, 'claimed', $3)`,
		id, agentID, now,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Claim: worklog: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Claim: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) Unclaim(ctx context.Context, id uuid.UUID, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Unclaim: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var claimedBy string
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(claimed_by, '') FROM tasks WHERE id = $1 FOR UPDATE`, id).Scan(&claimedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("taskRepo.Unclaim: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("taskRepo.Unclaim: %w", err)
	}

	// Already unclaimed: succeed without touching anything.
	if claimedBy == "" {
		return nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE tasks SET claimed_by = NULL, claimed_at = NULL, assignee = NULL, locked_by = NULL,
		        updated_at = $1
		 WHERE id = $2`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Unclaim: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE agents SET current_task_id = NULL, status = 'online', last_active = $1 WHERE id = $2`,
		now, claimedBy,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Unclaim: agent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Unclaim: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) Handoff(ctx context.Context, id uuid.UUID, from, to domain.Actor, note string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Handoff: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET
		        handoff_from = $1, handoff_to = $2, handoff_note = NULLIF($3, ''), is_handoff = TRUE,
		        assignee = $2, claimed_by = $2, locked_by = $2, updated_at = $4
		 WHERE id = $5`,
		from.String(), to.String(), note, now, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Handoff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Handoff: %w", domain.ErrNotFound)
	}

	// The human operator has no agent row; only real agents are freed or assigned.
	if from.IsAgent() {
		_, err = tx.Exec(ctx,
			`UPDATE agents SET current_task_id = NULL, status = 'online', last_active = $1 WHERE id = $2`,
			now, from.AgentID(),
		)
		if err != nil {
			return fmt.Errorf("taskRepo.Handoff: free agent: %w", err)
		}
	}
	if to.IsAgent() {
		_, err = tx.Exec(ctx,
			`UPDATE agents SET current_task_id = $1, status = 'busy', last_active = $2 WHERE id = $3`,
			id, now, to.AgentID(),
		)
		if err != nil {
			return fmt.Errorf("taskRepo.Handoff: assign agent: %w", err)
		}
	}

	logAgent := from.String()
	if logAgent == "" {
		logAgent = "system"
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO worklog (task_id, agent_id, action, detail, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		id, logAgent, "handoff to "+to.String(), note, now,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Handoff: worklog: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Handoff: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`UPDATE agents SET current_task_id = NULL, status = 'online', last_active = $1
		 WHERE current_task_id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: free agents: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM worklog WHERE task_id = $1`, id)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: worklog: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Delete: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) AppendWorklog(ctx context.Context, id uuid.UUID, e domain.WorklogEntry) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO worklog (task_id, agent_id, action, detail, created_at)
		 SELECT $1, $2, $3, NULLIF($4, ''), $5 WHERE EXISTS (SELECT 1 FROM tasks WHERE id = $1)`,
		id, e.AgentID, e.Action, e.Detail, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.AppendWorklog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.AppendWorklog: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) loadWorklog(ctx context.Context, id uuid.UUID) ([]domain.WorklogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT agent_id, action, COALESCE(detail, ''), created_at
		 FROM worklog WHERE task_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("worklog: %w", err)
	}
	defer rows.Close()

	var entries []domain.WorklogEntry
	for rows.Next() {
		var e domain.WorklogEntry
		if err := rows.Scan(&e.AgentID, &e.Action, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("worklog scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("worklog rows: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Assignee, &t.Priority, &t.Column, &t.Tags,
		&t.CreatedAt, &t.UpdatedAt, &t.ClaimedBy, &t.ClaimedAt, &t.LockedBy,
		&t.HandoffFrom, &t.HandoffTo, &t.HandoffNote, &t.IsHandoff,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
