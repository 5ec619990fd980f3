package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.ChatMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_id, sender_name, content, channel, type, task_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SenderID, m.SenderName, m.Content, m.Channel, m.Type, m.TaskRef, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", err)
	}

	return nil
}

func (r *MessageRepo) List(ctx context.Context, channel string, after time.Time, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sender_id, sender_name, content, channel, type, task_ref, created_at
		 FROM messages
		 WHERE ($1 = '' OR channel = $1) AND ($2::timestamptz IS NULL OR created_at > $2)
		 ORDER BY created_at
		 LIMIT $3`,
		channel, nullableTime(after), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.List: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.Content, &m.Channel, &m.Type, &m.TaskRef, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messageRepo.List: scan: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messageRepo.List: rows: %w", err)
	}

	return msgs, nil
}

func (r *MessageRepo) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("messageRepo.Clear: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
