package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type Store struct {
	pool     *pgxpool.Pool
	agents   *AgentRepo
	tasks    *TaskRepo
	messages *MessageRepo
	statuses *StatusRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		agents:   NewAgentRepo(pool),
		tasks:    NewTaskRepo(pool),
		messages: NewMessageRepo(pool),
		statuses: NewStatusRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Agents() domain.AgentRepository     { return s.agents }
func (s *Store) Tasks() domain.TaskRepository       { return s.tasks }
func (s *Store) Messages() domain.MessageRepository { return s.messages }
func (s *Store) StatusFeed() domain.StatusRepository { return s.statuses }
