// Package coord implements the task coordination protocol: the sole authority
// for moving a task between unclaimed, claimed, and handed-off, while keeping
// the claiming agent's status and current task in sync and the worklog
// complete. Every multi-record effect is delegated to a single store
// transaction, so callers observe each operation as atomic.
package coord

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/notify"
)

type Service struct {
	tasks    domain.TaskRepository
	agents   domain.AgentRepository
	notifier notify.Notifier
}

// NewService creates the coordination service. notifier may be nil when no
// event fan-out is configured.
func NewService(tasks domain.TaskRepository, agents domain.AgentRepository, notifier notify.Notifier) *Service {
	return &Service{tasks: tasks, agents: agents, notifier: notifier}
}

// CreateTask validates input, applies creation defaults (priority medium,
// column backlog, empty tag set), and stores the new, unclaimed task.
func (s *Service) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if t.Title == "" {
		return nil, fmt.Errorf("coord.CreateTask: title is required: %w", domain.ErrValidation)
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if !t.Priority.Valid() {
		return nil, fmt.Errorf("coord.CreateTask: priority %q: %w", t.Priority, domain.ErrValidation)
	}
	if t.Column == "" {
		t.Column = domain.ColumnBacklog
	}
	if !t.Column.Valid() {
		return nil, fmt.Errorf("coord.CreateTask: column %q: %w", t.Column, domain.ErrValidation)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	now := time.Now()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("coord.CreateTask: %w", err)
	}

	return t, nil
}

// Claim takes exclusive ownership of an unclaimed task for agentID. Exactly
// one of two concurrent claims on the same task succeeds; the loser gets
// domain.ErrConflict and no state changes. On success the claim event is
// broadcast (best-effort) and the claim timestamp is returned.
func (s *Service) Claim(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error) {
	now := time.Now()
	if err := s.tasks.Claim(ctx, taskID, agentID, now); err != nil {
		return time.Time{}, fmt.Errorf("coord.Claim: %w", err)
	}

	title := s.taskTitle(ctx, taskID)
	name := s.displayName(ctx, agentID)
	s.emit(ctx, notify.Event{
		Type:      notify.EventClaim,
		ActorID:   agentID,
		ActorName: name,
		TaskID:    &taskID,
		TaskTitle: title,
		Message:   fmt.Sprintf("%s claimed %q", name, title),
		Timestamp: now,
	})

	return now, nil
}

// Unclaim releases a task back to the unclaimed pool and frees its claimant.
// Unclaiming an already-unclaimed task succeeds without changing anything.
// No worklog entry and no event are produced; release is silent.
func (s *Service) Unclaim(ctx context.Context, taskID uuid.UUID) error {
	if err := s.tasks.Unclaim(ctx, taskID, time.Now()); err != nil {
		return fmt.Errorf("coord.Unclaim: %w", err)
	}
	return nil
}

// Handoff transfers ownership from one actor to another. It is deliberately
// unconditional: the task only has to exist, the from actor is not required
// to be the current claimant. The human operator participates as an actor on
// either side without ever touching the agent registry.
func (s *Service) Handoff(ctx context.Context, taskID uuid.UUID, from, to domain.Actor, note string) error {
	now := time.Now()
	if err := s.tasks.Handoff(ctx, taskID, from, to, note, now); err != nil {
		return fmt.Errorf("coord.Handoff: %w", err)
	}

	title := s.taskTitle(ctx, taskID)
	fromName := s.actorName(ctx, from)
	toName := s.actorName(ctx, to)
	msg := fmt.Sprintf("%s handed off %q to %s", fromName, title, toName)
	if note != "" {
		msg += ": " + note
	}
	s.emit(ctx, notify.Event{
		Type:      notify.EventHandoff,
		ActorID:   from.String(),
		ActorName: fromName,
		TaskID:    &taskID,
		TaskTitle: title,
		Message:   msg,
		Note:      note,
		Timestamp: now,
	})

	return nil
}

// Update applies a partial field update. It never touches claim, handoff, or
// worklog state, and performs no ownership re-validation; callers changing
// ownership must use Claim/Unclaim/Handoff.
func (s *Service) Update(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	if p.Priority != nil && !p.Priority.Valid() {
		return nil, fmt.Errorf("coord.Update: priority %q: %w", *p.Priority, domain.ErrValidation)
	}
	if p.Column != nil && !p.Column.Valid() {
		return nil, fmt.Errorf("coord.Update: column %q: %w", *p.Column, domain.ErrValidation)
	}

	t, err := s.tasks.Patch(ctx, taskID, p)
	if err != nil {
		return nil, fmt.Errorf("coord.Update: %w", err)
	}

	return t, nil
}

// Delete removes a task with its worklog and frees any agent that had it as
// its current task.
func (s *Service) Delete(ctx context.Context, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("coord.Delete: %w", err)
	}
	return nil
}

// LogWork appends a progress entry to a task's worklog and broadcasts it to
// the status feed.
func (s *Service) LogWork(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error {
	now := time.Now()
	entry := domain.WorklogEntry{AgentID: agentID, Action: action, Detail: detail, Timestamp: now}
	if err := s.tasks.AppendWorklog(ctx, taskID, entry); err != nil {
		return fmt.Errorf("coord.LogWork: %w", err)
	}

	title := s.taskTitle(ctx, taskID)
	name := s.displayName(ctx, agentID)
	msg := action
	if detail != "" {
		msg += ": " + detail
	}
	s.emit(ctx, notify.Event{
		Type:      notify.EventProgress,
		ActorID:   agentID,
		ActorName: name,
		TaskID:    &taskID,
		TaskTitle: title,
		Message:   msg,
		Timestamp: now,
	})

	return nil
}

// emit broadcasts an event. Delivery is best-effort: the state change it
// describes has already committed, so failures are logged and swallowed.
func (s *Service) emit(ctx context.Context, e notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", string(e.Type)).Msg("coord: event broadcast failed")
	}
}

func (s *Service) taskTitle(ctx context.Context, taskID uuid.UUID) string {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return ""
	}
	return t.Title
}

func (s *Service) displayName(ctx context.Context, agentID string) string {
	a, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return agentID
	}
	return a.Name
}

func (s *Service) actorName(ctx context.Context, a domain.Actor) string {
	if a.IsHuman() {
		return "human"
	}
	if !a.IsAgent() {
		return "system"
	}
	return s.displayName(ctx, a.AgentID())
}
