package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/notify"
)

// Coordinator is the slice of the coordination service the driver acts
// through. Going through the service keeps simulated actions subject to the
// same claim atomicity and event fan-out as API calls.
type Coordinator interface {
	Claim(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error)
	Update(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	LogWork(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error
}

// Driver ticks a Policy against the live board and applies whatever it
// decides. Losing a claim race to a real caller is expected and only logged.
type Driver struct {
	agents   domain.AgentRepository
	tasks    domain.TaskRepository
	coord    Coordinator
	notifier notify.Notifier
	policy   Policy

	interval time.Duration
	minGap   time.Duration
}

func NewDriver(
	agents domain.AgentRepository,
	tasks domain.TaskRepository,
	coord Coordinator,
	notifier notify.Notifier,
	policy Policy,
	interval, minGap time.Duration,
) *Driver {
	return &Driver{
		agents:   agents,
		tasks:    tasks,
		coord:    coord,
		notifier: notifier,
		policy:   policy,
		interval: interval,
		minGap:   minGap,
	}
}

// Run blocks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	var lastAction time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastAction) < d.minGap {
				continue
			}
			lastAction = now

			if err := d.step(ctx); err != nil {
				log.Warn().Err(err).Msg("sim: step failed")
			}
		}
	}
}

// Step takes one snapshot, asks the policy for an action and applies it.
// Exported so tests and one-shot tooling can drive the loop directly.
func (d *Driver) Step(ctx context.Context) error {
	return d.step(ctx)
}

func (d *Driver) step(ctx context.Context) error {
	agents, err := d.agents.List(ctx)
	if err != nil {
		return fmt.Errorf("sim.Driver.step: list agents: %w", err)
	}
	tasks, err := d.tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("sim.Driver.step: list tasks: %w", err)
	}

	action := d.policy.Next(Snapshot{Agents: agents, Tasks: tasks})
	if action == nil {
		return nil
	}

	return d.apply(ctx, Snapshot{Agents: agents, Tasks: tasks}, action)
}

func (d *Driver) apply(ctx context.Context, snap Snapshot, action *Action) error {
	switch action.Kind {
	case ActionClaim:
		if _, err := d.coord.Claim(ctx, action.TaskID, action.AgentID); err != nil {
			return fmt.Errorf("sim.Driver.apply: claim: %w", err)
		}
		d.say(ctx, snap, action.AgentID, &action.TaskID, action.Message)
		return nil

	case ActionProgress:
		if err := d.coord.LogWork(ctx, action.TaskID, action.AgentID, "progress", action.Message); err != nil {
			return fmt.Errorf("sim.Driver.apply: log work: %w", err)
		}
		d.say(ctx, snap, action.AgentID, &action.TaskID, action.Message)
		return nil

	case ActionReview:
		column := domain.ColumnReview
		if _, err := d.coord.Update(ctx, action.TaskID, domain.TaskPatch{Column: &column}); err != nil {
			return fmt.Errorf("sim.Driver.apply: move to review: %w", err)
		}

		task := findTask(snap.Tasks, action.TaskID)
		title := ""
		if task != nil {
			title = task.Title
		}
		d.emit(ctx, notify.Event{
			Type:      notify.EventProgress,
			ActorID:   action.AgentID,
			ActorName: agentName(snap.Agents, action.AgentID),
			TaskID:    &action.TaskID,
			TaskTitle: title,
			Message:   fmt.Sprintf("Moved %q to review", title),
			Timestamp: time.Now(),
		})
		d.say(ctx, snap, action.AgentID, &action.TaskID, action.Message)
		return nil

	case ActionStatus:
		status := action.Status
		if err := d.agents.Patch(ctx, action.AgentID, domain.AgentPatch{Status: &status}, time.Now()); err != nil {
			return fmt.Errorf("sim.Driver.apply: flip status: %w", err)
		}
		return nil

	case ActionChat:
		d.say(ctx, snap, action.AgentID, nil, action.Message)
		return nil

	default:
		return fmt.Errorf("sim.Driver.apply: unknown action %q", action.Kind)
	}
}

// say posts a chat line as the given agent, best-effort.
func (d *Driver) say(ctx context.Context, snap Snapshot, agentID string, taskID *uuid.UUID, message string) {
	if message == "" {
		return
	}
	d.emit(ctx, notify.Event{
		Type:      notify.EventChat,
		ActorID:   agentID,
		ActorName: agentName(snap.Agents, agentID),
		TaskID:    taskID,
		Message:   message,
		Channel:   "general",
		Timestamp: time.Now(),
	})
}

func (d *Driver) emit(ctx context.Context, e notify.Event) {
	if err := d.notifier.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("type", string(e.Type)).Msg("sim: publish event")
	}
}

func agentName(agents []*domain.Agent, id string) string {
	if a := findAgent(agents, id); a != nil {
		return a.Name
	}
	return id
}
