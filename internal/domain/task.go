package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Column is the kanban pipeline stage of a task. It is an independent
// dimension from ownership; the only coupling is the claim-time advance rule.
type Column string

const (
	ColumnBacklog    Column = "backlog"
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnReview     Column = "review"
	ColumnDone       Column = "done"
)

// Valid reports whether c is one of the five board columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnBacklog, ColumnTodo, ColumnInProgress, ColumnReview, ColumnDone:
		return true
	}
	return false
}

// ClaimAdvance returns the column a task lands in when claimed: backlog and
// todo advance to in-progress, every other column is kept as-is.
func (c Column) ClaimAdvance() Column {
	if c == ColumnBacklog || c == ColumnTodo {
		return ColumnInProgress
	}
	return c
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Priority    Priority  `json:"priority"`
	Column      Column    `json:"column"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Coordination fields. ClaimedBy is the source of truth for ownership;
	// Assignee is display-level and LockedBy mirrors ClaimedBy.
	ClaimedBy   string     `json:"claimed_by,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty"`
	HandoffFrom string     `json:"handoff_from,omitempty"`
	HandoffTo   string     `json:"handoff_to,omitempty"`
	HandoffNote string     `json:"handoff_note,omitempty"`
	IsHandoff   bool       `json:"is_handoff"`

	Worklog []WorklogEntry `json:"worklog"`
}

// WorklogEntry is one line of a task's append-only audit trail. Entries are
// immutable and owned by exactly one task.
type WorklogEntry struct {
	AgentID   string    `json:"agent_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskPatch is an explicit partial update: a nil field means "not mentioned,
// keep the stored value"; a non-nil field sets it, including to the zero
// value (clearing the assignee is a pointer to the empty string, not nil).
type TaskPatch struct {
	Title       *string
	Description *string
	Assignee    *string
	Priority    *Priority
	Column      *Column
	Tags        *[]string
}

// Apply writes the present fields of p onto t. It does not touch claim,
// handoff, or worklog fields and performs no ownership re-validation.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Column != nil {
		t.Column = *p.Column
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
}

// Empty reports whether the patch mentions no fields at all.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Assignee == nil &&
		p.Priority == nil && p.Column == nil && p.Tags == nil
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Patch(ctx context.Context, id uuid.UUID, p TaskPatch) (*Task, error)

	// Claim atomically takes ownership of an unclaimed task: it sets the
	// claim fields, advances the column per ClaimAdvance, marks the agent
	// busy, and appends the "claimed" worklog entry, all in one transaction.
	// Returns ErrConflict if the task is already claimed, ErrNotFound if it
	// does not exist. Concurrent claims on the same task serialize here.
	Claim(ctx context.Context, id uuid.UUID, agentID string, now time.Time) error

	// Unclaim releases a task and frees its claimant, if any. Unclaiming an
	// already-unclaimed task is a no-op, not an error. The column is not
	// reverted and no worklog entry is written.
	Unclaim(ctx context.Context, id uuid.UUID, now time.Time) error

	// Handoff transfers ownership from one actor to another unconditionally
	// (the task only has to exist), records the handoff fields, frees the
	// from-agent and assigns the to-agent when they are real agents, and
	// appends the handoff worklog entry, all in one transaction.
	Handoff(ctx context.Context, id uuid.UUID, from, to Actor, note string, now time.Time) error

	// Delete removes the task and its worklog and frees any agent whose
	// current task it was, in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// AppendWorklog adds a progress entry outside claim/handoff.
	AppendWorklog(ctx context.Context, id uuid.UUID, e WorklogEntry) error
}
