package sim_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/notify"
	"github.com/missiondeck/missiondeck/internal/sim"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAgentRepo struct {
	listFunc  func(ctx context.Context) ([]*domain.Agent, error)
	patchFunc func(ctx context.Context, id string, p domain.AgentPatch, now time.Time) error
}

func (m *mockAgentRepo) Create(_ context.Context, _ *domain.Agent) error { return nil }

func (m *mockAgentRepo) GetByID(_ context.Context, _ string) (*domain.Agent, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	if m.listFunc == nil {
		return nil, nil
	}
	return m.listFunc(ctx)
}

func (m *mockAgentRepo) Patch(ctx context.Context, id string, p domain.AgentPatch, now time.Time) error {
	return m.patchFunc(ctx, id, p, now)
}

type mockTaskRepo struct {
	listFunc func(ctx context.Context) ([]*domain.Task, error)
}

func (m *mockTaskRepo) Create(_ context.Context, _ *domain.Task) error { return nil }

func (m *mockTaskRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.Task, error) {
	return nil, domain.ErrNotFound
}

func (m *mockTaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	if m.listFunc == nil {
		return nil, nil
	}
	return m.listFunc(ctx)
}

func (m *mockTaskRepo) Patch(_ context.Context, _ uuid.UUID, _ domain.TaskPatch) (*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) Claim(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (m *mockTaskRepo) Unclaim(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil }

func (m *mockTaskRepo) Handoff(_ context.Context, _ uuid.UUID, _, _ domain.Actor, _ string, _ time.Time) error {
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockTaskRepo) AppendWorklog(_ context.Context, _ uuid.UUID, _ domain.WorklogEntry) error {
	return nil
}

type mockCoordinator struct {
	claimFunc   func(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error)
	updateFunc  func(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	logWorkFunc func(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error
}

func (m *mockCoordinator) Claim(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error) {
	return m.claimFunc(ctx, taskID, agentID)
}

func (m *mockCoordinator) Update(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	return m.updateFunc(ctx, taskID, p)
}

func (m *mockCoordinator) LogWork(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error {
	return m.logWorkFunc(ctx, taskID, agentID, action, detail)
}

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *captureNotifier) Publish(_ context.Context, e notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *captureNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

// staticPolicy always proposes the same action.
type staticPolicy struct {
	action *sim.Action
}

func (p staticPolicy) Next(_ sim.Snapshot) *sim.Action { return p.action }

// ---------------------------------------------------------------------------
// TestDriverStep
// ---------------------------------------------------------------------------

func TestDriverStep(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	task := &domain.Task{ID: taskID, Title: "Harden API"}
	nova := &domain.Agent{ID: "nova", Name: "NOVA", Status: domain.AgentStatusOnline}

	agents := func() *mockAgentRepo {
		return &mockAgentRepo{listFunc: func(_ context.Context) ([]*domain.Agent, error) {
			return []*domain.Agent{nova}, nil
		}}
	}
	tasks := func() *mockTaskRepo {
		return &mockTaskRepo{listFunc: func(_ context.Context) ([]*domain.Task, error) {
			return []*domain.Task{task}, nil
		}}
	}

	t.Run("claim_goes_through_coordinator_and_chats", func(t *testing.T) {
		t.Parallel()

		var claimedTask uuid.UUID
		var claimedBy string
		coordinator := &mockCoordinator{claimFunc: func(_ context.Context, id uuid.UUID, agentID string) (time.Time, error) {
			claimedTask = id
			claimedBy = agentID
			return time.Now(), nil
		}}
		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{
			Kind:    sim.ActionClaim,
			AgentID: "nova",
			TaskID:  taskID,
			Message: `Claiming "Harden API" - matches my general expertise.`,
		}}
		d := sim.NewDriver(agents(), tasks(), coordinator, notifier, policy, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))

		assert.Equal(t, taskID, claimedTask)
		assert.Equal(t, "nova", claimedBy)

		events := notifier.all()
		require.Len(t, events, 1)
		assert.Equal(t, notify.EventChat, events[0].Type)
		assert.Equal(t, "nova", events[0].ActorID)
		assert.Equal(t, "NOVA", events[0].ActorName)
		assert.Equal(t, "general", events[0].Channel)
	})

	t.Run("lost_claim_race_surfaces_as_error", func(t *testing.T) {
		t.Parallel()

		coordinator := &mockCoordinator{claimFunc: func(_ context.Context, _ uuid.UUID, _ string) (time.Time, error) {
			return time.Time{}, domain.ErrConflict
		}}
		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{Kind: sim.ActionClaim, AgentID: "nova", TaskID: taskID, Message: "x"}}
		d := sim.NewDriver(agents(), tasks(), coordinator, notifier, policy, time.Second, 0)

		err := d.Step(context.Background())

		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, notifier.all(), "no chat for a claim that did not happen")
	})

	t.Run("progress_logs_work", func(t *testing.T) {
		t.Parallel()

		var gotAction, gotDetail string
		coordinator := &mockCoordinator{logWorkFunc: func(_ context.Context, id uuid.UUID, agentID, action, detail string) error {
			assert.Equal(t, taskID, id)
			assert.Equal(t, "nova", agentID)
			gotAction = action
			gotDetail = detail
			return nil
		}}
		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{
			Kind:    sim.ActionProgress,
			AgentID: "nova",
			TaskID:  taskID,
			Message: `Making progress on "Harden API". Running tests now.`,
		}}
		d := sim.NewDriver(agents(), tasks(), coordinator, notifier, policy, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))
		assert.Equal(t, "progress", gotAction)
		assert.Equal(t, `Making progress on "Harden API". Running tests now.`, gotDetail)

		events := notifier.all()
		require.Len(t, events, 1)
		assert.Equal(t, notify.EventChat, events[0].Type)
	})

	t.Run("review_moves_column_and_announces", func(t *testing.T) {
		t.Parallel()

		var patched domain.TaskPatch
		coordinator := &mockCoordinator{updateFunc: func(_ context.Context, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
			assert.Equal(t, taskID, id)
			patched = p
			return task, nil
		}}
		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{
			Kind:    sim.ActionReview,
			AgentID: "nova",
			TaskID:  taskID,
			Message: `Moved "Harden API" to REVIEW. Ready for peer check.`,
		}}
		d := sim.NewDriver(agents(), tasks(), coordinator, notifier, policy, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))

		require.NotNil(t, patched.Column)
		assert.Equal(t, domain.ColumnReview, *patched.Column)

		events := notifier.all()
		require.Len(t, events, 2)
		assert.Equal(t, notify.EventProgress, events[0].Type)
		assert.Equal(t, `Moved "Harden API" to review`, events[0].Message)
		assert.Equal(t, notify.EventChat, events[1].Type)
	})

	t.Run("status_flip_patches_the_agent", func(t *testing.T) {
		t.Parallel()

		agentRepo := agents()
		var patched domain.AgentPatch
		var patchedAt time.Time
		agentRepo.patchFunc = func(_ context.Context, id string, p domain.AgentPatch, now time.Time) error {
			assert.Equal(t, "nova", id)
			patched = p
			patchedAt = now
			return nil
		}
		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{Kind: sim.ActionStatus, AgentID: "nova", Status: domain.AgentStatusIdle}}
		d := sim.NewDriver(agentRepo, tasks(), &mockCoordinator{}, notifier, policy, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))

		require.NotNil(t, patched.Status)
		assert.Equal(t, domain.AgentStatusIdle, *patched.Status)
		assert.False(t, patchedAt.IsZero())
		assert.Empty(t, notifier.all(), "presence flips are silent")
	})

	t.Run("chat_only_publishes", func(t *testing.T) {
		t.Parallel()

		notifier := &captureNotifier{}
		policy := staticPolicy{action: &sim.Action{Kind: sim.ActionChat, AgentID: "nova", Message: "Anyone need help with frontend? I have capacity."}}
		d := sim.NewDriver(agents(), tasks(), &mockCoordinator{}, notifier, policy, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))

		events := notifier.all()
		require.Len(t, events, 1)
		assert.Equal(t, notify.EventChat, events[0].Type)
		assert.Nil(t, events[0].TaskID)
		assert.Equal(t, "Anyone need help with frontend? I have capacity.", events[0].Message)
	})

	t.Run("nil_action_is_a_quiet_tick", func(t *testing.T) {
		t.Parallel()

		notifier := &captureNotifier{}
		d := sim.NewDriver(agents(), tasks(), &mockCoordinator{}, notifier, staticPolicy{}, time.Second, 0)

		require.NoError(t, d.Step(context.Background()))
		assert.Empty(t, notifier.all())
	})
}

// ---------------------------------------------------------------------------
// TestDriverRun
// ---------------------------------------------------------------------------

func TestDriverRun(t *testing.T) {
	t.Parallel()

	t.Run("stops_on_context_cancel", func(t *testing.T) {
		t.Parallel()

		d := sim.NewDriver(&mockAgentRepo{}, &mockTaskRepo{}, &mockCoordinator{}, &captureNotifier{}, staticPolicy{}, time.Millisecond, 0)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			d.Run(ctx)
			close(done)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})
}
