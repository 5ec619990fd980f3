package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject agent identity into context for DoCtx
// ---------------------------------------------------------------------------

func agentCtx(agentID string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyAgentID, agentID)
	return ctx
}

func adminCtx(agentID string) context.Context {
	ctx := agentCtx(agentID)
	ctx = context.WithValue(ctx, middleware.ContextKeyAgentRole, middleware.RoleAdmin)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	agents   domain.AgentRepository
	tasks    domain.TaskRepository
	messages domain.MessageRepository
	statuses domain.StatusRepository
}

func (m *mockDataStore) Agents() domain.AgentRepository      { return m.agents }
func (m *mockDataStore) Tasks() domain.TaskRepository        { return m.tasks }
func (m *mockDataStore) Messages() domain.MessageRepository  { return m.messages }
func (m *mockDataStore) StatusFeed() domain.StatusRepository { return m.statuses }

// ---------------------------------------------------------------------------
// Mock AgentRepository
// ---------------------------------------------------------------------------

type mockAgentRepo struct {
	createFunc  func(ctx context.Context, a *domain.Agent) error
	getByIDFunc func(ctx context.Context, id string) (*domain.Agent, error)
	listFunc    func(ctx context.Context) ([]*domain.Agent, error)
	patchFunc   func(ctx context.Context, id string, p domain.AgentPatch, now time.Time) error
}

func (m *mockAgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	return m.createFunc(ctx, a)
}

func (m *mockAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAgentRepo) List(ctx context.Context) ([]*domain.Agent, error) {
	return m.listFunc(ctx)
}

func (m *mockAgentRepo) Patch(ctx context.Context, id string, p domain.AgentPatch, now time.Time) error {
	return m.patchFunc(ctx, id, p, now)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc        func(ctx context.Context, t *domain.Task) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listFunc          func(ctx context.Context) ([]*domain.Task, error)
	patchFunc         func(ctx context.Context, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	claimFunc         func(ctx context.Context, id uuid.UUID, agentID string, now time.Time) error
	unclaimFunc       func(ctx context.Context, id uuid.UUID, now time.Time) error
	handoffFunc       func(ctx context.Context, id uuid.UUID, from, to domain.Actor, note string, now time.Time) error
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
	appendWorklogFunc func(ctx context.Context, id uuid.UUID, e domain.WorklogEntry) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	return m.listFunc(ctx)
}

func (m *mockTaskRepo) Patch(ctx context.Context, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	return m.patchFunc(ctx, id, p)
}

func (m *mockTaskRepo) Claim(ctx context.Context, id uuid.UUID, agentID string, now time.Time) error {
	return m.claimFunc(ctx, id, agentID, now)
}

func (m *mockTaskRepo) Unclaim(ctx context.Context, id uuid.UUID, now time.Time) error {
	return m.unclaimFunc(ctx, id, now)
}

func (m *mockTaskRepo) Handoff(ctx context.Context, id uuid.UUID, from, to domain.Actor, note string, now time.Time) error {
	return m.handoffFunc(ctx, id, from, to, note, now)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockTaskRepo) AppendWorklog(ctx context.Context, id uuid.UUID, e domain.WorklogEntry) error {
	return m.appendWorklogFunc(ctx, id, e)
}

// ---------------------------------------------------------------------------
// Mock MessageRepository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	createFunc func(ctx context.Context, msg *domain.ChatMessage) error
	listFunc   func(ctx context.Context, channel string, after time.Time, limit int) ([]*domain.ChatMessage, error)
	clearFunc  func(ctx context.Context) error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	return m.createFunc(ctx, msg)
}

func (m *mockMessageRepo) List(ctx context.Context, channel string, after time.Time, limit int) ([]*domain.ChatMessage, error) {
	return m.listFunc(ctx, channel, after, limit)
}

func (m *mockMessageRepo) Clear(ctx context.Context) error {
	return m.clearFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock StatusRepository
// ---------------------------------------------------------------------------

type mockStatusRepo struct {
	createFunc func(ctx context.Context, u *domain.StatusUpdate) error
	listFunc   func(ctx context.Context, since time.Time, limit int) ([]*domain.StatusUpdate, error)
}

func (m *mockStatusRepo) Create(ctx context.Context, u *domain.StatusUpdate) error {
	return m.createFunc(ctx, u)
}

func (m *mockStatusRepo) List(ctx context.Context, since time.Time, limit int) ([]*domain.StatusUpdate, error) {
	return m.listFunc(ctx, since, limit)
}

// ---------------------------------------------------------------------------
// Mock Coordinator
// ---------------------------------------------------------------------------

type mockCoordinator struct {
	createTaskFunc func(ctx context.Context, t *domain.Task) (*domain.Task, error)
	claimFunc      func(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error)
	unclaimFunc    func(ctx context.Context, taskID uuid.UUID) error
	handoffFunc    func(ctx context.Context, taskID uuid.UUID, from, to domain.Actor, note string) error
	updateFunc     func(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	deleteFunc     func(ctx context.Context, taskID uuid.UUID) error
	logWorkFunc    func(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error
}

func (m *mockCoordinator) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	return m.createTaskFunc(ctx, t)
}

func (m *mockCoordinator) Claim(ctx context.Context, taskID uuid.UUID, agentID string) (time.Time, error) {
	return m.claimFunc(ctx, taskID, agentID)
}

func (m *mockCoordinator) Unclaim(ctx context.Context, taskID uuid.UUID) error {
	return m.unclaimFunc(ctx, taskID)
}

func (m *mockCoordinator) Handoff(ctx context.Context, taskID uuid.UUID, from, to domain.Actor, note string) error {
	return m.handoffFunc(ctx, taskID, from, to, note)
}

func (m *mockCoordinator) Update(ctx context.Context, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	return m.updateFunc(ctx, taskID, p)
}

func (m *mockCoordinator) Delete(ctx context.Context, taskID uuid.UUID) error {
	return m.deleteFunc(ctx, taskID)
}

func (m *mockCoordinator) LogWork(ctx context.Context, taskID uuid.UUID, agentID, action, detail string) error {
	return m.logWorkFunc(ctx, taskID, agentID, action, detail)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, id, name, password string, role domain.AgentRole) (*domain.Agent, error)
	loginFunc        func(ctx context.Context, id, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, id, name, password string, role domain.AgentRole) (*domain.Agent, error) {
	return m.registerFunc(ctx, id, name, password, role)
}

func (m *mockAuthService) Login(ctx context.Context, id, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, id, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock Pusher
// ---------------------------------------------------------------------------

type mockPusher struct {
	publishFunc func(ctx context.Context, channel string, payload []byte) error
}

func (m *mockPusher) Publish(ctx context.Context, channel string, payload []byte) error {
	return m.publishFunc(ctx, channel, payload)
}
