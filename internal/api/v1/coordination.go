package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/server/middleware"
)

type ClaimTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		AgentID string `json:"agent_id" minLength:"1" maxLength:"64" doc:"Claiming agent ID"`
	}
}

type ClaimTaskOutput struct {
	Body struct {
		OK        bool      `json:"ok"`
		ClaimedAt time.Time `json:"claimed_at"`
	}
}

type UnclaimTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type UnclaimTaskOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

type HandoffTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		From string `json:"from,omitempty" maxLength:"64" doc:"Handing-off actor: agent ID or \"human\""`
		To   string `json:"to" minLength:"1" maxLength:"64" doc:"Receiving actor: agent ID or \"human\""`
		Note string `json:"note,omitempty" maxLength:"2000" doc:"Optional handoff note"`
	}
}

type HandoffTaskOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

type LogWorkInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Action string `json:"action" minLength:"1" maxLength:"500" doc:"What was done"`
		Detail string `json:"detail,omitempty" maxLength:"2000" doc:"Optional detail"`
	}
}

type LogWorkOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

// RegisterCoordinationRoutes wires the ownership operations: claim, unclaim,
// handoff, and worklog append. These are the only paths that change who owns
// a task.
func RegisterCoordinationRoutes(api huma.API, coordinator Coordinator) {
	huma.Register(api, huma.Operation{
		OperationID: "claim-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/claim",
		Summary:     "Claim an unclaimed task",
		Description: "Takes exclusive ownership. Exactly one of two concurrent claims succeeds; the other receives 409.",
		Tags:        []string{"Coordination"},
	}, func(ctx context.Context, input *ClaimTaskInput) (*ClaimTaskOutput, error) {
		claimedAt, err := coordinator.Claim(ctx, input.ID, input.Body.AgentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("task already claimed")
			}
			return nil, huma.Error500InternalServerError("failed to claim task", err)
		}

		out := &ClaimTaskOutput{}
		out.Body.OK = true
		out.Body.ClaimedAt = claimedAt
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unclaim-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/unclaim",
		Summary:     "Release a task back to the pool",
		Description: "No-op tolerant: unclaiming an already-unclaimed task succeeds.",
		Tags:        []string{"Coordination"},
	}, func(ctx context.Context, input *UnclaimTaskInput) (*UnclaimTaskOutput, error) {
		if err := coordinator.Unclaim(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to unclaim task", err)
		}

		out := &UnclaimTaskOutput{}
		out.Body.OK = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "handoff-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/handoff",
		Summary:     "Hand a task off to another agent or the human operator",
		Tags:        []string{"Coordination"},
	}, func(ctx context.Context, input *HandoffTaskInput) (*HandoffTaskOutput, error) {
		from := domain.ParseActor(input.Body.From)
		to := domain.ParseActor(input.Body.To)

		if err := coordinator.Handoff(ctx, input.ID, from, to, input.Body.Note); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to hand off task", err)
		}

		out := &HandoffTaskOutput{}
		out.Body.OK = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "log-work",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/worklog",
		Summary:     "Append a progress entry to a task's worklog",
		Tags:        []string{"Coordination"},
	}, func(ctx context.Context, input *LogWorkInput) (*LogWorkOutput, error) {
		agentID, ok := middleware.AgentIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing agent context")
		}

		if err := coordinator.LogWork(ctx, input.ID, agentID, input.Body.Action, input.Body.Detail); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to log work", err)
		}

		out := &LogWorkOutput{}
		out.Body.OK = true
		return out, nil
	})
}
