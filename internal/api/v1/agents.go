package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type ListAgentsOutput struct {
	Body []*domain.Agent
}

type UpdateAgentInput struct {
	ID   string `path:"id" maxLength:"64" doc:"Agent ID"`
	Body struct {
		Status *string `json:"status,omitempty" doc:"online|busy|idle|offline"`
		// Present empty string clears the current task; absent leaves it.
		CurrentTaskID  *string `json:"current_task_id,omitempty" doc:"Task UUID, or empty string to clear"`
		CompletedTasks *int    `json:"completed_tasks,omitempty" minimum:"0" doc:"Completed task counter"`
	}
}

type UpdateAgentOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func RegisterAgentRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-agents",
		Method:      http.MethodGet,
		Path:        "/agents",
		Summary:     "List all agents",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, _ *struct{}) (*ListAgentsOutput, error) {
		agents, err := store.Agents().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list agents", err)
		}

		return &ListAgentsOutput{Body: agents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-agent",
		Method:      http.MethodPatch,
		Path:        "/agents/{id}",
		Summary:     "Directly set an agent's status, current task, or counters",
		Description: "The direct status-set path. Claim/unclaim/handoff keep agent state in sync automatically; this endpoint bypasses that coupling.",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *UpdateAgentInput) (*UpdateAgentOutput, error) {
		var patch domain.AgentPatch

		if input.Body.Status != nil {
			status := domain.AgentStatus(*input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown agent status: " + *input.Body.Status)
			}
			patch.Status = &status
		}
		if input.Body.CurrentTaskID != nil {
			var taskID *uuid.UUID
			if *input.Body.CurrentTaskID != "" {
				parsed, err := uuid.Parse(*input.Body.CurrentTaskID)
				if err != nil {
					return nil, huma.Error400BadRequest("invalid task id: " + *input.Body.CurrentTaskID)
				}
				taskID = &parsed
			}
			patch.CurrentTaskID = &taskID
		}
		patch.CompletedTasks = input.Body.CompletedTasks

		if err := store.Agents().Patch(ctx, input.ID, patch, time.Now()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to update agent", err)
		}

		out := &UpdateAgentOutput{}
		out.Body.OK = true
		return out, nil
	})
}
