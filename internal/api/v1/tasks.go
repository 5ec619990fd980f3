package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type CreateTaskInput struct {
	Body struct {
		Title       string   `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description string   `json:"description,omitempty" doc:"Task description"`
		Assignee    string   `json:"assignee,omitempty" doc:"Display-level assignee agent ID"`
		Priority    string   `json:"priority,omitempty" doc:"critical|high|medium|low (default medium)"`
		Column      string   `json:"column,omitempty" doc:"Board column (default backlog)"`
		Tags        []string `json:"tags,omitempty" doc:"Task tags"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		// Absent fields keep their stored value; present fields are set,
		// including to the empty value (clearing the assignee is an explicit
		// empty string, not an omitted field).
		Title       *string   `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description *string   `json:"description,omitempty" doc:"Task description"`
		Assignee    *string   `json:"assignee,omitempty" doc:"Display-level assignee agent ID"`
		Priority    *string   `json:"priority,omitempty" doc:"critical|high|medium|low"`
		Column      *string   `json:"column,omitempty" doc:"Board column"`
		Tags        *[]string `json:"tags,omitempty" doc:"Task tags"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type DeleteTaskOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore, coordinator Coordinator) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create a new task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		t := &domain.Task{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Assignee:    input.Body.Assignee,
			Priority:    domain.Priority(input.Body.Priority),
			Column:      domain.Column(input.Body.Column),
			Tags:        input.Body.Tags,
		}

		created, err := coordinator.CreateTask(ctx, t)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error400BadRequest(validationDetail(err))
			}
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List all tasks with worklogs",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *struct{}) (*ListTasksOutput, error) {
		tasks, err := store.Tasks().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		t, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Partially update a task",
		Description: "Only fields present in the request are modified. Ownership fields are never touched; use claim/unclaim/handoff for those.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		patch := domain.TaskPatch{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Assignee:    input.Body.Assignee,
			Tags:        input.Body.Tags,
		}
		if input.Body.Priority != nil {
			p := domain.Priority(*input.Body.Priority)
			patch.Priority = &p
		}
		if input.Body.Column != nil {
			c := domain.Column(*input.Body.Column)
			patch.Column = &c
		}

		t, err := coordinator.Update(ctx, input.ID, patch)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error400BadRequest(validationDetail(err))
			}
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		return &UpdateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task and its worklog",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*DeleteTaskOutput, error) {
		if err := coordinator.Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		out := &DeleteTaskOutput{}
		out.Body.OK = true
		return out, nil
	})
}

// validationDetail strips the sentinel suffix so clients see the field-level
// message, not the wrapped chain.
func validationDetail(err error) string {
	return err.Error()
}
