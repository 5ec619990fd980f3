package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type BoardColumns struct {
	Backlog    []*domain.Task `json:"backlog"`
	Todo       []*domain.Task `json:"todo"`
	InProgress []*domain.Task `json:"in-progress"`
	Review     []*domain.Task `json:"review"`
	Done       []*domain.Task `json:"done"`
}

type GetBoardOutput struct {
	Body *BoardColumns
}

func RegisterBoardRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Get the kanban board grouped by column",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, _ *struct{}) (*GetBoardOutput, error) {
		tasks, err := store.Tasks().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks for board", err)
		}

		board := &BoardColumns{
			Backlog:    make([]*domain.Task, 0),
			Todo:       make([]*domain.Task, 0),
			InProgress: make([]*domain.Task, 0),
			Review:     make([]*domain.Task, 0),
			Done:       make([]*domain.Task, 0),
		}

		for _, t := range tasks {
			switch t.Column {
			case domain.ColumnBacklog:
				board.Backlog = append(board.Backlog, t)
			case domain.ColumnTodo:
				board.Todo = append(board.Todo, t)
			case domain.ColumnInProgress:
				board.InProgress = append(board.InProgress, t)
			case domain.ColumnReview:
				board.Review = append(board.Review, t)
			case domain.ColumnDone:
				board.Done = append(board.Done, t)
			}
		}

		return &GetBoardOutput{Body: board}, nil
	})
}
