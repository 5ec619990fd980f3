package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/missiondeck/missiondeck/internal/domain"
)

type ListFeedInput struct {
	Since string `query:"since" doc:"RFC3339 polling cursor; only newer updates are returned"`
	Limit int    `query:"limit" minimum:"1" maximum:"100" default:"50" doc:"Max results"`
}

type ListFeedOutput struct {
	Body []*domain.StatusUpdate
}

func RegisterFeedRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-feed",
		Method:      http.MethodGet,
		Path:        "/feed",
		Summary:     "List status feed updates, newest first",
		Tags:        []string{"Feed"},
	}, func(ctx context.Context, input *ListFeedInput) (*ListFeedOutput, error) {
		var since time.Time
		if input.Since != "" {
			parsed, err := time.Parse(time.RFC3339, input.Since)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid since timestamp: " + input.Since)
			}
			since = parsed
		}

		updates, err := store.StatusFeed().List(ctx, since, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list feed", err)
		}
		if updates == nil {
			updates = []*domain.StatusUpdate{}
		}

		return &ListFeedOutput{Body: updates}, nil
	})
}
