package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/missiondeck/missiondeck/internal/api/v1"
	"github.com/missiondeck/missiondeck/internal/domain"
)

func TestGetBoard(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("groups_by_column", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listFunc: func(_ context.Context) ([]*domain.Task, error) {
					return []*domain.Task{
						{ID: uuid.New(), Title: "Backlog A", Column: domain.ColumnBacklog, CreatedAt: now, UpdatedAt: now},
						{ID: uuid.New(), Title: "Backlog B", Column: domain.ColumnBacklog, CreatedAt: now, UpdatedAt: now},
						{ID: uuid.New(), Title: "Doing", Column: domain.ColumnInProgress, ClaimedBy: "nova", CreatedAt: now, UpdatedAt: now},
						{ID: uuid.New(), Title: "Shipped", Column: domain.ColumnDone, CreatedAt: now, UpdatedAt: now},
					}, nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.Get("/board")

		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.BoardColumns
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Backlog, 2)
		assert.Empty(t, body.Todo)
		require.Len(t, body.InProgress, 1)
		assert.Equal(t, "nova", body.InProgress[0].ClaimedBy)
		assert.Empty(t, body.Review)
		assert.Len(t, body.Done, 1)
	})

	t.Run("empty_board", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listFunc: func(_ context.Context) ([]*domain.Task, error) {
					return nil, nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.Get("/board")

		require.Equal(t, http.StatusOK, resp.Code)

		// Columns serialize as empty arrays, not null.
		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		for _, key := range []string{"backlog", "todo", "in-progress", "review", "done"} {
			assert.JSONEq(t, "[]", string(raw[key]), "column %q must be an empty array", key)
		}
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tasks: &mockTaskRepo{
				listFunc: func(_ context.Context) ([]*domain.Task, error) {
					return nil, errors.New("db timeout")
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.Get("/board")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
