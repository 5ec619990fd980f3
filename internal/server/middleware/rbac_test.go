package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/missiondeck/missiondeck/internal/server/middleware"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	ctx := context.WithValue(req.Context(), middleware.ContextKeyAgentID, "nova")
	ctx = context.WithValue(ctx, middleware.ContextKeyAgentRole, role)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	t.Run("allowed_role_passes", func(t *testing.T) {
		t.Parallel()

		var called bool
		handler := middleware.RequireRole("admin", "devops")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithRole("devops"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("wrong_role_forbidden", func(t *testing.T) {
		t.Parallel()

		handler := middleware.RequireAdmin()(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("handler must not run for a non-admin")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithRole("general"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no_identity_unauthorized", func(t *testing.T) {
		t.Parallel()

		handler := middleware.RequireAdmin()(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("handler must not run")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
