package middleware

import "context"

type contextKey string

const (
	ContextKeyAgentID   contextKey = "agent_id"
	ContextKeyAgentRole contextKey = "role"
)

func AgentIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyAgentID).(string)
	return v, ok && v != ""
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyAgentRole).(string)
	return v, ok
}
