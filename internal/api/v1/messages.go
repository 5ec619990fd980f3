package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/missiondeck/missiondeck/internal/domain"
	"github.com/missiondeck/missiondeck/internal/server/middleware"
	redisstore "github.com/missiondeck/missiondeck/internal/store/redis"
)

type ListMessagesInput struct {
	Channel string `query:"channel" doc:"Restrict to one chat channel"`
	After   string `query:"after" doc:"RFC3339 polling cursor; only newer messages are returned"`
	Limit   int    `query:"limit" minimum:"1" maximum:"100" default:"50" doc:"Max results"`
}

type ListMessagesOutput struct {
	Body struct {
		Messages []*domain.ChatMessage `json:"messages"`
	}
}

type PostMessageInput struct {
	Body struct {
		Content string `json:"content" minLength:"1" maxLength:"4000" doc:"Message text"`
		Channel string `json:"channel,omitempty" maxLength:"100" doc:"Chat channel (default general)"`
		TaskRef string `json:"task_ref,omitempty" doc:"Optional referenced task UUID"`
	}
}

type PostMessageOutput struct {
	Body *domain.ChatMessage
}

type ClearMessagesOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func RegisterMessageRoutes(api huma.API, store DataStore, pusher Pusher) {
	huma.Register(api, huma.Operation{
		OperationID: "list-messages",
		Method:      http.MethodGet,
		Path:        "/messages",
		Summary:     "List chat messages in chronological order",
		Tags:        []string{"Chat"},
	}, func(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
		var after time.Time
		if input.After != "" {
			parsed, err := time.Parse(time.RFC3339, input.After)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid after timestamp: " + input.After)
			}
			after = parsed
		}

		msgs, err := store.Messages().List(ctx, input.Channel, after, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list messages", err)
		}
		if msgs == nil {
			msgs = []*domain.ChatMessage{}
		}

		out := &ListMessagesOutput{}
		out.Body.Messages = msgs
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "post-message",
		Method:        http.MethodPost,
		Path:          "/messages",
		Summary:       "Send a chat message as the acting agent",
		Tags:          []string{"Chat"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *PostMessageInput) (*PostMessageOutput, error) {
		agentID, ok := middleware.AgentIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing agent context")
		}

		content := strings.TrimSpace(input.Body.Content)
		if content == "" {
			return nil, huma.Error400BadRequest("message content is required")
		}

		channel := input.Body.Channel
		if channel == "" {
			channel = "general"
		}

		var taskRef *uuid.UUID
		if input.Body.TaskRef != "" {
			parsed, err := uuid.Parse(input.Body.TaskRef)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid task ref: " + input.Body.TaskRef)
			}
			taskRef = &parsed
		}

		senderName := agentID
		if agent, err := store.Agents().GetByID(ctx, agentID); err == nil {
			senderName = agent.Name
		}

		msg := &domain.ChatMessage{
			ID:         uuid.New(),
			SenderID:   agentID,
			SenderName: senderName,
			Content:    content,
			Channel:    channel,
			Type:       domain.MessageTypeMessage,
			TaskRef:    taskRef,
			CreatedAt:  time.Now(),
		}

		if err := store.Messages().Create(ctx, msg); err != nil {
			return nil, huma.Error500InternalServerError("failed to send message", err)
		}

		// Push is best-effort; pollers catch up regardless.
		if pusher != nil {
			if payload, err := json.Marshal(msg); err == nil {
				if err := pusher.Publish(ctx, redisstore.ChatChannel(), payload); err != nil {
					log.Warn().Err(err).Msg("chat: push failed")
				}
			}
		}

		return &PostMessageOutput{Body: msg}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-messages",
		Method:      http.MethodDelete,
		Path:        "/messages",
		Summary:     "Clear the chat history (admin only)",
		Tags:        []string{"Chat"},
	}, func(ctx context.Context, _ *struct{}) (*ClearMessagesOutput, error) {
		role, _ := middleware.RoleFromContext(ctx)
		if role != middleware.RoleAdmin {
			return nil, huma.Error403Forbidden("only admins can clear chat")
		}

		if err := store.Messages().Clear(ctx); err != nil {
			return nil, huma.Error500InternalServerError("failed to clear messages", err)
		}

		out := &ClearMessagesOutput{}
		out.Body.OK = true
		return out, nil
	})
}
