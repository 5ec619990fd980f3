package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/missiondeck/missiondeck/internal/auth"
	"github.com/missiondeck/missiondeck/internal/domain"
)

type RegisterInput struct {
	Body struct {
		ID       string `json:"id" minLength:"1" maxLength:"64" doc:"Agent ID (login name)"`
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Role     string `json:"role,omitempty" maxLength:"32" doc:"Agent role (default general)"`
	}
}

type RegisterOutput struct {
	Body struct {
		Agent        *domain.Agent `json:"agent"`
		AccessToken  string        `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string        `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		ID       string `json:"id" minLength:"1" maxLength:"64" doc:"Agent ID"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new agent",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		role := domain.AgentRole(input.Body.Role)
		if role == "" {
			role = domain.AgentRoleGeneral
		}

		agent, err := authSvc.Register(ctx, input.Body.ID, input.Body.Name, input.Body.Password, role)
		if err != nil {
			if errors.Is(err, auth.ErrAgentAlreadyExists) {
				return nil, huma.Error409Conflict("agent already exists")
			}
			return nil, huma.Error500InternalServerError("failed to register agent", err)
		}

		access, refresh, err := authSvc.Login(ctx, input.Body.ID, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to issue tokens", err)
		}

		out := &RegisterOutput{}
		out.Body.Agent = agent
		out.Body.AccessToken = access
		out.Body.RefreshToken = refresh
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in as an agent",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		access, refresh, err := authSvc.Login(ctx, input.Body.ID, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid credentials")
			}
			return nil, huma.Error500InternalServerError("failed to log in", err)
		}

		out := &LoginOutput{}
		out.Body.AccessToken = access
		out.Body.RefreshToken = refresh
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Exchange a refresh token for a new access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		access, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = access
		return out, nil
	})
}
