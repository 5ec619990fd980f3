package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/missiondeck/missiondeck/internal/api/v1"
	"github.com/missiondeck/missiondeck/internal/api/ws"
	"github.com/missiondeck/missiondeck/internal/auth"
	"github.com/missiondeck/missiondeck/internal/coord"
	"github.com/missiondeck/missiondeck/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, coordinator *coord.Service, hub *ws.Hub) {
	v1.RegisterTaskRoutes(api, store, coordinator)
	v1.RegisterCoordinationRoutes(api, coordinator)
	v1.RegisterAgentRoutes(api, store)
	v1.RegisterBoardRoutes(api, store)
	v1.RegisterMessageRoutes(api, store, hub)
	v1.RegisterFeedRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/feed", hub.ServeFeed)
	r.Get("/chat", hub.ServeChat)
}
