package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/slackdone/internal/api/v1"
	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/config"
)

func registerAPIRoutes(api huma.API, cfg *config.Config, deps Deps, events v1.EventPublisher) {
	v1.RegisterWorkspaceRoutes(api, deps.Store, cfg.Slack.Configured())
	v1.RegisterBoardRoutes(api, deps.Store, deps.Boards, events)
	v1.RegisterAuthRoutes(api, deps.Installer, cfg.Server.BaseURL)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board/{workspaceID}/{listID}", hub.ServeBoard)
}
