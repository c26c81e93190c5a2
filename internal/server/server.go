package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	v1 "github.com/gosuda/slackdone/internal/api/v1"
	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/config"
	"github.com/gosuda/slackdone/internal/server/middleware"
)

// Deps are the components the HTTP surface is built from. Installer is nil
// when Slack OAuth is not configured and Hub is nil when no Redis is
// configured.
type Deps struct {
	Store     v1.DataStore
	Boards    *board.Service
	Installer v1.Installer
	Hub       *ws.Hub
	Logger    zerolog.Logger
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates a Server with all routes wired. ctx bounds background work
// owned by the middleware.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	if cfg.Server.TrustProxy {
		router.Use(chimw.RealIP)
	}
	router.Use(middleware.Logging(deps.Logger))
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		logger: deps.Logger,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// A nil *ws.Hub must not become a non-nil EventPublisher.
	var events v1.EventPublisher
	if deps.Hub != nil {
		events = deps.Hub
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, middleware.ClientIP))

		apiConfig := huma.DefaultConfig("slackdone API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, cfg, deps, events)
	})

	// WebSocket routes exist only when board events have a broker.
	if deps.Hub != nil {
		router.Route("/ws", func(r chi.Router) {
			registerWSRoutes(r, deps.Hub)
		})
	}

	// Health check.
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Serve the web client on all unmatched routes. This must be the last
	// route registered so API and WS routes take priority.
	if cfg.Server.StaticDir != "" {
		router.NotFound(spaFileServer(os.DirFS(cfg.Server.StaticDir)).ServeHTTP)
		deps.Logger.Info().Str("dir", cfg.Server.StaticDir).Msg("serving web client")
	}

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
