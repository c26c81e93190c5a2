package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/server"
	redisstore "github.com/gosuda/slackdone/internal/store/redis"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and board event stream",
		Long: `Run the HTTP API under /api/v1, the WebSocket board stream under /ws
(when SLACKDONE_REDIS_ADDR is set) and, with SLACKDONE_STATIC_DIR, the web
client. Pending postgres migrations are applied on start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.migrate(ctx); err != nil {
		return err
	}

	deps := server.Deps{
		Store:     a.store,
		Boards:    a.boards,
		Installer: a.installer(),
		Logger:    a.logger,
	}
	if a.redis != nil {
		deps.Hub = ws.NewHub(redisstore.NewPubSub(a.redis), a.cfg.Server.CORSOrigins, a.logger)
	} else {
		a.logger.Info().Msg("SLACKDONE_REDIS_ADDR not set; board events disabled")
	}
	if deps.Installer == nil {
		a.logger.Info().Msg("Slack OAuth not configured; install flow disabled")
	}

	srv := server.New(ctx, a.cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info().Msg("stopped")
	return nil
}
