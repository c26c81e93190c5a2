package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/slackdone/internal/api/v1"
	"github.com/gosuda/slackdone/internal/auth"
	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/config"
	"github.com/gosuda/slackdone/internal/secrets"
	"github.com/gosuda/slackdone/internal/slacklists"
	"github.com/gosuda/slackdone/internal/store/file"
	"github.com/gosuda/slackdone/internal/store/postgres"
	redisstore "github.com/gosuda/slackdone/internal/store/redis"
)

// callbackPath is where Slack sends the user back after install, relative to
// the public base URL.
const callbackPath = "/api/v1/auth/callback"

type dataStore interface {
	v1.DataStore
	Close() error
}

// app holds the components shared by all commands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  dataStore
	lists  *slacklists.Client
	redis  *goredis.Client // nil when SLACKDONE_REDIS_ADDR is unset
	boards *board.Service
}

// loadConfig reads the environment and installs the global logger.
func loadConfig(out io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg.Log, out)
	log.Logger = logger
	return cfg, logger, nil
}

func newLogger(c config.LogConfig, out io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(c.Level)
	if c.Format == config.LogFormatText {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// openApp connects the store, the Slack client and, when configured, Redis.
// Callers must call close.
func openApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, logger, err := loadConfig(logOut)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		lists: slacklists.New(
			slacklists.WithAPIURL(cfg.Slack.APIURL),
			slacklists.WithRateLimit(cfg.Slack.RPS, cfg.Slack.Burst),
		),
	}

	var users board.UserResolver = a.lists
	if cfg.Redis.Addr != "" {
		a.redis, err = redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		users = redisstore.NewProfileCache(a.redis, a.lists, cfg.Redis.UserCacheTTL, logger)
	}

	a.boards = board.NewService(a.lists, users, logger)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing store")
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dataStore, error) {
	vault, err := secrets.NewVaultFromSecret(cfg.Secrets.EncryptionKey)
	if err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Database.MaxConns > math.MaxInt32 {
			return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), vault) //nolint:gosec // bounds checked above
	default:
		logger.Debug().Str("dir", cfg.Store.DataDir).Msg("using file store")
		return file.Open(cfg.Store.DataDir, vault)
	}
}

// migrate brings the postgres schema up to date. The file store has no
// schema and reports version 0.
func (a *app) migrate(ctx context.Context) (int64, error) {
	pg, ok := a.store.(*postgres.Store)
	if !ok {
		return 0, nil
	}
	if err := postgres.Migrate(ctx, pg.Pool(), a.logger); err != nil {
		return 0, err
	}
	return postgres.MigrationVersion(ctx, pg.Pool())
}

// installer returns nil when Slack OAuth is not configured.
func (a *app) installer() v1.Installer {
	if !a.cfg.Slack.Configured() {
		return nil
	}

	inst := auth.NewInstaller(auth.InstallerConfig{
		ClientID:     a.cfg.Slack.ClientID,
		ClientSecret: a.cfg.Slack.ClientSecret,
		RedirectURL:  strings.TrimSuffix(a.cfg.Server.BaseURL, "/") + callbackPath,
		BotScopes:    a.cfg.Slack.BotScopes,
		UserScopes:   a.cfg.Slack.UserScopes,
		APIURL:       a.cfg.Slack.APIURL,
	})
	states := auth.NewStateSigner(a.cfg.Secrets.StateSecret, a.cfg.Secrets.StateTTL)
	return auth.NewService(inst, states, a.lists, a.store.Workspaces(), a.logger)
}
