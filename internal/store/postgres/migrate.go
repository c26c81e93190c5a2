package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const pgForeignKeyViolation = "23503"

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetLogger(gooseLogger{logger})
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres.Migrate: set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("postgres.Migrate: %w", err)
	}

	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("postgres.MigrationVersion: %w", err)
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("postgres.MigrationVersion: %w", err)
	}
	return v, nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	l zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Info().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Fatal().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
