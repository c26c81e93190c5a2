package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/slackdone/internal/domain"
)

// Cipher seals tokens before they are written. *secrets.Vault satisfies it.
type Cipher interface {
	Encrypt(plaintext, scope string) (string, error)
	Decrypt(ciphertext, scope string) (string, error)
}

type Store struct {
	pool       *pgxpool.Pool
	workspaces *WorkspaceRepo
	savedLists *SavedListRepo
}

func New(ctx context.Context, dsn string, maxConns int32, cipher Cipher) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:       pool,
		workspaces: NewWorkspaceRepo(pool, cipher),
		savedLists: NewSavedListRepo(pool),
	}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Pool exposes the connection pool for migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Workspaces() domain.WorkspaceRepository { return s.workspaces }
func (s *Store) SavedLists() domain.SavedListRepository { return s.savedLists }
