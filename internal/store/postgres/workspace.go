package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/slackdone/internal/domain"
)

// WorkspaceRepo implements domain.WorkspaceRepository. Tokens are sealed with
// the workspace id as scope.
type WorkspaceRepo struct {
	pool   *pgxpool.Pool
	cipher Cipher
}

func NewWorkspaceRepo(pool *pgxpool.Pool, cipher Cipher) *WorkspaceRepo {
	return &WorkspaceRepo{pool: pool, cipher: cipher}
}

func (r *WorkspaceRepo) Upsert(ctx context.Context, w *domain.Workspace) error {
	bot, err := r.cipher.Encrypt(w.BotToken, w.ID)
	if err != nil {
		return fmt.Errorf("workspaceRepo.Upsert: %w", err)
	}
	user, err := r.cipher.Encrypt(w.UserToken, w.ID)
	if err != nil {
		return fmt.Errorf("workspaceRepo.Upsert: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO workspaces (id, name, bot_token, user_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, bot_token = EXCLUDED.bot_token,
		     user_token = EXCLUDED.user_token, updated_at = EXCLUDED.updated_at`,
		w.ID, w.Name, bot, user, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("workspaceRepo.Upsert: %w", err)
	}

	return nil
}

func (r *WorkspaceRepo) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var w domain.Workspace

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, bot_token, user_token, created_at, updated_at
		 FROM workspaces WHERE id = $1`,
		id,
	).Scan(&w.ID, &w.Name, &w.BotToken, &w.UserToken, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workspaceRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("workspaceRepo.GetByID: %w", err)
	}

	if err := r.open(&w); err != nil {
		return nil, fmt.Errorf("workspaceRepo.GetByID: %w", err)
	}
	return &w, nil
}

func (r *WorkspaceRepo) List(ctx context.Context) ([]*domain.Workspace, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, bot_token, user_token, created_at, updated_at
		 FROM workspaces ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("workspaceRepo.List: %w", err)
	}
	defer rows.Close()

	var out []*domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.BotToken, &w.UserToken, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("workspaceRepo.List: scan: %w", err)
		}
		if err := r.open(&w); err != nil {
			return nil, fmt.Errorf("workspaceRepo.List: %w", err)
		}
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workspaceRepo.List: %w", err)
	}

	return out, nil
}

func (r *WorkspaceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("workspaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workspaceRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *WorkspaceRepo) open(w *domain.Workspace) error {
	bot, err := r.cipher.Decrypt(w.BotToken, w.ID)
	if err != nil {
		return fmt.Errorf("decrypt bot token: %w", err)
	}
	user, err := r.cipher.Decrypt(w.UserToken, w.ID)
	if err != nil {
		return fmt.Errorf("decrypt user token: %w", err)
	}
	w.BotToken, w.UserToken = bot, user
	return nil
}
