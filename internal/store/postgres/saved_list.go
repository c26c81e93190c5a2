package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/slackdone/internal/domain"
)

type SavedListRepo struct {
	pool *pgxpool.Pool
}

func NewSavedListRepo(pool *pgxpool.Pool) *SavedListRepo {
	return &SavedListRepo{pool: pool}
}

func (r *SavedListRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.SavedList, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT list_id, workspace_id, title, added_at
		 FROM saved_lists WHERE workspace_id = $1 ORDER BY added_at, list_id`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("savedListRepo.ListByWorkspace: %w", err)
	}
	defer rows.Close()

	var out []*domain.SavedList
	for rows.Next() {
		var l domain.SavedList
		if err := rows.Scan(&l.ListID, &l.WorkspaceID, &l.Title, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("savedListRepo.ListByWorkspace: scan: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("savedListRepo.ListByWorkspace: %w", err)
	}

	return out, nil
}

// Add saves the list or refreshes its title. A missing workspace surfaces as
// domain.ErrNotFound through the foreign key.
func (r *SavedListRepo) Add(ctx context.Context, l *domain.SavedList) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO saved_lists (workspace_id, list_id, title, added_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (workspace_id, list_id) DO UPDATE SET title = EXCLUDED.title`,
		l.WorkspaceID, l.ListID, l.Title, l.AddedAt,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("savedListRepo.Add: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("savedListRepo.Add: %w", err)
	}

	return nil
}

func (r *SavedListRepo) Remove(ctx context.Context, workspaceID, listID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM saved_lists WHERE workspace_id = $1 AND list_id = $2`,
		workspaceID, listID,
	)
	if err != nil {
		return fmt.Errorf("savedListRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("savedListRepo.Remove: %w", domain.ErrNotFound)
	}

	return nil
}
