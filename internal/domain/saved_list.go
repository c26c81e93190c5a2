package domain

import (
	"context"
	"time"
)

// SavedList is a user-curated shortcut to a Slack list within a workspace.
type SavedList struct {
	ListID      string
	WorkspaceID string
	Title       string
	AddedAt     time.Time
}

type SavedListRepository interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*SavedList, error)
	// Add inserts the list, or refreshes its title when it is already saved.
	Add(ctx context.Context, l *SavedList) error
	Remove(ctx context.Context, workspaceID, listID string) error
}
