package domain

import (
	"context"
	"time"
)

// Workspace is a connected Slack team and the OAuth tokens granted for it.
type Workspace struct {
	ID        string // Slack team id
	Name      string
	BotToken  string // plaintext in memory, encrypted at rest
	UserToken string // optional; granted when the installing user approves user scopes
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadToken returns the token used for Lists API calls. The user token is
// preferred because it can read lists the bot was never invited to.
func (w *Workspace) ReadToken() string {
	if w.UserToken != "" {
		return w.UserToken
	}
	return w.BotToken
}

type WorkspaceRepository interface {
	// Upsert creates the workspace or replaces its name and tokens.
	Upsert(ctx context.Context, w *Workspace) error
	GetByID(ctx context.Context, id string) (*Workspace, error)
	List(ctx context.Context) ([]*Workspace, error)
	// Delete removes the workspace and all of its saved lists.
	Delete(ctx context.Context, id string) error
}
