package v1

import (
	"context"

	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store and *file.Store satisfy this interface.
type DataStore interface {
	Workspaces() domain.WorkspaceRepository
	SavedLists() domain.SavedListRepository
}

// Installer abstracts the Slack OAuth install flow for handler testing.
// *auth.Service satisfies this interface.
type Installer interface {
	InstallURL() (string, error)
	CompleteInstall(ctx context.Context, code, state string) (*domain.Workspace, error)
}

// EventPublisher announces board changes to live clients.
// *ws.Hub satisfies this interface.
type EventPublisher interface {
	PublishBoard(ctx context.Context, ev ws.BoardEvent) error
}
