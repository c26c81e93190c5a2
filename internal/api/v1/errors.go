package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/domain"
	"github.com/gosuda/slackdone/internal/slacklists"
)

// boardError maps a failure of a board read or write to a problem response.
// Anything not recognized is treated as an upstream Slack failure.
func boardError(msg string, err error) error {
	var apiErr *slacklists.APIError
	switch {
	case errors.Is(err, board.ErrItemNotFound), errors.Is(err, board.ErrColumnNotFound):
		return huma.Error404NotFound(msg, err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, board.ErrNoStatusColumn):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.Is(err, slacklists.ErrRateLimited):
		return huma.Error429TooManyRequests(msg, err)
	case errors.As(err, &apiErr) && apiErr.NotFound():
		return huma.Error404NotFound(msg, err)
	default:
		return huma.Error502BadGateway(msg, err)
	}
}

// lookupWorkspace loads a workspace or returns the matching problem response.
func lookupWorkspace(ctx context.Context, store DataStore, id string) (*domain.Workspace, error) {
	w, err := store.Workspaces().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("workspace not found")
		}
		return nil, huma.Error500InternalServerError("failed to look up workspace", err)
	}
	return w, nil
}
