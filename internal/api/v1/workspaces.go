package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/slackdone/internal/domain"
)

// WorkspaceSummary is a connected workspace without its tokens.
type WorkspaceSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListWorkspacesOutput struct {
	Body struct {
		Configured bool               `json:"configured" doc:"Whether Slack OAuth credentials are set"`
		Workspaces []WorkspaceSummary `json:"workspaces"`
	}
}

type WorkspaceInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
}

type SavedListBody struct {
	ListID      string    `json:"list_id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title"`
	AddedAt     time.Time `json:"added_at"`
}

type ListSavedListsOutput struct {
	Body struct {
		Lists []SavedListBody `json:"lists"`
	}
}

type AddSavedListInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	Body        struct {
		ListID string `json:"list_id" minLength:"1" maxLength:"64" doc:"Slack list ID"`
		Title  string `json:"title,omitempty" maxLength:"255" doc:"Display title; defaults to the list ID"`
	}
}

type AddSavedListOutput struct {
	Body SavedListBody
}

type RemoveSavedListInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
}

func toSavedListBody(l *domain.SavedList) SavedListBody {
	return SavedListBody{ListID: l.ListID, WorkspaceID: l.WorkspaceID, Title: l.Title, AddedAt: l.AddedAt}
}

// RegisterWorkspaceRoutes mounts workspace and saved list endpoints.
// configured reports whether the Slack app credentials are present; without
// them no workspace can be connected and the list is reported empty.
func RegisterWorkspaceRoutes(api huma.API, store DataStore, configured bool) {
	huma.Register(api, huma.Operation{
		OperationID: "list-workspaces",
		Method:      http.MethodGet,
		Path:        "/workspaces",
		Summary:     "List connected workspaces",
		Tags:        []string{"Workspaces"},
	}, func(ctx context.Context, _ *struct{}) (*ListWorkspacesOutput, error) {
		out := &ListWorkspacesOutput{}
		out.Body.Configured = configured
		out.Body.Workspaces = make([]WorkspaceSummary, 0)
		if !configured {
			return out, nil
		}

		workspaces, err := store.Workspaces().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list workspaces", err)
		}
		for _, w := range workspaces {
			out.Body.Workspaces = append(out.Body.Workspaces, WorkspaceSummary{ID: w.ID, Name: w.Name})
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-workspace",
		Method:      http.MethodDelete,
		Path:        "/workspaces/{workspaceID}",
		Summary:     "Disconnect a workspace and forget its saved lists",
		Tags:        []string{"Workspaces"},
	}, func(ctx context.Context, input *WorkspaceInput) (*struct{}, error) {
		if err := store.Workspaces().Delete(ctx, input.WorkspaceID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("workspace not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete workspace", err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-saved-lists",
		Method:      http.MethodGet,
		Path:        "/workspaces/{workspaceID}/lists",
		Summary:     "List saved lists of a workspace",
		Tags:        []string{"Saved lists"},
	}, func(ctx context.Context, input *WorkspaceInput) (*ListSavedListsOutput, error) {
		if _, err := lookupWorkspace(ctx, store, input.WorkspaceID); err != nil {
			return nil, err
		}

		lists, err := store.SavedLists().ListByWorkspace(ctx, input.WorkspaceID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list saved lists", err)
		}

		out := &ListSavedListsOutput{}
		out.Body.Lists = make([]SavedListBody, 0, len(lists))
		for _, l := range lists {
			out.Body.Lists = append(out.Body.Lists, toSavedListBody(l))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-saved-list",
		Method:        http.MethodPost,
		Path:          "/workspaces/{workspaceID}/lists",
		Summary:       "Save a list reference",
		Tags:          []string{"Saved lists"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddSavedListInput) (*AddSavedListOutput, error) {
		listID := strings.TrimSpace(input.Body.ListID)
		if listID == "" {
			return nil, huma.Error400BadRequest("list_id is required")
		}
		title := strings.TrimSpace(input.Body.Title)
		if title == "" {
			title = listID
		}

		l := &domain.SavedList{
			ListID:      listID,
			WorkspaceID: input.WorkspaceID,
			Title:       title,
			AddedAt:     time.Now().UTC(),
		}
		if err := store.SavedLists().Add(ctx, l); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("workspace not found")
			}
			return nil, huma.Error500InternalServerError("failed to save list", err)
		}
		return &AddSavedListOutput{Body: toSavedListBody(l)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-saved-list",
		Method:      http.MethodDelete,
		Path:        "/workspaces/{workspaceID}/lists/{listID}",
		Summary:     "Forget a saved list",
		Tags:        []string{"Saved lists"},
	}, func(ctx context.Context, input *RemoveSavedListInput) (*struct{}, error) {
		if err := store.SavedLists().Remove(ctx, input.WorkspaceID, input.ListID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("saved list not found")
			}
			return nil, huma.Error500InternalServerError("failed to remove saved list", err)
		}
		return nil, nil
	})
}
