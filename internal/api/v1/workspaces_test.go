package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/slackdone/internal/api/v1"
	"github.com/gosuda/slackdone/internal/domain"
)

// ---------------------------------------------------------------------------
// GET /workspaces
// ---------------------------------------------------------------------------

func TestListWorkspaces(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_hides_tokens", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			workspaces: &mockWorkspaceRepo{
				listFunc: func(context.Context) ([]*domain.Workspace, error) {
					return []*domain.Workspace{
						{ID: "T1", Name: "Acme", BotToken: "xoxb-secret", UserToken: "xoxp-secret"},
						{ID: "T2", Name: "Globex", BotToken: "xoxb-other"},
					}, nil
				},
			},
		}
		v1.RegisterWorkspaceRoutes(api, store, true)

		resp := api.Get("/workspaces")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.NotContains(t, resp.Body.String(), "secret")

		var body struct {
			Configured bool                  `json:"configured"`
			Workspaces []v1.WorkspaceSummary `json:"workspaces"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Configured)
		assert.Equal(t, []v1.WorkspaceSummary{{ID: "T1", Name: "Acme"}, {ID: "T2", Name: "Globex"}}, body.Workspaces)
	})

	t.Run("not_configured_skips_store", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterWorkspaceRoutes(api, &mockDataStore{workspaces: &mockWorkspaceRepo{}}, false)

		resp := api.Get("/workspaces")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"configured":false,"workspaces":[]}`, resp.Body.String())
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			workspaces: &mockWorkspaceRepo{
				listFunc: func(context.Context) ([]*domain.Workspace, error) {
					return nil, errors.New("pg: connection refused")
				},
			},
		}
		v1.RegisterWorkspaceRoutes(api, store, true)

		resp := api.Get("/workspaces")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /workspaces/{workspaceID}
// ---------------------------------------------------------------------------

func TestDeleteWorkspace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "happy_path", err: nil, wantCode: http.StatusNoContent},
		{name: "not_found", err: domain.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "store_error", err: errors.New("disk full"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var deleted string
			_, api := humatest.New(t)
			store := &mockDataStore{
				workspaces: &mockWorkspaceRepo{
					deleteFunc: func(_ context.Context, id string) error {
						deleted = id
						return tt.err
					},
				},
			}
			v1.RegisterWorkspaceRoutes(api, store, true)

			resp := api.Delete("/workspaces/T1")
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, "T1", deleted)
		})
	}
}

// ---------------------------------------------------------------------------
// Saved lists
// ---------------------------------------------------------------------------

func TestListSavedLists(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			workspaces: knownWorkspace(),
			savedLists: &mockSavedListRepo{
				listByWorkspaceFunc: func(_ context.Context, workspaceID string) ([]*domain.SavedList, error) {
					assert.Equal(t, "T1", workspaceID)
					return []*domain.SavedList{{ListID: "L1", WorkspaceID: "T1", Title: "Sprint", AddedAt: fixedTime}}, nil
				},
			},
		}
		v1.RegisterWorkspaceRoutes(api, store, true)

		resp := api.Get("/workspaces/T1/lists")
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Lists []v1.SavedListBody `json:"lists"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Len(t, body.Lists, 1)
		assert.Equal(t, v1.SavedListBody{ListID: "L1", WorkspaceID: "T1", Title: "Sprint", AddedAt: fixedTime}, body.Lists[0])
	})

	t.Run("empty_is_array", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			workspaces: knownWorkspace(),
			savedLists: &mockSavedListRepo{
				listByWorkspaceFunc: func(context.Context, string) ([]*domain.SavedList, error) { return nil, nil },
			},
		}
		v1.RegisterWorkspaceRoutes(api, store, true)

		resp := api.Get("/workspaces/T1/lists")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"lists":[]}`, resp.Body.String())
	})

	t.Run("unknown_workspace", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterWorkspaceRoutes(api, &mockDataStore{workspaces: knownWorkspace()}, true)

		resp := api.Get("/workspaces/T404/lists")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestAddSavedList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      map[string]any
		addErr    error
		wantCode  int
		wantTitle string
	}{
		{name: "title_given", body: map[string]any{"list_id": "L1", "title": "Sprint"}, wantCode: http.StatusCreated, wantTitle: "Sprint"},
		{name: "title_defaults_to_list_id", body: map[string]any{"list_id": "L1"}, wantCode: http.StatusCreated, wantTitle: "L1"},
		{name: "blank_title_defaults_to_list_id", body: map[string]any{"list_id": "L1", "title": "  "}, wantCode: http.StatusCreated, wantTitle: "L1"},
		{name: "missing_list_id", body: map[string]any{"title": "x"}, wantCode: http.StatusUnprocessableEntity},
		{name: "blank_list_id", body: map[string]any{"list_id": " "}, wantCode: http.StatusBadRequest},
		{name: "unknown_workspace", body: map[string]any{"list_id": "L1"}, addErr: domain.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "store_error", body: map[string]any{"list_id": "L1"}, addErr: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var added *domain.SavedList
			_, api := humatest.New(t)
			store := &mockDataStore{
				savedLists: &mockSavedListRepo{
					addFunc: func(_ context.Context, l *domain.SavedList) error {
						added = l
						return tt.addErr
					},
				},
			}
			v1.RegisterWorkspaceRoutes(api, store, true)

			resp := api.Post("/workspaces/T1/lists", tt.body)
			require.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			if tt.wantCode != http.StatusCreated {
				return
			}

			require.NotNil(t, added)
			assert.Equal(t, "T1", added.WorkspaceID)
			assert.Equal(t, tt.wantTitle, added.Title)
			assert.False(t, added.AddedAt.IsZero())

			var body v1.SavedListBody
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, "L1", body.ListID)
			assert.Equal(t, tt.wantTitle, body.Title)
		})
	}
}

func TestRemoveSavedList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "happy_path", wantCode: http.StatusNoContent},
		{name: "not_found", err: domain.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "store_error", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			store := &mockDataStore{
				savedLists: &mockSavedListRepo{
					removeFunc: func(_ context.Context, workspaceID, listID string) error {
						assert.Equal(t, "T1", workspaceID)
						assert.Equal(t, "L1", listID)
						return tt.err
					},
				},
			}
			v1.RegisterWorkspaceRoutes(api, store, true)

			resp := api.Delete("/workspaces/T1/lists/L1")
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
