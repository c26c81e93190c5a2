package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/domain"
)

type GetBoardInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
}

type BoardOutput struct {
	Body *board.Board
}

type CreateItemInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
	Body        struct {
		Title  string `json:"title" minLength:"1" maxLength:"1000" doc:"Item title"`
		Column string `json:"column,omitempty" doc:"Target column ID; defaults to No Status"`
	}
}

type MoveItemInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
	ItemID      string `path:"itemID" doc:"Item ID"`
	Body        struct {
		Column string `json:"column" minLength:"1" doc:"Target column ID"`
	}
}

type RenameItemInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
	ItemID      string `path:"itemID" doc:"Item ID"`
	Body        struct {
		Title string `json:"title" minLength:"1" maxLength:"1000" doc:"New title"`
	}
}

type EditFieldInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
	ItemID      string `path:"itemID" doc:"Item ID"`
	ColumnID    string `path:"columnID" doc:"Column ID of the field"`
	Body        struct {
		Value any `json:"value" doc:"Array of option IDs, string or number"`
	}
}

type ItemInput struct {
	WorkspaceID string `path:"workspaceID" doc:"Slack team ID"`
	ListID      string `path:"listID" doc:"Slack list ID"`
	ItemID      string `path:"itemID" doc:"Item ID"`
}

type RawItemOutput struct {
	Body map[string]any
}

type boardHandlers struct {
	store  DataStore
	svc    *board.Service
	events EventPublisher
}

// RegisterBoardRoutes mounts the board read and item write endpoints. events
// may be nil when no broker is configured.
func RegisterBoardRoutes(api huma.API, store DataStore, svc *board.Service, events EventPublisher) {
	h := &boardHandlers{store: store, svc: svc, events: events}
	const prefix = "/workspaces/{workspaceID}/lists/{listID}"

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        prefix + "/board",
		Summary:     "Get the Kanban board of a list",
		Tags:        []string{"Boards"},
	}, h.getBoard)

	huma.Register(api, huma.Operation{
		OperationID:   "create-item",
		Method:        http.MethodPost,
		Path:          prefix + "/items",
		Summary:       "Create an item in a column",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusCreated,
	}, h.createItem)

	huma.Register(api, huma.Operation{
		OperationID: "move-item",
		Method:      http.MethodPost,
		Path:        prefix + "/items/{itemID}/move",
		Summary:     "Move an item to another column",
		Tags:        []string{"Items"},
	}, h.moveItem)

	huma.Register(api, huma.Operation{
		OperationID: "rename-item",
		Method:      http.MethodPut,
		Path:        prefix + "/items/{itemID}/title",
		Summary:     "Rename an item",
		Tags:        []string{"Items"},
	}, h.renameItem)

	huma.Register(api, huma.Operation{
		OperationID: "edit-item-field",
		Method:      http.MethodPatch,
		Path:        prefix + "/items/{itemID}/fields/{columnID}",
		Summary:     "Set one field of an item",
		Tags:        []string{"Items"},
	}, h.editField)

	huma.Register(api, huma.Operation{
		OperationID: "delete-item",
		Method:      http.MethodDelete,
		Path:        prefix + "/items/{itemID}",
		Summary:     "Delete an item",
		Tags:        []string{"Items"},
	}, h.deleteItem)

	huma.Register(api, huma.Operation{
		OperationID: "get-raw-item",
		Method:      http.MethodGet,
		Path:        prefix + "/items/{itemID}/raw",
		Summary:     "Get the unprojected item info response",
		Tags:        []string{"Debug"},
	}, h.rawItem)
}

func (h *boardHandlers) getBoard(ctx context.Context, input *GetBoardInput) (*BoardOutput, error) {
	workspace, err := lookupWorkspace(ctx, h.store, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.Load(ctx, workspace.ReadToken(), input.ListID)
	if err != nil {
		return nil, boardError("failed to load board", err)
	}

	// A list that loads once is remembered for the picker.
	saved := &domain.SavedList{
		ListID:      input.ListID,
		WorkspaceID: workspace.ID,
		Title:       b.ListTitle,
		AddedAt:     time.Now().UTC(),
	}
	if err := h.store.SavedLists().Add(ctx, saved); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("list_id", input.ListID).Msg("v1: failed to save list")
	}

	return &BoardOutput{Body: b}, nil
}

func (h *boardHandlers) createItem(ctx context.Context, input *CreateItemInput) (*BoardOutput, error) {
	sess, err := h.session(ctx, input.WorkspaceID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := sess.Create(ctx, input.Body.Title, input.Body.Column); err != nil {
		return nil, boardError("failed to create item", err)
	}
	h.publish(ctx, ws.EventItemCreated, input.WorkspaceID, input.ListID, "")
	return &BoardOutput{Body: sess.Board()}, nil
}

func (h *boardHandlers) moveItem(ctx context.Context, input *MoveItemInput) (*BoardOutput, error) {
	sess, err := h.session(ctx, input.WorkspaceID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := sess.Move(ctx, input.ItemID, input.Body.Column); err != nil {
		return nil, boardError("failed to move item", err)
	}
	h.publish(ctx, ws.EventItemMoved, input.WorkspaceID, input.ListID, input.ItemID)
	return &BoardOutput{Body: sess.Board()}, nil
}

func (h *boardHandlers) renameItem(ctx context.Context, input *RenameItemInput) (*BoardOutput, error) {
	sess, err := h.session(ctx, input.WorkspaceID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := sess.Rename(ctx, input.ItemID, input.Body.Title); err != nil {
		return nil, boardError("failed to rename item", err)
	}
	h.publish(ctx, ws.EventItemRenamed, input.WorkspaceID, input.ListID, input.ItemID)
	return &BoardOutput{Body: sess.Board()}, nil
}

func (h *boardHandlers) editField(ctx context.Context, input *EditFieldInput) (*BoardOutput, error) {
	sess, err := h.session(ctx, input.WorkspaceID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := sess.EditField(ctx, input.ItemID, input.ColumnID, input.Body.Value); err != nil {
		return nil, boardError("failed to update field", err)
	}
	h.publish(ctx, ws.EventItemUpdated, input.WorkspaceID, input.ListID, input.ItemID)
	return &BoardOutput{Body: sess.Board()}, nil
}

func (h *boardHandlers) deleteItem(ctx context.Context, input *ItemInput) (*BoardOutput, error) {
	sess, err := h.session(ctx, input.WorkspaceID, input.ListID)
	if err != nil {
		return nil, err
	}
	if err := sess.Delete(ctx, input.ItemID); err != nil {
		return nil, boardError("failed to delete item", err)
	}
	h.publish(ctx, ws.EventItemDeleted, input.WorkspaceID, input.ListID, input.ItemID)
	return &BoardOutput{Body: sess.Board()}, nil
}

func (h *boardHandlers) rawItem(ctx context.Context, input *ItemInput) (*RawItemOutput, error) {
	workspace, err := lookupWorkspace(ctx, h.store, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	detail, err := h.svc.ItemDetail(ctx, workspace.ReadToken(), input.ListID, input.ItemID)
	if err != nil {
		return nil, boardError("failed to fetch item", err)
	}
	return &RawItemOutput{Body: detail}, nil
}

// session loads a fresh board for one request. Edits go through the same
// optimistic path the CLI uses, so the response carries the board as the
// session sees it after the edit.
func (h *boardHandlers) session(ctx context.Context, workspaceID, listID string) (*board.Session, error) {
	workspace, err := lookupWorkspace(ctx, h.store, workspaceID)
	if err != nil {
		return nil, err
	}

	sess := board.NewSession(h.svc, workspace.ReadToken(), listID, board.WithLogger(*zerolog.Ctx(ctx)))
	if _, err := sess.Refresh(ctx); err != nil {
		return nil, boardError("failed to load board", err)
	}
	return sess, nil
}

func (h *boardHandlers) publish(ctx context.Context, typ, workspaceID, listID, itemID string) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishBoard(ctx, ws.NewBoardEvent(typ, workspaceID, listID, itemID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("list_id", listID).Msg("v1: failed to publish board event")
	}
}
