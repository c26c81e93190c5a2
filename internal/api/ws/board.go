package ws

import (
	"time"

	"github.com/google/uuid"
)

// Board event types.
const (
	EventItemCreated = "item_created"
	EventItemMoved   = "item_moved"
	EventItemRenamed = "item_renamed"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
)

// BoardEvent tells subscribers that a list changed. It carries no board
// state; clients refetch the board when they receive one.
type BoardEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	WorkspaceID string    `json:"workspace_id"`
	ListID      string    `json:"list_id"`
	ItemID      string    `json:"item_id,omitempty"`
	At          time.Time `json:"at"`
}

// NewBoardEvent stamps an event with a fresh id and the current time.
func NewBoardEvent(typ, workspaceID, listID, itemID string) BoardEvent {
	return BoardEvent{
		ID:          uuid.New(),
		Type:        typ,
		WorkspaceID: workspaceID,
		ListID:      listID,
		ItemID:      itemID,
		At:          time.Now().UTC(),
	}
}
