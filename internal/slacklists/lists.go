package slacklists

import (
	"context"
	"fmt"

	"github.com/gosuda/slackdone/internal/board"
)

var _ board.ListAPI = (*Client)(nil) //nolint:gochecknoglobals // compile-time check

// FetchItems lists every item of listID, following response cursors. The
// returned map is the first page with "items" replaced by all pages combined.
func (c *Client) FetchItems(ctx context.Context, token, listID string) (map[string]any, error) {
	var (
		first  map[string]any
		items  []any
		cursor string
	)

	for page := 0; page < c.maxPages; page++ {
		body := map[string]any{"list_id": listID, "limit": pageLimit}
		if cursor != "" {
			body["cursor"] = cursor
		}

		resp, err := c.call(ctx, "slackLists.items.list", token, body)
		if err != nil {
			return nil, fmt.Errorf("slacklists.FetchItems: %w", err)
		}
		if first == nil {
			first = resp
		}
		if pageItems, ok := resp["items"].([]any); ok {
			items = append(items, pageItems...)
		}

		cursor = nextCursor(resp)
		if cursor == "" {
			break
		}
	}

	if items == nil {
		items = []any{}
	}
	first["items"] = items
	return first, nil
}

func nextCursor(resp map[string]any) string {
	meta, _ := resp["response_metadata"].(map[string]any)
	cursor, _ := meta["next_cursor"].(string)
	return cursor
}

// FetchItemDetail returns slackLists.items.info for one item, which carries
// the list metadata including its column schema.
func (c *Client) FetchItemDetail(ctx context.Context, token, listID, itemID string) (map[string]any, error) {
	resp, err := c.call(ctx, "slackLists.items.info", token, map[string]any{
		"list_id": listID,
		"id":      itemID,
	})
	if err != nil {
		return nil, fmt.Errorf("slacklists.FetchItemDetail: %w", err)
	}
	return resp, nil
}

// CreateItem adds an item with the given initial fields.
func (c *Client) CreateItem(ctx context.Context, token, listID string, fields map[string]any) (map[string]any, error) {
	resp, err := c.call(ctx, "slackLists.items.create", token, map[string]any{
		"list_id": listID,
		"item":    map[string]any{"fields": fields},
	})
	if err != nil {
		return nil, fmt.Errorf("slacklists.CreateItem: %w", err)
	}
	return resp, nil
}

// UpdateItem writes cells into itemID. Each cell is addressed to the item via
// its row id.
func (c *Client) UpdateItem(ctx context.Context, token, listID, itemID string, cells []board.Cell) error {
	rows := make([]board.Cell, len(cells))
	for i, cell := range cells {
		cell.RowID = itemID
		rows[i] = cell
	}

	if _, err := c.call(ctx, "slackLists.items.update", token, map[string]any{
		"list_id": listID,
		"cells":   rows,
	}); err != nil {
		return fmt.Errorf("slacklists.UpdateItem: %w", err)
	}
	return nil
}

// DeleteItem removes itemID from listID.
func (c *Client) DeleteItem(ctx context.Context, token, listID, itemID string) error {
	if _, err := c.call(ctx, "slackLists.items.delete", token, map[string]any{
		"list_id": listID,
		"id":      itemID,
	}); err != nil {
		return fmt.Errorf("slacklists.DeleteItem: %w", err)
	}
	return nil
}
