package board

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// listWithSchema has an inline schema with an Active/Done status column and
// three items: one Active, one with a stale option and one without status.
const listWithSchema = `{
  "ok": true,
  "list": {"id": "L1", "title": "Roadmap"},
  "schema": [
    {"id": "Col1", "key": "name", "name": "Name", "type": "text", "is_primary_column": true},
    {"id": "Col2", "key": "status", "name": "Status", "type": "select",
     "options": {"choices": [{"value": "a", "label": "Active", "color": "green"}, {"value": "d", "label": "Done"}]}},
    {"id": "Col3", "key": "owner", "name": "Owner", "type": "people"},
    {"id": "Col4", "key": "estimate", "name": "Estimate", "type": "number"},
    {"id": "Col5", "key": "due", "name": "Due", "type": "date"}
  ],
  "items": [
    {"id": "i1", "fields": [
      {"column_id": "Col1", "key": "name", "rich_text": {"elements": [{"elements": [{"text": "Fix "}, {"text": "bug"}]}]}},
      {"column_id": "Col2", "key": "status", "select": ["a"]},
      {"column_id": "Col3", "key": "owner", "user": ["U1", "U2"]},
      {"column_id": "Col4", "key": "estimate", "number": [3.5]},
      {"column_id": "Col5", "key": "due", "date": "2026-01-31"}
    ]},
    {"id": "i2", "fields": [
      {"column_id": "Col1", "key": "name", "text": "Ship it"},
      {"column_id": "Col2", "key": "status", "select": ["x"]}
    ]},
    {"id": "i3", "fields": [
      {"column_id": "Col1", "key": "name", "text": ""},
      {"column_id": "Col3", "key": "owner", "user": ["U1"]}
    ]}
  ]
}`

// listWithoutSchema carries no schema; status must come from item detail or
// from the cells themselves.
const listWithoutSchema = `{
  "ok": true,
  "items": [
    {"id": "r1", "fields": [
      {"column_id": "name", "text": "First"},
      {"column_id": "Col9", "select": ["opt_b"]}
    ]},
    {"id": "r2", "fields": [
      {"column_id": "name", "text": "Second"},
      {"column_id": "Col9", "select": ["opt_a"]}
    ]},
    {"id": "r3", "fields": [
      {"column_id": "name", "text": "Third"},
      {"column_id": "Col9", "select": ["opt_b"]}
    ]}
  ]
}`

const listWithMapFields = `{
  "ok": true,
  "items": [
    {"id": "m1", "fields": {"name": "Alpha", "Col9": {"select": ["x"]}}},
    {"id": "m2", "fields": {"name": "Beta", "Col9": {"select": ["y"]}}},
    {"id": "m3", "fields": {"name": "Gamma"}}
  ]
}`

const listWithMapFieldsAndSchema = `{
  "ok": true,
  "schema": {"columns": [
    {"id": "Col9", "name": "Stage", "type": "select", "options": [{"id": "x", "name": "Doing"}, {"id": "y", "name": "Done"}]}
  ]},
  "items": [
    {"id": "m1", "fields": {"name": "Alpha", "Col9": {"select": ["x"]}}},
    {"id": "m2", "fields": {"name": "Beta", "Col9": {"id": "y"}}},
    {"id": "m3", "fields": {"name": "Gamma", "Col9": "x"}}
  ]
}`

const itemDetail = `{
  "ok": true,
  "list": {"list_metadata": {"schema": [
    {"id": "Col9", "key": "stage", "name": "Stage", "type": "status",
     "options": [{"id": "opt_a", "name": "Backlog"}, {"id": "opt_b", "name": "Doing"}, {"id": "opt_c", "name": "Done"}]}
  ]}},
  "record": {"id": "r1"}
}`

func decode(t *testing.T, s string) map[string]any {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var out map[string]any
	require.NoError(t, dec.Decode(&out))
	return out
}

type updateCall struct {
	ListID string
	ItemID string
	Cells  []Cell
}

// mockLists is a function-field ListAPI that records mutating calls.
type mockLists struct {
	fetchItemsFn  func(ctx context.Context, token, listID string) (map[string]any, error)
	fetchDetailFn func(ctx context.Context, token, listID, itemID string) (map[string]any, error)
	createFn      func(ctx context.Context, token, listID string, fields map[string]any) (map[string]any, error)
	updateFn      func(ctx context.Context, token, listID, itemID string, cells []Cell) error
	deleteFn      func(ctx context.Context, token, listID, itemID string) error

	mu          sync.Mutex
	fetches     int
	detailCalls []string
	updates     []updateCall
	creates     []map[string]any
	deletes     []string
}

func (m *mockLists) FetchItems(ctx context.Context, token, listID string) (map[string]any, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	return m.fetchItemsFn(ctx, token, listID)
}

func (m *mockLists) FetchItemDetail(ctx context.Context, token, listID, itemID string) (map[string]any, error) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, itemID)
	m.mu.Unlock()
	if m.fetchDetailFn == nil {
		return map[string]any{}, nil
	}
	return m.fetchDetailFn(ctx, token, listID, itemID)
}

func (m *mockLists) CreateItem(ctx context.Context, token, listID string, fields map[string]any) (map[string]any, error) {
	m.mu.Lock()
	m.creates = append(m.creates, fields)
	m.mu.Unlock()
	if m.createFn == nil {
		return map[string]any{"ok": true, "item": map[string]any{"id": "new1"}}, nil
	}
	return m.createFn(ctx, token, listID, fields)
}

func (m *mockLists) UpdateItem(ctx context.Context, token, listID, itemID string, cells []Cell) error {
	m.mu.Lock()
	m.updates = append(m.updates, updateCall{ListID: listID, ItemID: itemID, Cells: cells})
	m.mu.Unlock()
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, token, listID, itemID, cells)
}

func (m *mockLists) DeleteItem(ctx context.Context, token, listID, itemID string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, itemID)
	m.mu.Unlock()
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, token, listID, itemID)
}

func (m *mockLists) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func staticLists(t *testing.T, body string) *mockLists {
	t.Helper()
	return &mockLists{
		fetchItemsFn: func(context.Context, string, string) (map[string]any, error) {
			return decode(t, body), nil
		},
	}
}

type mockUsers struct {
	resolveFn func(ctx context.Context, token string, ids []string) (map[string]UserProfile, error)
	calls     [][]string
}

func (m *mockUsers) ResolveUsers(ctx context.Context, token string, ids []string) (map[string]UserProfile, error) {
	m.calls = append(m.calls, ids)
	return m.resolveFn(ctx, token, ids)
}

func columnIDs(b *Board) []string {
	ids := make([]string, 0, len(b.Columns))
	for _, c := range b.Columns {
		ids = append(ids, c.ID)
	}
	return ids
}

func itemIDs(c Column) []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
