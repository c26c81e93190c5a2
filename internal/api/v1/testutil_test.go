package v1_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/slackdone/internal/api/ws"
	"github.com/gosuda/slackdone/internal/board"
	"github.com/gosuda/slackdone/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	workspaces domain.WorkspaceRepository
	savedLists domain.SavedListRepository
}

func (m *mockDataStore) Workspaces() domain.WorkspaceRepository { return m.workspaces }
func (m *mockDataStore) SavedLists() domain.SavedListRepository { return m.savedLists }

// ---------------------------------------------------------------------------
// Mock WorkspaceRepository
// ---------------------------------------------------------------------------

type mockWorkspaceRepo struct {
	upsertFunc  func(ctx context.Context, w *domain.Workspace) error
	getByIDFunc func(ctx context.Context, id string) (*domain.Workspace, error)
	listFunc    func(ctx context.Context) ([]*domain.Workspace, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockWorkspaceRepo) Upsert(ctx context.Context, w *domain.Workspace) error {
	return m.upsertFunc(ctx, w)
}

func (m *mockWorkspaceRepo) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockWorkspaceRepo) List(ctx context.Context) ([]*domain.Workspace, error) {
	return m.listFunc(ctx)
}

func (m *mockWorkspaceRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

// knownWorkspace returns a repo that only knows T1.
func knownWorkspace() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{
		getByIDFunc: func(_ context.Context, id string) (*domain.Workspace, error) {
			if id != "T1" {
				return nil, domain.ErrNotFound
			}
			return &domain.Workspace{ID: "T1", Name: "Acme", BotToken: "xoxb-1", UserToken: "xoxp-1"}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock SavedListRepository
// ---------------------------------------------------------------------------

type mockSavedListRepo struct {
	listByWorkspaceFunc func(ctx context.Context, workspaceID string) ([]*domain.SavedList, error)
	addFunc             func(ctx context.Context, l *domain.SavedList) error
	removeFunc          func(ctx context.Context, workspaceID, listID string) error
}

func (m *mockSavedListRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.SavedList, error) {
	return m.listByWorkspaceFunc(ctx, workspaceID)
}

func (m *mockSavedListRepo) Add(ctx context.Context, l *domain.SavedList) error {
	return m.addFunc(ctx, l)
}

func (m *mockSavedListRepo) Remove(ctx context.Context, workspaceID, listID string) error {
	return m.removeFunc(ctx, workspaceID, listID)
}

// ---------------------------------------------------------------------------
// Mock Installer
// ---------------------------------------------------------------------------

type mockInstaller struct {
	installURLFunc      func() (string, error)
	completeInstallFunc func(ctx context.Context, code, state string) (*domain.Workspace, error)
}

func (m *mockInstaller) InstallURL() (string, error) {
	return m.installURLFunc()
}

func (m *mockInstaller) CompleteInstall(ctx context.Context, code, state string) (*domain.Workspace, error) {
	return m.completeInstallFunc(ctx, code, state)
}

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type mockEvents struct {
	events []ws.BoardEvent
	err    error
}

func (m *mockEvents) PublishBoard(_ context.Context, ev ws.BoardEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

// ---------------------------------------------------------------------------
// Fake Slack Lists API
// ---------------------------------------------------------------------------

// boardList is a list with a Todo/Done status column and two items.
const boardList = `{
  "ok": true,
  "list": {"id": "L1", "title": "Sprint"},
  "schema": [
    {"id": "Col1", "key": "name", "name": "Name", "type": "text", "is_primary_column": true},
    {"id": "Col2", "key": "status", "name": "Status", "type": "select",
     "options": [{"value": "todo", "label": "Todo"}, {"value": "done", "label": "Done"}]}
  ],
  "items": [
    {"id": "I1", "fields": [
      {"column_id": "Col1", "key": "name", "text": "Write docs"},
      {"column_id": "Col2", "key": "status", "select": ["todo"]}
    ]},
    {"id": "I2", "fields": [
      {"column_id": "Col1", "key": "name", "text": "Release"}
    ]}
  ]
}`

type updateCall struct {
	listID, itemID string
	cells          []board.Cell
}

type fakeLists struct {
	fetchErr  error
	updateErr error
	createErr error
	deleteErr error
	detail    map[string]any

	tokens  []string
	updates []updateCall
	creates []map[string]any
	deletes []string
}

func (f *fakeLists) FetchItems(_ context.Context, token, _ string) (map[string]any, error) {
	f.tokens = append(f.tokens, token)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	dec := json.NewDecoder(strings.NewReader(boardList))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeLists) FetchItemDetail(_ context.Context, _, _, itemID string) (map[string]any, error) {
	if f.detail == nil {
		return nil, board.ErrItemNotFound
	}
	return f.detail, nil
}

func (f *fakeLists) CreateItem(_ context.Context, _, _ string, fields map[string]any) (map[string]any, error) {
	f.creates = append(f.creates, fields)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return map[string]any{"ok": true, "item": map[string]any{"id": "I3"}}, nil
}

func (f *fakeLists) UpdateItem(_ context.Context, _, listID, itemID string, cells []board.Cell) error {
	f.updates = append(f.updates, updateCall{listID: listID, itemID: itemID, cells: cells})
	return f.updateErr
}

func (f *fakeLists) DeleteItem(_ context.Context, _, _, itemID string) error {
	f.deletes = append(f.deletes, itemID)
	return f.deleteErr
}

type noUsers struct{}

func (noUsers) ResolveUsers(context.Context, string, []string) (map[string]board.UserProfile, error) {
	return map[string]board.UserProfile{}, nil
}

func newBoardService(lists *fakeLists) *board.Service {
	return board.NewService(lists, noUsers{}, zerolog.Nop())
}

// acceptSaves is a saved list repo whose Add always succeeds.
func acceptSaves() *mockSavedListRepo {
	return &mockSavedListRepo{addFunc: func(context.Context, *domain.SavedList) error { return nil }}
}

func decodeBoard(t *testing.T, raw []byte) board.Board {
	t.Helper()

	var b board.Board
	require.NoError(t, json.Unmarshal(raw, &b))
	return b
}

func columnItems(b board.Board, columnID string) []string {
	for _, c := range b.Columns {
		if c.ID == columnID {
			ids := make([]string, 0, len(c.Items))
			for _, it := range c.Items {
				ids = append(ids, it.ID)
			}
			return ids
		}
	}
	return nil
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture
