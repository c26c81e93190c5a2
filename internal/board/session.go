package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NoticeTTL is how long a failure notice stays visible.
const NoticeTTL = 3 * time.Second

// PendingPrefix marks placeholder items created locally and not yet confirmed.
const PendingPrefix = "pending-"

// ErrNotLoaded is returned by Session edits before the first Refresh.
var ErrNotLoaded = errors.New("board: session not loaded") //nolint:gochecknoglobals // sentinel error

const (
	noticeMove   = "Failed to move item. Reverted."
	noticeCreate = "Failed to create item."
	noticeRename = "Failed to rename item. Reverted."
	noticeEdit   = "Failed to update field. Reverted."
	noticeDelete = "Failed to delete item. Reverted."
)

// Session holds one user's view of a board and applies edits optimistically:
// the local board changes first, the remote call follows, and a failed call
// restores the snapshot taken before the edit. Concurrent refreshes are not
// ordered; whichever finishes last wins.
type Session struct {
	svc    *Service
	token  string
	listID string
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	board    *Board
	notice   string
	noticeAt time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for degraded refreshes.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the time source used to expire notices.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a Session for listID. Call Refresh before editing.
func NewSession(svc *Service, token, listID string, opts ...SessionOption) *Session {
	s := &Session{
		svc:    svc,
		token:  token,
		listID: listID,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListID returns the list the session is bound to.
func (s *Session) ListID() string { return s.listID }

// Board returns a copy of the current board, or nil before the first Refresh.
func (s *Session) Board() *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Notice returns the latest failure message while it is still fresh.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == "" || s.now().Sub(s.noticeAt) >= NoticeTTL {
		return ""
	}
	return s.notice
}

// Refresh refetches the board and replaces the local state.
func (s *Session) Refresh(ctx context.Context) (*Board, error) {
	b, err := s.svc.Load(ctx, s.token, s.listID)
	if err != nil {
		return nil, fmt.Errorf("board.Session.Refresh: %w", err)
	}
	s.mu.Lock()
	s.board = b
	s.mu.Unlock()
	return b.Clone(), nil
}

// Watch refreshes every interval until ctx is done, calling onChange with
// each new board. Refresh failures are logged and retried on the next tick.
func (s *Session) Watch(ctx context.Context, interval time.Duration, onChange func(*Board)) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			b, err := s.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Warn().Err(err).Str("list_id", s.listID).Msg("board: auto-refresh failed")
				continue
			}
			if onChange != nil {
				onChange(b)
			}
		}
	}
}

// Move drags itemID into targetColumn. Moving within the same column is a
// local no-op.
func (s *Session) Move(ctx context.Context, itemID, targetColumn string) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	ci, ii, ok := s.board.FindItem(itemID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Move: %w", ErrItemNotFound)
	}
	ti, ok := s.board.ColumnIndex(targetColumn)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Move: %w", ErrColumnNotFound)
	}
	if ci == ti {
		s.mu.Unlock()
		return nil
	}
	status := s.board.StatusColumn
	if status == nil {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Move: %w", ErrNoStatusColumn)
	}

	snapshot := s.board.Clone()
	it := s.board.removeItem(ci, ii)
	it.StatusValue = targetColumn
	it.setStatusField(status, targetColumn)
	s.board.Columns[ti].Items = append(s.board.Columns[ti].Items, it)
	s.mu.Unlock()

	if err := s.svc.Move(ctx, s.token, s.listID, itemID, status, targetColumn); err != nil {
		s.restore(snapshot, noticeMove)
		return fmt.Errorf("board.Session.Move: %w", err)
	}
	return nil
}

// Reorder moves itemID to position index inside its column. The Lists API has
// no ordering, so this never leaves the session.
func (s *Session) Reorder(itemID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNotLoaded
	}
	ci, ii, ok := s.board.FindItem(itemID)
	if !ok {
		return fmt.Errorf("board.Session.Reorder: %w", ErrItemNotFound)
	}

	it := s.board.removeItem(ci, ii)
	items := s.board.Columns[ci].Items
	index = max(0, min(index, len(items)))
	s.board.Columns[ci].Items = slices.Insert(items, index, it)
	return nil
}

// Create adds a placeholder card to targetColumn, creates the item remotely
// and refetches the board to pick up the assigned id.
func (s *Session) Create(ctx context.Context, title, targetColumn string) error {
	title = strings.TrimSpace(title)
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if targetColumn == "" {
		targetColumn = NoStatus
	}
	ti, ok := s.board.ColumnIndex(targetColumn)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Create: %w", ErrColumnNotFound)
	}
	status := s.board.StatusColumn
	snapshot := s.board.Clone()
	s.board.Columns[ti].Items = append(s.board.Columns[ti].Items, Item{
		ID:          PendingPrefix + uuid.NewString(),
		Title:       title,
		StatusValue: targetColumn,
		Fields:      []Field{},
		Assignees:   []UserProfile{},
	})
	s.mu.Unlock()

	if _, err := s.svc.Create(ctx, s.token, s.listID, status, title, targetColumn); err != nil {
		s.restore(snapshot, noticeCreate)
		return fmt.Errorf("board.Session.Create: %w", err)
	}

	s.reconcile(ctx)
	return nil
}

// Rename changes the title of itemID.
func (s *Session) Rename(ctx context.Context, itemID, title string) error {
	title = strings.TrimSpace(title)
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	ci, ii, ok := s.board.FindItem(itemID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Rename: %w", ErrItemNotFound)
	}
	snapshot := s.board.Clone()
	it := s.board.Columns[ci].Items[ii]
	s.board.Columns[ci].Items[ii].Title = title
	s.mu.Unlock()

	if err := s.svc.Rename(ctx, s.token, s.listID, it, title); err != nil {
		s.restore(snapshot, noticeRename)
		return fmt.Errorf("board.Session.Rename: %w", err)
	}
	return nil
}

// EditField writes value into one cell of itemID. Editing the status column
// moves the card to the matching lane.
func (s *Session) EditField(ctx context.Context, itemID, columnID string, value any) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	ci, ii, ok := s.board.FindItem(itemID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.EditField: %w", ErrItemNotFound)
	}
	snapshot := s.board.Clone()
	s.board.applyEdit(ci, ii, columnID, value)
	s.mu.Unlock()

	if err := s.svc.EditField(ctx, s.token, s.listID, itemID, columnID, value); err != nil {
		s.restore(snapshot, noticeEdit)
		return fmt.Errorf("board.Session.EditField: %w", err)
	}
	return nil
}

// Delete removes itemID and refetches the board.
func (s *Session) Delete(ctx context.Context, itemID string) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	ci, ii, ok := s.board.FindItem(itemID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("board.Session.Delete: %w", ErrItemNotFound)
	}
	snapshot := s.board.Clone()
	s.board.removeItem(ci, ii)
	s.mu.Unlock()

	if err := s.svc.Delete(ctx, s.token, s.listID, itemID); err != nil {
		s.restore(snapshot, noticeDelete)
		return fmt.Errorf("board.Session.Delete: %w", err)
	}

	s.reconcile(ctx)
	return nil
}

func (s *Session) restore(snapshot *Board, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = snapshot
	s.notice = notice
	s.noticeAt = s.now()
}

// reconcile refetches after a confirmed create or delete. A failed refetch
// keeps the optimistic state.
func (s *Session) reconcile(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Str("list_id", s.listID).Msg("board: refetch after edit failed")
	}
}

func (b *Board) removeItem(ci, ii int) Item {
	items := b.Columns[ci].Items
	it := items[ii]
	b.Columns[ci].Items = slices.Delete(items, ii, ii+1)
	return it
}

// setStatusField mirrors a status change into the item's status cell.
func (it *Item) setStatusField(status *SchemaField, target string) {
	for i, f := range it.Fields {
		if f.ColumnID != status.ID {
			continue
		}
		if target == NoStatus {
			it.Fields[i].Value = []any{}
			it.Fields[i].DisplayValue = ""
		} else {
			it.Fields[i].Value = []any{target}
			it.Fields[i].DisplayValue = status.OptionLabel(target)
		}
		return
	}
}

func (b *Board) applyEdit(ci, ii int, columnID string, value any) {
	it := &b.Columns[ci].Items[ii]

	idx := newSchemaIndex(b.Schema)
	sf, _ := idx.lookup(columnID, columnID)
	for i, f := range it.Fields {
		if f.ColumnID != columnID {
			continue
		}
		it.Fields[i].Value = value
		it.Fields[i].DisplayValue = displayValue(f.Type, value, sf, nil)
		break
	}

	status := b.StatusColumn
	if status == nil || status.ID != columnID {
		return
	}

	target := NoStatus
	if ids := idsOf(value); len(ids) > 0 {
		target = ids[0]
	}
	ti, ok := b.ColumnIndex(target)
	if !ok {
		ti, target = 0, NoStatus
	}
	moved := b.removeItem(ci, ii)
	moved.StatusValue = target
	b.Columns[ti].Items = append(b.Columns[ti].Items, moved)
}
