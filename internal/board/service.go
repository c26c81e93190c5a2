package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gosuda/slackdone/internal/domain"
)

// Service is the board read and write path against one ListAPI. It is
// stateless; callers that need optimistic local state use a Session.
type Service struct {
	lists     ListAPI
	projector *Projector
}

// NewService creates a Service.
func NewService(lists ListAPI, users UserResolver, logger zerolog.Logger) *Service {
	return &Service{
		lists:     lists,
		projector: NewProjector(lists, users, logger),
	}
}

// Load fetches and projects the board for listID.
func (s *Service) Load(ctx context.Context, token, listID string) (*Board, error) {
	b, err := s.projector.Project(ctx, token, listID)
	if err != nil {
		return nil, fmt.Errorf("board.Load: %w", err)
	}
	return b, nil
}

// Move sets the status of itemID to targetColumn.
func (s *Service) Move(ctx context.Context, token, listID, itemID string, status *SchemaField, targetColumn string) error {
	cells, err := MoveCells(status, targetColumn)
	if err != nil {
		return fmt.Errorf("board.Move: %w", err)
	}
	if err := s.lists.UpdateItem(ctx, token, listID, itemID, cells); err != nil {
		return fmt.Errorf("board.Move: %w", err)
	}
	return nil
}

// Create adds an item and returns the id the API assigned to it, which may be
// empty when the response does not echo the item.
func (s *Service) Create(ctx context.Context, token, listID string, status *SchemaField, title, targetColumn string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("board.Create: %w: title is required", domain.ErrInvalidInput)
	}

	resp, err := s.lists.CreateItem(ctx, token, listID, CreateFields(status, title, targetColumn))
	if err != nil {
		return "", fmt.Errorf("board.Create: %w", err)
	}

	if it := asMap(resp["item"]); it != nil {
		return itemID(it), nil
	}
	return itemID(resp), nil
}

// Rename replaces the title of it.
func (s *Service) Rename(ctx context.Context, token, listID string, it Item, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("board.Rename: %w: title is required", domain.ErrInvalidInput)
	}
	if err := s.lists.UpdateItem(ctx, token, listID, it.ID, RenameCells(it, title)); err != nil {
		return fmt.Errorf("board.Rename: %w", err)
	}
	return nil
}

// EditField writes value into the columnID cell of itemID.
func (s *Service) EditField(ctx context.Context, token, listID, itemID, columnID string, value any) error {
	if columnID == "" {
		return fmt.Errorf("board.EditField: %w: column id is required", domain.ErrInvalidInput)
	}
	cells, err := EditCells(columnID, value)
	if err != nil {
		return fmt.Errorf("board.EditField: %w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.lists.UpdateItem(ctx, token, listID, itemID, cells); err != nil {
		return fmt.Errorf("board.EditField: %w", err)
	}
	return nil
}

// Delete removes itemID from the list.
func (s *Service) Delete(ctx context.Context, token, listID, itemID string) error {
	if err := s.lists.DeleteItem(ctx, token, listID, itemID); err != nil {
		return fmt.Errorf("board.Delete: %w", err)
	}
	return nil
}

// ItemDetail returns the raw item info response, unprojected.
func (s *Service) ItemDetail(ctx context.Context, token, listID, itemID string) (map[string]any, error) {
	detail, err := s.lists.FetchItemDetail(ctx, token, listID, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.ItemDetail: %w", err)
	}
	return detail, nil
}
