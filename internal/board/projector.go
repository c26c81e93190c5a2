package board

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ListAPI is the subset of the Slack Lists API the board needs.
// *slacklists.Client satisfies this interface.
type ListAPI interface {
	FetchItems(ctx context.Context, token, listID string) (map[string]any, error)
	FetchItemDetail(ctx context.Context, token, listID, itemID string) (map[string]any, error)
	CreateItem(ctx context.Context, token, listID string, fields map[string]any) (map[string]any, error)
	UpdateItem(ctx context.Context, token, listID, itemID string, cells []Cell) error
	DeleteItem(ctx context.Context, token, listID, itemID string) error
}

// UserResolver looks up Slack profiles in one batch. Implementations may
// return a partial map together with an error.
type UserResolver interface {
	ResolveUsers(ctx context.Context, token string, ids []string) (map[string]UserProfile, error)
}

// Projector fetches a list and projects it into a Board.
type Projector struct {
	lists  ListAPI
	users  UserResolver
	logger zerolog.Logger
}

// NewProjector creates a Projector. users may be nil, in which case people
// fields show raw user ids.
func NewProjector(lists ListAPI, users UserResolver, logger zerolog.Logger) *Projector {
	return &Projector{lists: lists, users: users, logger: logger}
}

// Project builds the board for listID. Only a failure of the primary item
// fetch is returned; schema and user lookups degrade silently.
func (p *Projector) Project(ctx context.Context, token, listID string) (*Board, error) {
	resp, err := p.lists.FetchItems(ctx, token, listID)
	if err != nil {
		return nil, fmt.Errorf("board.Project: %w", err)
	}

	items := rawItems(resp)

	schema := schemaFrom(resp)
	if len(schema) == 0 && len(items) > 0 {
		schema = p.detailSchema(ctx, token, listID, itemID(items[0]))
	}

	status := statusFromSchema(schema)
	if status == nil {
		status = inferStatusField(items)
	}

	idx := newSchemaIndex(schema)
	profiles := p.resolveUsers(ctx, token, peopleIDs(items, idx))

	return assemble(listID, listTitle(resp, listID), items, schema, status, profiles), nil
}

func (p *Projector) detailSchema(ctx context.Context, token, listID, itemID string) []SchemaField {
	if itemID == "" {
		return nil
	}
	detail, err := p.lists.FetchItemDetail(ctx, token, listID, itemID)
	if err != nil {
		p.logger.Warn().Err(err).Str("list_id", listID).Str("item_id", itemID).
			Msg("board: item detail lookup failed, continuing without schema")
		return nil
	}
	return schemaFrom(detail)
}

func (p *Projector) resolveUsers(ctx context.Context, token string, ids []string) map[string]UserProfile {
	if p.users == nil || len(ids) == 0 {
		return nil
	}
	profiles, err := p.users.ResolveUsers(ctx, token, ids)
	if err != nil {
		p.logger.Warn().Err(err).Int("users", len(ids)).
			Msg("board: user lookup failed, people fields fall back to ids")
	}
	return profiles
}

// assemble is the pure part of the projection.
func assemble(listID, title string, items []map[string]any, schema []SchemaField, status *SchemaField, profiles map[string]UserProfile) *Board {
	if schema == nil {
		schema = []SchemaField{}
	}
	idx := newSchemaIndex(schema)

	b := &Board{
		ListID:       listID,
		ListTitle:    title,
		StatusColumn: status,
		Schema:       schema,
		Columns:      []Column{{ID: NoStatus, Name: noStatusName, Items: []Item{}}},
	}

	colIdx := map[string]int{NoStatus: 0}
	if status != nil {
		for _, o := range status.Options {
			if _, dup := colIdx[o.Value]; dup {
				continue
			}
			colIdx[o.Value] = len(b.Columns)
			b.Columns = append(b.Columns, Column{ID: o.Value, Name: o.Label, Items: []Item{}})
		}
	}

	for _, raw := range items {
		it := projectItem(raw, idx, status, profiles)
		ci, ok := colIdx[it.StatusValue]
		if !ok {
			ci, it.StatusValue = 0, NoStatus
		}
		b.Columns[ci].Items = append(b.Columns[ci].Items, it)
	}

	return b
}

func projectItem(raw map[string]any, idx *schemaIndex, status *SchemaField, profiles map[string]UserProfile) Item {
	fields := itemFields(raw)

	it := Item{
		ID:          itemID(raw),
		Title:       untitled,
		StatusValue: statusValueOf(fields, status),
		Fields:      make([]Field, 0, len(fields)),
		Assignees:   []UserProfile{},
		RawItem:     raw,
	}

	titleFound := false
	seenUsers := make(map[string]struct{})
	for _, f := range fields {
		sf, _ := idx.lookup(f.ColumnID, f.Key)
		if isTitleField(f, sf) {
			if !titleFound {
				if t, rich := titleOf(f); t != "" {
					it.Title, it.TitleRichText, it.TitleColumn = t, rich, f.ColumnID
					titleFound = true
				} else if it.TitleColumn == "" {
					it.TitleColumn = f.ColumnID
				}
			}
			continue
		}

		field := normalizeField(f, idx, profiles)
		it.Fields = append(it.Fields, field)

		if field.Type != "people" {
			continue
		}
		for _, id := range idsOf(field.Value) {
			if _, dup := seenUsers[id]; dup {
				continue
			}
			seenUsers[id] = struct{}{}
			it.Assignees = append(it.Assignees, profileFor(id, profiles))
		}
	}

	return it
}
