// Package board projects Slack list items into a Kanban board and translates
// board edits back into Lists API payloads.
package board

import "slices"

// NoStatus is the id of the fallback column for items whose status is unset
// or does not match a known option.
const NoStatus = "__none__"

const (
	noStatusName = "No Status"
	untitled     = "Untitled"
)

// Option is one choice of a select or status column.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// SchemaField describes one column of a Slack list.
type SchemaField struct {
	ID      string   `json:"id"`
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Primary bool     `json:"primary,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// OptionLabel maps an option value to its label, returning the value itself
// when the option is unknown.
func (f *SchemaField) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// UserProfile is a resolved Slack user referenced by a people field.
type UserProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

func fallbackProfile(id string) UserProfile {
	return UserProfile{ID: id, DisplayName: id}
}

// Field is one normalized, display-ready cell of an item.
type Field struct {
	ColumnID     string `json:"column_id"`
	Key          string `json:"key"`
	Type         string `json:"type"`
	Label        string `json:"label"`
	Value        any    `json:"value"`
	DisplayValue string `json:"display_value"`
}

// Item is a card on the board.
type Item struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	StatusValue string         `json:"status_value"`
	Fields      []Field        `json:"fields"`
	Assignees   []UserProfile  `json:"assignees"`
	RawItem     map[string]any `json:"raw_item"`

	// TitleColumn and TitleRichText record where the title came from so a
	// rename can be written back in the same shape.
	TitleColumn   string `json:"title_column,omitempty"`
	TitleRichText bool   `json:"title_rich_text,omitempty"`
}

// Column is a board lane holding the items of one status option.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Board is the projection handed to the presentation layer.
type Board struct {
	ListID       string        `json:"list_id"`
	ListTitle    string        `json:"list_title"`
	StatusColumn *SchemaField  `json:"status_column"`
	Columns      []Column      `json:"columns"`
	Schema       []SchemaField `json:"schema"`
}

// Clone returns a copy that shares no slices with b. Raw items and field
// values are shared; they are never mutated after projection.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}

	out := *b
	if b.StatusColumn != nil {
		sc := *b.StatusColumn
		sc.Options = slices.Clone(b.StatusColumn.Options)
		out.StatusColumn = &sc
	}
	out.Schema = slices.Clone(b.Schema)

	out.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		items := make([]Item, len(col.Items))
		for j, it := range col.Items {
			it.Fields = slices.Clone(it.Fields)
			it.Assignees = slices.Clone(it.Assignees)
			items[j] = it
		}
		out.Columns[i] = Column{ID: col.ID, Name: col.Name, Items: items}
	}

	return &out
}

// FindItem returns the column index and item index of itemID.
func (b *Board) FindItem(itemID string) (colIdx, itemIdx int, ok bool) {
	for ci, col := range b.Columns {
		for ii, it := range col.Items {
			if it.ID == itemID {
				return ci, ii, true
			}
		}
	}
	return -1, -1, false
}

// ColumnIndex returns the index of the column with the given id.
func (b *Board) ColumnIndex(columnID string) (int, bool) {
	for i, col := range b.Columns {
		if col.ID == columnID {
			return i, true
		}
	}
	return -1, false
}

// ItemCount returns the number of items across all columns.
func (b *Board) ItemCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Items)
	}
	return n
}
