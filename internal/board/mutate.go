package board

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoStatusColumn is returned for moves on a board without a status column.
	ErrNoStatusColumn = errors.New("board: list has no status column")
	// ErrUnsupportedValue is returned when a field edit carries a value shape
	// that has no cell representation.
	ErrUnsupportedValue = errors.New("board: unsupported field value")
	// ErrItemNotFound is returned when an item id is not on the board.
	ErrItemNotFound = errors.New("board: item not found")
	// ErrColumnNotFound is returned when a target column id is not on the board.
	ErrColumnNotFound = errors.New("board: column not found")
)

// CellKind selects which value property a Cell carries on the wire.
type CellKind string

const (
	CellSelect   CellKind = "select"
	CellText     CellKind = "text"
	CellRichText CellKind = "rich_text"
	CellNumber   CellKind = "number"
)

// titleKey is the field key the Lists API accepts for an item title on create.
const titleKey = "title"

// defaultTitleColumn is the column written on rename when the item never
// carried a title cell.
const defaultTitleColumn = "name"

// Cell is a single-cell update for slackLists.items.update.
type Cell struct {
	ColumnID string
	RowID    string
	Kind     CellKind
	Select   []string
	Text     string
	RichText []any
	Number   float64
}

// MarshalJSON emits only the property that matches Kind. A select cell always
// carries an array, so clearing a status is encoded as "select": [].
func (c Cell) MarshalJSON() ([]byte, error) {
	out := map[string]any{"column_id": c.ColumnID}
	if c.RowID != "" {
		out["row_id"] = c.RowID
	}

	switch c.Kind {
	case CellSelect:
		sel := c.Select
		if sel == nil {
			sel = []string{}
		}
		out["select"] = sel
	case CellText:
		out["text"] = c.Text
	case CellRichText:
		out["rich_text"] = c.RichText
	case CellNumber:
		out["number"] = []float64{c.Number}
	default:
		return nil, fmt.Errorf("board.Cell: unknown kind %q", c.Kind)
	}

	return json.Marshal(out)
}

// MoveCells builds the status update for moving an item to targetColumn.
func MoveCells(status *SchemaField, targetColumn string) ([]Cell, error) {
	if status == nil {
		return nil, ErrNoStatusColumn
	}
	sel := []string{}
	if targetColumn != NoStatus {
		sel = []string{targetColumn}
	}
	return []Cell{{ColumnID: status.ID, Kind: CellSelect, Select: sel}}, nil
}

// CreateFields builds the fields payload for a new item. The status is only
// set for a real target column.
func CreateFields(status *SchemaField, title, targetColumn string) map[string]any {
	fields := map[string]any{titleKey: title}
	if status != nil && targetColumn != "" && targetColumn != NoStatus {
		fields[status.ID] = map[string]any{"id": targetColumn}
	}
	return fields
}

// RichTextDocument wraps plain text in a single-section rich-text block.
func RichTextDocument(text string) []any {
	return []any{
		map[string]any{
			"type": "rich_text",
			"elements": []any{
				map[string]any{
					"type": "rich_text_section",
					"elements": []any{
						map[string]any{"type": "text", "text": text},
					},
				},
			},
		},
	}
}

// RenameCells writes title back in the shape the item's title cell used.
func RenameCells(it Item, title string) []Cell {
	col := it.TitleColumn
	if col == "" {
		col = defaultTitleColumn
	}
	if it.TitleRichText {
		return []Cell{{ColumnID: col, Kind: CellRichText, RichText: RichTextDocument(title)}}
	}
	return []Cell{{ColumnID: col, Kind: CellText, Text: title}}
}

// EditCells dispatches on the runtime shape of value: arrays become select
// cells, strings text cells and numbers number cells.
func EditCells(columnID string, value any) ([]Cell, error) {
	switch v := value.(type) {
	case []string:
		return []Cell{{ColumnID: columnID, Kind: CellSelect, Select: v}}, nil
	case []any:
		sel := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: select option %T", ErrUnsupportedValue, e)
			}
			sel = append(sel, s)
		}
		return []Cell{{ColumnID: columnID, Kind: CellSelect, Select: sel}}, nil
	case string:
		return []Cell{{ColumnID: columnID, Kind: CellText, Text: v}}, nil
	}

	if n, ok := toFloat(value); ok {
		return []Cell{{ColumnID: columnID, Kind: CellNumber, Number: n}}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}
