package board

import "strings"

// selectProps are the cell properties that carry option ids. Older list
// responses used "options" where current ones use "select".
var selectProps = []string{"select", "options"} //nolint:gochecknoglobals // read-only lookup table

// schemaIndex addresses schema fields by column id and by key; responses
// populate one or the other depending on the endpoint.
type schemaIndex struct {
	fields []SchemaField
	byID   map[string]int
	byKey  map[string]int
}

func newSchemaIndex(fields []SchemaField) *schemaIndex {
	idx := &schemaIndex{
		fields: fields,
		byID:   make(map[string]int, len(fields)),
		byKey:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := idx.byID[f.ID]; f.ID != "" && !dup {
			idx.byID[f.ID] = i
		}
		if _, dup := idx.byKey[f.Key]; f.Key != "" && !dup {
			idx.byKey[f.Key] = i
		}
	}
	return idx
}

func (s *schemaIndex) lookup(columnID, key string) (*SchemaField, bool) {
	if i, ok := s.byID[columnID]; ok && columnID != "" {
		return &s.fields[i], true
	}
	if i, ok := s.byKey[key]; ok && key != "" {
		return &s.fields[i], true
	}
	return nil, false
}

// schemaFrom extracts the column schema from a list or item-info response.
func schemaFrom(resp map[string]any) []SchemaField {
	candidates := []any{
		resp["schema"],
		path(resp, "list", "list_metadata", "schema"),
		path(resp, "list", "schema"),
		path(resp, "list_metadata", "schema"),
	}
	for _, c := range candidates {
		cols := asSlice(c)
		if cols == nil {
			cols = asSlice(path(asMap(c), "columns"))
		}
		if fields := parseSchema(cols); len(fields) > 0 {
			return fields
		}
	}
	return nil
}

func parseSchema(cols []any) []SchemaField {
	out := make([]SchemaField, 0, len(cols))
	for _, c := range cols {
		m := asMap(c)
		if m == nil {
			continue
		}
		f := SchemaField{
			ID:   firstStr(m, "id", "column_id"),
			Key:  str(m, "key"),
			Type: str(m, "type"),
		}
		if f.ID == "" && f.Key == "" {
			continue
		}
		if f.ID == "" {
			f.ID = f.Key
		}
		f.Label = firstStr(m, "name", "label", "key", "id")
		if f.Label == "" {
			f.Label = f.ID
		}
		f.Primary, _ = m["is_primary_column"].(bool)
		f.Options = parseOptions(m["options"])
		out = append(out, f)
	}
	return out
}

// parseOptions reads a column's choices, keeping the first occurrence of
// each value. Options arrive either as an array or as {choices: [...]}.
func parseOptions(v any) []Option {
	raw := asSlice(v)
	if raw == nil {
		raw = asSlice(path(asMap(v), "choices"))
	}

	var out []Option
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		m := asMap(r)
		if m == nil {
			continue
		}
		value := firstStr(m, "value", "id")
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}

		label := firstStr(m, "label", "name")
		if label == "" {
			label = value
		}
		out = append(out, Option{Value: value, Label: label, Color: str(m, "color")})
	}
	return out
}

func isStatusType(t string) bool {
	return t == "select" || t == "status"
}

// matches reports whether the cell belongs to the schema column, by column
// id first and key second.
func (f rawField) matches(sf *SchemaField) bool {
	return (sf.ID != "" && f.ColumnID == sf.ID) || (sf.Key != "" && f.Key == sf.Key)
}

// statusFromSchema returns the first select or status column.
func statusFromSchema(fields []SchemaField) *SchemaField {
	for i := range fields {
		if isStatusType(fields[i].Type) {
			f := fields[i]
			return &f
		}
	}
	return nil
}

// selectValues returns the option ids held under a select-like property.
func selectValues(props map[string]any) ([]any, bool) {
	for _, p := range selectProps {
		if arr, ok := props[p].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// inferStatusField scans item cells when no schema names a status column.
// The first non-name cell holding a select-like array becomes the status
// field; its options are every distinct id seen across all items.
func inferStatusField(items []map[string]any) *SchemaField {
	var status *SchemaField
	for _, it := range items {
		for _, f := range itemFields(it) {
			if strings.EqualFold(f.Key, "name") {
				continue
			}
			if _, ok := selectValues(f.Props); ok {
				status = &SchemaField{ID: f.ColumnID, Key: f.Key, Type: "select", Label: f.Key}
				break
			}
		}
		if status != nil {
			break
		}
	}
	if status == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, it := range items {
		for _, f := range itemFields(it) {
			if !f.matches(status) {
				continue
			}
			arr, _ := selectValues(f.Props)
			for _, id := range idsOf(arr) {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				status.Options = append(status.Options, Option{Value: id, Label: id})
			}
		}
	}
	return status
}

// statusValueOf returns the option id an item holds for the status field,
// or NoStatus.
func statusValueOf(fields []rawField, status *SchemaField) string {
	if status == nil {
		return NoStatus
	}
	for _, f := range fields {
		if !f.matches(status) {
			continue
		}
		var ids []string
		if arr, ok := selectValues(f.Props); ok {
			ids = idsOf(arr)
		} else {
			ids = idsOf(f.Props["value"])
		}
		if len(ids) > 0 {
			return ids[0]
		}
		return NoStatus
	}
	return NoStatus
}
