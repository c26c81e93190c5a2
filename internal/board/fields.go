package board

import (
	"strings"
)

// valueProps lists, per column type, the cell properties that may hold the
// value, in precedence order.
var valueProps = map[string][]string{ //nolint:gochecknoglobals // read-only lookup table
	"people": {"user", "value"},
	"select": {"select", "options", "value"},
	"status": {"select", "options", "value"},
	"date":   {"date", "value"},
	"number": {"number", "value"},
}

var defaultValueProps = []string{"value", "text", "rich_text"} //nolint:gochecknoglobals // read-only lookup table

func isTitleKey(s string) bool {
	return strings.EqualFold(s, "title") || strings.EqualFold(s, "name")
}

func isTitleField(f rawField, sf *SchemaField) bool {
	if isTitleKey(f.Key) {
		return true
	}
	return sf != nil && (sf.Primary || isTitleKey(sf.Label))
}

// titleOf extracts the display title and reports whether it was stored as
// rich text. Candidates are tried in order: rich_text, value, text.
func titleOf(f rawField) (title string, rich bool) {
	for _, p := range []string{"rich_text", "value", "text"} {
		v, ok := f.Props[p]
		if !ok {
			continue
		}
		t := extractText(v)
		if strings.TrimSpace(t) == "" {
			continue
		}
		_, isPlain := v.(string)
		return t, p == "rich_text" || !isPlain || t != v
	}
	return "", false
}

// inferType guesses a column type from the property carrying the value when
// the schema does not describe the cell.
func inferType(props map[string]any) string {
	switch {
	case props["select"] != nil, props["options"] != nil:
		return "select"
	case props["user"] != nil:
		return "people"
	case props["date"] != nil:
		return "date"
	case props["number"] != nil:
		return "number"
	case props["rich_text"] != nil:
		return "rich_text"
	case props["text"] != nil:
		return "text"
	}
	if _, ok := props["value"].(string); ok {
		return "text"
	}
	return ""
}

func cellType(f rawField, idx *schemaIndex) (typ, label string, sf *SchemaField) {
	sf, ok := idx.lookup(f.ColumnID, f.Key)
	if !ok {
		return inferType(f.Props), f.Key, nil
	}
	label = sf.Label
	if label == "" {
		label = f.Key
	}
	return sf.Type, label, sf
}

func cellValue(props map[string]any, typ string) any {
	keys, ok := valueProps[typ]
	if !ok {
		keys = defaultValueProps
	}
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// normalizeField turns one raw cell into a display-ready field.
func normalizeField(f rawField, idx *schemaIndex, profiles map[string]UserProfile) Field {
	typ, label, sf := cellType(f, idx)
	value := cellValue(f.Props, typ)

	return Field{
		ColumnID:     f.ColumnID,
		Key:          f.Key,
		Type:         typ,
		Label:        label,
		Value:        value,
		DisplayValue: displayValue(typ, value, sf, profiles),
	}
}

func displayValue(typ string, value any, sf *SchemaField, profiles map[string]UserProfile) string {
	switch typ {
	case "people":
		ids := idsOf(value)
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, profileFor(id, profiles).DisplayName)
		}
		return strings.Join(names, ", ")
	case "select", "status":
		ids := idsOf(value)
		labels := make([]string, 0, len(ids))
		for _, id := range ids {
			if sf != nil {
				labels = append(labels, sf.OptionLabel(id))
			} else {
				labels = append(labels, id)
			}
		}
		return strings.Join(labels, ", ")
	case "date":
		if s, ok := value.(string); ok {
			return s
		}
		return strings.Join(idsOf(value), ", ")
	case "number":
		if n, ok := formatNumber(value); ok {
			return n
		}
		parts := make([]string, 0)
		for _, e := range asSlice(value) {
			if n, ok := formatNumber(e); ok {
				parts = append(parts, n)
			}
		}
		return strings.Join(parts, ", ")
	}

	return extractText(value)
}

func profileFor(id string, profiles map[string]UserProfile) UserProfile {
	if p, ok := profiles[id]; ok && p.DisplayName != "" {
		return p
	}
	return fallbackProfile(id)
}

// peopleIDs returns the user ids of every people cell of the items, deduplicated
// in first-seen order.
func peopleIDs(items []map[string]any, idx *schemaIndex) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, it := range items {
		for _, f := range itemFields(it) {
			typ, _, _ := cellType(f, idx)
			if typ != "people" {
				continue
			}
			for _, id := range idsOf(cellValue(f.Props, typ)) {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
