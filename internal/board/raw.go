package board

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Lists API responses are decoded into generic maps because the item and
// schema shapes differ between API revisions. The helpers below never fail;
// they return zero values for anything they do not recognize.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstStr returns the first non-empty string value among keys.
func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m, k); s != "" {
			return s
		}
	}
	return ""
}

// path walks nested maps.
func path(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		cm := asMap(cur)
		if cm == nil {
			return nil
		}
		cur = cm[k]
	}
	return cur
}

// formatNumber renders a JSON number without exponent or trailing zeros.
func formatNumber(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// toFloat converts a JSON number to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// idsOf flattens a raw cell value into identifiers. It accepts a single
// string, an {id}/{value} object, or an array of either.
func idsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case map[string]any:
		if id := firstStr(t, "id", "value"); id != "" {
			return []string{id}
		}
		return nil
	}

	if n, ok := formatNumber(v); ok {
		return []string{n}
	}

	var out []string
	for _, e := range asSlice(v) {
		out = append(out, idsOf(e)...)
	}
	return out
}

// rawField is one cell of a raw item, independent of whether the API sent
// fields as an array of cell objects or as a key -> value map.
type rawField struct {
	ColumnID string
	Key      string
	Props    map[string]any
}

// cellProps are the properties that mark a value as a full cell object.
var cellProps = []string{"select", "options", "user", "date", "number", "text", "rich_text"} //nolint:gochecknoglobals // read-only lookup table

// mapFieldProps returns the properties of one value of a map-shaped fields
// object. Cell objects are used as they are; anything else is read as value.
func mapFieldProps(v any) map[string]any {
	if m := asMap(v); m != nil {
		for _, p := range cellProps {
			if _, ok := m[p]; ok {
				return m
			}
		}
	}
	return map[string]any{"value": v}
}

func itemFields(item map[string]any) []rawField {
	switch fs := item["fields"].(type) {
	case []any:
		out := make([]rawField, 0, len(fs))
		for _, f := range fs {
			m := asMap(f)
			if m == nil {
				continue
			}
			rf := rawField{ColumnID: firstStr(m, "column_id", "id"), Key: str(m, "key"), Props: m}
			if rf.Key == "" {
				rf.Key = rf.ColumnID
			}
			if rf.ColumnID == "" {
				rf.ColumnID = rf.Key
			}
			out = append(out, rf)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(fs))
		for k := range fs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]rawField, 0, len(keys))
		for _, k := range keys {
			out = append(out, rawField{ColumnID: k, Key: k, Props: mapFieldProps(fs[k])})
		}
		return out
	}
	return nil
}

func rawItems(resp map[string]any) []map[string]any {
	raw := asSlice(resp["items"])
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m := asMap(it); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func itemID(item map[string]any) string {
	return firstStr(item, "id", "row_id")
}

func listTitle(resp map[string]any, listID string) string {
	if list := asMap(resp["list"]); list != nil {
		if t := firstStr(list, "title", "name"); t != "" {
			return t
		}
	}
	return listID
}

// extractText flattens a plain string, a rich-text block structure or the
// JSON encoding of one into plain text.
func extractText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		trimmed := strings.TrimSpace(t)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			dec := json.NewDecoder(strings.NewReader(trimmed))
			dec.UseNumber()
			var doc any
			if err := dec.Decode(&doc); err == nil && isRichText(doc) {
				var b strings.Builder
				flattenRichText(doc, &b)
				return b.String()
			}
		}
		return t
	}

	if n, ok := formatNumber(v); ok {
		return n
	}

	var b strings.Builder
	flattenRichText(v, &b)
	return b.String()
}

// flattenRichText writes every leaf text of a rich-text tree in document order.
func flattenRichText(v any, b *strings.Builder) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			flattenRichText(e, b)
		}
	case map[string]any:
		switch txt := t["text"].(type) {
		case string:
			b.WriteString(txt)
			return
		case map[string]any:
			flattenRichText(txt, b)
			return
		}
		if els, ok := t["elements"]; ok {
			flattenRichText(els, b)
		}
	}
}

// isRichText reports whether v looks like a rich-text block or a list of them.
func isRichText(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		_, hasElements := t["elements"]
		_, hasText := t["text"]
		return hasElements || hasText
	case []any:
		return len(t) > 0 && isRichText(t[0])
	}
	return false
}
