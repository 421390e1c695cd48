package googleads

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one decoded search result. The REST API emits camelCase keys and
// encodes int64 values as strings; accessors take GAQL field paths
// ("metrics.cost_micros") and accept either key style.
type Row map[string]any

// Lookup returns the raw value at path.
func (r Row) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			v, ok = m[camel(seg)]
		}
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Has reports whether path is present.
func (r Row) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// String returns the value at path as text, or "".
func (r Row) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Int returns the value at path as an integer. Missing or malformed values
// are zero.
func (r Row) Int(path string) int64 {
	v, ok := r.Lookup(path)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int64(f)
		}
	case float64:
		return int64(t)
	}
	return 0
}

// Float returns the value at path as a float. Missing or malformed values
// are zero.
func (r Row) Float(path string) float64 {
	v, ok := r.Lookup(path)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	case float64:
		return t
	}
	return 0
}

// Bool returns the value at path as a bool.
func (r Row) Bool(path string) bool {
	v, ok := r.Lookup(path)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

// Strings returns a list of strings at path.
func (r Row) Strings(path string) []string {
	v, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns a list of nested objects at path.
func (r Row) Objects(path string) []Row {
	v, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Row, 0, len(items))
	for _, it := range items {
		if m, ok := asMap(it); ok {
			out = append(out, Row(m))
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Row:
		return m, true
	}
	return nil, false
}

// camel converts a snake_case field name to the REST lowerCamelCase form.
func camel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

// CamelPath converts every segment of a dotted snake_case path.
func CamelPath(path string) string {
	segs := strings.Split(path, ".")
	for i, s := range segs {
		segs[i] = camel(s)
	}
	return strings.Join(segs, ".")
}
