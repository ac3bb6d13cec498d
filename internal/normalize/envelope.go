package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Items flattens the API's three response shapes into a list of objects:
// a bare list, a {"data": [...]} envelope, or a single object.
func Items(raw []byte) ([]map[string]any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch v := value.(type) {
	case []any:
		return objects(v), nil
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			return objects(data), nil
		}
		return []map[string]any{v}, nil
	default:
		return nil, fmt.Errorf("unexpected response shape %T", value)
	}
}

// Object decodes a single-object payload.
func Object(raw []byte) (map[string]any, error) {
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return value, nil
}

func objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// key coerces a raw id to its canonical string form: numeric ids like 19 and
// string ids like "19" map to the same key.
func key(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// str returns the value as a string, or "" for non-strings.
func str(v any) string {
	s, _ := v.(string)
	return s
}

// field returns the first non-empty string among the candidate keys,
// consulted in priority order.
func field(obj map[string]any, candidates ...string) string {
	for _, c := range candidates {
		if s := str(obj[c]); s != "" {
			return s
		}
	}
	return ""
}

// section returns a nested object field, or nil when absent.
func section(obj map[string]any, name string) map[string]any {
	m, _ := obj[name].(map[string]any)
	return m
}
