package tweets

import (
	"encoding/json"
	"math"
)

// lookup walks nested objects by key. It reports false when any step is
// missing or is not an object.
func lookup(r map[string]any, path ...string) (any, bool) {
	var cur any = r
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if obj == nil {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func object(r map[string]any, path ...string) (map[string]any, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok && obj != nil
}

func str(r map[string]any, path ...string) (string, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// nullableStr requires the key to be present but accepts a null value.
func nullableStr(r map[string]any, path ...string) (*string, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return nil, false
	}
	if v == nil {
		return nil, true
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

func integer(r map[string]any, path ...string) (int64, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func boolean(r map[string]any, path ...string) (bool, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// truthy mirrors the "skip empty entries" rule for entity lists:
// null, empty objects, empty strings and empty lists are skipped.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case string:
		return x != ""
	case bool:
		return x
	}
	return true
}

// entityValues collects key from every non-empty entry of the list at path.
// A non-empty entry without a string under key fails the whole list.
func entityValues(r map[string]any, key string, path ...string) ([]string, bool) {
	v, ok := lookup(r, path...)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if !truthy(entry) {
			continue
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		s, ok := str(obj, key)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
