package httpx

import (
	"fmt"
	"io"
	"net/http"
)

const maxResponseBytes = 8 << 20

func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// CoerceList normalizes the list response shapes the API is known to
// produce: a bare array, {"results": [...]}, {"data": [...]} or
// {"items": [...]}. Non-object entries are dropped; any other shape
// yields an empty list.
func CoerceList(payload any) []map[string]any {
	switch v := payload.(type) {
	case nil:
		return []map[string]any{}
	case []any:
		return onlyObjects(v)
	case map[string]any:
		for _, key := range []string{"results", "data", "items"} {
			if inner, ok := v[key].([]any); ok {
				return onlyObjects(inner)
			}
		}
	}
	return []map[string]any{}
}

func onlyObjects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Listing is the uniform view over paginated and flat list responses.
type Listing struct {
	Items     []map[string]any
	Next      string
	Paginated bool
}

// Normalize classifies a list payload as paginated (wrapper object with a
// results key and optional next cursor) or flat (bare array).
func Normalize(payload any) Listing {
	if wrapper, ok := payload.(map[string]any); ok {
		listing := Listing{Items: CoerceList(wrapper), Paginated: true}
		if next, ok := wrapper["next"].(string); ok {
			listing.Next = next
		}
		return listing
	}
	return Listing{Items: CoerceList(payload)}
}

// FirstID returns the first integer id found in items, or 0.
func FirstID(items []map[string]any) int {
	for _, item := range items {
		if id, ok := intField(item, "id"); ok {
			return id
		}
	}
	return 0
}

func intField(item map[string]any, key string) (int, bool) {
	switch v := item[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// IDs extracts every integer id from items, skipping malformed entries.
func IDs(items []map[string]any) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		if id, ok := intField(item, "id"); ok {
			out = append(out, id)
		}
	}
	return out
}
