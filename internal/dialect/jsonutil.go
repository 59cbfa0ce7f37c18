package dialect

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// jsonMap decodes a JSON object payload. Strict decoding is tried first;
// on failure the payload is run through a comment/trailing-comma strip,
// since some tools emit hand-assembled almost-JSON.
func jsonMap(data []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		return m, true
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err == nil {
		return m, true
	}
	return nil, false
}

func validJSON(s string) bool {
	return json.Valid([]byte(s))
}

// hasJSONKey reports whether s decodes to a JSON object containing key.
func hasJSONKey(s, key string) bool {
	m, ok := jsonMap([]byte(s))
	if !ok {
		return false
	}
	_, has := m[key]
	return has
}

// getStr returns the first present key's value as a string. Numbers and
// booleans are formatted; other shapes read as empty.
func getStr(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok {
			return s
		}
	}
	return ""
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// sortedKeys returns the map keys not in skip, sorted, so extras land in
// the record's parameter map in a deterministic order.
func sortedKeys(m map[string]any, skip map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// modelName strips directories and a trailing extension from a model
// path, since several tools store full checkpoint paths.
func modelName(p string) string {
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		p = p[i+1:]
	}
	for _, ext := range []string{".safetensors", ".ckpt", ".pt"} {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

// sizeString formats width/height scalars as "WxH", empty if either is
// missing.
func sizeString(m map[string]any, wKey, hKey string) string {
	w := getStr(m, wKey)
	h := getStr(m, hKey)
	if w == "" || h == "" {
		return ""
	}
	return w + "x" + h
}
