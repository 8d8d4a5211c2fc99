package document

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// SanitizeMetadata normalizes arbitrary loader metadata into a map whose
// values are only strings, numbers, booleans or nil. It never fails: values
// that cannot be encoded degrade to a type-tag string. Sanitizing an already
// sanitized map is a no-op.
//
// A nil input yields an empty map, so callers can always range over the result.
func SanitizeMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		out[key] = sanitizeValue(value)
	}
	return out
}

// sanitizeValue maps a single metadata value to a primitive.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case bool:
		return val
	case error:
		// Diagnostic values keep their trace when the error type renders
		// one under %+v, otherwise just the message.
		return fmt.Sprintf("%+v", val)
	}

	if isNumeric(v) {
		return v
	}

	// Typed nil pointers and interfaces mean "no value" and collapse to nil
	// rather than encoding as the string "null".
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		// Cyclic or non-encodable structure: fall back to a stable type tag.
		return fmt.Sprintf("<%T>", v)
	}
	return string(encoded)
}

// isNumeric reports whether v is of any built-in numeric kind.
func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// StringValue reads a string metadata value. It returns false when the key is
// absent or the value is not a string.
func StringValue(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberValue reads a numeric metadata value as a float64, accepting any
// built-in numeric kind. It returns false when the key is absent, nil, or
// not numeric.
func NumberValue(meta map[string]any, key string) (float64, bool) {
	v, ok := meta[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// BoolValue reads a boolean metadata value. It returns false in the second
// result when the key is absent or the value is not a boolean.
func BoolValue(meta map[string]any, key string) (bool, bool) {
	v, ok := meta[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// PageNumber reads the chunk page number. It returns false when the page is
// absent or nil, which is the normal case for non-paginated sources.
func PageNumber(meta map[string]any) (int, bool) {
	n, ok := NumberValue(meta, KeyPage)
	if !ok {
		return 0, false
	}
	return int(n), true
}
