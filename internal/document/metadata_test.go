package document

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeMetadata_Primitives(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"string", "hello", "hello"},
		{"empty string", "", ""},
		{"int", 42, 42},
		{"int64", int64(7), int64(7)},
		{"uint", uint(3), uint(3)},
		{"float64", 3.14, 3.14},
		{"float32", float32(1.5), float32(1.5)},
		{"bool true", true, true},
		{"bool false", false, false},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeMetadata(map[string]any{"k": tt.value})
			if !reflect.DeepEqual(got["k"], tt.want) {
				t.Errorf("SanitizeMetadata(%v) = %v (%T), want %v (%T)", tt.value, got["k"], got["k"], tt.want, tt.want)
			}
		})
	}
}

func TestSanitizeMetadata_ComplexValues(t *testing.T) {
	t.Run("slice encodes as JSON", func(t *testing.T) {
		got := SanitizeMetadata(map[string]any{"tags": []string{"a", "b"}})
		if got["tags"] != `["a","b"]` {
			t.Errorf("got %v, want JSON string", got["tags"])
		}
	})

	t.Run("map encodes as JSON", func(t *testing.T) {
		got := SanitizeMetadata(map[string]any{"nested": map[string]int{"x": 1}})
		if got["nested"] != `{"x":1}` {
			t.Errorf("got %v, want JSON string", got["nested"])
		}
	})

	t.Run("non-encodable falls back to type tag", func(t *testing.T) {
		got := SanitizeMetadata(map[string]any{"ch": make(chan int)})
		s, ok := got["ch"].(string)
		if !ok || !strings.Contains(s, "chan int") {
			t.Errorf("got %v, want type-tag string", got["ch"])
		}
	})

	t.Run("cyclic structure falls back to type tag", func(t *testing.T) {
		type node struct {
			Next *node
		}
		n := &node{}
		n.Next = n
		got := SanitizeMetadata(map[string]any{"cycle": n})
		if _, ok := got["cycle"].(string); !ok {
			t.Errorf("got %T, want string fallback", got["cycle"])
		}
	})

	t.Run("error uses its message", func(t *testing.T) {
		got := SanitizeMetadata(map[string]any{"err": errors.New("boom")})
		s, ok := got["err"].(string)
		if !ok || !strings.Contains(s, "boom") {
			t.Errorf("got %v, want error text", got["err"])
		}
	})

	t.Run("typed nil pointer collapses to nil", func(t *testing.T) {
		var p *int
		got := SanitizeMetadata(map[string]any{"p": p})
		if got["p"] != nil {
			t.Errorf("got %v, want nil", got["p"])
		}
	})
}

func TestSanitizeMetadata_Idempotent(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"a": "x", "b": 1, "c": true, "d": nil},
		{"tags": []string{"a"}, "err": errors.New("bad"), "f": func() {}},
		{"deep": map[string]any{"inner": []any{1, "two", nil}}},
	}

	for _, in := range inputs {
		once := SanitizeMetadata(in)
		twice := SanitizeMetadata(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("sanitize not idempotent: %v != %v", once, twice)
		}
		for k, v := range once {
			if v == nil {
				continue
			}
			switch v.(type) {
			case string, bool,
				int, int8, int16, int32, int64,
				uint, uint8, uint16, uint32, uint64,
				float32, float64:
			default:
				t.Errorf("key %q has non-primitive value %T after sanitize", k, v)
			}
		}
	}
}

func TestSanitizeMetadata_NeverPanics(t *testing.T) {
	// A grab bag of hostile shapes; the function must be total.
	hostile := map[string]any{
		"fn":      func() {},
		"ch":      (chan struct{})(nil),
		"complex": complex(1, 2),
		"deep":    map[string]any{"f": func() {}},
	}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("SanitizeMetadata panicked: %v", r)
		}
	}()
	_ = SanitizeMetadata(hostile)
}

func TestTypedAccessors(t *testing.T) {
	meta := map[string]any{
		"filename": "a.pdf",
		"page":     3,
		"float":    2.5,
		"flag":     true,
		"page64":   int64(9),
		"none":     nil,
	}

	if s, ok := StringValue(meta, "filename"); !ok || s != "a.pdf" {
		t.Errorf("StringValue(filename) = %q, %v", s, ok)
	}
	if _, ok := StringValue(meta, "missing"); ok {
		t.Error("StringValue(missing) should not be ok")
	}
	if _, ok := StringValue(meta, "page"); ok {
		t.Error("StringValue(page) should not be ok for non-string")
	}
	if n, ok := NumberValue(meta, "page"); !ok || n != 3 {
		t.Errorf("NumberValue(page) = %v, %v", n, ok)
	}
	if n, ok := NumberValue(meta, "page64"); !ok || n != 9 {
		t.Errorf("NumberValue(page64) = %v, %v", n, ok)
	}
	if n, ok := NumberValue(meta, "float"); !ok || n != 2.5 {
		t.Errorf("NumberValue(float) = %v, %v", n, ok)
	}
	if _, ok := NumberValue(meta, "none"); ok {
		t.Error("NumberValue(none) should not be ok for nil")
	}
	if b, ok := BoolValue(meta, "flag"); !ok || !b {
		t.Errorf("BoolValue(flag) = %v, %v", b, ok)
	}
	if p, ok := PageNumber(meta); !ok || p != 3 {
		t.Errorf("PageNumber = %v, %v", p, ok)
	}
	if _, ok := PageNumber(map[string]any{"page": nil}); ok {
		t.Error("PageNumber should not be ok for nil page")
	}
}
