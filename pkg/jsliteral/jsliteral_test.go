package jsliteral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Primitives(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"double quoted string", `"hello"`, "hello"},
		{"single quoted string", `'hello'`, "hello"},
		{"backtick string", "`hello`", "hello"},
		{"escaped quotes", `"say \"hi\""`, `say "hi"`},
		{"newline escape", `"a\nb"`, "a\nb"},
		{"unicode escape", "\"\\u00e9\"", "é"},
		{"surrogate pair escape", "\"\\ud83d\\ude00\"", "😀"},
		{"raw multibyte passthrough", `"é"`, "é"},
		{"integer", `42`, float64(42)},
		{"negative", `-7`, float64(-7)},
		{"float", `3.14`, 3.14},
		{"exponent", `1.5e3`, 1500.0},
		{"negative exponent", `2E-2`, 0.02},
		{"hex", `0xff`, float64(255)},
		{"true", `true`, true},
		{"false", `false`, false},
		{"null", `null`, nil},
		{"undefined", `undefined`, nil},
		{"void zero", `void 0`, nil},
		{"bang zero is true", `!0`, true},
		{"bang one is false", `!1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Objects(t *testing.T) {
	t.Run("unquoted keys", func(t *testing.T) {
		got, err := Parse(`{name: "Wood", tier: 2}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Wood", "tier": float64(2)}, got)
	})

	t.Run("single quoted keys", func(t *testing.T) {
		got, err := Parse(`{'itemId': 101}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"itemId": float64(101)}, got)
	})

	t.Run("trailing comma", func(t *testing.T) {
		got, err := Parse(`{a: 1, b: 2,}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, got)
	})

	t.Run("nested", func(t *testing.T) {
		got, err := Parse(`{data: {buildings: [{entityId: "b1"}], items: []}}`)
		require.NoError(t, err)
		data := got.(map[string]any)["data"].(map[string]any)
		assert.Len(t, data["buildings"], 1)
		assert.Empty(t, data["items"])
	})

	t.Run("dollar and underscore keys", func(t *testing.T) {
		got, err := Parse(`{$key: 1, _private: 2}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"$key": float64(1), "_private": float64(2)}, got)
	})
}

func TestParse_Arrays(t *testing.T) {
	t.Run("mixed values", func(t *testing.T) {
		got, err := Parse(`[1, "two", true, null]`)
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1), "two", true, nil}, got)
	})

	t.Run("trailing comma", func(t *testing.T) {
		got, err := Parse(`[1, 2, 3,]`)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestParse_ExpressionForms(t *testing.T) {
	t.Run("call expression discards to null", func(t *testing.T) {
		got, err := Parse(`{pending: __sveltekit_1a2b3c.defer(1)}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"pending": nil}, got)
	})

	t.Run("new Date discards to null", func(t *testing.T) {
		got, err := Parse(`{at: new Date("2024-01-01T00:00:00Z")}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"at": nil}, got)
	})

	t.Run("nested call arguments stay balanced", func(t *testing.T) {
		got, err := Parse(`{v: fn({a: [1, "x)"], b: g(2)})}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"v": nil}, got)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ``},
		{"unterminated object", `{a: 1`},
		{"unterminated string", `"abc`},
		{"missing colon", `{a 1}`},
		{"bare identifier", `window`},
		{"trailing garbage", `{a: 1} extra`},
		{"function body", `function() { return 1; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestCaptureObject(t *testing.T) {
	t.Run("balanced braces", func(t *testing.T) {
		src := `prefix({a: {b: 1}}) suffix`
		got, err := CaptureObject(src, 0)
		require.NoError(t, err)
		assert.Equal(t, `{a: {b: 1}}`, got)
	})

	t.Run("braces inside strings ignored", func(t *testing.T) {
		src := `resolve({name: "has } brace", n: 1})`
		got, err := CaptureObject(src, 0)
		require.NoError(t, err)
		assert.Equal(t, `{name: "has } brace", n: 1}`, got)
	})

	t.Run("escaped quote inside string", func(t *testing.T) {
		src := `x({s: "a\"}b"})`
		got, err := CaptureObject(src, 0)
		require.NoError(t, err)
		assert.Equal(t, `{s: "a\"}b"}`, got)
	})

	t.Run("unbalanced input errors", func(t *testing.T) {
		_, err := CaptureObject(`call({a: {b: 1}`, 0)
		assert.Error(t, err)
	})

	t.Run("no object errors", func(t *testing.T) {
		_, err := CaptureObject(`no braces here`, 0)
		assert.Error(t, err)
	})
}
