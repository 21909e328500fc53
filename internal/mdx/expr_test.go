package mdx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"pgregory.net/rapid"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"integer", "2", 2.0},
		{"negative", "-3", -3.0},
		{"float", "1.5", 1.5},
		{"integral float", "2.0", 2.0},
		{"true", "true", true},
		{"false", " false ", false},
		{"null", "null", nil},
		{"undefined", "undefined", nil},
		{"double quoted", `"hello"`, "hello"},
		{"double quoted escapes", `"a\"b"`, `a"b`},
		{"single quoted", `'it\'s'`, "it's"},
		{"template literal", "`plain`", "plain"},
		{"template with substitution", "`a ${b}`", "`a ${b}`"},
		{"json array", `["a", "b"]`, []any{"a", "b"}},
		{"json object", `{"sm": 1, "md": 2.5}`, map[string]any{"sm": 1.0, "md": 2.5}},
		{"js object", `{ sm: 1, md: 'two', flags: [true, null] }`, map[string]any{"sm": 1.0, "md": "two", "flags": []any{true, nil}}},
		{"compact js object", `{sm:1,md:2}`, map[string]any{"sm": 1.0, "md": 2.0}},
		{"trailing comma", `[1, 2, ]`, []any{1.0, 2.0}},
		{"nested objects", `[{ label: "A", value: "a" }]`, []any{map[string]any{"label": "A", "value": "a"}}},
		{"identifier", "props.value", "props.value"},
		{"arrow function", "() => alert(1)", "() => alert(1)"},
		{"concatenation", `"a" + "b"`, `"a" + "b"`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpression(tt.in))
		})
	}
}

func TestDecodeAttribute(t *testing.T) {
	assert.Equal(t, true, DecodeAttribute(""))
	assert.Equal(t, true, DecodeAttribute("true"))
	assert.Equal(t, "false", DecodeAttribute("false"))
	assert.Equal(t, "info", DecodeAttribute("info"))
	assert.Equal(t, 3.0, DecodeAttribute("__jsx:3"))
	assert.Equal(t, []any{"a"}, DecodeAttribute(`__jsx:["a"]`))
}

// The HTML tokenizer's entity decoding must invert EscapeExpression exactly.
func TestEscapeExpression_RoundTripThroughParser(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		expr := rapid.StringMatching(`[ -~\n]{0,60}`).Draw(t, "expr")
		nodes, err := ParseFragment(`<card data="` + ExpressionPrefix + EscapeExpression(expr) + `"></card>`)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Equal(t, html.ElementNode, nodes[0].Type)
		require.Len(t, nodes[0].Attr, 1)
		if got := nodes[0].Attr[0].Val; got != ExpressionPrefix+expr {
			t.Fatalf("round trip mismatch: %q != %q", got, ExpressionPrefix+expr)
		}
	})
}

func TestPreprocess_ExpressionSurvivesPipeline(t *testing.T) {
	c := NewConverter()
	res, err := c.Convert(t.Context(), "<Tabs items={[{ label: \"A & B\", value: 'a' }]}>\n</Tabs>\n")
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, []any{map[string]any{"label": "A & B", "value": "a"}}, res.Nodes[0].Props["items"])
}
