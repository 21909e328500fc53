package mdx

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var numberRe = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// DecodeAttribute converts an HTML attribute value into a prop value.
// Expression-carrying values are parsed, a bare or "true" attribute becomes
// boolean true and everything else stays a string.
func DecodeAttribute(val string) any {
	if expr, ok := strings.CutPrefix(val, ExpressionPrefix); ok {
		return ParseExpression(expr)
	}
	if val == "" || val == "true" {
		return true
	}
	return val
}

// ParseExpression evaluates the literal subset of JSX expressions: numbers,
// booleans, null/undefined, quoted strings, object and array literals.
// Anything else is returned as the trimmed source text.
func ParseExpression(expr string) any {
	s := strings.TrimSpace(expr)
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "undefined":
		return nil
	case "":
		return ""
	}

	if numberRe.MatchString(s) {
		return parseNumber(s)
	}
	if str, ok := unquote(s); ok {
		return str
	}
	if s[0] == '{' || s[0] == '[' {
		if v, ok := parseLiteral(s); ok {
			return v
		}
	}
	return s
}

// parseNumber returns s as a float64, the type numbers also decode to when
// a node tree is read back from JSON.
func parseNumber(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'' && q != '`') || s[len(s)-1] != q {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if skipString(s, 0) != len(s)-1 {
		return "", false
	}
	switch q {
	case '"':
		var out string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out, true
		}
		return inner, true
	case '`':
		if strings.Contains(inner, "${") {
			return "", false
		}
		return inner, true
	default:
		r := strings.NewReplacer(`\'`, `'`, `\\`, `\`, `\"`, `"`, `\n`, "\n", `\t`, "\t")
		return r.Replace(inner), true
	}
}

// parseLiteral decodes an object or array literal, first as JSON and then as
// a YAML flow collection, which accepts unquoted keys and single quotes.
func parseLiteral(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err == nil && !dec.More() {
		return normalizeJSON(v), true
	}

	var y any
	if err := yaml.Unmarshal([]byte(flowLiteral(s)), &y); err == nil {
		if out, ok := normalizeYAML(y); ok {
			return out, true
		}
	}
	return nil, false
}

// flowLiteral adapts JS object syntax to YAML flow syntax: a space after
// every key colon and no trailing commas.
func flowLiteral(s string) string {
	var b bytes.Buffer
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\'':
			end := skipString(s, i)
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(s[i : end+1])
			i = end
		case ':':
			b.WriteByte(c)
			if i+1 < len(s) && s[i+1] != ' ' {
				b.WriteByte(' ')
			}
		case ',':
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		return parseNumber(t.String())
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeJSON(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeJSON(val)
		}
		return t
	default:
		return v
	}
}

// normalizeYAML makes decoded YAML JSON-safe and turns integers into
// float64. Mappings with non-string keys are rejected.
func normalizeYAML(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			out, ok := normalizeYAML(val)
			if !ok {
				return nil, false
			}
			t[k] = out
		}
		return t, true
	case map[any]any:
		return nil, false
	case []any:
		for i, val := range t {
			out, ok := normalizeYAML(val)
			if !ok {
				return nil, false
			}
			t[i] = out
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string, bool, float64, nil:
		return t, true
	default:
		return nil, false
	}
}
