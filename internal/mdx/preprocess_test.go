package mdx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPreprocess(t *testing.T) {
	tags := DefaultTags()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "number expression",
			in:   `<CardGrid cols={2}>`,
			want: `<CardGrid cols="__jsx:2">`,
		},
		{
			name: "quotes are escaped",
			in:   `<Tabs items={["a", "b"]} defaultValue="a">`,
			want: `<Tabs items="__jsx:[&quot;a&quot;, &quot;b&quot;]" defaultValue="a">`,
		},
		{
			name: "nested braces",
			in:   `<Columns widths={{ sm: 1, md: { lg: 2 } }}>`,
			want: `<Columns widths="__jsx:{ sm: 1, md: { lg: 2 } }">`,
		},
		{
			name: "brace inside string literal",
			in:   `<Callout title={"a } b"}>`,
			want: `<Callout title="__jsx:&quot;a } b&quot;">`,
		},
		{
			name: "case insensitive tag names",
			in:   `<accordion defaultOpen={true}>`,
			want: `<accordion defaultOpen="__jsx:true">`,
		},
		{
			name: "unrecognized tag untouched",
			in:   `<div style={{ color: "red" }}>`,
			want: `<div style={{ color: "red" }}>`,
		},
		{
			name: "quoted value untouched",
			in:   `<Card title="cols={2}" href="/x">`,
			want: `<Card title="cols={2}" href="/x">`,
		},
		{
			name: "unbalanced brace left as is",
			in:   `<Card cols={2>text`,
			want: `<Card cols={2>text`,
		},
		{
			name: "tag without attributes",
			in:   `<Tabs>{1}</Tabs>`,
			want: `<Tabs>{1}</Tabs>`,
		},
		{
			name: "inline code untouched",
			in:   "Use `<Card cols={2}>` like <Card cols={3}>",
			want: "Use `<Card cols={2}>` like <Card cols=\"__jsx:3\">",
		},
		{
			name: "multi-line expression",
			in:   "<Tabs items={[\n  1,\n  2\n]}>",
			want: `<Tabs items="__jsx:[&#10;  1,&#10;  2&#10;]">`,
		},
		{
			name: "ampersand escaped",
			in:   `<Badge label={"a &amp; b"}>`,
			want: `<Badge label="__jsx:&quot;a &amp;amp; b&quot;">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in, tags))
		})
	}
}

func TestPreprocess_FencedCodeUntouched(t *testing.T) {
	src := "<Card cols={1}>\n\n```mdx\n<Card cols={2}>\n```\n\n~~~~\n<Card cols={3}>\n~~~~\n\n    ```\n    <Card cols={4}>\n    ```\n"
	got := Preprocess(src, DefaultTags())

	assert.True(t, strings.HasPrefix(got, `<Card cols="__jsx:1">`))
	assert.Contains(t, got, "```mdx\n<Card cols={2}>\n```")
	assert.Contains(t, got, "~~~~\n<Card cols={3}>\n~~~~")
	assert.Contains(t, got, "    ```\n    <Card cols={4}>\n    ```")
}

func TestPreprocess_UnclosedFenceRunsToEnd(t *testing.T) {
	src := "```js\n<Card cols={2}>\n"
	assert.Equal(t, src, Preprocess(src, DefaultTags()))
}

func TestPreprocess_IdentityWithoutTags(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.StringMatching(`[a-zA-Z0-9 {}=\n*#\[\]()"'\x60-]{0,200}`).Draw(t, "src")
		if got := Preprocess(src, DefaultTags()); got != src {
			t.Fatalf("Preprocess changed text without tags:\n%q\n%q", src, got)
		}
	})
}

func TestPreprocess_FencedContentPreserved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.StringMatching(`(<Card cols=\{[0-9a-z ]{0,6}\}>|[a-z ={}<>]){0,20}`).Draw(t, "body")
		src := "```\n" + body + "\n```\n"
		if got := Preprocess(src, DefaultTags()); got != src {
			t.Fatalf("fenced code changed:\n%q\n%q", src, got)
		}
	})
}

func TestNormalizeComponentTags(t *testing.T) {
	tags := DefaultTags()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"self closing", `<Icon name="rocket" />`, `<Icon name="rocket"></Icon>`},
		{"self closing no attrs", `<Icon/>`, `<Icon></Icon>`},
		{"reserved image", `<Image src="/a.png" alt="A" />`, `<mdx-image src="/a.png" alt="A"></mdx-image>`},
		{"reserved frame pair", `<Frame caption="x">body</Frame>`, `<mdx-frame caption="x">body</mdx-frame>`},
		{"reserved math lowercase", `<math>x</math>`, `<mdx-math>x</mdx-math>`},
		{"slash inside quoted value", `<Card href="/a/" title="t">`, `<Card href="/a/" title="t">`},
		{"longer name untouched", `<Imagery src="x" />`, `<Imagery src="x" />`},
		{"plain html untouched", `<img src="x" />`, `<img src="x" />`},
		{"inline code untouched", "`<Image />`", "`<Image />`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeComponentTags(tt.in, tags))
		})
	}
}

func TestStripModuleStatements(t *testing.T) {
	src := "import { Callout } from '@/components'\nimport Tabs from \"./tabs\"\nexport const meta = 1\n\n# Title\n\n```js\nimport x from 'y'\n```\n"
	got := StripModuleStatements(src)

	assert.NotContains(t, got, "@/components")
	assert.NotContains(t, got, "./tabs")
	assert.NotContains(t, got, "export const")
	assert.Contains(t, got, "# Title")
	assert.Contains(t, got, "```js\nimport x from 'y'\n```")
}

func TestMaskCode(t *testing.T) {
	src := "a <script>\n```\n<script>\n```\nb `eval(x)` c\n"
	got := MaskCode(src)

	assert.Len(t, got, len(src))
	assert.Equal(t, strings.Count(src, "\n"), strings.Count(got, "\n"))
	assert.Equal(t, 1, strings.Count(got, "<script>"))
	assert.NotContains(t, got, "eval")
	assert.True(t, strings.HasPrefix(got, "a <script>\n"))
}

func TestMapProse(t *testing.T) {
	src := "x\n```\nx\n```\nx\n"
	got := MapProse(src, strings.ToUpper)
	assert.Equal(t, "X\n```\nx\n```\nX\n", got)
}

func TestMapProse_SkipsInlineCode(t *testing.T) {
	got := MapProse("a `b` c ``d ` e`` f `g", strings.ToUpper)
	assert.Equal(t, "A `b` C ``d ` e`` F `G", got)
}
