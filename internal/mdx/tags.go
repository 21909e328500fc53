package mdx

import "strings"

// Dictionary is an immutable case-insensitive lookup from lowercase names
// (as produced by the HTML parser) to canonical names.
type Dictionary struct {
	entries map[string]string
}

// NewDictionary builds a dictionary from canonical names plus extra aliases.
// Every canonical name is reachable through its lowercase form.
func NewDictionary(canonical []string, aliases map[string]string) *Dictionary {
	entries := make(map[string]string, len(canonical)+len(aliases))
	for _, name := range canonical {
		entries[strings.ToLower(name)] = name
	}
	for alias, name := range aliases {
		entries[strings.ToLower(alias)] = name
	}
	return &Dictionary{entries: entries}
}

// Lookup returns the canonical name for name, matching case-insensitively.
func (d *Dictionary) Lookup(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	canonical, ok := d.entries[strings.ToLower(name)]
	return canonical, ok
}

// Has reports whether name is known.
func (d *Dictionary) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Canonical returns the distinct canonical names.
func (d *Dictionary) Canonical() []string {
	seen := make(map[string]struct{}, len(d.entries))
	out := make([]string, 0, len(d.entries))
	for _, name := range d.entries {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ComponentNames lists the custom components the UI layer hydrates.
var ComponentNames = []string{
	"Accordion", "AccordionItem",
	"Tabs", "Tab",
	"Callout",
	"Card", "CardGrid", "ImageCard", "ImageCardGrid",
	"Steps", "Step",
	"Icon", "Mermaid", "Math",
	"Columns", "Column",
	"DocBadge", "Badge", "Tooltip",
	"Frame", "CodeBlock", "Image", "Video",
	"ApiEndpoint", "ApiParams", "ApiResponse", "ApiPlayground", "ApiReference",
}

var defaultTags = NewDictionary(ComponentNames, map[string]string{
	"accordion-item":  "AccordionItem",
	"card-grid":       "CardGrid",
	"image-card":      "ImageCard",
	"image-card-grid": "ImageCardGrid",
	"doc-badge":       "DocBadge",
	"code-block":      "CodeBlock",
	"api-endpoint":    "ApiEndpoint",
	"api-params":      "ApiParams",
	"api-response":    "ApiResponse",
	"api-playground":  "ApiPlayground",
	"api-reference":   "ApiReference",
	"mdx-image":       "Image",
	"mdx-frame":       "Frame",
	"mdx-math":        "Math",
})

var defaultProps = NewDictionary(nil, map[string]string{
	"defaultopen":     "defaultOpen",
	"defaultvalue":    "defaultValue",
	"classname":       "className",
	"class":           "className",
	"tabgroup":        "tabGroup",
	"defaultchecked":  "defaultChecked",
	"defaultselected": "defaultSelected",
	"apikey":          "apiKey",
	"baseurl":         "baseURL",
	"showlinenumbers": "showLineNumbers",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
})

// DefaultTags returns the shared component tag dictionary.
func DefaultTags() *Dictionary { return defaultTags }

// DefaultProps returns the shared prop name dictionary. Names missing from it
// pass through unchanged.
func DefaultProps() *Dictionary { return defaultProps }
