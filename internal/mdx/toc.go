package mdx

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TocItem is one entry of a document's table of contents.
type TocItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// TableOfContentsOf lists the level 2 and 3 headings of a rendered node tree
// in document order. Ids are read from the tree, so every entry links to the
// anchor the converter assigned, including headings nested in components.
func TableOfContentsOf(nodes []Node) []TocItem {
	var sb strings.Builder
	Walk(nodes, func(n Node) bool {
		if n.Type == NodeHTML {
			sb.WriteString(n.Content)
		}
		return true
	})

	items := []TocItem{}
	parsed, err := ParseFragment(sb.String())
	if err != nil {
		return items
	}
	for _, n := range parsed {
		collectHeadings(n, &items)
	}
	return items
}

// TableOfContents renders a markdown body with the default converter and
// lists its level 2 and 3 headings.
func TableOfContents(markdown string) []TocItem {
	res, err := NewConverter().Convert(context.Background(), markdown)
	if err != nil {
		return []TocItem{}
	}
	return TableOfContentsOf(res.Nodes)
}

func collectHeadings(n *html.Node, items *[]TocItem) {
	if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
		if id := attr(n, "id"); id != "" {
			level := 2
			if n.DataAtom == atom.H3 {
				level = 3
			}
			*items = append(*items, TocItem{ID: id, Title: strings.TrimSpace(textContent(n)), Level: level})
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHeadings(c, items)
	}
}
