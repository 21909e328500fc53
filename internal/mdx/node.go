package mdx

import "encoding/json"

// NodeType discriminates MdxNode variants.
type NodeType string

const (
	NodeHTML      NodeType = "html"
	NodeComponent NodeType = "component"
)

// Node is one element of the rendered document tree: either a fragment of
// raw HTML or a component invocation with decoded props and child nodes.
type Node struct {
	Type     NodeType       `json:"type"`
	Content  string         `json:"content,omitempty"`
	Name     string         `json:"name,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Node         `json:"children,omitempty"`
}

// HTMLNode returns an html leaf.
func HTMLNode(content string) Node {
	return Node{Type: NodeHTML, Content: content}
}

// ComponentNode returns a component node. Nil props and children are
// replaced with empty values.
func ComponentNode(name string, props map[string]any, children []Node) Node {
	if props == nil {
		props = map[string]any{}
	}
	if children == nil {
		children = []Node{}
	}
	return Node{Type: NodeComponent, Name: name, Props: props, Children: children}
}

type htmlJSON struct {
	Type    NodeType `json:"type"`
	Content string   `json:"content"`
}

type componentJSON struct {
	Type     NodeType       `json:"type"`
	Name     string         `json:"name"`
	Props    map[string]any `json:"props"`
	Children []Node         `json:"children"`
}

// MarshalJSON emits only the fields of the node's variant. Component nodes
// always carry props and children.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Type == NodeComponent {
		c := ComponentNode(n.Name, n.Props, n.Children)
		return json.Marshal(componentJSON{Type: c.Type, Name: c.Name, Props: c.Props, Children: c.Children})
	}
	return json.Marshal(htmlJSON{Type: NodeHTML, Content: n.Content})
}

// Walk visits nodes in pre-order. Returning false from fn skips the
// children of that node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// ComponentNamesOf returns the names of all component nodes in pre-order.
func ComponentNamesOf(nodes []Node) []string {
	var names []string
	Walk(nodes, func(n Node) bool {
		if n.Type == NodeComponent {
			names = append(names, n.Name)
		}
		return true
	})
	return names
}
