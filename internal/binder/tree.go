// Package binder turns a table handle into a display tree of dashboard
// widgets plus the callbacks that keep them live. The host application
// decides how the tree is rendered and how callbacks are routed; the
// binder only describes structure and behavior.
package binder

// NodeKind identifies the widget a display node renders as.
type NodeKind int

const (
	// NodeRegion is a plain grouping container.
	NodeRegion NodeKind = iota
	// NodeLabel is static text, typically a widget caption.
	NodeLabel
	// NodeTextInput is a free-text filter or form field.
	NodeTextInput
	// NodeNumberRange is a min/max pair over a numeric column.
	NodeNumberRange
	// NodeDateInput is a date picker field.
	NodeDateInput
	// NodeSelect is a dropdown with a fixed option list.
	NodeSelect
	// NodeGrid is the row grid.
	NodeGrid
	// NodeButton triggers a named callback.
	NodeButton
	// NodeModal is an edit dialog, hidden until opened.
	NodeModal
	// NodeConfirm gates a destructive callback behind a confirmation
	// prompt. Callback names the callback the prompt confirms.
	NodeConfirm
	// NodeMessage is a status or error message area.
	NodeMessage
)

// Node is one element of a display tree. Which fields are meaningful
// depends on Kind: a grid carries Header and Rows, an input carries
// Column, a select carries Options, and so on.
type Node struct {
	ID       string
	Kind     NodeKind
	Label    string
	Column   string
	Options  []string
	Header   []string
	Rows     [][]string
	Message  string
	Callback string
	Children []*Node
}

// Find returns the descendant node with the given ID, or nil.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// walk visits n and all descendants in depth-first order.
func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// DisplayTree is the full widget hierarchy for one bound table. All
// node IDs share the tree's namespace prefix, so several trees for the
// same table can coexist on one page.
type DisplayTree struct {
	Namespace string
	Title     string
	Root      *Node
}

// ID builds a namespaced element ID.
func (t *DisplayTree) ID(suffix string) string {
	return t.Namespace + "-" + suffix
}

// Find returns the node with the given ID, or nil.
func (t *DisplayTree) Find(id string) *Node {
	return t.Root.Find(id)
}

// NodeIDs returns the IDs of all nodes in depth-first order.
func (t *DisplayTree) NodeIDs() []string {
	var ids []string
	t.Root.walk(func(n *Node) {
		if n.ID != "" {
			ids = append(ids, n.ID)
		}
	})
	return ids
}
