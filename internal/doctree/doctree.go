package doctree

// RootName is the fixed name of the synthetic root every parse returns.
const RootName = "Document"

// Node is one entry of a mind map. The JSON shape is the one tree renderers
// consume: {"name": "...", "children": [...]}, children omitted on leaves.
type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// NewRoot returns an empty root. Unlike other nodes its Children slice is
// never nil.
func NewRoot() *Node {
	return &Node{Name: RootName, Children: []*Node{}}
}

// Add appends child as the last child of n and returns child.
func (n *Node) Add(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Child returns the last child named name, or nil.
func (n *Node) Child(name string) *Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if n.Children[i].Name == name {
			return n.Children[i]
		}
	}
	return nil
}

// Equal reports whether a and b have the same names, shape and order.
// A nil children slice equals an empty one.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants depth-first in pre-order. The root is
// at depth 0. Returning false from fn skips that node's children.
func Walk(n *Node, fn func(node *Node, depth int) bool) {
	var walk func(node *Node, depth int)
	walk = func(node *Node, depth int) {
		if !fn(node, depth) {
			return
		}
		for _, c := range node.Children {
			walk(c, depth+1)
		}
	}
	if n != nil {
		walk(n, 0)
	}
}

// Count returns the number of nodes under n, excluding n itself.
func Count(n *Node) int {
	total := -1
	Walk(n, func(*Node, int) bool {
		total++
		return true
	})
	if total < 0 {
		return 0
	}
	return total
}

// Depth returns the deepest level below n (0 for a leaf or nil).
func Depth(n *Node) int {
	max := 0
	Walk(n, func(_ *Node, d int) bool {
		if d > max {
			max = d
		}
		return true
	})
	return max
}
