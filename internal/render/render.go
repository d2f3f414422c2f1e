// Package render turns a mind map into the formats tree viewers consume.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// Renderer writes a tree in one output format.
type Renderer struct {
	Name        string
	ContentType string
	Write       func(w io.Writer, root *doctree.Node) error
}

var renderers = map[string]Renderer{
	"json":    {Name: "json", ContentType: "application/json", Write: JSON},
	"mermaid": {Name: "mermaid", ContentType: "text/plain; charset=utf-8", Write: Mermaid},
	"outline": {Name: "outline", ContentType: "text/plain; charset=utf-8", Write: func(w io.Writer, root *doctree.Node) error {
		return Outline(w, root, "  ")
	}},
}

// ForFormat returns the renderer for name; an empty name means json.
func ForFormat(name string) (Renderer, error) {
	if name == "" {
		name = "json"
	}
	r, ok := renderers[strings.ToLower(name)]
	if !ok {
		return Renderer{}, fmt.Errorf("unknown format %q", name)
	}
	return r, nil
}

// JSON writes the {name, children?} shape. The root always carries a
// children array, possibly empty; other nodes omit it when they are leaves.
func JSON(w io.Writer, root *doctree.Node) error {
	children := root.Children
	if children == nil {
		children = []*doctree.Node{}
	}
	return json.NewEncoder(w).Encode(struct {
		Name     string          `json:"name"`
		Children []*doctree.Node `json:"children"`
	}{Name: root.Name, Children: children})
}

// Mermaid writes a mermaid "mindmap" diagram.
func Mermaid(w io.Writer, root *doctree.Node) error {
	var sb strings.Builder
	sb.WriteString("mindmap\n")
	id := 0
	doctree.Walk(root, func(n *doctree.Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth+1))
		if depth == 0 {
			fmt.Fprintf(&sb, "root((%s))\n", mermaidLabel(n.Name))
			return true
		}
		id++
		fmt.Fprintf(&sb, "n%d[%s]\n", id, mermaidLabel(n.Name))
		return true
	})
	_, err := io.WriteString(w, sb.String())
	return err
}

// mermaidLabel quotes a label so brackets and parentheses in node names
// do not end the shape early.
func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return `"` + oneLine(s) + `"`
}

// Outline writes the tree back as an indented outline, one line per node
// below the root. Parsing the result yields an equal tree.
func Outline(w io.Writer, root *doctree.Node, indent string) error {
	if indent == "" {
		indent = "  "
	}
	var sb strings.Builder
	doctree.Walk(root, func(n *doctree.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		sb.WriteString(strings.Repeat(indent, depth-1))
		sb.WriteString(singleLine(n.Name))
		sb.WriteByte('\n')
		return true
	})
	_, err := io.WriteString(w, sb.String())
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// singleLine keeps a name intact except for line breaks, which would split
// it into two outline entries.
func singleLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s))
}
