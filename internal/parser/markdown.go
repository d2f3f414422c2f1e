package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark. Headings nest by
// level, list items nest by list depth under the current heading, and
// paragraphs become leaves.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	root := doctree.NewRoot()
	stack := []stackEntry{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			if title == "" {
				continue
			}
			stack = nest(stack, &doctree.Node{Name: title}, node.Level)
		case *ast.List:
			addMarkdownList(stack[len(stack)-1].node, node, src)
		case *ast.Blockquote:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t := inlineText(c, src); t != "" {
					stack[len(stack)-1].node.Add(&doctree.Node{Name: t})
				}
			}
		case *ast.Paragraph, *ast.TextBlock:
			if t := inlineText(node, src); t != "" {
				stack[len(stack)-1].node.Add(&doctree.Node{Name: t})
			}
		}
	}

	return root, nil
}

// addMarkdownList attaches every item of list to parent. An item's first
// text block names it; later blocks and nested lists become its children.
func addMarkdownList(parent *doctree.Node, list *ast.List, src []byte) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var node *doctree.Node
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				target := parent
				if node != nil {
					target = node
				}
				addMarkdownList(target, sub, src)
				continue
			}
			t := inlineText(c, src)
			if t == "" {
				continue
			}
			if node == nil {
				node = parent.Add(&doctree.Node{Name: t})
			} else {
				node.Add(&doctree.Node{Name: t})
			}
		}
	}
}

// inlineText gets the visible text of a goldmark block, markup removed.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				buf.Write(c.Segment.Value(src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(c.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return normalizeSpace(buf.String())
}
