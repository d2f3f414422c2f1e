package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := doctree.NewRoot()
	stack := []stackEntry{{node: root, level: 0}}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if title := textContent(n); title != "" {
					stack = nest(stack, &doctree.Node{Name: title}, level)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript", "template":
				return
			case "ul", "ol":
				addHTMLList(stack[len(stack)-1].node, n)
				return
			case "p", "td", "blockquote", "dt", "dd":
				if t := textContent(n); t != "" {
					stack[len(stack)-1].node.Add(&doctree.Node{Name: t})
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return root, nil
}

// addHTMLList attaches each <li> of list to parent, named by its own text.
// Lists nested inside an item become that item's children.
func addHTMLList(parent *doctree.Node, list *html.Node) {
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		node := parent
		if name := ownText(li); name != "" {
			node = parent.Add(&doctree.Node{Name: name})
		}
		for _, sub := range nestedLists(li) {
			addHTMLList(node, sub)
		}
	}
}

// nestedLists returns the outermost ul/ol elements below n.
func nestedLists(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			out = append(out, c)
			continue
		}
		out = append(out, nestedLists(c)...)
	}
	return out
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	return collectText(n, false)
}

// ownText is textContent without nested lists.
func ownText(n *html.Node) string {
	return collectText(n, true)
}

func collectText(n *html.Node, skipLists bool) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if skipLists && c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				continue
			}
			extract(c)
		}
	}
	extract(n)
	return normalizeSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
