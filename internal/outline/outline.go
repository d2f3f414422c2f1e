// Package outline builds a mind map from indented plain text.
//
// Every non-blank line becomes a node named by its trimmed content. A line
// becomes a child of the nearest preceding line with strictly smaller
// indentation; lines at equal indentation are siblings. The first line is
// always top level, whatever its own indentation.
package outline

import (
	"strings"
	"unicode"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// Options controls how indentation is measured.
type Options struct {
	// TabWidth <= 1 counts every leading whitespace rune, tabs included, as
	// one unit. Larger values advance a tab to the next multiple of
	// TabWidth so tab- and space-indented lines line up visually.
	TabWidth int
}

// Parse converts text into a tree rooted at a node named "Document".
// It never fails; malformed indentation only yields an unexpected shape.
func Parse(text string) *doctree.Node {
	return ParseWith(text, Options{})
}

// ParseWith is Parse with explicit indentation options.
func ParseWith(text string, opts Options) *doctree.Node {
	type stackEntry struct {
		node  *doctree.Node
		depth int
	}

	root := doctree.NewRoot()
	var stack []stackEntry

	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		depth := Indent(line, opts.TabWidth)
		node := &doctree.Node{Name: name}

		// Equal depth closes the previous sibling; only deeper lines nest.
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			stack[len(stack)-1].node.Add(node)
		} else {
			root.Add(node)
		}
		stack = append(stack, stackEntry{node: node, depth: depth})
	}

	return root
}

// Indent returns the indentation width of line: the number of leading
// whitespace runes, with tabs expanded when tabWidth > 1.
func Indent(line string, tabWidth int) int {
	width := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\t' && tabWidth > 1 {
			width += tabWidth - width%tabWidth
			continue
		}
		width++
	}
	return width
}
