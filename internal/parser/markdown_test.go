package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

## Section B
`
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Name != "Document" {
		t.Errorf("expected root %q, got %q", "Document", tree.Name)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level child (h1), got %d", len(tree.Children))
	}

	h1 := tree.Children[0]
	if h1.Name != "Title" {
		t.Errorf("expected h1 %q, got %q", "Title", h1.Name)
	}
	// Intro paragraph, Section A, Section B.
	if len(h1.Children) != 3 {
		t.Fatalf("expected 3 children under h1, got %d", len(h1.Children))
	}
	if h1.Children[0].Name != "Intro text." {
		t.Errorf("expected intro leaf, got %q", h1.Children[0].Name)
	}

	secA := h1.Children[1]
	if secA.Name != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", secA.Name)
	}
	if len(secA.Children) != 2 {
		t.Fatalf("expected content and h3 under Section A, got %d", len(secA.Children))
	}
	if secA.Children[1].Name != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", secA.Children[1].Name)
	}

	if h1.Children[2].Name != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", h1.Children[2].Name)
	}
}

func TestMarkdownParser_NestedLists(t *testing.T) {
	input := `## Plan

- Research
  - Read papers
  - Interview users
- Build
  1. Prototype
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "plan.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plan := tree.Children[0]
	if len(plan.Children) != 2 {
		t.Fatalf("expected 2 list items under Plan, got %d", len(plan.Children))
	}
	research := plan.Children[0]
	if research.Name != "Research" || len(research.Children) != 2 {
		t.Fatalf("expected Research with 2 children, got %q with %d", research.Name, len(research.Children))
	}
	if research.Children[1].Name != "Interview users" {
		t.Errorf("expected %q, got %q", "Interview users", research.Children[1].Name)
	}
	build := plan.Children[1]
	if len(build.Children) != 1 || build.Children[0].Name != "Prototype" {
		t.Errorf("expected ordered sub-list under Build, got %+v", build.Children)
	}
}

func TestMarkdownParser_InlineMarkupStripped(t *testing.T) {
	input := "# The **bold** and `code` idea\n\nSee [docs](http://example.com) now\nfor more.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "inline.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := tree.Children[0]
	if h.Name != "The bold and code idea" {
		t.Errorf("unexpected heading text %q", h.Name)
	}
	if h.Children[0].Name != "See docs now for more." {
		t.Errorf("unexpected paragraph text %q", h.Children[0].Name)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := "Just some plain text.\n\nAnother paragraph.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 top-level leaves, got %d", len(tree.Children))
	}
}

func TestMarkdownParser_Empty(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected no children, got %d", len(tree.Children))
	}
}
