package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTextParser_IndentedOutline(t *testing.T) {
	input := "Project\n  Goals\n    Ship v1\n  Risks\nNotes"
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "ideas.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Name != "Document" {
		t.Errorf("expected root %q, got %q", "Document", tree.Name)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(tree.Children))
	}
	project := tree.Children[0]
	if project.Name != "Project" || len(project.Children) != 2 {
		t.Fatalf("expected Project with 2 children, got %q with %d", project.Name, len(project.Children))
	}
	if project.Children[0].Children[0].Name != "Ship v1" {
		t.Errorf("expected %q under Goals, got %q", "Ship v1", project.Children[0].Children[0].Name)
	}
	if tree.Children[1].Name != "Notes" {
		t.Errorf("expected %q, got %q", "Notes", tree.Children[1].Name)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}

func TestTextParser_TabWidth(t *testing.T) {
	input := "A\n  B\n\tC"
	narrow, _ := (&TextParser{}).Parse(strings.NewReader(input), "t.txt")
	wide, _ := (&TextParser{TabWidth: 4}).Parse(strings.NewReader(input), "t.txt")

	// A tab counts as one unit, shallower than two spaces, so C closes B.
	if n := len(narrow.Children[0].Children); n != 2 {
		t.Errorf("tab as one unit: expected B and C under A, got %d children", n)
	}
	if n := len(wide.Children[0].Children[0].Children); n != 1 {
		t.Errorf("tab width 4: expected C to nest under B, got %d", n)
	}
}

func TestTextParser_UTF8BOMStripped(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Root\n  Leaf")...)
	tree, err := (&TextParser{}).Parse(bytes.NewReader(input), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Children[0].Name != "Root" {
		t.Errorf("expected BOM to be stripped, got %q", tree.Children[0].Name)
	}
}

func TestTextParser_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE}
	for _, r := range "A\n  B" {
		input = append(input, byte(r), 0)
	}
	tree, err := (&TextParser{}).Parse(bytes.NewReader(input), "utf16.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 || tree.Children[0].Name != "A" {
		t.Fatalf("expected single top-level A, got %+v", tree.Children)
	}
	if len(tree.Children[0].Children) != 1 || tree.Children[0].Children[0].Name != "B" {
		t.Errorf("expected B under A, got %+v", tree.Children[0].Children)
	}
}

func TestTextParser_RejectsBinary(t *testing.T) {
	cases := map[string][]byte{
		"invalid utf8": {0xC3, 0x28, 'a'},
		"nul bytes":    []byte("abc\x00def"),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&TextParser{}).Parse(bytes.NewReader(input), "bin.txt")
			if !errors.Is(err, ErrNotText) {
				t.Errorf("expected ErrNotText, got %v", err)
			}
		})
	}
}
