package parser

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

func buildDOCX(t *testing.T, build func(d *docx.Docx)) []byte {
	t.Helper()
	d := docx.New()
	build(d)
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func dumpTree(n *doctree.Node) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestDOCXParser_NumberedListNesting(t *testing.T) {
	data := buildDOCX(t, func(d *docx.Docx) {
		d.AddParagraph().Style("Heading1").AddText("Plan")
		d.AddParagraph().Style("ListParagraph").NumPr("1", "0").AddText("Parent")
		d.AddParagraph().Style("ListParagraph").NumPr("1", "1").AddText("Child")
		d.AddParagraph().Style("ListParagraph").NumPr("1", "0").AddText("Sibling")
		d.AddParagraph().AddText("Closing note")
		d.AddParagraph().Style("Heading2").AddText("Details")
		d.AddParagraph().Style("List Bullet 2").AddText("Styled")
	})

	tree, err := (&DOCXParser{}).Parse(bytes.NewReader(data), "plan.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := doctree.NewRoot()
	plan := want.Add(&doctree.Node{Name: "Plan"})
	plan.Add(&doctree.Node{Name: "Parent"}).Add(&doctree.Node{Name: "Child"})
	plan.Add(&doctree.Node{Name: "Sibling"})
	plan.Add(&doctree.Node{Name: "Closing note"})
	plan.Add(&doctree.Node{Name: "Details"}).Add(&doctree.Node{Name: "Styled"})

	if !doctree.Equal(tree, want) {
		t.Errorf("unexpected tree:\n got: %s\nwant: %s", dumpTree(tree), dumpTree(want))
	}
}

func TestDOCXParser_Invalid(t *testing.T) {
	if _, err := (&DOCXParser{}).Parse(bytes.NewReader([]byte("not a zip")), "bad.docx"); err == nil {
		t.Fatal("expected error for non-docx input")
	}
}

func TestDOCXListLevel(t *testing.T) {
	numbered := func(numID, ilvl string) *docx.Paragraph {
		props := &docx.NumProperties{NumID: &docx.NumID{Val: numID}}
		if ilvl != "" {
			props.Ilvl = &docx.Ilevel{Val: ilvl}
		}
		return &docx.Paragraph{Properties: &docx.ParagraphProperties{NumProperties: props}}
	}

	cases := []struct {
		name  string
		para  *docx.Paragraph
		style string
		want  int
	}{
		{"top level", numbered("3", "0"), "ListParagraph", 1},
		{"third level", numbered("3", "2"), "ListParagraph", 3},
		{"ilvl beats style", numbered("3", "1"), "List Bullet 3", 2},
		{"missing ilvl", numbered("3", ""), "Normal", 1},
		{"numbering removed", numbered("0", "0"), "ListParagraph", 0},
		{"style fallback", &docx.Paragraph{}, "List Bullet 2", 2},
		{"plain", &docx.Paragraph{}, "Normal", 0},
	}
	for _, tc := range cases {
		if got := docxListLevel(tc.para, tc.style); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
