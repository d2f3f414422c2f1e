package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// listLevelBase keeps list items below every heading level on the stack.
const listLevelBase = 10

// DOCXParser handles .docx files. Heading styles nest by level. List
// paragraphs nest by their numbering level (w:ilvl), or by the list style
// name when unnumbered. Other paragraphs become leaves.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "ideagraph-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	root := doctree.NewRoot()
	stack := []stackEntry{{node: root, level: 0}}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := docxParagraphStyle(para)

		if level := headingLevelForStyle(style); level > 0 {
			stack = nest(stack, &doctree.Node{Name: text}, level)
			continue
		}
		if level := docxListLevel(para, style); level > 0 {
			stack = nest(stack, &doctree.Node{Name: text}, listLevelBase+level)
			continue
		}
		// Plain paragraphs close any open list and hang off the heading.
		for len(stack) > 1 && stack[len(stack)-1].level >= listLevelBase {
			stack = stack[:len(stack)-1]
		}
		stack[len(stack)-1].node.Add(&doctree.Node{Name: text})
	}

	return root, nil
}

func docxParagraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// headingLevelForStyle maps "Heading1" / "heading 1" to 1 and so on.
func headingLevelForStyle(style string) int {
	name := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	rest, ok := strings.CutPrefix(name, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// docxListLevel returns the 1-based list depth of para, or 0 if it is not
// a list item. Numbering properties win over the style name; numId 0 means
// numbering was removed.
func docxListLevel(para *docx.Paragraph, style string) int {
	if para.Properties == nil || para.Properties.NumProperties == nil {
		return listLevelForStyle(style)
	}
	num := para.Properties.NumProperties
	if num.NumID != nil && num.NumID.Val == "0" {
		return 0
	}
	ilvl := 0
	if num.Ilvl != nil {
		if n, err := strconv.Atoi(num.Ilvl.Val); err == nil && n >= 0 {
			ilvl = n
		}
	}
	return ilvl + 1
}

// listLevelForStyle maps Word's list styles to a nesting level:
// "ListParagraph" and "List Bullet" are 1, "List Bullet 3" is 3.
func listLevelForStyle(style string) int {
	name := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(name, "list") {
		return 0
	}
	for _, kind := range []string{"listparagraph", "listbullet", "listnumber", "listcontinue", "list"} {
		rest, ok := strings.CutPrefix(name, kind)
		if !ok {
			continue
		}
		if rest == "" {
			return 1
		}
		if level, err := strconv.Atoi(rest); err == nil && level > 0 {
			return level
		}
		return 0
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
