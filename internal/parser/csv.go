package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// CSVParser treats each record as a path from the root: column one is the
// top-level node, column two its child and so on. Records sharing a prefix
// share the nodes for it. Empty cells end a record's path.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	root := doctree.NewRoot()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		cur := root
		for _, cell := range record {
			name := strings.TrimSpace(cell)
			if name == "" {
				break
			}
			next := cur.Child(name)
			if next == nil {
				next = cur.Add(&doctree.Node{Name: name})
			}
			cur = next
		}
	}

	return root, nil
}
