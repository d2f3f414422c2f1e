package parser

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dgallion1/ideagraph/internal/doctree"
	"github.com/dgallion1/ideagraph/internal/outline"
)

// TextParser handles indented plain-text outlines.
type TextParser struct {
	TabWidth int
}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	return outline.ParseWith(text, outline.Options{TabWidth: p.TabWidth}), nil
}

// DecodeText converts uploaded bytes to a string. UTF-8 is assumed unless a
// UTF-16 byte order mark says otherwise; any BOM is dropped. Invalid UTF-8
// and embedded NUL bytes are rejected with ErrNotText.
func DecodeText(data []byte) (string, error) {
	if !hasUTF16BOM(data) && !utf8.Valid(data) {
		return "", ErrNotText
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotText, err)
	}
	if bytes.IndexByte(out, 0) >= 0 {
		return "", ErrNotText
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}
