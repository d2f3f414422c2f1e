package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ideagraph/internal/doctree"
)

// ErrUnsupported is returned for files whose extension has no parser.
var ErrUnsupported = errors.New("unsupported file extension")

// ErrNotText is returned when a text upload cannot be decoded.
var ErrNotText = errors.New("file is not decodable text")

// Parser converts raw document bytes into a mind map rooted at "Document".
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Node, error)
}

// Options carries per-deployment parser settings.
type Options struct {
	TabWidth          int  // see outline.Options
	FallbackPdftotext bool // shell out to pdftotext when the Go reader fails
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".outline":  true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".outline":
		return &TextParser{TabWidth: opts.TabWidth}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{TabWidth: opts.TabWidth, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Format names the parser family used for a filename, for logs and metrics.
func Format(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".outline":
		return "text"
	case ".md", ".markdown":
		return "markdown"
	case ".html", ".htm":
		return "html"
	case ".csv", ".pdf", ".docx":
		return ext[1:]
	}
	return "unknown"
}

type stackEntry struct {
	node  *doctree.Node
	level int
}

// nest pops entries at or below level, attaches node to the new top and
// pushes it. stack[0] is the root and is never popped.
func nest(stack []stackEntry, node *doctree.Node, level int) []stackEntry {
	for len(stack) > 1 && stack[len(stack)-1].level >= level {
		stack = stack[:len(stack)-1]
	}
	stack[len(stack)-1].node.Add(node)
	return append(stack, stackEntry{node: node, level: level})
}

// normalizeSpace collapses runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
