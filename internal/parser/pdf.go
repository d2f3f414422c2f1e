package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/ideagraph/internal/doctree"
	"github.com/dgallion1/ideagraph/internal/outline"
)

// PDFParser extracts a PDF's text and reads it as an indented outline. It
// tries the Go library first, then falls back to pdftotext if enabled;
// pdftotext -layout keeps indentation the Go reader loses.
type PDFParser struct {
	TabWidth          int
	FallbackPdftotext bool

	// extract and fallback default to ledongthuc/pdf and pdftotext.
	extract  func(path string) (string, error)
	fallback func(path string) (string, error)
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "ideagraph-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	extract, fallback := p.extract, p.fallback
	if extract == nil {
		extract = extractPDFText
	}
	if fallback == nil {
		fallback = extractPdftotext
	}

	text, err := extract(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = fallback(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return outline.ParseWith(pageBreaksToLines(text), outline.Options{TabWidth: p.TabWidth}), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// pageBreaksToLines turns form feeds into newlines. A form feed left at the
// start of a line would otherwise count as one column of indentation.
func pageBreaksToLines(text string) string {
	return strings.ReplaceAll(text, "\f", "\n")
}
