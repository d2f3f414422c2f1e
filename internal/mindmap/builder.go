// Package mindmap ties file parsing to logging and metrics for the HTTP
// and command-line front ends.
package mindmap

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/ideagraph/internal/doctree"
	"github.com/dgallion1/ideagraph/internal/metrics"
	"github.com/dgallion1/ideagraph/internal/parser"
)

// Result is a parsed mind map plus facts about it.
type Result struct {
	Root        *doctree.Node
	Filename    string
	Format      string
	Nodes       int
	Depth       int
	ContentHash string
}

// Builder turns uploaded files into mind maps.
type Builder struct {
	opts    parser.Options
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewBuilder(opts parser.Options, m *metrics.Metrics, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{opts: opts, metrics: m, log: log}
}

// Build parses data according to filename's extension. Errors wrap
// parser.ErrUnsupported or parser.ErrNotText where those apply.
func (b *Builder) Build(data []byte, filename string) (*Result, error) {
	format := parser.Format(filename)
	log := b.log.With("filename", filename, "format", format)

	p, err := parser.ForFile(filename, b.opts)
	if err != nil {
		b.metrics.ObserveParse(format, 0, err)
		log.Warn("unsupported format", "error", err)
		return nil, err
	}

	start := time.Now()
	root, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		b.metrics.ObserveParse(format, 0, err)
		log.Warn("parse failed", "error", err)
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	res := &Result{
		Root:        root,
		Filename:    filename,
		Format:      format,
		Nodes:       doctree.Count(root),
		Depth:       doctree.Depth(root),
		ContentHash: ContentHashHex(data),
	}
	b.metrics.ObserveParse(format, res.Nodes, nil)
	log.Info("parsed mind map",
		"bytes", len(data),
		"nodes", res.Nodes,
		"depth", res.Depth,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// BuildReader reads r fully, up to limit bytes, and builds it.
func (b *Builder) BuildReader(r io.Reader, filename string, limit int64) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if int64(len(data)) > limit {
		return nil, &TooLargeError{Limit: limit}
	}
	return b.Build(data, filename)
}

// TooLargeError reports an input over the configured size limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file exceeds max size (%d bytes)", e.Limit)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
