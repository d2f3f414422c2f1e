package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/ideagraph/internal/mindmap"
	"github.com/dgallion1/ideagraph/internal/parser"
	"github.com/dgallion1/ideagraph/internal/render"
)

// handleMindmap parses one file into a tree. The file arrives either as the
// multipart field "file" or as the raw request body named by ?filename=.
func (s *Server) handleMindmap(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var (
		body     io.Reader
		filename string
		format   = r.URL.Query().Get("format")
	)
	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if tooLarge(err) {
				jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
				return
			}
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
		filename = sanitizeFilename(header.Filename)
		if v := r.FormValue("format"); v != "" {
			format = v
		}
	} else {
		name := r.URL.Query().Get("filename")
		if name == "" {
			jsonError(w, "filename is required for raw uploads", http.StatusBadRequest)
			return
		}
		body = r.Body
		filename = sanitizeFilename(name)
	}

	renderer, err := render.ForFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	res, err := s.builder.BuildReader(body, filename, s.cfg.MaxUploadBytes)
	if err != nil {
		msg, code := buildErrorStatus(err)
		jsonError(w, msg, code)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Write(&buf, res.Root); err != nil {
		s.log.Error("render failed", "filename", filename, "format", renderer.Name, "error", err)
		jsonError(w, "failed to render mind map", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType)
	w.Header().Set("ETag", `"`+res.ContentHash+`"`)
	w.Header().Set("X-Node-Count", strconv.Itoa(res.Nodes))
	w.Header().Set("X-Tree-Depth", strconv.Itoa(res.Depth))
	w.Write(buf.Bytes())
}

type batchResult struct {
	Filename    string          `json:"filename"`
	Format      string          `json:"format,omitempty"`
	Nodes       int             `json:"nodes,omitempty"`
	Depth       int             `json:"depth,omitempty"`
	ContentHash string          `json:"content_hash,omitempty"`
	Tree        json.RawMessage `json:"tree,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func (s *Server) handleBatchMindmap(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*int64(s.cfg.MaxBatchFiles)+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		if tooLarge(err) {
			jsonError(w, "batch exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files: %d (max %d)", len(files), s.cfg.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]batchResult, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, batchResult{
				Filename: filename,
				Error:    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, batchResult{Filename: filename, Error: "failed to open file"})
			continue
		}
		res, err := s.builder.BuildReader(f, filename, s.cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			msg, _ := buildErrorStatus(err)
			results = append(results, batchResult{Filename: filename, Error: msg})
			continue
		}

		var tree bytes.Buffer
		if err := render.JSON(&tree, res.Root); err != nil {
			results = append(results, batchResult{Filename: filename, Error: "failed to render mind map"})
			continue
		}
		results = append(results, batchResult{
			Filename:    filename,
			Format:      res.Format,
			Nodes:       res.Nodes,
			Depth:       res.Depth,
			ContentHash: res.ContentHash,
			Tree:        bytes.TrimSpace(tree.Bytes()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

// buildErrorStatus maps a mindmap build error to a client message and
// HTTP status.
func buildErrorStatus(err error) (string, int) {
	var big *mindmap.TooLargeError
	switch {
	case errors.As(err, &big):
		return big.Error(), http.StatusRequestEntityTooLarge
	case tooLarge(err):
		return "file exceeds max size", http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupported):
		return err.Error(), http.StatusBadRequest
	case errors.Is(err, parser.ErrNotText):
		return "file is not readable text", http.StatusBadRequest
	default:
		return "could not parse file: " + err.Error(), http.StatusBadRequest
	}
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
