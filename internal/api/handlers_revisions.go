package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/ideagraph/internal/revisions"
)

// AccessTokenHeader carries the caller's Drive access token. It is kept
// apart from Authorization, which belongs to the API key.
const AccessTokenHeader = "X-Access-Token"

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	if s.revisions == nil {
		jsonError(w, "revisions unavailable", http.StatusServiceUnavailable)
		return
	}
	ref := r.URL.Query().Get("doc")
	docID := revisions.ExtractDocID(ref)
	if docID == "" {
		jsonError(w, "doc must be a document id or link", http.StatusBadRequest)
		return
	}
	token := strings.TrimSpace(r.Header.Get(AccessTokenHeader))
	if token == "" {
		jsonError(w, "missing "+AccessTokenHeader+" header", http.StatusUnauthorized)
		return
	}

	revs, err := s.revisions.List(r.Context(), token, docID)
	if err != nil {
		s.log.Warn("list revisions failed", "doc_id", docID, "error", err)
		msg, code := revisionErrorStatus(err)
		jsonError(w, msg, code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":    docID,
		"count":     len(revs),
		"revisions": revs,
	})
}

// revisionErrorStatus maps a listing error to a client message and status.
// Upstream response text stays in the logs.
func revisionErrorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, revisions.ErrMissingDocID):
		return err.Error(), http.StatusBadRequest
	case errors.Is(err, revisions.ErrMissingToken):
		return err.Error(), http.StatusUnauthorized
	}
	code, ok := revisions.UpstreamStatus(err)
	if !ok {
		return "drive request failed", http.StatusBadGateway
	}
	switch code {
	case http.StatusUnauthorized:
		return "drive rejected the access token", http.StatusUnauthorized
	case http.StatusNotFound:
		return "document not found", http.StatusNotFound
	}
	var xerr *revisions.ExportError
	if errors.As(err, &xerr) {
		return fmt.Sprintf("export of revision %s failed with status %d", xerr.RevisionID, code), http.StatusBadGateway
	}
	return fmt.Sprintf("drive request failed with status %d", code), http.StatusBadGateway
}
