package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/ideagraph/internal/auth"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		jsonError(w, "drive sign-in is not configured", http.StatusServiceUnavailable)
		return
	}
	url, _ := s.auth.Begin()
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		jsonError(w, "drive sign-in is not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		jsonError(w, "authorization denied: "+reason, http.StatusBadRequest)
		return
	}

	tok, err := s.auth.Complete(r.Context(), q.Get("state"), q.Get("code"))
	switch {
	case errors.Is(err, auth.ErrInvalidState), errors.Is(err, auth.ErrMissingCode):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("token exchange failed", "error", err)
		jsonError(w, "token exchange failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(tok)
}
