package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleDriveStats(w http.ResponseWriter, r *http.Request) {
	if s.revisions == nil {
		jsonError(w, "drive stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window": s.cfg.LatencyWindow.String(),
		"stats":  s.revisions.Latency().Snapshot(),
	})
}
