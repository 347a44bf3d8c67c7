package api

import (
	"net/http"
)

func (s *Server) handleEmbedStats(w http.ResponseWriter, r *http.Request) {
	if s.embedStats == nil {
		jsonError(w, "semantic scorer disabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.cfg.EmbedModel,
		"stats": s.embedStats.Snapshot(),
	})
}
