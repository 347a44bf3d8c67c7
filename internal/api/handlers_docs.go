package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/docoutline/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists stored outlines, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit > 1000 {
		limit = 1000
	}

	ctx := r.Context()
	docs, err := s.orchestrator.Store().List(ctx, limit, offset)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := s.orchestrator.Store().Count(ctx)
	if err != nil {
		jsonError(w, "failed to count documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetDocument returns a stored outline. With ?view=record it returns
// the full record including processing details.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, err := s.orchestrator.Store().Get(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("view") == "record" {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeOutline(w, r, rec.Outline)
}

// handleDeleteDocument deletes a stored outline.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	err := s.orchestrator.Store().Delete(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("document deleted", "doc_id", docID)
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
