package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

// readUpload checks the extension and size of one multipart file.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}
	f, err := fh.Open()
	if err != nil {
		return filename, nil, &uploadError{"failed to open file", http.StatusBadRequest}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, &uploadError{"failed to read file", http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}
	return filename, data, nil
}

func uploadStatus(err error) int {
	var ue *uploadError
	if errors.As(err, &ue) {
		return ue.code
	}
	return http.StatusInternalServerError
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// extra 1MB for form overhead
	if !s.parseForm(w, r, s.cfg.MaxUploadBytes+1024*1024) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	job := pipeline.NewJob(r.FormValue("doc_id"), filename, data, r.FormValue("force") == "true")
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/outline/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, s.cfg.MaxUploadBytes*10+10*1024*1024) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	force := r.FormValue("force") == "true"

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}

		job := pipeline.NewJob("", filename, data, force)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/outline/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// handleExtract outlines one file inline and returns it without storing.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, s.cfg.MaxUploadBytes+1024*1024) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	doc, err := s.orchestrator.Outliner().Outline(r.Context(), data, filename, nil)
	switch {
	case errors.Is(err, parser.ErrUnreadable):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if doc.Report.Partial() {
		w.Header().Set("X-Outline-Failed-Pages", joinInts(doc.Report.FailedPages))
	}
	writeOutline(w, r, doc.Outline)
}

// writeOutline writes the flat outline, or the nested one for ?format=tree.
func writeOutline(w http.ResponseWriter, r *http.Request, o doctree.Outline) {
	writeJSON(w, http.StatusOK, outlineView(o, r.URL.Query().Get("format")))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
