package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/export"
	"github.com/dgallion1/bookforge/internal/generate"
)

// handleGenerate starts a generation session for a book brief.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req book.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := s.orchestrator.StartSession(req)
	if err != nil {
		if errors.Is(err, generate.ErrSessionActive) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"session_id": sess.ID,
		"state":      string(sess.State()),
	})
}

// handleStatus returns a session snapshot including its progress events.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.orchestrator.GetSession(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

// handleExport renders the session's finished book in the requested
// format. Exporting while generation is still running is a caller error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.orchestrator.GetSession(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	model := sess.Model()
	if model == nil {
		jsonError(w, "no book available for this session", http.StatusConflict)
		return
	}

	data, filename, err := s.engine.Export(model, format)
	if err != nil {
		if errors.Is(err, export.ErrNotFinalized) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
