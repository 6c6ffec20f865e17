package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/learning-tracker/internal/export"
	"github.com/terra-clan/learning-tracker/internal/models"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.tracker.Dashboard(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.tracker.Search(r.Context(), userID(r.Context()), q.Get("q"), q.Get("scope"))
	if err != nil {
		respondServiceError(w, r, err, "search")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := s.tracker.Board(r.Context(), userID(r.Context()), models.TaskFilters{
		Priority: models.Priority(q.Get("priority")),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
		SortBy:   q.Get("sort"),
	})
	if err != nil {
		respondServiceError(w, r, err, "build board")
		return
	}
	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleLessonBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.tracker.LessonBoard(r.Context(), userID(r.Context()), r.URL.Query().Get("courseId"))
	if err != nil {
		respondServiceError(w, r, err, "build lesson board")
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// handleExport streams a collection as a CSV attachment
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	collection := models.Collection(chi.URLParam(r, "collection"))
	if !collection.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_request", "collection must be courses, lessons or tasks")
		return
	}

	records, err := s.tracker.Snapshot(r.Context(), userID(r.Context()), collection)
	if err != nil {
		respondServiceError(w, r, err, "export "+string(collection))
		return
	}

	// Render fully first so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := export.Write(&buf, records); err != nil {
		respondServiceError(w, r, err, "render csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(collection)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("failed to write csv", "error", err)
	}
}
