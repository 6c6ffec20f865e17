package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Catalog handlers: learning-path templates and course categories

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.templateLoader.List(r.URL.Query().Get("category"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     len(templates),
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	template := s.templateLoader.Get(name)
	if template == nil {
		respondError(w, http.StatusNotFound, "not_found", "template not found")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (s *Server) handleEnrollTemplate(w http.ResponseWriter, r *http.Request) {
	enrollment, err := s.tracker.EnrollTemplate(r.Context(), userID(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, r, err, "enroll template")
		return
	}
	respondJSON(w, http.StatusCreated, enrollment)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.templateLoader.Categories()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      len(categories),
	})
}
