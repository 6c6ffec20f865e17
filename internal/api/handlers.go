package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/learning-tracker/internal/auth"
	"github.com/terra-clan/learning-tracker/internal/health"
	"github.com/terra-clan/learning-tracker/internal/tracker"
)

const (
	unexpectedMessage = "An unexpected error occurred."
	maxBodyBytes      = 1 << 20
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorDetails(w, status, code, message, nil)
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps service errors onto HTTP statuses. Anything
// unrecognised is logged and reported generically.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var validationErr *tracker.ValidationError
	if errors.As(err, &validationErr) {
		respondErrorDetails(w, http.StatusUnprocessableEntity, "validation_error", "validation failed", validationErr.Fields)
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		respondError(w, authStatus(authErr), authErr.Code, authErr.Message)
		return
	}

	switch {
	case errors.Is(err, tracker.ErrCourseNotFound),
		errors.Is(err, tracker.ErrLessonNotFound),
		errors.Is(err, tracker.ErrTaskNotFound),
		errors.Is(err, tracker.ErrTemplateNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, tracker.ErrInvalidStatus), errors.Is(err, tracker.ErrInvalidScope):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		slog.Error("failed to "+action, "error", err, "user_id", userID(r.Context()))
		respondError(w, http.StatusInternalServerError, "internal_error", unexpectedMessage)
	}
}

func authStatus(err *auth.Error) int {
	switch err.Code {
	case auth.ErrInvalidCredential.Code, auth.ErrInvalidToken.Code:
		return http.StatusUnauthorized
	case auth.ErrEmailInUse.Code:
		return http.StatusConflict
	case auth.ErrUserNotFound.Code:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads the request body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.health.CheckAll(r.Context())

	checks := make(map[string]string, len(results))
	for name, err := range results {
		checks[name] = "ok"
		if err != nil {
			checks[name] = err.Error()
			slog.Warn("readiness check failed", "check", name, "error", err)
		}
	}

	if !health.Healthy(results) {
		respondErrorDetails(w, http.StatusServiceUnavailable, "not_ready", "service not ready", checks)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}
