package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/terra-clan/learning-tracker/internal/models"
)

func (s *Server) handlePomodoroState(w http.ResponseWriter, r *http.Request) {
	view, err := s.pomodoro.State(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get pomodoro")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePomodoroStart(w http.ResponseWriter, r *http.Request) {
	// The body is optional.
	var req models.PomodoroStartRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := s.pomodoro.Start(r.Context(), userID(r.Context()), req.TaskID)
	if err != nil {
		respondServiceError(w, r, err, "start pomodoro")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePomodoroPause(w http.ResponseWriter, r *http.Request) {
	view, err := s.pomodoro.Pause(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "pause pomodoro")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePomodoroReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.pomodoro.Reset(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "reset pomodoro")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
