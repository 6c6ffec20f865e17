package api

import (
	"net/http"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// --- Public auth handlers ---

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	resp, err := s.identity.Register(r.Context(), creds)
	if err != nil {
		respondServiceError(w, r, err, "register")
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	resp, err := s.identity.Login(r.Context(), creds)
	if err != nil {
		respondServiceError(w, r, err, "login")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.identity.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondServiceError(w, r, err, "request password reset")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "password reset email sent",
	})
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirm
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "token is required")
		return
	}

	if err := s.identity.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		respondServiceError(w, r, err, "reset password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// --- Signed-in user handlers ---

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.Logout(r.Context(), ClaimsFromContext(r.Context())); err != nil {
		respondServiceError(w, r, err, "logout")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "signed out",
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity.Profile(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	user, err := s.identity.UpdateProfile(r.Context(), userID(r.Context()), upd)
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// handleDeleteAccount removes the account and revokes the token used for it
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	if err := s.identity.DeleteAccount(r.Context(), claims.UserID); err != nil {
		respondServiceError(w, r, err, "delete account")
		return
	}
	if err := s.identity.Logout(r.Context(), claims); err != nil {
		respondServiceError(w, r, err, "revoke token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "account deleted",
	})
}
