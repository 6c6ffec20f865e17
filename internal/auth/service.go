// Package auth is the identity provider: accounts, sessions, password
// resets and profiles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/terra-clan/learning-tracker/internal/cache"
	"github.com/terra-clan/learning-tracker/internal/mail"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/storage"
)

const (
	revokedPrefix = "auth:revoked:"
	deletedPrefix = "auth:deleted:"
	resetPrefix   = "auth:reset:"
)

var imageExtension = regexp.MustCompile(`(?i)\.(png|jpe?g|webp|gif|svg)$`)

// Config holds identity settings
type Config struct {
	ResetTTL    time.Duration
	FrontendURL string
}

// Service implements sign-up, sign-in and account management
type Service struct {
	repo     storage.Repository
	cache    cache.Store
	tokens   *TokenManager
	mailer   mail.Mailer
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates the identity service
func NewService(repo storage.Repository, store cache.Store, tokens *TokenManager, mailer mail.Mailer, cfg Config) *Service {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &Service{
		repo:     repo,
		cache:    store,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	email, err := s.normalizeEmail(creds.Email)
	if err != nil {
		return nil, err
	}
	if err := checkStrength(creds.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(creds.DisplayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("account created", "user_id", user.ID)
	return s.session(user)
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	email, err := s.normalizeEmail(creds.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	ok, err := CheckPassword(user.PasswordHash, creds.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	return s.session(user)
}

func (s *Service) session(user *models.User) (*models.AuthResponse, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// Authenticate validates a bearer token and rejects revoked ones
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	for _, key := range []string{revokedPrefix + claims.TokenID, deletedPrefix + claims.UserID} {
		_, err = s.cache.Get(ctx, key)
		switch {
		case err == nil:
			return nil, ErrInvalidToken
		case errors.Is(err, cache.ErrMiss):
		default:
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedPrefix+claims.TokenID, claims.UserID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RequestPasswordReset emails a single-use reset link
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	code := uuid.New().String()
	if err := s.cache.Set(ctx, resetPrefix+code, user.ID, s.cfg.ResetTTL); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	msg := mail.PasswordReset(user.Email, user.DisplayName, mail.ResetLink(s.cfg.FrontendURL, code))
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	slog.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ConfirmPasswordReset sets a new password using a code from the reset email
func (s *Service) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	userID, err := s.cache.Get(ctx, resetPrefix+code)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrExpiredActionCode
		}
		return fmt.Errorf("failed to read reset code: %w", err)
	}
	if err := checkStrength(newPassword); err != nil {
		return err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.cache.Del(ctx, resetPrefix+code); err != nil {
		slog.Warn("failed to consume reset code", "error", err)
	}
	return nil
}

// Profile returns the signed-in user
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display name and/or photo URL. A blank display
// name keeps the current one; a blank photo URL removes the photo.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		if name := strings.TrimSpace(*upd.DisplayName); name != "" {
			user.DisplayName = name
		}
	}
	if upd.PhotoURL != nil {
		photo, err := NormalizePhotoURL(*upd.PhotoURL)
		if err != nil {
			return nil, err
		}
		user.PhotoURL = photo
	}
	user.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own. Every token
// issued to the user stops authenticating.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.DeleteUserData(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	// outlives any token issued before the delete
	if err := s.cache.Set(ctx, deletedPrefix+userID, s.now().UTC().Format(time.RFC3339), s.tokens.TTL()); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

func (s *Service) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizePhotoURL accepts a direct image link, or an image search result
// link carrying one in its imgurl or url parameter. Blank input clears the photo.
func NormalizePhotoURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", nil
	}

	parsed, ok := parseHTTPURL(u)
	if !ok {
		return "", ErrInvalidPhotoURL
	}
	q := parsed.Query()
	for _, key := range []string{"imgurl", "url"} {
		if candidate := q.Get(key); candidate != "" && isDirectImage(candidate) {
			return candidate, nil
		}
	}
	if imageExtension.MatchString(parsed.Path) {
		return u, nil
	}
	return "", ErrInvalidPhotoURL
}

func isDirectImage(raw string) bool {
	parsed, ok := parseHTTPURL(raw)
	return ok && imageExtension.MatchString(parsed.Path)
}

func parseHTTPURL(raw string) (*url.URL, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return nil, false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return parsed, true
	}
	return nil, false
}
