// Package pomodoro keeps one focus timer per user in the cache store.
package pomodoro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/terra-clan/learning-tracker/internal/cache"
	"github.com/terra-clan/learning-tracker/internal/models"
)

const keyPrefix = "pomodoro:"

// sessionTTL bounds how long an abandoned timer is remembered
const sessionTTL = 7 * 24 * time.Hour

// Service runs the timers. Nothing ticks: remaining time is computed from
// the clock whenever a timer is read.
type Service struct {
	store  cache.Store
	length time.Duration
	now    func() time.Time
}

// NewService creates timers of the given focus length (25 minutes if zero)
func NewService(store cache.Store, length time.Duration) *Service {
	if length <= 0 {
		length = models.DefaultFocusLength
	}
	return &Service{store: store, length: length, now: time.Now}
}

// State returns the user's timer, idle if none was started
func (s *Service) State(ctx context.Context, userID string) (*models.PomodoroView, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Start begins a fresh block, or resumes a paused one. Starting a running
// timer changes nothing; one that has run out begins a fresh block.
func (s *Service) Start(ctx context.Context, userID, taskID string) (*models.PomodoroView, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case session.IsRunning() && session.TimeRemaining(now) > 0:
		return s.view(session), nil
	case session.Status != models.PomodoroPaused:
		session.Remaining = session.Length
	}
	session.Status = models.PomodoroRunning
	session.StartedAt = &now
	if taskID != "" {
		session.TaskID = taskID
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Pause freezes the remaining time
func (s *Service) Pause(ctx context.Context, userID string) (*models.PomodoroView, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsRunning() {
		return s.view(session), nil
	}

	session.Remaining = session.TimeRemaining(s.now())
	session.StartedAt = nil
	session.Status = models.PomodoroPaused
	if session.Remaining == 0 {
		session.Status = models.PomodoroFinished
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Reset stops the timer and restores the full length
func (s *Service) Reset(ctx context.Context, userID string) (*models.PomodoroView, error) {
	if err := s.store.Del(ctx, keyPrefix+userID); err != nil {
		return nil, fmt.Errorf("failed to reset pomodoro: %w", err)
	}
	return s.view(models.NewPomodoroSession(userID, s.length)), nil
}

func (s *Service) load(ctx context.Context, userID string) (*models.PomodoroSession, error) {
	raw, err := s.store.Get(ctx, keyPrefix+userID)
	if errors.Is(err, cache.ErrMiss) {
		return models.NewPomodoroSession(userID, s.length), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pomodoro: %w", err)
	}

	var session models.PomodoroSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode pomodoro: %w", err)
	}
	return &session, nil
}

func (s *Service) save(ctx context.Context, session *models.PomodoroSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode pomodoro: %w", err)
	}
	if err := s.store.Set(ctx, keyPrefix+session.UserID, string(data), sessionTTL); err != nil {
		return fmt.Errorf("failed to save pomodoro: %w", err)
	}
	return nil
}

func (s *Service) view(session *models.PomodoroSession) *models.PomodoroView {
	remaining := session.TimeRemaining(s.now())
	status := session.Status
	if session.IsRunning() && remaining == 0 {
		status = models.PomodoroFinished
	}

	secs := int(remaining.Round(time.Second) / time.Second)
	return &models.PomodoroView{
		Status:           status,
		LengthSeconds:    int(session.Length / time.Second),
		RemainingSeconds: secs,
		Display:          Format(secs),
		TaskID:           session.TaskID,
	}
}

// Format renders seconds as MM:SS
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
