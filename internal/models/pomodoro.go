package models

import "time"

// DefaultFocusLength is the classic 25 minute Pomodoro
const DefaultFocusLength = 25 * time.Minute

// PomodoroStatus represents the current state of a timer
type PomodoroStatus string

const (
	PomodoroIdle     PomodoroStatus = "idle"     // Never started or reset
	PomodoroRunning  PomodoroStatus = "running"  // Counting down
	PomodoroPaused   PomodoroStatus = "paused"   // Stopped with time left
	PomodoroFinished PomodoroStatus = "finished" // Reached zero
)

// PomodoroSession is a user's focus timer.
// While running, the remaining time is derived from StartedAt so nothing has to tick.
type PomodoroSession struct {
	UserID    string         `json:"userId"`
	Status    PomodoroStatus `json:"status"`
	Length    time.Duration  `json:"length"`
	Remaining time.Duration  `json:"remaining"`
	StartedAt *time.Time     `json:"startedAt,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
}

// NewPomodoroSession returns an idle timer of the given length
func NewPomodoroSession(userID string, length time.Duration) *PomodoroSession {
	if length <= 0 {
		length = DefaultFocusLength
	}
	return &PomodoroSession{
		UserID:    userID,
		Status:    PomodoroIdle,
		Length:    length,
		Remaining: length,
	}
}

// TimeRemaining returns the time left at now (0 when elapsed)
func (p *PomodoroSession) TimeRemaining(now time.Time) time.Duration {
	remaining := p.Remaining
	if p.Status == PomodoroRunning && p.StartedAt != nil {
		remaining -= now.Sub(*p.StartedAt)
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsRunning returns true while the timer counts down
func (p *PomodoroSession) IsRunning() bool {
	return p.Status == PomodoroRunning
}

// PomodoroView is the wire representation with seconds left computed at read time
type PomodoroView struct {
	Status           PomodoroStatus `json:"status"`
	LengthSeconds    int            `json:"lengthSeconds"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Display          string         `json:"display"`
	TaskID           string         `json:"taskId,omitempty"`
}

// PomodoroStartRequest optionally ties the focus block to a task
type PomodoroStartRequest struct {
	TaskID string `json:"taskId,omitempty"`
}
