package models

import (
	"testing"
	"time"
)

func TestWorkStatusAnyTransitionAllowed(t *testing.T) {
	for _, from := range WorkStatuses {
		for _, to := range WorkStatuses {
			if !from.CanTransition(to) {
				t.Errorf("expected %s -> %s to be allowed", from, to)
			}
		}
	}

	if StatusDone.CanTransition(WorkStatus("archived")) {
		t.Error("expected transition to unknown status to be rejected")
	}
}

func TestParseWorkStatus(t *testing.T) {
	cases := map[string]WorkStatus{
		"todo":        StatusTodo,
		"in_progress": StatusInProgress,
		"in-progress": StatusInProgress,
		" DONE ":      StatusDone,
	}
	for raw, want := range cases {
		got, ok := ParseWorkStatus(raw)
		if !ok || got != want {
			t.Errorf("ParseWorkStatus(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := ParseWorkStatus("completed"); ok {
		t.Error("expected 'completed' to be rejected")
	}
}

func TestTaskSetStatusTracksCompletion(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: StatusTodo}

	task.SetStatus(StatusDone, start)
	if task.CompletedAt == nil || !task.CompletedAt.Equal(start) {
		t.Fatalf("expected completedAt %v, got %v", start, task.CompletedAt)
	}

	// done -> done keeps the original completion time
	task.SetStatus(StatusDone, start.Add(time.Hour))
	if !task.CompletedAt.Equal(start) {
		t.Errorf("expected completedAt to stay %v, got %v", start, task.CompletedAt)
	}

	task.SetStatus(StatusTodo, start.Add(2*time.Hour))
	if task.CompletedAt != nil {
		t.Errorf("expected completedAt cleared, got %v", task.CompletedAt)
	}
	if task.Status != StatusTodo {
		t.Errorf("expected status todo, got %s", task.Status)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(&Task{Status: StatusTodo, DueDate: &past}).IsOverdue(now) {
		t.Error("expected past-due todo task to be overdue")
	}
	if (&Task{Status: StatusDone, DueDate: &past}).IsOverdue(now) {
		t.Error("done task must not be overdue")
	}
	if (&Task{Status: StatusInProgress, DueDate: &future}).IsOverdue(now) {
		t.Error("future task must not be overdue")
	}
	if (&Task{Status: StatusTodo}).IsOverdue(now) {
		t.Error("task without due date must not be overdue")
	}
}

func TestPomodoroTimeRemaining(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	p := NewPomodoroSession("u1", 0)
	if p.Length != DefaultFocusLength {
		t.Fatalf("expected default length, got %v", p.Length)
	}

	p.Status = PomodoroRunning
	p.StartedAt = &start
	if got := p.TimeRemaining(start.Add(10 * time.Minute)); got != 15*time.Minute {
		t.Errorf("expected 15m remaining, got %v", got)
	}
	if got := p.TimeRemaining(start.Add(time.Hour)); got != 0 {
		t.Errorf("expected remaining clamped to 0, got %v", got)
	}
}
