package models

import "strings"

// WorkStatus is the Kanban state shared by lessons and tasks
type WorkStatus string

const (
	StatusTodo       WorkStatus = "todo"
	StatusInProgress WorkStatus = "in_progress"
	StatusDone       WorkStatus = "done"
)

// WorkStatuses lists the board columns in display order
var WorkStatuses = []WorkStatus{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the three board states
func (s WorkStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// IsDone returns true if the item is finished
func (s WorkStatus) IsDone() bool {
	return s == StatusDone
}

// CanTransition reports whether an item may move from s to next.
// Statuses form an unordered set: every valid pair is allowed, including s == next.
func (s WorkStatus) CanTransition(next WorkStatus) bool {
	return next.Valid()
}

// ParseWorkStatus accepts the canonical values plus the "in-progress" spelling
// older clients send.
func ParseWorkStatus(raw string) (WorkStatus, bool) {
	s := WorkStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	return s, s.Valid()
}

// Priority of a lesson or task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting, higher is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p.Rank() > 0
}
