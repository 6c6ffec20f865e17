package models

import "time"

// DefaultTaskEstimate is used when a task is created without an estimate (minutes)
const DefaultTaskEstimate = 60

// Task is a standalone to-do item shown on the Kanban board
type Task struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	UserID        string     `json:"userId" gorm:"index;size:36;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description"`
	Status        WorkStatus `json:"status" gorm:"index;not null;default:todo"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Tags          []string   `json:"tags" gorm:"serializer:json"`
	EstimatedTime int        `json:"estimatedTime"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// SetStatus moves the task to status and keeps CompletedAt in step
func (t *Task) SetStatus(status WorkStatus, at time.Time) {
	t.CompletedAt = completionTime(t.Status, status, t.CompletedAt, at)
	t.Status = status
	t.UpdatedAt = at
}

// IsOverdue returns true if the task is past due and not done
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Status.IsDone()
}

// HasTag reports whether the task carries tag
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// TaskInput is the payload for creating or replacing a task
type TaskInput struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	Status        WorkStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority      Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Tags          []string   `json:"tags" validate:"max=20,dive,max=50"`
	EstimatedTime int        `json:"estimatedTime" validate:"gte=0"`
}

// TaskFilters narrows a task listing
type TaskFilters struct {
	UserID   string
	Status   WorkStatus
	Priority Priority
	Tag      string
	Query    string
	SortBy   string
}
