package models

import "time"

// LessonType describes the kind of study unit
type LessonType string

const (
	LessonReading    LessonType = "reading"
	LessonVideo      LessonType = "video"
	LessonAssignment LessonType = "assignment"
	LessonQuiz       LessonType = "quiz"
	LessonProject    LessonType = "project"
)

// Lesson is a unit of study. CourseID is a weak reference: nothing stops it
// from pointing at a deleted course.
type Lesson struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	UserID        string     `json:"userId" gorm:"index;size:36;not null"`
	CourseID      string     `json:"courseId" gorm:"index;size:36"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description"`
	Status        WorkStatus `json:"status" gorm:"index;not null;default:todo"`
	Priority      Priority   `json:"priority"`
	Type          LessonType `json:"type"`
	EstimatedTime int        `json:"estimatedTime"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// SetStatus moves the lesson to status and keeps CompletedAt in step
func (l *Lesson) SetStatus(status WorkStatus, at time.Time) {
	l.CompletedAt = completionTime(l.Status, status, l.CompletedAt, at)
	l.Status = status
	l.UpdatedAt = at
}

// ActivityTime is when the lesson last changed in a way that matters for trends
func (l *Lesson) ActivityTime() time.Time {
	if l.CompletedAt != nil {
		return *l.CompletedAt
	}
	if !l.UpdatedAt.IsZero() {
		return l.UpdatedAt
	}
	return l.CreatedAt
}

// LessonInput is the payload for creating or replacing a lesson
type LessonInput struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	CourseID      string     `json:"courseId" validate:"max=36"`
	Status        WorkStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority      Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Type          LessonType `json:"type" validate:"omitempty,oneof=reading video assignment quiz project"`
	EstimatedTime int        `json:"estimatedTime" validate:"gte=0"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
}

// LessonFilters narrows a lesson listing
type LessonFilters struct {
	UserID   string
	CourseID string
	Status   WorkStatus
	Query    string
}

// BulkStatusRequest moves many lessons at once
type BulkStatusRequest struct {
	IDs    []string   `json:"ids" validate:"required,min=1,dive,required"`
	Status WorkStatus `json:"status" validate:"required,oneof=todo in_progress done"`
}

// StatusRequest moves one item between board columns
type StatusRequest struct {
	Status WorkStatus `json:"status"`
}

func completionTime(prev, next WorkStatus, completedAt *time.Time, at time.Time) *time.Time {
	switch {
	case !next.IsDone():
		return nil
	case prev.IsDone() && completedAt != nil:
		return completedAt
	default:
		t := at
		return &t
	}
}
