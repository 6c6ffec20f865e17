package models

import "time"

// Difficulty of a course
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Course is a learning topic the user follows. Progress, LessonsCount and
// CompletedLessons are derived from the course's lessons on every read and
// are never persisted.
type Course struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	UserID           string     `json:"userId" gorm:"index;size:36;not null"`
	Title            string     `json:"title" gorm:"not null"`
	Description      string     `json:"description"`
	Category         string     `json:"category" gorm:"index"`
	Difficulty       Difficulty `json:"difficulty"`
	EstimatedHours   float64    `json:"estimatedHours"`
	Featured         bool       `json:"featured"`
	Progress         int        `json:"progress" gorm:"-"`
	LessonsCount     int        `json:"lessonsCount" gorm:"-"`
	CompletedLessons int        `json:"completedLessons" gorm:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// IsCompleted returns true once every lesson of the course is done
func (c *Course) IsCompleted() bool {
	return c.Progress == 100
}

// IsStarted returns true if some but not all lessons are done
func (c *Course) IsStarted() bool {
	return c.Progress > 0 && c.Progress < 100
}

// CourseInput is the payload for creating or replacing a course
type CourseInput struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"max=5000"`
	Category       string     `json:"category" validate:"max=100"`
	Difficulty     Difficulty `json:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced"`
	EstimatedHours float64    `json:"estimatedHours" validate:"gte=0"`
	Featured       bool       `json:"featured"`
}

// CourseFilters narrows a course listing
type CourseFilters struct {
	Query    string
	Category string
	SortBy   string
}
