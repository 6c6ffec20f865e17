package search

import (
	"sort"
	"strings"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// Sort keys
const (
	SortTitle     = "title"
	SortProgress  = "progress"
	SortRecent    = "recent"
	SortDueDate   = "dueDate"
	SortPriority  = "priority"
	SortCreatedAt = "createdAt"
)

// SortCourses orders courses in place by key. Unknown keys leave the order alone.
func SortCourses(courses []models.Course, key string) {
	switch key {
	case SortTitle:
		sort.SliceStable(courses, func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	case SortProgress:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Progress > courses[j].Progress
		})
	case SortRecent:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].UpdatedAt.After(courses[j].UpdatedAt)
		})
	}
}

// SortTasks orders tasks in place by key. Tasks without a due date sort last
// under dueDate. Unknown keys leave the order alone.
func SortTasks(tasks []models.Task, key string) {
	switch key {
	case SortTitle:
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	case SortDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueBefore(tasks[i].DueDate, tasks[j].DueDate)
		})
	case SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		})
	case SortCreatedAt:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}

// SortLessons orders lessons most recently updated first
func SortLessons(lessons []models.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].UpdatedAt.After(lessons[j].UpdatedAt)
	})
}

func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
