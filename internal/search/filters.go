package search

import (
	"github.com/terra-clan/learning-tracker/internal/models"
)

// Courses applies a course listing's query and category filter
func Courses(courses []models.Course, f models.CourseFilters) []models.Course {
	out := Filter(courses, f.Query, CourseText)
	if f.Category == "" || f.Category == "All" {
		return out
	}
	kept := make([]models.Course, 0, len(out))
	for _, c := range out {
		if c.Category == f.Category {
			kept = append(kept, c)
		}
	}
	return kept
}

// Lessons applies a lesson listing's query, course and status filters
func Lessons(lessons []models.Lesson, f models.LessonFilters) []models.Lesson {
	out := Filter(lessons, f.Query, LessonText)
	if f.CourseID == "" && f.Status == "" {
		return out
	}
	kept := make([]models.Lesson, 0, len(out))
	for _, l := range out {
		if f.CourseID != "" && l.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

// Tasks applies a task listing's query, tag, priority and status filters
func Tasks(tasks []models.Task, f models.TaskFilters) []models.Task {
	out := Filter(tasks, f.Query, TaskText)
	if f.Tag == "" && f.Priority == "" && f.Status == "" {
		return out
	}
	kept := make([]models.Task, 0, len(out))
	for _, t := range out {
		if f.Tag != "" && !t.HasTag(f.Tag) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}
