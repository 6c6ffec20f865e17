// Package search implements the case-insensitive substring matching, field
// filters and sort orders used by list endpoints and the global search page.
package search

import (
	"strings"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// Scopes accepted by Search
const (
	ScopeAll     = "all"
	ScopeCourses = "courses"
	ScopeLessons = "lessons"
	ScopeTasks   = "tasks"
)

// Match reports whether any field contains query, ignoring case.
// An empty query matches everything.
func Match(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter keeps the items whose title or description contains query.
// An empty query returns items unchanged; otherwise input order is preserved.
func Filter[T any](items []T, query string, text func(T) (title, description string)) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		title, description := text(item)
		if Match(query, title, description) {
			out = append(out, item)
		}
	}
	return out
}

// CourseText, LessonText and TaskText extract the searchable title/description pair
func CourseText(c models.Course) (string, string) { return c.Title, c.Description }
func LessonText(l models.Lesson) (string, string) { return l.Title, l.Description }
func TaskText(t models.Task) (string, string)     { return t.Title, t.Description }

// ValidScope reports whether scope is one Search understands
func ValidScope(scope string) bool {
	switch scope {
	case ScopeAll, ScopeCourses, ScopeLessons, ScopeTasks:
		return true
	}
	return false
}

// Search runs the global search page query across all three record types.
// Courses also match on category and difficulty, lessons on type and status,
// tasks on any tag.
func Search(query, scope string, courses []models.Course, lessons []models.Lesson, tasks []models.Task) *models.SearchResult {
	if !ValidScope(scope) {
		scope = ScopeAll
	}

	res := &models.SearchResult{
		Query:   query,
		Scope:   scope,
		Courses: []models.Course{},
		Lessons: []models.Lesson{},
		Tasks:   []models.Task{},
	}

	if scope == ScopeAll || scope == ScopeCourses {
		for _, c := range courses {
			if Match(query, c.Title, c.Description, c.Category, string(c.Difficulty)) {
				res.Courses = append(res.Courses, c)
			}
		}
	}

	if scope == ScopeAll || scope == ScopeLessons {
		for _, l := range lessons {
			if Match(query, l.Title, l.Description, string(l.Type), string(l.Status)) {
				res.Lessons = append(res.Lessons, l)
			}
		}
	}

	if scope == ScopeAll || scope == ScopeTasks {
		for _, t := range tasks {
			if Match(query, append([]string{t.Title, t.Description}, t.Tags...)...) {
				res.Tasks = append(res.Tasks, t)
			}
		}
	}

	res.Total = len(res.Courses) + len(res.Lessons) + len(res.Tasks)
	return res
}
