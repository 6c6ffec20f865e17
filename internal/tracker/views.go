package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/learning-tracker/internal/board"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/progress"
	"github.com/terra-clan/learning-tracker/internal/search"
)

// Dashboard aggregates the user's KPIs at the current time
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	courses, lessons, tasks, err := s.everything(ctx, userID)
	if err != nil {
		return nil, err
	}
	return progress.BuildDashboard(courses, lessons, tasks, s.now()), nil
}

// Search runs the global search across courses, lessons and tasks
func (s *Service) Search(ctx context.Context, userID, query, scope string) (*models.SearchResult, error) {
	if scope == "" {
		scope = search.ScopeAll
	}
	if !search.ValidScope(scope) {
		return nil, ErrInvalidScope
	}

	courses, lessons, tasks, err := s.everything(ctx, userID)
	if err != nil {
		return nil, err
	}
	return search.Search(query, scope, courses, lessons, tasks), nil
}

// Board groups the user's tasks into Kanban columns
func (s *Service) Board(ctx context.Context, userID string, filters models.TaskFilters) (*models.Board, error) {
	filters.Status = ""
	tasks, err := s.ListTasks(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	return board.Group(tasks), nil
}

// LessonBoard groups lessons into Kanban columns, optionally for one course
func (s *Service) LessonBoard(ctx context.Context, userID, courseID string) (*models.Board, error) {
	lessons, err := s.ListLessons(ctx, userID, models.LessonFilters{CourseID: courseID})
	if err != nil {
		return nil, err
	}
	return board.GroupLessons(lessons), nil
}

// Snapshot returns the full current result set of one collection, as sent to
// realtime subscribers after each change.
func (s *Service) Snapshot(ctx context.Context, userID string, collection models.Collection) (interface{}, error) {
	switch collection {
	case models.CollectionCourses:
		return s.ListCourses(ctx, userID, models.CourseFilters{})
	case models.CollectionLessons:
		return s.ListLessons(ctx, userID, models.LessonFilters{})
	case models.CollectionTasks:
		return s.ListTasks(ctx, userID, models.TaskFilters{})
	default:
		return nil, ErrInvalidScope
	}
}

// EnrollTemplate creates a course and its lessons from a learning-path
// template. Lesson due dates are offset from now.
func (s *Service) EnrollTemplate(ctx context.Context, userID, name string) (*models.Enrollment, error) {
	tmpl := s.templates.Get(name)
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}

	course, err := s.CreateCourse(ctx, userID, models.CourseInput{
		Title:          tmpl.Title,
		Description:    tmpl.Description,
		Category:       tmpl.Category,
		Difficulty:     tmpl.Difficulty,
		EstimatedHours: tmpl.EstimatedHours,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create course from template %s: %w", name, err)
	}

	now := s.now()
	lessons := make([]models.Lesson, 0, len(tmpl.Lessons))
	for i, tl := range tmpl.Lessons {
		l := models.Lesson{
			ID:            uuid.New().String(),
			UserID:        userID,
			CourseID:      course.ID,
			Title:         tl.Title,
			Description:   tl.Description,
			Status:        models.StatusTodo,
			Priority:      tl.Priority,
			Type:          tl.Type,
			EstimatedTime: tl.EstimatedTime,
			// Keep creation order visible to updatedAt sorting.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		l.UpdatedAt = l.CreatedAt
		if tl.DueInDays > 0 {
			due := now.AddDate(0, 0, tl.DueInDays)
			l.DueDate = &due
		}

		if err := s.repo.CreateLesson(ctx, &l); err != nil {
			return nil, fmt.Errorf("failed to create lesson %q from template %s: %w", tl.Title, name, err)
		}
		lessons = append(lessons, l)
	}

	created := make([]*models.Lesson, len(lessons))
	for i := range lessons {
		created[i] = &lessons[i]
	}

	s.publishLessons(ctx, userID, models.OpCreated, created...)

	course.LessonsCount = len(lessons)
	return &models.Enrollment{Course: course, Lessons: lessons}, nil
}

func (s *Service) everything(ctx context.Context, userID string) ([]models.Course, []models.Lesson, []models.Task, error) {
	courses, err := s.repo.ListCourses(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list courses: %w", err)
	}
	lessons, err := s.repo.ListLessons(ctx, models.LessonFilters{UserID: userID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx, models.TaskFilters{UserID: userID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return progress.Annotate(courses, lessons), lessons, tasks, nil
}
