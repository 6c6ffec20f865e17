package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/search"
	"github.com/terra-clan/learning-tracker/internal/storage"
)

// CreateLesson creates a lesson. The course id is stored as given and is
// not checked against existing courses.
func (s *Service) CreateLesson(ctx context.Context, userID string, in models.LessonInput) (*models.Lesson, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now()
	l := &models.Lesson{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    models.StatusTodo,
		CreatedAt: now,
	}
	applyLessonInput(l, in)
	l.SetStatus(l.Status, now)

	if err := s.repo.CreateLesson(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.publishLessons(ctx, userID, models.OpCreated, l)
	return l, nil
}

// GetLesson returns one lesson
func (s *Service) GetLesson(ctx context.Context, userID, id string) (*models.Lesson, error) {
	l, err := s.repo.GetLesson(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if l == nil {
		return nil, ErrLessonNotFound
	}
	return l, nil
}

// UpdateLesson replaces a lesson's editable fields
func (s *Service) UpdateLesson(ctx context.Context, userID, id string, in models.LessonInput) (*models.Lesson, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	l, err := s.GetLesson(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousCourse := l.CourseID

	applyLessonInput(l, in)
	l.SetStatus(l.Status, s.now())

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	s.publishLessons(ctx, userID, models.OpUpdated, l)
	if previousCourse != "" && previousCourse != l.CourseID {
		s.publish(ctx, userID, models.CollectionCourses, models.OpUpdated, previousCourse)
	}
	return l, nil
}

// DeleteLesson deletes one lesson
func (s *Service) DeleteLesson(ctx context.Context, userID, id string) error {
	l, err := s.GetLesson(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteLesson(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.publishLessons(ctx, userID, models.OpDeleted, l)
	return nil
}

// ListLessons returns lessons matching filters, most recently updated first
func (s *Service) ListLessons(ctx context.Context, userID string, filters models.LessonFilters) ([]models.Lesson, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	filters.UserID = userID

	lessons, err := s.repo.ListLessons(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	lessons = search.Lessons(lessons, filters)
	search.SortLessons(lessons)
	return lessons, nil
}

// SetLessonStatus moves a lesson to any of the three statuses
func (s *Service) SetLessonStatus(ctx context.Context, userID, id string, status models.WorkStatus) (*models.Lesson, error) {
	l, err := s.GetLesson(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !l.Status.CanTransition(status) {
		return nil, ErrInvalidStatus
	}

	l.SetStatus(status, s.now())

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to update lesson status: %w", err)
	}

	s.publishLessons(ctx, userID, models.OpUpdated, l)
	return l, nil
}

// SetLessonsStatus moves several lessons at once and returns how many changed.
// Ids that do not belong to the user are ignored.
func (s *Service) SetLessonsStatus(ctx context.Context, userID string, req models.BulkStatusRequest) (int64, error) {
	if err := s.check(req); err != nil {
		return 0, err
	}

	n, err := s.repo.UpdateLessonsStatus(ctx, userID, req.IDs, req.Status, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to update lesson statuses: %w", err)
	}

	if n > 0 {
		s.publish(ctx, userID, models.CollectionLessons, models.OpUpdated, req.IDs...)
		s.publish(ctx, userID, models.CollectionCourses, models.OpUpdated)
	}
	return n, nil
}

func applyLessonInput(l *models.Lesson, in models.LessonInput) {
	l.Title = in.Title
	l.Description = in.Description
	l.CourseID = in.CourseID
	l.EstimatedTime = in.EstimatedTime
	l.DueDate = in.DueDate

	if in.Status != "" {
		l.Status = in.Status
	}
	l.Priority = in.Priority
	if l.Priority == "" {
		l.Priority = models.PriorityMedium
	}
	l.Type = in.Type
	if l.Type == "" {
		l.Type = models.LessonReading
	}
}
