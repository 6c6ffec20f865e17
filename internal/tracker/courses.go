package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/progress"
	"github.com/terra-clan/learning-tracker/internal/search"
	"github.com/terra-clan/learning-tracker/internal/storage"
)

// CreateCourse creates a course. Its progress starts at 0.
func (s *Service) CreateCourse(ctx context.Context, userID string, in models.CourseInput) (*models.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Course{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Difficulty:     in.Difficulty,
		EstimatedHours: in.EstimatedHours,
		Featured:       in.Featured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publish(ctx, userID, models.CollectionCourses, models.OpCreated, c.ID)
	return c, nil
}

// GetCourse returns a course with progress derived from its lessons
func (s *Service) GetCourse(ctx context.Context, userID, id string) (*models.Course, error) {
	c, err := s.repo.GetCourse(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	lessons, err := s.repo.ListLessons(ctx, models.LessonFilters{UserID: userID, CourseID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to list course lessons: %w", err)
	}

	annotated := progress.Annotate([]models.Course{*c}, lessons)
	return &annotated[0], nil
}

// UpdateCourse replaces a course's editable fields
func (s *Service) UpdateCourse(ctx context.Context, userID, id string, in models.CourseInput) (*models.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCourse(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	c.Title = in.Title
	c.Description = in.Description
	c.Category = in.Category
	c.Difficulty = in.Difficulty
	c.EstimatedHours = in.EstimatedHours
	c.Featured = in.Featured
	c.UpdatedAt = s.now()

	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.publish(ctx, userID, models.CollectionCourses, models.OpUpdated, c.ID)
	return s.GetCourse(ctx, userID, id)
}

// DeleteCourse deletes a course. Its lessons are not deleted and keep
// pointing at the removed course id.
func (s *Service) DeleteCourse(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteCourse(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.publish(ctx, userID, models.CollectionCourses, models.OpDeleted, id)
	return nil
}

// ListCourses returns the user's courses with derived progress, filtered and sorted
func (s *Service) ListCourses(ctx context.Context, userID string, filters models.CourseFilters) ([]models.Course, error) {
	courses, err := s.annotatedCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses = search.Courses(courses, filters)
	search.SortCourses(courses, filters.SortBy)
	return courses, nil
}

// CourseLessons lists the lessons of an existing course, most recently updated first
func (s *Service) CourseLessons(ctx context.Context, userID, courseID string) ([]models.Lesson, error) {
	c, err := s.repo.GetCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	return s.ListLessons(ctx, userID, models.LessonFilters{CourseID: courseID})
}

func (s *Service) annotatedCourses(ctx context.Context, userID string) ([]models.Course, error) {
	courses, err := s.repo.ListCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	lessons, err := s.repo.ListLessons(ctx, models.LessonFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	return progress.Annotate(courses, lessons), nil
}
