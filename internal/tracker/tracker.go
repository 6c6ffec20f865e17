// Package tracker is the service layer for courses, lessons and tasks.
// It owns validation, derived progress, and change notifications.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/storage"
	"github.com/terra-clan/learning-tracker/internal/templates"
)

// Common errors
var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidScope     = errors.New("invalid collection")
)

// Manager defines the interface for learning-tracker operations.
// Every call is scoped to userID.
type Manager interface {
	// Courses
	CreateCourse(ctx context.Context, userID string, in models.CourseInput) (*models.Course, error)
	GetCourse(ctx context.Context, userID, id string) (*models.Course, error)
	UpdateCourse(ctx context.Context, userID, id string, in models.CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, userID, id string) error
	ListCourses(ctx context.Context, userID string, filters models.CourseFilters) ([]models.Course, error)
	CourseLessons(ctx context.Context, userID, courseID string) ([]models.Lesson, error)

	// Lessons
	CreateLesson(ctx context.Context, userID string, in models.LessonInput) (*models.Lesson, error)
	GetLesson(ctx context.Context, userID, id string) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, userID, id string, in models.LessonInput) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, userID, id string) error
	ListLessons(ctx context.Context, userID string, filters models.LessonFilters) ([]models.Lesson, error)
	SetLessonStatus(ctx context.Context, userID, id string, status models.WorkStatus) (*models.Lesson, error)
	SetLessonsStatus(ctx context.Context, userID string, req models.BulkStatusRequest) (int64, error)

	// Tasks
	CreateTask(ctx context.Context, userID string, in models.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, userID string, filters models.TaskFilters) ([]models.Task, error)
	SetTaskStatus(ctx context.Context, userID, id string, status models.WorkStatus) (*models.Task, error)
	OverdueTasks(ctx context.Context, userID string) ([]models.Task, error)

	// Views
	Dashboard(ctx context.Context, userID string) (*models.Dashboard, error)
	Search(ctx context.Context, userID, query, scope string) (*models.SearchResult, error)
	Board(ctx context.Context, userID string, filters models.TaskFilters) (*models.Board, error)
	LessonBoard(ctx context.Context, userID, courseID string) (*models.Board, error)
	Snapshot(ctx context.Context, userID string, collection models.Collection) (interface{}, error)

	// Templates
	EnrollTemplate(ctx context.Context, userID, name string) (*models.Enrollment, error)

	Ping(ctx context.Context) error
}

// Service implements Manager on a Repository
type Service struct {
	repo      storage.Repository
	templates *templates.Loader
	feed      feed.Broker
	validate  *validator.Validate
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new tracker service
func NewService(repo storage.Repository, loader *templates.Loader, broker feed.Broker, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		templates: loader,
		feed:      broker,
		validate:  newValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the store and the feed
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return err
	}
	return s.feed.Ping(ctx)
}

// publish notifies subscribers. Failures are logged and swallowed.
func (s *Service) publish(ctx context.Context, userID string, collection models.Collection, op models.EventOp, ids ...string) {
	ev := models.Event{
		UserID:     userID,
		Collection: collection,
		Op:         op,
		IDs:        ids,
		At:         s.now(),
	}
	if err := s.feed.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish change",
			"error", err,
			"user_id", userID,
			"collection", collection,
			"op", op,
		)
	}
}

// publishLessons also announces the courses whose derived progress moved
func (s *Service) publishLessons(ctx context.Context, userID string, op models.EventOp, lessons ...*models.Lesson) {
	ids := make([]string, 0, len(lessons))
	var courseIDs []string
	seen := make(map[string]bool)
	for _, l := range lessons {
		ids = append(ids, l.ID)
		if l.CourseID != "" && !seen[l.CourseID] {
			seen[l.CourseID] = true
			courseIDs = append(courseIDs, l.CourseID)
		}
	}

	s.publish(ctx, userID, models.CollectionLessons, op, ids...)
	if len(courseIDs) > 0 {
		s.publish(ctx, userID, models.CollectionCourses, models.OpUpdated, courseIDs...)
	}
}
