package storage

import (
	"context"
	"errors"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

var (
	// ErrNotFound is returned by Update and Delete when no row matched
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines the interface for learning-tracker persistence.
// Every record query is scoped by owner. Get methods return (nil, nil)
// when the record does not exist.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUserData(ctx context.Context, userID string) error

	// Courses
	CreateCourse(ctx context.Context, c *models.Course) error
	GetCourse(ctx context.Context, userID, id string) (*models.Course, error)
	UpdateCourse(ctx context.Context, c *models.Course) error
	DeleteCourse(ctx context.Context, userID, id string) error
	ListCourses(ctx context.Context, userID string) ([]models.Course, error)

	// Lessons
	CreateLesson(ctx context.Context, l *models.Lesson) error
	GetLesson(ctx context.Context, userID, id string) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	DeleteLesson(ctx context.Context, userID, id string) error
	ListLessons(ctx context.Context, filters models.LessonFilters) ([]models.Lesson, error)
	UpdateLessonsStatus(ctx context.Context, userID string, ids []string, status models.WorkStatus, at time.Time) (int64, error)

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
