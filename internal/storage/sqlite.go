package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/search"
)

// SQLiteRepository implements Repository on an embedded SQLite database
// through gorm. The schema is created with AutoMigrate.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository opens (or creates) the database at dsn.
// ":memory:" gives a private in-memory database.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		dsn = "learning_tracker.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Task{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// ensureDirForSQLite creates the parent directory of a file-backed DSN
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create db dir %q: %w", dir, err)
	}
	return nil
}

// Ping checks database connectivity
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("id = ?", id), "user")
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx).Where("email = ?", email), "user")
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u *models.User) error {
	res := r.db.WithContext(ctx).Model(u).
		Select("email", "password_hash", "display_name", "photo_url", "updated_at").
		Updates(u)
	return affected(res, "user", u.ID)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteUserData removes the user and every course, lesson and task they own
func (r *SQLiteRepository) DeleteUserData(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Task{}, &models.Lesson{}, &models.Course{}} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete user records: %w", err)
			}
		}
		return affected(tx.Where("id = ?", userID).Delete(&models.User{}), "user", userID)
	})
}

// --- courses ---

func (r *SQLiteRepository) CreateCourse(ctx context.Context, c *models.Course) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCourse(ctx context.Context, userID, id string) (*models.Course, error) {
	return first[models.Course](r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID), "course")
}

func (r *SQLiteRepository) UpdateCourse(ctx context.Context, c *models.Course) error {
	res := r.db.WithContext(ctx).Model(c).
		Where("user_id = ?", c.UserID).
		Select("title", "description", "category", "difficulty", "estimated_hours", "featured", "updated_at").
		Updates(c)
	return affected(res, "course", c.ID)
}

// DeleteCourse deletes a course. Lessons referencing it are left in place.
func (r *SQLiteRepository) DeleteCourse(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Course{})
	return affected(res, "course", id)
}

func (r *SQLiteRepository) ListCourses(ctx context.Context, userID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// --- lessons ---

func (r *SQLiteRepository) CreateLesson(ctx context.Context, l *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetLesson(ctx context.Context, userID, id string) (*models.Lesson, error) {
	return first[models.Lesson](r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID), "lesson")
}

func (r *SQLiteRepository) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	res := r.db.WithContext(ctx).Model(l).
		Where("user_id = ?", l.UserID).
		Select("course_id", "title", "description", "status", "priority", "type",
			"estimated_time", "due_date", "completed_at", "updated_at").
		Updates(l)
	return affected(res, "lesson", l.ID)
}

func (r *SQLiteRepository) DeleteLesson(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Lesson{})
	return affected(res, "lesson", id)
}

func (r *SQLiteRepository) ListLessons(ctx context.Context, filters models.LessonFilters) ([]models.Lesson, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", filters.UserID)
	if filters.CourseID != "" {
		q = q.Where("course_id = ?", filters.CourseID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var lessons []models.Lesson
	if err := q.Order("created_at DESC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (r *SQLiteRepository) UpdateLessonsStatus(ctx context.Context, userID string, ids []string, status models.WorkStatus, at time.Time) (int64, error) {
	completed := interface{}(nil)
	if status.IsDone() {
		completed = gorm.Expr("COALESCE(completed_at, ?)", at)
	}

	res := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]interface{}{
			"status":       status,
			"updated_at":   at,
			"completed_at": completed,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update lesson statuses: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// --- tasks ---

func (r *SQLiteRepository) CreateTask(ctx context.Context, t *models.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	return first[models.Task](r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID), "task")
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t *models.Task) error {
	res := r.db.WithContext(ctx).Model(t).
		Where("user_id = ?", t.UserID).
		Select("title", "description", "status", "priority", "due_date", "tags",
			"estimated_time", "completed_at", "updated_at").
		Updates(t)
	return affected(res, "task", t.ID)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	return affected(res, "task", id)
}

// ListTasks filters by owner, status and priority in SQL; tags are JSON so the
// tag filter runs in memory.
func (r *SQLiteRepository) ListTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", filters.UserID)
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if filters.Tag != "" {
		tasks = search.Tasks(tasks, models.TaskFilters{Tag: filters.Tag})
	}
	return tasks, nil
}

func first[T any](q *gorm.DB, kind string) (*T, error) {
	var v T
	if err := q.First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return &v, nil
}

func affected(res *gorm.DB, kind, id string) error {
	if res.Error != nil {
		return fmt.Errorf("failed to write %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
