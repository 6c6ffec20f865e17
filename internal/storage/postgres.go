package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	poolConfig.MinConns = 5
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	poolConfig.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- users ---

const userColumns = `id, email, password_hash, display_name, photo_url, created_at, updated_at`

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.PhotoURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *PostgresRepository) getUser(ctx context.Context, field, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, field)

	u, err := scanUser(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateUser updates profile fields and the password hash
func (r *PostgresRepository) UpdateUser(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, display_name = $4, photo_url = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, u.ID, u.Email, u.PasswordHash, u.DisplayName, u.PhotoURL, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	return nil
}

// ListUsers returns every account, oldest first
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteUserData removes the user and every course, lesson and task they own
func (r *PostgresRepository) DeleteUserData(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"tasks", "lessons", "courses"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}
	return nil
}

// --- courses ---

const courseColumns = `id, user_id, title, description, category, difficulty, estimated_hours, featured, created_at, updated_at`

// CreateCourse creates a new course record
func (r *PostgresRepository) CreateCourse(ctx context.Context, c *models.Course) error {
	query := `INSERT INTO courses (` + courseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Title,
		c.Description,
		c.Category,
		string(c.Difficulty),
		c.EstimatedHours,
		c.Featured,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetCourse retrieves one of the user's courses
func (r *PostgresRepository) GetCourse(ctx context.Context, userID, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND user_id = $2`

	c, err := scanCourse(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// UpdateCourse updates an existing course
func (r *PostgresRepository) UpdateCourse(ctx context.Context, c *models.Course) error {
	query := `
		UPDATE courses
		SET title = $3, description = $4, category = $5, difficulty = $6, estimated_hours = $7, featured = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Title,
		c.Description,
		c.Category,
		string(c.Difficulty),
		c.EstimatedHours,
		c.Featured,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("course %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteCourse deletes a course. Lessons referencing it are left in place.
func (r *PostgresRepository) DeleteCourse(ctx context.Context, userID, id string) error {
	return r.deleteOwned(ctx, "courses", userID, id)
}

// ListCourses returns the user's courses, newest first
func (r *PostgresRepository) ListCourses(ctx context.Context, userID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// --- lessons ---

const lessonColumns = `id, user_id, course_id, title, description, status, priority, type, estimated_time, due_date, completed_at, created_at, updated_at`

// CreateLesson creates a new lesson record
func (r *PostgresRepository) CreateLesson(ctx context.Context, l *models.Lesson) error {
	query := `INSERT INTO lessons (` + lessonColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.UserID,
		l.CourseID,
		l.Title,
		l.Description,
		string(l.Status),
		string(l.Priority),
		string(l.Type),
		l.EstimatedTime,
		nullTime(l.DueDate),
		nullTime(l.CompletedAt),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetLesson retrieves one of the user's lessons
func (r *PostgresRepository) GetLesson(ctx context.Context, userID, id string) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1 AND user_id = $2`

	l, err := scanLesson(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return l, nil
}

// UpdateLesson updates an existing lesson
func (r *PostgresRepository) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	query := `
		UPDATE lessons
		SET course_id = $3, title = $4, description = $5, status = $6, priority = $7, type = $8,
		    estimated_time = $9, due_date = $10, completed_at = $11, updated_at = $12
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		l.ID,
		l.UserID,
		l.CourseID,
		l.Title,
		l.Description,
		string(l.Status),
		string(l.Priority),
		string(l.Type),
		l.EstimatedTime,
		nullTime(l.DueDate),
		nullTime(l.CompletedAt),
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson %s: %w", l.ID, ErrNotFound)
	}
	return nil
}

// DeleteLesson deletes one of the user's lessons
func (r *PostgresRepository) DeleteLesson(ctx context.Context, userID, id string) error {
	return r.deleteOwned(ctx, "lessons", userID, id)
}

// ListLessons returns lessons matching the owner, course and status filters
func (r *PostgresRepository) ListLessons(ctx context.Context, filters models.LessonFilters) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE user_id = $1`
	args := []interface{}{filters.UserID}
	argNum := 2

	if filters.CourseID != "" {
		query += fmt.Sprintf(" AND course_id = $%d", argNum)
		args = append(args, filters.CourseID)
		argNum++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

// UpdateLessonsStatus moves several lessons to status in one statement.
// completed_at keeps an existing completion time and is cleared when leaving done.
func (r *PostgresRepository) UpdateLessonsStatus(ctx context.Context, userID string, ids []string, status models.WorkStatus, at time.Time) (int64, error) {
	query := `
		UPDATE lessons
		SET status = $3,
		    updated_at = $4,
		    completed_at = CASE WHEN $3 = 'done' THEN COALESCE(completed_at, $4) ELSE NULL END
		WHERE user_id = $1 AND id = ANY($2)
	`

	result, err := r.pool.Exec(ctx, query, userID, ids, string(status), at)
	if err != nil {
		return 0, fmt.Errorf("failed to update lesson statuses: %w", err)
	}
	return result.RowsAffected(), nil
}

// --- tasks ---

const taskColumns = `id, user_id, title, description, status, priority, due_date, tags, estimated_time, completed_at, created_at, updated_at`

// CreateTask creates a new task record
func (r *PostgresRepository) CreateTask(ctx context.Context, t *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullTime(t.DueDate),
		tagsOrEmpty(t.Tags),
		t.EstimatedTime,
		nullTime(t.CompletedAt),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves one of the user's tasks
func (r *PostgresRepository) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask updates an existing task
func (r *PostgresRepository) UpdateTask(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, due_date = $7, tags = $8,
		    estimated_time = $9, completed_at = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullTime(t.DueDate),
		tagsOrEmpty(t.Tags),
		t.EstimatedTime,
		nullTime(t.CompletedAt),
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteTask deletes one of the user's tasks
func (r *PostgresRepository) DeleteTask(ctx context.Context, userID, id string) error {
	return r.deleteOwned(ctx, "tasks", userID, id)
}

// ListTasks returns tasks matching the owner, status and priority filters
func (r *PostgresRepository) ListTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []interface{}{filters.UserID}
	argNum := 2

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	if filters.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argNum)
		args = append(args, string(filters.Priority))
		argNum++
	}

	if filters.Tag != "" {
		query += fmt.Sprintf(" AND $%d = ANY(tags)", argNum)
		args = append(args, filters.Tag)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepository) deleteOwned(ctx context.Context, table, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table)

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

// Row scanning

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	var difficulty string

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Description,
		&c.Category,
		&difficulty,
		&c.EstimatedHours,
		&c.Featured,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Difficulty = models.Difficulty(difficulty)
	return &c, nil
}

func scanLesson(row pgx.Row) (*models.Lesson, error) {
	var l models.Lesson
	var status, priority, lessonType string
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.CourseID,
		&l.Title,
		&l.Description,
		&status,
		&priority,
		&lessonType,
		&l.EstimatedTime,
		&dueDate,
		&completedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = models.WorkStatus(status)
	l.Priority = models.Priority(priority)
	l.Type = models.LessonType(lessonType)
	l.DueDate = timePtr(dueDate)
	l.CompletedAt = timePtr(completedAt)
	return &l, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var status, priority string
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&dueDate,
		&t.Tags,
		&t.EstimatedTime,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = models.WorkStatus(status)
	t.Priority = models.Priority(priority)
	t.DueDate = timePtr(dueDate)
	t.CompletedAt = timePtr(completedAt)
	return &t, nil
}

// Helper functions for nullable values

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
