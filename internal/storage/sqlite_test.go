package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-tracker/internal/models"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteCourseCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	c := &models.Course{ID: "c1", UserID: "u1", Title: "Go", Difficulty: models.DifficultyBeginner, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateCourse(ctx, c))

	got, err := repo.GetCourse(ctx, "u1", "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Go", got.Title)

	other, err := repo.GetCourse(ctx, "u2", "c1")
	require.NoError(t, err)
	assert.Nil(t, other, "courses are scoped by owner")

	c.Title = "Go in depth"
	c.Featured = true
	require.NoError(t, repo.UpdateCourse(ctx, c))
	got, _ = repo.GetCourse(ctx, "u1", "c1")
	assert.Equal(t, "Go in depth", got.Title)
	assert.True(t, got.Featured)

	missing := &models.Course{ID: "nope", UserID: "u1"}
	assert.True(t, errors.Is(repo.UpdateCourse(ctx, missing), ErrNotFound))

	require.NoError(t, repo.DeleteCourse(ctx, "u1", "c1"))
	assert.True(t, errors.Is(repo.DeleteCourse(ctx, "u1", "c1"), ErrNotFound))
}

func TestSQLiteDeleteCourseKeepsLessons(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateCourse(ctx, &models.Course{ID: "c1", UserID: "u1", Title: "Go"}))
	require.NoError(t, repo.CreateLesson(ctx, &models.Lesson{ID: "l1", UserID: "u1", CourseID: "c1", Title: "Intro", Status: models.StatusTodo}))

	require.NoError(t, repo.DeleteCourse(ctx, "u1", "c1"))

	lessons, err := repo.ListLessons(ctx, models.LessonFilters{UserID: "u1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestSQLiteUpdateLessonsStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	earlier := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateLesson(ctx, &models.Lesson{ID: "a", UserID: "u1", Title: "a", Status: models.StatusTodo}))
	require.NoError(t, repo.CreateLesson(ctx, &models.Lesson{ID: "b", UserID: "u1", Title: "b", Status: models.StatusDone, CompletedAt: &earlier}))
	require.NoError(t, repo.CreateLesson(ctx, &models.Lesson{ID: "c", UserID: "u2", Title: "c", Status: models.StatusTodo}))

	n, err := repo.UpdateLessonsStatus(ctx, "u1", []string{"a", "b", "c"}, models.StatusDone, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	a, _ := repo.GetLesson(ctx, "u1", "a")
	require.NotNil(t, a.CompletedAt)
	assert.True(t, a.CompletedAt.Equal(now))

	b, _ := repo.GetLesson(ctx, "u1", "b")
	require.NotNil(t, b.CompletedAt)
	assert.True(t, b.CompletedAt.Equal(earlier), "existing completion time is kept")

	c, _ := repo.GetLesson(ctx, "u2", "c")
	assert.Equal(t, models.StatusTodo, c.Status)

	_, err = repo.UpdateLessonsStatus(ctx, "u1", []string{"a"}, models.StatusInProgress, now)
	require.NoError(t, err)
	a, _ = repo.GetLesson(ctx, "u1", "a")
	assert.Nil(t, a.CompletedAt)
}

func TestSQLiteTaskTags(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTask(ctx, &models.Task{ID: "t1", UserID: "u1", Title: "a", Status: models.StatusTodo, Priority: models.PriorityHigh, Tags: []string{"go", "exam"}}))
	require.NoError(t, repo.CreateTask(ctx, &models.Task{ID: "t2", UserID: "u1", Title: "b", Status: models.StatusTodo, Priority: models.PriorityLow}))

	got, err := repo.GetTask(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "exam"}, got.Tags)

	tagged, err := repo.ListTasks(ctx, models.TaskFilters{UserID: "u1", Tag: "exam"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "t1", tagged[0].ID)

	low, err := repo.ListTasks(ctx, models.TaskFilters{UserID: "u1", Priority: models.PriorityLow})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "t2", low[0].ID)
}

func TestSQLiteUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := &models.User{ID: "u1", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, u))

	err := repo.CreateUser(ctx, &models.User{ID: "u2", Email: "ada@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)

	byEmail, err := repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)

	require.NoError(t, repo.CreateTask(ctx, &models.Task{ID: "t1", UserID: "u1", Title: "a"}))
	require.NoError(t, repo.CreateCourse(ctx, &models.Course{ID: "c1", UserID: "u1", Title: "a"}))
	require.NoError(t, repo.DeleteUserData(ctx, "u1"))

	gone, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	tasks, err := repo.ListTasks(ctx, models.TaskFilters{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_tags.sql", "001_init.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	pending, err := pendingMigrations(dir, map[string]bool{"001_init.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_tags.sql"}, pending)

	_, err = pendingMigrations(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
