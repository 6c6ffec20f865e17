package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-tracker/internal/api"
	"github.com/terra-clan/learning-tracker/internal/auth"
	"github.com/terra-clan/learning-tracker/internal/cache"
	"github.com/terra-clan/learning-tracker/internal/config"
	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/mail"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/pomodoro"
	"github.com/terra-clan/learning-tracker/internal/storage"
	"github.com/terra-clan/learning-tracker/internal/templates"
	"github.com/terra-clan/learning-tracker/internal/tracker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	hub := feed.NewHub()
	t.Cleanup(func() { hub.Close() })

	store := cache.NewMemoryStore()
	loader := templates.NewLoader()

	srv := api.NewServer(config.ServerConfig{}, api.Deps{
		Tracker:   tracker.NewService(repo, loader, hub),
		Identity:  auth.NewService(repo, store, auth.NewTokenManager("client-test-secret", time.Hour), mail.LogMailer{}, auth.Config{}),
		Pomodoro:  pomodoro.NewService(store, 0),
		Templates: loader,
		Feed:      hub,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientWorkflow(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	c := NewClient(ts.URL, WithTimeout(5*time.Second))

	_, err := c.Register(ctx, models.Credentials{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	course, err := c.CreateCourse(ctx, models.CourseInput{Title: "Algorithms 101", Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)

	var ids []string
	for _, title := range []string{"Sorting", "Graphs", "Heaps"} {
		l, err := c.CreateLesson(ctx, models.LessonInput{Title: title, CourseID: course.ID})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	updated, err := c.SetLessonsStatus(ctx, ids[:2], models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	got, err := c.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, got.Progress)

	task, err := c.CreateTask(ctx, models.TaskInput{Title: "Practice", Tags: []string{"algo"}})
	require.NoError(t, err)
	_, err = c.SetTaskStatus(ctx, task.ID, models.StatusInProgress)
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx, TaskListOptions{Tag: "algo"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusInProgress, tasks[0].Status)

	result, err := c.Search(ctx, "algo", "")
	require.NoError(t, err)
	assert.Len(t, result.Courses, 1)
	assert.Len(t, result.Tasks, 1)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dash.Lessons.Total)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	c := NewClient(ts.URL)

	_, err := c.Login(ctx, "nobody@example.com", "secret1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid-credential", apiErr.Code)

	_, err = c.ListCourses(ctx, CourseListOptions{})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
