package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/storage"
	"github.com/terra-clan/learning-tracker/internal/templates"
)

type fixture struct {
	svc   *Service
	hub   *feed.Hub
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	hub := feed.NewHub()
	t.Cleanup(func() { hub.Close() })

	loader := templates.NewLoader()
	loader.Add(&models.Template{
		Name:       "go-basics",
		Title:      "Go Basics",
		Category:   "Backend",
		Difficulty: models.DifficultyBeginner,
		Lessons: []models.TemplateLesson{
			{Title: "Tour", Type: models.LessonReading, Priority: models.PriorityMedium},
			{Title: "CLI project", Type: models.LessonProject, Priority: models.PriorityHigh, DueInDays: 7},
		},
	})

	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	f := &fixture{hub: hub, clock: &now}
	f.svc = NewService(repo, loader, hub, WithClock(func() time.Time { return *f.clock }))
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestCourseProgressDerivedFromLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	course, err := f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "Algorithms 101", Difficulty: models.DifficultyIntermediate})
	require.NoError(t, err)
	assert.Equal(t, 0, course.Progress)

	var ids []string
	for i := 0; i < 7; i++ {
		l, err := f.svc.CreateLesson(ctx, "u1", models.LessonInput{Title: "lesson", CourseID: course.ID})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	n, err := f.svc.SetLessonsStatus(ctx, "u1", models.BulkStatusRequest{IDs: ids[:3], Status: models.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := f.svc.GetCourse(ctx, "u1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, 43, got.Progress)
	assert.Equal(t, 7, got.LessonsCount)
	assert.Equal(t, 3, got.CompletedLessons)

	list, err := f.svc.ListCourses(ctx, "u1", models.CourseFilters{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 43, list[0].Progress)
}

func TestDeleteCourseKeepsLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	course, err := f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "Biology Basics", Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)
	lesson, err := f.svc.CreateLesson(ctx, "u1", models.LessonInput{Title: "Cells", CourseID: course.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCourse(ctx, "u1", course.ID))

	_, err = f.svc.GetCourse(ctx, "u1", course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	orphan, err := f.svc.GetLesson(ctx, "u1", lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, orphan.CourseID)

	lessons, err := f.svc.ListLessons(ctx, "u1", models.LessonFilters{CourseID: course.ID})
	require.NoError(t, err)
	assert.Len(t, lessons, 1)

	assert.ErrorIs(t, f.svc.DeleteCourse(ctx, "u1", course.ID), ErrCourseNotFound)
}

func TestAnyStatusToAnyStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "Flashcards"})
	require.NoError(t, err)
	other, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "Untouched"})
	require.NoError(t, err)

	moves := []models.WorkStatus{
		models.StatusDone,
		models.StatusTodo,
		models.StatusInProgress,
		models.StatusInProgress,
		models.StatusDone,
	}
	for _, status := range moves {
		f.advance(time.Minute)
		got, err := f.svc.SetTaskStatus(ctx, "u1", task.ID, status)
		require.NoError(t, err, "move to %s", status)
		assert.Equal(t, status, got.Status)
		if status == models.StatusDone {
			assert.NotNil(t, got.CompletedAt)
		} else {
			assert.Nil(t, got.CompletedAt)
		}
	}

	unchanged, err := f.svc.GetTask(ctx, "u1", other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, unchanged.Status)

	_, err = f.svc.SetTaskStatus(ctx, "u1", task.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateTaskDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{
		Title:  "  Review notes ",
		Status: models.StatusDone,
		Tags:   []string{"exam", " exam", "", "biology"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Review notes", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.DefaultTaskEstimate, task.EstimatedTime)
	assert.Equal(t, []string{"exam", "biology"}, task.Tags)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "   ", Difficulty: "Expert"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "difficulty")

	_, err = f.svc.SetLessonsStatus(ctx, "u1", models.BulkStatusRequest{Status: models.StatusDone})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ids")
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.CreateTask(ctx, "alice", models.TaskInput{Title: "secret"})
	require.NoError(t, err)

	_, err = f.svc.GetTask(ctx, "bob", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, "bob", task.ID), ErrTaskNotFound)

	tasks, err := f.svc.ListTasks(ctx, "bob", models.TaskFilters{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasksQueryAndSort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, title := range []string{"Algorithms homework", "Biology reading", "algorithm quiz"} {
		_, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: title})
		require.NoError(t, err)
		f.advance(time.Second)
	}

	all, err := f.svc.ListTasks(ctx, "u1", models.TaskFilters{SortBy: "createdAt"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "algorithm quiz", all[0].Title)

	algo, err := f.svc.ListTasks(ctx, "u1", models.TaskFilters{Query: "algo", SortBy: "title"})
	require.NoError(t, err)
	require.Len(t, algo, 2)
	assert.Equal(t, "algorithm quiz", algo[0].Title)
	assert.Equal(t, "Algorithms homework", algo[1].Title)
}

func TestOverdueTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	past := f.clock.Add(-48 * time.Hour)
	future := f.clock.Add(48 * time.Hour)

	late, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "late", DueDate: &past})
	require.NoError(t, err)
	_, err = f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "later", DueDate: &future})
	require.NoError(t, err)
	done, err := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "done", DueDate: &past})
	require.NoError(t, err)
	_, err = f.svc.SetTaskStatus(ctx, "u1", done.ID, models.StatusDone)
	require.NoError(t, err)

	overdue, err := f.svc.OverdueTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
}

func TestBoardAndDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, _ := f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "a"})
	_, _ = f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "b"})
	_, err := f.svc.SetTaskStatus(ctx, "u1", a.ID, models.StatusDone)
	require.NoError(t, err)

	b, err := f.svc.Board(ctx, "u1", models.TaskFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Columns[0].Count)
	assert.Equal(t, 0, b.Columns[1].Count)
	assert.Equal(t, 1, b.Columns[2].Count)

	d, err := f.svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Tasks.Total)
	assert.Equal(t, 1, d.Tasks.Completed)
	assert.Len(t, d.LessonTrend, 7)
}

func TestSearchScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "Algorithms 101", Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)
	_, err = f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "Biology Basics", Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)
	_, err = f.svc.CreateTask(ctx, "u1", models.TaskInput{Title: "Practice", Tags: []string{"algo"}})
	require.NoError(t, err)

	res, err := f.svc.Search(ctx, "u1", "algo", "")
	require.NoError(t, err)
	require.Len(t, res.Courses, 1)
	assert.Equal(t, "Algorithms 101", res.Courses[0].Title)
	assert.Len(t, res.Tasks, 1)
	assert.Equal(t, 2, res.Total)

	_, err = f.svc.Search(ctx, "u1", "algo", "everything")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestEnrollTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	enrollment, err := f.svc.EnrollTemplate(ctx, "u1", "go-basics")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", enrollment.Course.Title)
	require.Len(t, enrollment.Lessons, 2)
	require.NotNil(t, enrollment.Lessons[1].DueDate)
	assert.True(t, enrollment.Lessons[1].DueDate.Equal(f.clock.AddDate(0, 0, 7)))

	lessons, err := f.svc.CourseLessons(ctx, "u1", enrollment.Course.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 2)

	_, err = f.svc.EnrollTemplate(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)

	events, err := f.hub.Subscribe(ctx, "u1")
	require.NoError(t, err)

	course, err := f.svc.CreateCourse(ctx, "u1", models.CourseInput{Title: "Go", Difficulty: models.DifficultyBeginner})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, models.CollectionCourses, ev.Collection)
	assert.Equal(t, models.OpCreated, ev.Op)
	assert.Equal(t, []string{course.ID}, ev.IDs)

	_, err = f.svc.CreateLesson(ctx, "u1", models.LessonInput{Title: "Intro", CourseID: course.ID})
	require.NoError(t, err)

	ev = <-events
	assert.Equal(t, models.CollectionLessons, ev.Collection)
	ev = <-events
	assert.Equal(t, models.CollectionCourses, ev.Collection)
	assert.Equal(t, models.OpUpdated, ev.Op)
}
