package pomodoro

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/learning-tracker/internal/cache"
	"github.com/terra-clan/learning-tracker/internal/models"
)

func newTestService(length time.Duration) (*Service, *time.Time) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	svc := NewService(cache.NewMemoryStore(), length)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestIdleByDefault(t *testing.T) {
	svc, _ := newTestService(0)

	v, err := svc.State(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroIdle, v.Status)
	assert.Equal(t, 25*60, v.RemainingSeconds)
	assert.Equal(t, "25:00", v.Display)
}

func TestStartPauseResume(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(25 * time.Minute)

	v, err := svc.Start(ctx, "u1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroRunning, v.Status)
	assert.Equal(t, "task-1", v.TaskID)

	*now = now.Add(90 * time.Second)
	v, err = svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "23:30", v.Display)

	v, err = svc.Pause(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroPaused, v.Status)

	*now = now.Add(10 * time.Minute)
	v, err = svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "23:30", v.Display, "paused timer must not move")

	v, err = svc.Start(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "task-1", v.TaskID)
	*now = now.Add(30 * time.Second)
	v, err = svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 23*60, v.RemainingSeconds)
}

func TestClampsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(time.Minute)

	_, err := svc.Start(ctx, "u1", "")
	require.NoError(t, err)

	*now = now.Add(5 * time.Minute)
	v, err := svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroFinished, v.Status)
	assert.Equal(t, 0, v.RemainingSeconds)
	assert.Equal(t, "00:00", v.Display)

	// starting a finished timer begins a new block
	v, err = svc.Start(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroRunning, v.Status)
	assert.Equal(t, 60, v.RemainingSeconds)

	*now = now.Add(30 * time.Second)
	v, err = svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroRunning, v.Status)
	assert.Equal(t, 30, v.RemainingSeconds)
}

func TestPauseAfterRunningOut(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(time.Minute)

	_, err := svc.Start(ctx, "u1", "")
	require.NoError(t, err)
	*now = now.Add(2 * time.Minute)

	v, err := svc.Pause(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroFinished, v.Status)

	v, err = svc.Start(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroRunning, v.Status)
	assert.Equal(t, "01:00", v.Display)
}

func TestResetAndIsolation(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(0)

	_, err := svc.Start(ctx, "u1", "")
	require.NoError(t, err)
	*now = now.Add(time.Minute)

	other, err := svc.State(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroIdle, other.Status)

	v, err := svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PomodoroIdle, v.Status)
	assert.Equal(t, "25:00", v.Display)
}

func TestFormat(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 61: "01:01", 1500: "25:00", -3: "00:00"}
	for in, want := range cases {
		assert.Equal(t, want, Format(in))
	}
}
