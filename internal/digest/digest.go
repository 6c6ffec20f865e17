// Package digest sends each user a daily reminder of overdue tasks and
// lessons due that day.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/mail"
	"github.com/terra-clan/learning-tracker/internal/models"
)

// Users lists every account
type Users interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Source reads a user's records
type Source interface {
	OverdueTasks(ctx context.Context, userID string) ([]models.Task, error)
	ListLessons(ctx context.Context, userID string, filters models.LessonFilters) ([]models.Lesson, error)
}

// Summary is one user's digest
type Summary struct {
	UserID          string
	OverdueTasks    []models.Task
	LessonsDueToday []models.Lesson
}

// Empty reports whether there is nothing to remind about
func (s *Summary) Empty() bool {
	return len(s.OverdueTasks) == 0 && len(s.LessonsDueToday) == 0
}

// Worker runs the digest once a day
type Worker struct {
	users  Users
	source Source
	broker feed.Broker
	mailer mail.Mailer
	at     string
	loc    *time.Location
	cron   *cron.Cron
	now    func() time.Time
}

// NewWorker creates a digest job firing daily at at (HH:MM) in loc
func NewWorker(users Users, source Source, broker feed.Broker, mailer mail.Mailer, at string, loc *time.Location) *Worker {
	if loc == nil {
		loc = time.UTC
	}
	return &Worker{
		users:  users,
		source: source,
		broker: broker,
		mailer: mailer,
		at:     at,
		loc:    loc,
		cron:   cron.New(cron.WithLocation(loc)),
		now:    time.Now,
	}
}

// Start schedules the job. It stops when ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	spec, err := DailySpec(w.at)
	if err != nil {
		return err
	}
	if _, err := w.cron.AddFunc(spec, func() { w.Run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}

	w.cron.Start()
	slog.Info("digest worker started", "at", w.at, "timezone", w.loc.String())

	go func() {
		<-ctx.Done()
		<-w.cron.Stop().Done()
		slog.Info("digest worker stopped")
	}()
	return nil
}

// Run builds and delivers every user's digest
func (w *Worker) Run(ctx context.Context) {
	slog.Debug("running digest cycle")

	users, err := w.users.ListUsers(ctx)
	if err != nil {
		slog.Error("failed to list users for digest", "error", err)
		return
	}

	sent := 0
	for _, u := range users {
		summary, err := w.Build(ctx, u.ID)
		if err != nil {
			slog.Error("failed to build digest", "error", err, "user_id", u.ID)
			continue
		}
		if summary.Empty() {
			continue
		}

		w.deliver(ctx, u, summary)
		sent++
	}

	slog.Info("digest cycle finished", "users", len(users), "sent", sent)
}

// Build computes one user's digest for the current day in the worker's timezone
func (w *Worker) Build(ctx context.Context, userID string) (*Summary, error) {
	overdue, err := w.source.OverdueTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue tasks: %w", err)
	}

	lessons, err := w.source.ListLessons(ctx, userID, models.LessonFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	today := w.now().In(w.loc)
	y, m, d := today.Date()

	var due []models.Lesson
	for _, l := range lessons {
		if l.Status == models.StatusDone || l.DueDate == nil {
			continue
		}
		ly, lm, ld := l.DueDate.In(w.loc).Date()
		if ly == y && lm == m && ld == d {
			due = append(due, l)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].DueDate.Before(*due[j].DueDate) })

	return &Summary{UserID: userID, OverdueTasks: overdue, LessonsDueToday: due}, nil
}

func (w *Worker) deliver(ctx context.Context, u models.User, s *Summary) {
	event := models.Event{
		UserID:     u.ID,
		Collection: models.CollectionDigest,
		Op:         models.OpNotice,
		At:         w.now(),
		Data: map[string]string{
			"overdueTasks":    strconv.Itoa(len(s.OverdueTasks)),
			"lessonsDueToday": strconv.Itoa(len(s.LessonsDueToday)),
		},
	}
	if err := w.broker.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish digest", "error", err, "user_id", u.ID)
	}

	if err := w.mailer.Send(ctx, Message(u, s)); err != nil {
		slog.Error("failed to email digest", "error", err, "user_id", u.ID)
	}
}

// Message renders the digest email
func Message(u models.User, s *Summary) mail.Message {
	var b strings.Builder
	b.WriteString("Here is your learning plan for today.\n")

	if len(s.LessonsDueToday) > 0 {
		b.WriteString("\nLessons due today:\n")
		for _, l := range s.LessonsDueToday {
			fmt.Fprintf(&b, "  - %s\n", l.Title)
		}
	}
	if len(s.OverdueTasks) > 0 {
		b.WriteString("\nOverdue tasks:\n")
		for _, t := range s.OverdueTasks {
			fmt.Fprintf(&b, "  - %s (due %s)\n", t.Title, t.DueDate.Format("Jan 2"))
		}
	}

	return mail.Message{
		To:      u.Email,
		ToName:  u.DisplayName,
		Subject: fmt.Sprintf("Today: %d lessons due, %d overdue tasks", len(s.LessonsDueToday), len(s.OverdueTasks)),
		Text:    b.String(),
	}
}

// DailySpec converts HH:MM into a five-field cron expression
func DailySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid digest time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
