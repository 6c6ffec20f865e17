// Package progress derives course progress and dashboard KPIs from the
// user's lessons, courses and tasks. Everything here is a pure function of
// its inputs; callers pass the full current lists and the current time.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// CourseProgress returns the share of done lessons for courseID as a rounded
// percentage, or 0 when the course has no lessons.
func CourseProgress(lessons []models.Lesson, courseID string) int {
	total, done := countLessons(lessons, courseID)
	return percent(done, total)
}

// OverallCompletion is the arithmetic mean of the courses' progress.
// Courses are expected to be annotated already.
func OverallCompletion(courses []models.Course) float64 {
	if len(courses) == 0 {
		return 0
	}
	sum := 0
	for _, c := range courses {
		sum += c.Progress
	}
	return float64(sum) / float64(len(courses))
}

// Annotate fills Progress, LessonsCount and CompletedLessons on every course
// from lessons. The input slice is modified in place and returned.
func Annotate(courses []models.Course, lessons []models.Lesson) []models.Course {
	type tally struct{ total, done int }
	byCourse := make(map[string]*tally, len(courses))
	for i := range lessons {
		cid := lessons[i].CourseID
		if cid == "" {
			continue
		}
		t := byCourse[cid]
		if t == nil {
			t = &tally{}
			byCourse[cid] = t
		}
		t.total++
		if lessons[i].Status.IsDone() {
			t.done++
		}
	}

	for i := range courses {
		t := byCourse[courses[i].ID]
		if t == nil {
			courses[i].Progress, courses[i].LessonsCount, courses[i].CompletedLessons = 0, 0, 0
			continue
		}
		courses[i].LessonsCount = t.total
		courses[i].CompletedLessons = t.done
		courses[i].Progress = percent(t.done, t.total)
	}
	return courses
}

// CourseStatistics summarises annotated courses
func CourseStatistics(courses []models.Course) models.CourseStats {
	stats := models.CourseStats{Total: len(courses)}
	for i := range courses {
		switch {
		case courses[i].IsCompleted():
			stats.Completed++
		case courses[i].IsStarted():
			stats.InProgress++
		}
		stats.EstimatedHours += courses[i].EstimatedHours
	}
	return stats
}

// LessonStatistics summarises lessons at now
func LessonStatistics(lessons []models.Lesson, now time.Time) models.LessonStats {
	stats := models.LessonStats{Total: len(lessons)}
	for i := range lessons {
		switch lessons[i].Status {
		case models.StatusDone:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		default:
			stats.Todo++
		}
		if isUpcoming(&lessons[i], now) {
			stats.Upcoming++
		}
	}
	return stats
}

// TaskStatistics summarises tasks at now
func TaskStatistics(tasks []models.Task, now time.Time) models.TaskStats {
	stats := models.TaskStats{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		stats.TotalEstimatedTime += t.EstimatedTime
		switch t.Status {
		case models.StatusDone:
			stats.Completed++
			stats.CompletedEstimatedTime += t.EstimatedTime
		case models.StatusInProgress:
			stats.InProgress++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	stats.Pending = stats.Total - stats.Completed - stats.InProgress
	return stats
}

// OverallProgress blends course completion (60%) with task completion (40%)
func OverallProgress(courses []models.Course, tasks models.TaskStats) int {
	taskCompletion := 0.0
	if tasks.Total > 0 {
		taskCompletion = float64(tasks.Completed) / float64(tasks.Total) * 100
	}
	return round(0.6*OverallCompletion(courses) + 0.4*taskCompletion)
}

// LessonTrend buckets lesson activity into the last `days` calendar days
// ending today (UTC), oldest first.
func LessonTrend(lessons []models.Lesson, now time.Time, days int) []models.TrendPoint {
	if days <= 0 {
		return []models.TrendPoint{}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	points := make([]models.TrendPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		key := day.Format(time.DateOnly)
		points[i] = models.TrendPoint{Date: key, Label: day.Format("Mon")}
		index[key] = i
	}

	for i := range lessons {
		l := &lessons[i]
		if l.Status.IsDone() {
			if idx, ok := index[l.ActivityTime().UTC().Format(time.DateOnly)]; ok {
				points[idx].Completed++
			}
		}
		if l.DueDate != nil {
			if idx, ok := index[l.DueDate.UTC().Format(time.DateOnly)]; ok {
				points[idx].Scheduled++
			}
		}
	}
	return points
}

// RecentTasks returns up to n tasks, most recently touched first
func RecentTasks(tasks []models.Task, n int) []models.Task {
	out := append([]models.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return touched(out[i]).After(touched(out[j]))
	})
	return limit(out, n)
}

// UpcomingLessons returns up to n unfinished lessons due at or after now, soonest first
func UpcomingLessons(lessons []models.Lesson, now time.Time, n int) []models.Lesson {
	out := make([]models.Lesson, 0)
	for i := range lessons {
		if isUpcoming(&lessons[i], now) {
			out = append(out, lessons[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return limit(out, n)
}

func countLessons(lessons []models.Lesson, courseID string) (total, done int) {
	for i := range lessons {
		if lessons[i].CourseID != courseID {
			continue
		}
		total++
		if lessons[i].Status.IsDone() {
			done++
		}
	}
	return total, done
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return round(float64(part) / float64(total) * 100)
}

// round is half-up; inputs are never negative
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func isUpcoming(l *models.Lesson, now time.Time) bool {
	return l.DueDate != nil && !l.DueDate.Before(now) && !l.Status.IsDone()
}

func touched(t models.Task) time.Time {
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt
	}
	return t.CreatedAt
}

func limit[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
