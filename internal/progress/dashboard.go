package progress

import (
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const (
	trendDays     = 7
	recentTasks   = 5
	upcomingLimit = 5
)

// BuildDashboard computes every KPI from the user's current records
func BuildDashboard(courses []models.Course, lessons []models.Lesson, tasks []models.Task, now time.Time) *models.Dashboard {
	courses = Annotate(courses, lessons)
	taskStats := TaskStatistics(tasks, now)

	return &models.Dashboard{
		Courses:          CourseStatistics(courses),
		Lessons:          LessonStatistics(lessons, now),
		Tasks:            taskStats,
		CourseCompletion: round(OverallCompletion(courses)),
		OverallProgress:  OverallProgress(courses, taskStats),
		LessonTrend:      LessonTrend(lessons, now, trendDays),
		RecentTasks:      RecentTasks(tasks, recentTasks),
		UpcomingLessons:  UpcomingLessons(lessons, now, upcomingLimit),
		CourseProgress:   courses,
	}
}
