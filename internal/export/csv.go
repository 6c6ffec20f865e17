// Package export renders a user's records as CSV downloads.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// ErrUnsupported is returned for values that have no CSV layout
var ErrUnsupported = errors.New("export: unsupported record type")

// Record ids and owner ids are left out; the rest of each record's fields are
// written in this order.
var (
	courseHeader = []string{"title", "description", "category", "difficulty", "estimatedHours", "featured", "progress", "lessonsCount", "completedLessons", "createdAt", "updatedAt"}
	lessonHeader = []string{"courseId", "title", "description", "status", "priority", "type", "estimatedTime", "dueDate", "completedAt", "createdAt", "updatedAt"}
	taskHeader   = []string{"title", "description", "status", "priority", "dueDate", "tags", "estimatedTime", "completedAt", "createdAt", "updatedAt"}
)

// Filename is the suggested download name for a collection
func Filename(collection models.Collection) string {
	return string(collection) + ".csv"
}

// Write renders records, a []models.Course, []models.Lesson or []models.Task
func Write(w io.Writer, records interface{}) error {
	cw := csv.NewWriter(w)

	var rows [][]string
	switch v := records.(type) {
	case []models.Course:
		rows = append(rows, courseHeader)
		for _, c := range v {
			rows = append(rows, courseRow(c))
		}
	case []models.Lesson:
		rows = append(rows, lessonHeader)
		for _, l := range v {
			rows = append(rows, lessonRow(l))
		}
	case []models.Task:
		rows = append(rows, taskHeader)
		for _, t := range v {
			rows = append(rows, taskRow(t))
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, records)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func courseRow(c models.Course) []string {
	return []string{
		c.Title,
		c.Description,
		c.Category,
		string(c.Difficulty),
		strconv.FormatFloat(c.EstimatedHours, 'f', -1, 64),
		strconv.FormatBool(c.Featured),
		strconv.Itoa(c.Progress),
		strconv.Itoa(c.LessonsCount),
		strconv.Itoa(c.CompletedLessons),
		formatTime(&c.CreatedAt),
		formatTime(&c.UpdatedAt),
	}
}

func lessonRow(l models.Lesson) []string {
	return []string{
		l.CourseID,
		l.Title,
		l.Description,
		string(l.Status),
		string(l.Priority),
		string(l.Type),
		strconv.Itoa(l.EstimatedTime),
		formatTime(l.DueDate),
		formatTime(l.CompletedAt),
		formatTime(&l.CreatedAt),
		formatTime(&l.UpdatedAt),
	}
}

func taskRow(t models.Task) []string {
	return []string{
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		formatTime(t.DueDate),
		strings.Join(t.Tags, ";"),
		strconv.Itoa(t.EstimatedTime),
		formatTime(t.CompletedAt),
		formatTime(&t.CreatedAt),
		formatTime(&t.UpdatedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
