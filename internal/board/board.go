// Package board groups tasks and lessons into Kanban columns.
package board

import (
	"github.com/terra-clan/learning-tracker/internal/models"
)

var titles = map[models.WorkStatus]string{
	models.StatusTodo:       "To Do",
	models.StatusInProgress: "In Progress",
	models.StatusDone:       "Done",
}

// Title returns the column heading for status
func Title(status models.WorkStatus) string {
	return titles[status]
}

func columns() []models.BoardColumn {
	cols := make([]models.BoardColumn, len(models.WorkStatuses))
	for i, s := range models.WorkStatuses {
		cols[i] = models.BoardColumn{Status: s, Title: titles[s]}
	}
	return cols
}

func index(status models.WorkStatus) int {
	for i, s := range models.WorkStatuses {
		if s == status {
			return i
		}
	}
	return -1
}

// Group places tasks into todo, in_progress and done columns, keeping input
// order within a column. Records with an unknown status are left off the board.
func Group(tasks []models.Task) *models.Board {
	b := &models.Board{Columns: columns()}
	for _, t := range tasks {
		i := index(t.Status)
		if i < 0 {
			continue
		}
		b.Columns[i].Tasks = append(b.Columns[i].Tasks, t)
		b.Columns[i].Count++
		b.Total++
	}
	return b
}

// GroupLessons is Group for lessons
func GroupLessons(lessons []models.Lesson) *models.Board {
	b := &models.Board{Columns: columns()}
	for _, l := range lessons {
		i := index(l.Status)
		if i < 0 {
			continue
		}
		b.Columns[i].Lessons = append(b.Columns[i].Lessons, l)
		b.Columns[i].Count++
		b.Total++
	}
	return b
}
