package board

import (
	"testing"

	"github.com/terra-clan/learning-tracker/internal/models"
)

func TestGroupColumnOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Status: models.StatusDone},
		{ID: "2", Status: models.StatusTodo},
		{ID: "3", Status: models.StatusInProgress},
		{ID: "4", Status: models.StatusTodo},
		{ID: "5", Status: "archived"},
	}

	b := Group(tasks)

	if len(b.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(b.Columns))
	}
	want := []models.WorkStatus{models.StatusTodo, models.StatusInProgress, models.StatusDone}
	for i, s := range want {
		if b.Columns[i].Status != s {
			t.Errorf("column %d = %s, want %s", i, b.Columns[i].Status, s)
		}
	}
	if b.Columns[0].Count != 2 || b.Columns[0].Tasks[0].ID != "2" || b.Columns[0].Tasks[1].ID != "4" {
		t.Errorf("todo column = %+v", b.Columns[0])
	}
	if b.Columns[1].Title != "In Progress" {
		t.Errorf("in_progress title = %q", b.Columns[1].Title)
	}
	if b.Total != 4 {
		t.Errorf("Total = %d, want 4", b.Total)
	}
}

func TestGroupLessonsEmpty(t *testing.T) {
	b := GroupLessons(nil)

	if len(b.Columns) != 3 || b.Total != 0 {
		t.Errorf("empty board = %+v", b)
	}
	for _, c := range b.Columns {
		if c.Count != 0 {
			t.Errorf("column %s count = %d", c.Status, c.Count)
		}
	}
}
