package search

import (
	"testing"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

func sampleCourses() []models.Course {
	return []models.Course{
		{ID: "c1", Title: "Algorithms 101", Description: "Sorting and graphs", Category: "Computer Science", Difficulty: models.DifficultyIntermediate},
		{ID: "c2", Title: "Biology Basics", Description: "Cells", Category: "Science", Difficulty: models.DifficultyBeginner},
		{ID: "c3", Title: "Data Structures", Description: "Trees, heaps and ALGORITHMIC thinking", Category: "Computer Science", Difficulty: models.DifficultyAdvanced},
	}
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	courses := sampleCourses()

	for _, q := range []string{"", "   "} {
		got := Filter(courses, q, CourseText)
		if len(got) != len(courses) {
			t.Fatalf("Filter(%q) returned %d courses, want %d", q, len(got), len(courses))
		}
		for i := range courses {
			if got[i].ID != courses[i].ID {
				t.Errorf("Filter(%q)[%d] = %s, want %s", q, i, got[i].ID, courses[i].ID)
			}
		}
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(sampleCourses(), "algo", CourseText)

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Title != "Algorithms 101" {
		t.Errorf("first match = %q, want Algorithms 101", got[0].Title)
	}
	if got[1].ID != "c3" {
		t.Errorf("second match = %q, want c3 (description match)", got[1].ID)
	}
	for _, c := range got {
		if c.Title == "Biology Basics" {
			t.Error("Biology Basics should not match algo")
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: "t3", Title: "read chapter 3"},
		{ID: "t1", Title: "Read chapter 1"},
		{ID: "t2", Title: "write notes"},
		{ID: "t0", Title: "reread"},
	}

	got := Filter(tasks, "READ", TaskText)
	want := []string{"t3", "t1", "t0"}
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSearchExtendedFields(t *testing.T) {
	lessons := []models.Lesson{
		{ID: "l1", Title: "Intro", Type: models.LessonVideo, Status: models.StatusDone},
		{ID: "l2", Title: "Graphs", Type: models.LessonQuiz, Status: models.StatusTodo},
	}
	tasks := []models.Task{
		{ID: "t1", Title: "Flashcards", Tags: []string{"biology", "exam"}},
		{ID: "t2", Title: "Practice"},
	}

	tests := []struct {
		name    string
		query   string
		scope   string
		courses int
		lessons int
		tasks   int
	}{
		{"category", "computer", ScopeAll, 2, 0, 0},
		{"difficulty", "beginner", ScopeAll, 1, 0, 0},
		{"lesson type", "video", ScopeAll, 0, 1, 0},
		{"lesson status", "done", ScopeAll, 0, 1, 0},
		{"task tag", "exam", ScopeAll, 0, 0, 1},
		{"scoped to tasks", "bio", ScopeTasks, 0, 0, 1},
		{"unknown scope means all", "bio", "everything", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Search(tt.query, tt.scope, sampleCourses(), lessons, tasks)
			if len(res.Courses) != tt.courses || len(res.Lessons) != tt.lessons || len(res.Tasks) != tt.tasks {
				t.Errorf("Search(%q, %q) = %d/%d/%d, want %d/%d/%d", tt.query, tt.scope,
					len(res.Courses), len(res.Lessons), len(res.Tasks), tt.courses, tt.lessons, tt.tasks)
			}
			if res.Total != tt.courses+tt.lessons+tt.tasks {
				t.Errorf("Total = %d", res.Total)
			}
		})
	}
}

func TestTaskFieldFilters(t *testing.T) {
	tasks := []models.Task{
		{ID: "a", Title: "a", Priority: models.PriorityHigh, Status: models.StatusTodo, Tags: []string{"go"}},
		{ID: "b", Title: "b", Priority: models.PriorityLow, Status: models.StatusDone, Tags: []string{"go"}},
		{ID: "c", Title: "c", Priority: models.PriorityHigh, Status: models.StatusDone},
	}

	got := Tasks(tasks, models.TaskFilters{Tag: "go", Status: models.StatusDone})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("tag+status filter = %v, want [b]", got)
	}

	got = Tasks(tasks, models.TaskFilters{Priority: models.PriorityHigh})
	if len(got) != 2 {
		t.Errorf("priority filter returned %d tasks, want 2", len(got))
	}
}

func TestSortTasks(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	tasks := []models.Task{
		{ID: "none", Title: "Zeta", Priority: models.PriorityLow},
		{ID: "late", Title: "alpha", Priority: models.PriorityMedium, DueDate: day(20)},
		{ID: "early", Title: "Beta", Priority: models.PriorityHigh, DueDate: day(10)},
	}

	SortTasks(tasks, SortDueDate)
	if tasks[0].ID != "early" || tasks[1].ID != "late" || tasks[2].ID != "none" {
		t.Errorf("dueDate order = %s,%s,%s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}

	SortTasks(tasks, SortPriority)
	if tasks[0].ID != "early" || tasks[2].ID != "none" {
		t.Errorf("priority order = %s,%s,%s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}

	SortTasks(tasks, SortTitle)
	if tasks[0].ID != "late" || tasks[1].ID != "early" {
		t.Errorf("title order = %s,%s,%s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}
