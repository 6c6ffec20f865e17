package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const goBasics = `
name: go-basics
title: Go Basics
description: Syntax, types and the standard library
category: Backend
difficulty: Beginner
estimated_hours: 12
lessons:
  - title: Tour of Go
    type: reading
    estimated_time: 90
  - title: Write a CLI
    type: project
    priority: high
    due_in_days: 7
`

const dataViz = `
title: Data Visualisation
category: Data Science
lessons:
  - title: Charts 101
    type: video
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go-basics.yaml", goBasics)
	if err := os.Mkdir(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "data"), "data-viz.yml", dataViz)
	writeFile(t, dir, "broken.yaml", "title: [unterminated")
	writeFile(t, dir, "empty.yaml", "title: No Lessons\n")

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	all := loader.List("")
	if len(all) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(all))
	}

	tmpl := loader.Get("go-basics")
	if tmpl == nil {
		t.Fatal("go-basics template not found")
	}
	if tmpl.EstimatedHours != 12 {
		t.Errorf("estimated_hours = %v, want 12", tmpl.EstimatedHours)
	}
	if len(tmpl.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(tmpl.Lessons))
	}
	if tmpl.Lessons[0].Priority != models.PriorityMedium {
		t.Errorf("default priority = %q, want medium", tmpl.Lessons[0].Priority)
	}
	if tmpl.Lessons[1].DueInDays != 7 {
		t.Errorf("due_in_days = %d, want 7", tmpl.Lessons[1].DueInDays)
	}

	viz := loader.Get("data-viz")
	if viz == nil {
		t.Fatal("template name should fall back to the file name")
	}
	if viz.Difficulty != models.DifficultyBeginner {
		t.Errorf("default difficulty = %q", viz.Difficulty)
	}
	if viz.Lessons[0].Type != models.LessonVideo {
		t.Errorf("lesson type = %q, want video", viz.Lessons[0].Type)
	}

	if backend := loader.List("backend"); len(backend) != 1 {
		t.Errorf("List(backend) returned %d templates, want 1", len(backend))
	}
}

func TestLoadFromDirMissing(t *testing.T) {
	loader := NewLoader()
	if err := loader.LoadFromDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCategories(t *testing.T) {
	loader := NewLoader()
	loader.Add(&models.Template{Name: "a", Category: "Backend"})
	loader.Add(&models.Template{Name: "b", Category: "Backend"})
	loader.Add(&models.Template{Name: "c", Category: "Data Science"})

	cats := loader.Categories()
	if len(cats) != len(BuiltinCategories)+1 {
		t.Fatalf("expected %d categories, got %d", len(BuiltinCategories)+1, len(cats))
	}
	if cats[0].Name != "Frontend" {
		t.Errorf("first category = %q, want Frontend", cats[0].Name)
	}
	for _, c := range cats {
		if c.Name == "Backend" && c.TemplateCount != 2 {
			t.Errorf("Backend count = %d, want 2", c.TemplateCount)
		}
	}
	if last := cats[len(cats)-1]; last.Name != "Data Science" || last.TemplateCount != 1 {
		t.Errorf("last category = %+v", last)
	}
}
