package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// BuiltinCategories are always offered when creating a course
var BuiltinCategories = []string{"Frontend", "Backend", "Design", "DevOps", "Mobile"}

// Loader manages loading and caching of learning-path templates
type Loader struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

// NewLoader creates a new template loader
func NewLoader() *Loader {
	return &Loader{
		templates: make(map[string]*models.Template),
	}
}

// LoadFromDir loads every *.yaml / *.yml template in dir and its immediate
// subdirectories. Files that fail to parse are logged and skipped.
func (l *Loader) LoadFromDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to open templates directory: %w", err)
	}

	slog.Info("loading templates from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		for _, glob := range []string{filepath.Join(dir, pattern), filepath.Join(dir, "*", pattern)} {
			matches, err := filepath.Glob(glob)
			if err != nil {
				continue
			}
			files = append(files, matches...)
		}
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load template", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("templates loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single template from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var tmpl models.Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if tmpl.Name == "" {
		base := filepath.Base(path)
		tmpl.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := normalize(&tmpl); err != nil {
		return err
	}

	l.Add(&tmpl)
	slog.Debug("template loaded", "name", tmpl.Name, "lessons", len(tmpl.Lessons))
	return nil
}

// normalize validates a template and fills defaults
func normalize(t *models.Template) error {
	if t.Title == "" {
		return fmt.Errorf("template %s: title is required", t.Name)
	}
	if len(t.Lessons) == 0 {
		return fmt.Errorf("template %s: at least one lesson is required", t.Name)
	}

	switch t.Difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	case "":
		t.Difficulty = models.DifficultyBeginner
	default:
		return fmt.Errorf("template %s: unknown difficulty %q", t.Name, t.Difficulty)
	}

	for i := range t.Lessons {
		ls := &t.Lessons[i]
		if ls.Title == "" {
			return fmt.Errorf("template %s: lesson %d has no title", t.Name, i+1)
		}
		if ls.Type == "" {
			ls.Type = models.LessonReading
		}
		if ls.Priority == "" {
			ls.Priority = models.PriorityMedium
		}
		if !ls.Priority.Valid() {
			return fmt.Errorf("template %s: lesson %q has invalid priority %q", t.Name, ls.Title, ls.Priority)
		}
	}
	return nil
}

// Get retrieves a template by name
func (l *Loader) Get(name string) *models.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.templates[name]
}

// List returns loaded templates sorted by name, optionally restricted to one category
func (l *Loader) List(category string) []*models.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.Template, 0, len(l.templates))
	for _, tmpl := range l.templates {
		if category != "" && !strings.EqualFold(tmpl.Category, category) {
			continue
		}
		result = append(result, tmpl)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Add programmatically adds a template
func (l *Loader) Add(template *models.Template) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[template.Name] = template
}

// Categories returns the built-in categories plus any used by templates,
// built-ins first, each with its template count.
func (l *Loader) Categories() []models.Category {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int)
	for _, tmpl := range l.templates {
		if tmpl.Category != "" {
			counts[tmpl.Category]++
		}
	}

	result := make([]models.Category, 0, len(BuiltinCategories)+len(counts))
	seen := make(map[string]bool)
	for _, name := range BuiltinCategories {
		result = append(result, models.Category{Name: name, TemplateCount: counts[name]})
		seen[name] = true
	}

	var extra []string
	for name := range counts {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		result = append(result, models.Category{Name: name, TemplateCount: counts[name]})
	}
	return result
}
