package models

// Template is a reusable learning path: a course plus its lessons
type Template struct {
	Name           string           `yaml:"name" json:"name"`
	Title          string           `yaml:"title" json:"title"`
	Description    string           `yaml:"description" json:"description"`
	Category       string           `yaml:"category" json:"category"`
	Difficulty     Difficulty       `yaml:"difficulty" json:"difficulty"`
	EstimatedHours float64          `yaml:"estimated_hours" json:"estimatedHours"`
	Tags           []string         `yaml:"tags" json:"tags,omitempty"`
	Lessons        []TemplateLesson `yaml:"lessons" json:"lessons"`
}

// TemplateLesson is one lesson of a template. DueInDays schedules it relative
// to the enrollment date (0 = no due date).
type TemplateLesson struct {
	Title         string     `yaml:"title" json:"title"`
	Description   string     `yaml:"description" json:"description"`
	Type          LessonType `yaml:"type" json:"type"`
	Priority      Priority   `yaml:"priority" json:"priority"`
	EstimatedTime int        `yaml:"estimated_time" json:"estimatedTime"`
	DueInDays     int        `yaml:"due_in_days" json:"dueInDays,omitempty"`
}

// Category is a course category with the number of templates filed under it
type Category struct {
	Name          string `json:"name"`
	TemplateCount int    `json:"templateCount"`
}

// Enrollment is the result of instantiating a template
type Enrollment struct {
	Course  *Course  `json:"course"`
	Lessons []Lesson `json:"lessons"`
}
