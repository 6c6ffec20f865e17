package models

// CourseStats summarises the course list
type CourseStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"inProgress"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// LessonStats summarises the lesson list
type LessonStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
	Upcoming   int `json:"upcoming"`
}

// TaskStats summarises the task list. Times are in minutes.
type TaskStats struct {
	Total                  int `json:"total"`
	Completed              int `json:"completed"`
	InProgress             int `json:"inProgress"`
	Pending                int `json:"pending"`
	Overdue                int `json:"overdue"`
	TotalEstimatedTime     int `json:"totalEstimatedTime"`
	CompletedEstimatedTime int `json:"completedEstimatedTime"`
}

// TrendPoint is one day of lesson activity
type TrendPoint struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Completed int    `json:"completed"`
	Scheduled int    `json:"scheduled"`
}

// Dashboard is the full set of KPIs derived from the user's records
type Dashboard struct {
	Courses          CourseStats  `json:"courses"`
	Lessons          LessonStats  `json:"lessons"`
	Tasks            TaskStats    `json:"tasks"`
	CourseCompletion int          `json:"courseCompletion"`
	OverallProgress  int          `json:"overallProgress"`
	LessonTrend      []TrendPoint `json:"lessonTrend"`
	RecentTasks      []Task       `json:"recentTasks"`
	UpcomingLessons  []Lesson     `json:"upcomingLessons"`
	CourseProgress   []Course     `json:"courseProgress"`
}

// SearchResult groups matches by record type
type SearchResult struct {
	Query   string   `json:"query"`
	Scope   string   `json:"scope"`
	Courses []Course `json:"courses"`
	Lessons []Lesson `json:"lessons"`
	Tasks   []Task   `json:"tasks"`
	Total   int      `json:"total"`
}

// BoardColumn is one Kanban column
type BoardColumn struct {
	Status  WorkStatus `json:"status"`
	Title   string     `json:"title"`
	Count   int        `json:"count"`
	Tasks   []Task     `json:"tasks,omitempty"`
	Lessons []Lesson   `json:"lessons,omitempty"`
}

// Board is the Kanban view
type Board struct {
	Columns []BoardColumn `json:"columns"`
	Total   int           `json:"total"`
}
