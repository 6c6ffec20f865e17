// Package client is a Go SDK for the learning-tracker API.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// Client talks to a learning-tracker server on behalf of one user
type Client struct {
	http *resty.Client
}

// Option configures the client
type Option func(*Client)

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithToken uses an existing access token instead of logging in
func WithToken(token string) Option {
	return func(c *Client) {
		c.http.SetAuthToken(token)
	}
}

// WithRetries retries failed requests count times
func WithRetries(count int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
	}
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL + "/api/v1").
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

func call[T any](ctx context.Context, c *Client, method, path string, body interface{}, query url.Values) (T, error) {
	var (
		zero   T
		result envelope[T]
		failed envelope[T]
	)

	req := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&failed)
	if body != nil {
		req.SetBody(body)
	}
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if failed.Error != nil {
			apiErr.Code = failed.Error.Code
			apiErr.Message = failed.Error.Message
		}
		return zero, apiErr
	}

	return result.Data, nil
}

// Auth

// Register creates an account and keeps its token for later calls
func (c *Client) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	resp, err := call[*models.AuthResponse](ctx, c, resty.MethodPost, "/auth/register", creds, nil)
	if err != nil {
		return nil, err
	}
	c.http.SetAuthToken(resp.Token)
	return resp, nil
}

// Login signs in and keeps the token for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	resp, err := call[*models.AuthResponse](ctx, c, resty.MethodPost, "/auth/login", models.Credentials{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	c.http.SetAuthToken(resp.Token)
	return resp, nil
}

// Logout revokes the current token
func (c *Client) Logout(ctx context.Context) error {
	_, err := call[map[string]string](ctx, c, resty.MethodPost, "/auth/logout", nil, nil)
	return err
}

// Courses

// CourseListOptions narrows ListCourses
type CourseListOptions struct {
	Query    string
	Category string
	Sort     string
}

type courseList struct {
	Courses []models.Course `json:"courses"`
}

// ListCourses returns the user's courses with derived progress
func (c *Client) ListCourses(ctx context.Context, opts CourseListOptions) ([]models.Course, error) {
	q := url.Values{}
	setIf(q, "q", opts.Query)
	setIf(q, "category", opts.Category)
	setIf(q, "sort", opts.Sort)

	out, err := call[courseList](ctx, c, resty.MethodGet, "/courses", nil, q)
	return out.Courses, err
}

// CreateCourse adds a course
func (c *Client) CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	return call[*models.Course](ctx, c, resty.MethodPost, "/courses", in, nil)
}

// GetCourse retrieves a course by ID
func (c *Client) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return call[*models.Course](ctx, c, resty.MethodGet, "/courses/"+url.PathEscape(id), nil, nil)
}

// UpdateCourse replaces a course's editable fields
func (c *Client) UpdateCourse(ctx context.Context, id string, in models.CourseInput) (*models.Course, error) {
	return call[*models.Course](ctx, c, resty.MethodPut, "/courses/"+url.PathEscape(id), in, nil)
}

// DeleteCourse removes a course. Its lessons are kept.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	_, err := call[map[string]string](ctx, c, resty.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil)
	return err
}

// Lessons

// LessonListOptions narrows ListLessons
type LessonListOptions struct {
	Query    string
	CourseID string
	Status   models.WorkStatus
}

type lessonList struct {
	Lessons []models.Lesson `json:"lessons"`
}

// ListLessons returns lessons, most recently updated first
func (c *Client) ListLessons(ctx context.Context, opts LessonListOptions) ([]models.Lesson, error) {
	q := url.Values{}
	setIf(q, "q", opts.Query)
	setIf(q, "courseId", opts.CourseID)
	setIf(q, "status", string(opts.Status))

	out, err := call[lessonList](ctx, c, resty.MethodGet, "/lessons", nil, q)
	return out.Lessons, err
}

// CreateLesson adds a lesson
func (c *Client) CreateLesson(ctx context.Context, in models.LessonInput) (*models.Lesson, error) {
	return call[*models.Lesson](ctx, c, resty.MethodPost, "/lessons", in, nil)
}

// SetLessonStatus moves a lesson to another board column
func (c *Client) SetLessonStatus(ctx context.Context, id string, status models.WorkStatus) (*models.Lesson, error) {
	return call[*models.Lesson](ctx, c, resty.MethodPatch, "/lessons/"+url.PathEscape(id)+"/status", models.StatusRequest{Status: status}, nil)
}

// SetLessonsStatus moves several lessons at once and returns how many changed
func (c *Client) SetLessonsStatus(ctx context.Context, ids []string, status models.WorkStatus) (int64, error) {
	out, err := call[struct {
		Updated int64 `json:"updated"`
	}](ctx, c, resty.MethodPost, "/lessons/status", models.BulkStatusRequest{IDs: ids, Status: status}, nil)
	return out.Updated, err
}

// DeleteLesson removes a lesson
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	_, err := call[map[string]string](ctx, c, resty.MethodDelete, "/lessons/"+url.PathEscape(id), nil, nil)
	return err
}

// Tasks

// TaskListOptions narrows ListTasks
type TaskListOptions struct {
	Query    string
	Status   models.WorkStatus
	Priority models.Priority
	Tag      string
	Sort     string
}

type taskList struct {
	Tasks []models.Task `json:"tasks"`
}

// ListTasks returns tasks in the requested order
func (c *Client) ListTasks(ctx context.Context, opts TaskListOptions) ([]models.Task, error) {
	q := url.Values{}
	setIf(q, "q", opts.Query)
	setIf(q, "status", string(opts.Status))
	setIf(q, "priority", string(opts.Priority))
	setIf(q, "tag", opts.Tag)
	setIf(q, "sort", opts.Sort)

	out, err := call[taskList](ctx, c, resty.MethodGet, "/tasks", nil, q)
	return out.Tasks, err
}

// CreateTask adds a task; it always starts in todo
func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	return call[*models.Task](ctx, c, resty.MethodPost, "/tasks", in, nil)
}

// UpdateTask replaces a task's editable fields
func (c *Client) UpdateTask(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	return call[*models.Task](ctx, c, resty.MethodPut, "/tasks/"+url.PathEscape(id), in, nil)
}

// SetTaskStatus moves a task to another board column
func (c *Client) SetTaskStatus(ctx context.Context, id string, status models.WorkStatus) (*models.Task, error) {
	return call[*models.Task](ctx, c, resty.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", models.StatusRequest{Status: status}, nil)
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := call[map[string]string](ctx, c, resty.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
	return err
}

// OverdueTasks returns unfinished tasks past their due date
func (c *Client) OverdueTasks(ctx context.Context) ([]models.Task, error) {
	out, err := call[taskList](ctx, c, resty.MethodGet, "/tasks/overdue", nil, nil)
	return out.Tasks, err
}

// Views

// Dashboard returns the KPI summary
func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	return call[*models.Dashboard](ctx, c, resty.MethodGet, "/dashboard", nil, nil)
}

// Search finds courses, lessons and tasks. scope is all, courses, lessons or tasks.
func (c *Client) Search(ctx context.Context, query, scope string) (*models.SearchResult, error) {
	q := url.Values{}
	setIf(q, "q", query)
	setIf(q, "scope", scope)
	return call[*models.SearchResult](ctx, c, resty.MethodGet, "/search", nil, q)
}

// Board returns the task Kanban board
func (c *Client) Board(ctx context.Context) (*models.Board, error) {
	return call[*models.Board](ctx, c, resty.MethodGet, "/board", nil, nil)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
