package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/search"
	"github.com/terra-clan/learning-tracker/internal/storage"
)

// CreateTask creates a task in the todo column. A zero estimate becomes
// DefaultTaskEstimate minutes.
func (s *Service) CreateTask(ctx context.Context, userID string, in models.TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
	}
	applyTaskInput(t, in)
	t.Status = models.StatusTodo
	t.UpdatedAt = now
	if t.EstimatedTime == 0 {
		t.EstimatedTime = models.DefaultTaskEstimate
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(ctx, userID, models.CollectionTasks, models.OpCreated, t.ID)
	return t, nil
}

// GetTask returns one task
func (s *Service) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// UpdateTask replaces a task's editable fields
func (s *Service) UpdateTask(ctx context.Context, userID, id string, in models.TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	t, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	status := t.Status
	if in.Status != "" {
		status = in.Status
	}
	applyTaskInput(t, in)
	t.SetStatus(status, s.now())

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.publish(ctx, userID, models.CollectionTasks, models.OpUpdated, t.ID)
	return t, nil
}

// DeleteTask deletes one task
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTask(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(ctx, userID, models.CollectionTasks, models.OpDeleted, id)
	return nil
}

// ListTasks returns tasks matching filters in the requested order
func (s *Service) ListTasks(ctx context.Context, userID string, filters models.TaskFilters) ([]models.Task, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	filters.UserID = userID

	tasks, err := s.repo.ListTasks(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks = search.Tasks(tasks, filters)
	search.SortTasks(tasks, filters.SortBy)
	return tasks, nil
}

// SetTaskStatus moves a task between board columns. Any status may follow
// any other; only the task's own fields change.
func (s *Service) SetTaskStatus(ctx context.Context, userID, id string, status models.WorkStatus) (*models.Task, error) {
	t, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(status) {
		return nil, ErrInvalidStatus
	}

	t.SetStatus(status, s.now())

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.publish(ctx, userID, models.CollectionTasks, models.OpUpdated, t.ID)
	return t, nil
}

// OverdueTasks returns unfinished tasks whose due date has passed, earliest first
func (s *Service) OverdueTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, models.TaskFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.now()
	overdue := make([]models.Task, 0)
	for _, t := range tasks {
		if t.IsOverdue(now) {
			overdue = append(overdue, t)
		}
	}
	search.SortTasks(overdue, search.SortDueDate)
	return overdue, nil
}

func applyTaskInput(t *models.Task, in models.TaskInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.DueDate = in.DueDate
	t.Tags = dedupeTags(in.Tags)
	t.EstimatedTime = in.EstimatedTime

	t.Priority = in.Priority
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
}

// dedupeTags trims tags and drops empties and repeats, keeping first-seen order
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
