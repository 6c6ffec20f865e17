package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/learning-tracker/internal/models"
)

func parseStatus(raw string) models.WorkStatus {
	if raw == "" {
		return ""
	}
	status, _ := models.ParseWorkStatus(raw)
	return status
}

// Course handlers

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := s.tracker.ListCourses(r.Context(), userID(r.Context()), models.CourseFilters{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		SortBy:   q.Get("sort"),
	})
	if err != nil {
		respondServiceError(w, r, err, "list courses")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"total":   len(courses),
	})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in models.CourseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	course, err := s.tracker.CreateCourse(r.Context(), userID(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err, "create course")
		return
	}
	respondJSON(w, http.StatusCreated, course)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.tracker.GetCourse(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get course")
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var in models.CourseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	course, err := s.tracker.UpdateCourse(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, r, err, "update course")
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteCourse(r.Context(), userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete course")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "course deleted",
	})
}

func (s *Server) handleCourseLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.tracker.CourseLessons(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "list course lessons")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lessons": lessons,
		"total":   len(lessons),
	})
}

// Lesson handlers

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lessons, err := s.tracker.ListLessons(r.Context(), userID(r.Context()), models.LessonFilters{
		CourseID: q.Get("courseId"),
		Status:   parseStatus(q.Get("status")),
		Query:    q.Get("q"),
	})
	if err != nil {
		respondServiceError(w, r, err, "list lessons")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lessons": lessons,
		"total":   len(lessons),
	})
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var in models.LessonInput
	if !decodeJSON(w, r, &in) {
		return
	}

	lesson, err := s.tracker.CreateLesson(r.Context(), userID(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err, "create lesson")
		return
	}
	respondJSON(w, http.StatusCreated, lesson)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.tracker.GetLesson(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get lesson")
		return
	}
	respondJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var in models.LessonInput
	if !decodeJSON(w, r, &in) {
		return
	}

	lesson, err := s.tracker.UpdateLesson(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, r, err, "update lesson")
		return
	}
	respondJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteLesson(r.Context(), userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete lesson")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "lesson deleted",
	})
}

func (s *Server) handleLessonStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lesson, err := s.tracker.SetLessonStatus(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), parseStatus(string(req.Status)))
	if err != nil {
		respondServiceError(w, r, err, "set lesson status")
		return
	}
	respondJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleBulkLessonStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Status = parseStatus(string(req.Status))

	updated, err := s.tracker.SetLessonsStatus(r.Context(), userID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "set lessons status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
	})
}

// Task handlers

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := s.tracker.ListTasks(r.Context(), userID(r.Context()), models.TaskFilters{
		Status:   parseStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
		SortBy:   q.Get("sort"),
	})
	if err != nil {
		respondServiceError(w, r, err, "list tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := s.tracker.CreateTask(r.Context(), userID(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err, "create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tracker.GetTask(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "get task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := s.tracker.UpdateTask(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, r, err, "update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteTask(r.Context(), userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "delete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "task deleted",
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.tracker.SetTaskStatus(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), parseStatus(string(req.Status)))
	if err != nil {
		respondServiceError(w, r, err, "set task status")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tracker.OverdueTasks(r.Context(), userID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "list overdue tasks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}
