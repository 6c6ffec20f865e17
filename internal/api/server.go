package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/learning-tracker/internal/auth"
	"github.com/terra-clan/learning-tracker/internal/config"
	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/health"
	"github.com/terra-clan/learning-tracker/internal/models"
	"github.com/terra-clan/learning-tracker/internal/templates"
	"github.com/terra-clan/learning-tracker/internal/tracker"
)

// Identity is the account side of the API
type Identity interface {
	TokenVerifier
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// Timer is the per-user Pomodoro clock
type Timer interface {
	State(ctx context.Context, userID string) (*models.PomodoroView, error)
	Start(ctx context.Context, userID, taskID string) (*models.PomodoroView, error)
	Pause(ctx context.Context, userID string) (*models.PomodoroView, error)
	Reset(ctx context.Context, userID string) (*models.PomodoroView, error)
}

// Deps are the services the API serves
type Deps struct {
	Tracker   tracker.Manager
	Identity  Identity
	Pomodoro  Timer
	Templates *templates.Loader
	Feed      feed.Broker
	Health    *health.Registry
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	tracker        tracker.Manager
	identity       Identity
	pomodoro       Timer
	templateLoader *templates.Loader
	feed           feed.Broker
	health         *health.Registry
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		config:         cfg,
		tracker:        deps.Tracker,
		identity:       deps.Identity,
		pomodoro:       deps.Pomodoro,
		templateLoader: deps.Templates,
		feed:           deps.Feed,
		health:         deps.Health,
		authMiddleware: NewAuthMiddleware(deps.Identity),
	}
	if s.health == nil {
		s.health = health.NewRegistry(0)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Realtime stream; no timeout, token may come in the query string
		r.With(s.authMiddleware.AuthenticateStream).Get("/subscribe", s.handleSubscribe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Public auth endpoints
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
				r.Post("/password-reset", s.handlePasswordReset)
				r.Post("/password-reset/confirm", s.handlePasswordResetConfirm)
				r.With(s.authMiddleware.Authenticate).Post("/logout", s.handleLogout)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware.Authenticate)

				r.Route("/me", func(r chi.Router) {
					r.Get("/", s.handleGetProfile)
					r.Put("/", s.handleUpdateProfile)
					r.Delete("/", s.handleDeleteAccount)
				})

				r.Route("/courses", func(r chi.Router) {
					r.Get("/", s.handleListCourses)
					r.Post("/", s.handleCreateCourse)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetCourse)
						r.Put("/", s.handleUpdateCourse)
						r.Delete("/", s.handleDeleteCourse)
						r.Get("/lessons", s.handleCourseLessons)
					})
				})

				r.Route("/lessons", func(r chi.Router) {
					r.Get("/", s.handleListLessons)
					r.Post("/", s.handleCreateLesson)
					r.Post("/status", s.handleBulkLessonStatus)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetLesson)
						r.Put("/", s.handleUpdateLesson)
						r.Delete("/", s.handleDeleteLesson)
						r.Patch("/status", s.handleLessonStatus)
					})
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", s.handleListTasks)
					r.Post("/", s.handleCreateTask)
					r.Get("/overdue", s.handleOverdueTasks)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetTask)
						r.Put("/", s.handleUpdateTask)
						r.Delete("/", s.handleDeleteTask)
						r.Patch("/status", s.handleTaskStatus)
					})
				})

				r.Get("/board", s.handleBoard)
				r.Get("/board/lessons", s.handleLessonBoard)
				r.Get("/dashboard", s.handleDashboard)
				r.Get("/search", s.handleSearch)
				r.Get("/export/{collection}", s.handleExport)

				r.Route("/pomodoro", func(r chi.Router) {
					r.Get("/", s.handlePomodoroState)
					r.Post("/start", s.handlePomodoroStart)
					r.Post("/pause", s.handlePomodoroPause)
					r.Post("/reset", s.handlePomodoroReset)
				})

				r.Route("/templates", func(r chi.Router) {
					r.Get("/", s.handleListTemplates)
					r.Get("/{name}", s.handleGetTemplate)
					r.Post("/{name}/enroll", s.handleEnrollTemplate)
				})
				r.Get("/categories", s.handleListCategories)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
