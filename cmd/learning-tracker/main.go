package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/learning-tracker/internal/api"
	"github.com/terra-clan/learning-tracker/internal/auth"
	"github.com/terra-clan/learning-tracker/internal/cache"
	"github.com/terra-clan/learning-tracker/internal/config"
	"github.com/terra-clan/learning-tracker/internal/digest"
	"github.com/terra-clan/learning-tracker/internal/feed"
	"github.com/terra-clan/learning-tracker/internal/health"
	"github.com/terra-clan/learning-tracker/internal/mail"
	"github.com/terra-clan/learning-tracker/internal/pomodoro"
	"github.com/terra-clan/learning-tracker/internal/storage"
	"github.com/terra-clan/learning-tracker/internal/templates"
	"github.com/terra-clan/learning-tracker/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("starting learning-tracker",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", cfg.Database.Driver,
		"feed", cfg.Feed.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	registry := health.NewRegistry(2 * time.Second)

	repo, err := openStore(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	registry.Register("store", repo)

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient, err = cache.NewRedisClient(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	var store cache.Store = cache.NewMemoryStore()
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient)
		slog.Info("redis cache connected", "address", cfg.Redis.Address)
	}
	registry.Register("cache", store)

	broker, err := openFeed(initCtx, cfg, redisClient)
	if err != nil {
		slog.Error("failed to open realtime feed", "error", err)
		os.Exit(1)
	}
	defer broker.Close()
	registry.Register("feed", broker)

	// Load templates
	templateLoader := templates.NewLoader()
	if err := templateLoader.LoadFromDir(cfg.Templates.Dir); err != nil {
		slog.Warn("failed to load templates from dir", "dir", cfg.Templates.Dir, "error", err)
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.Mail.SendGridKey != "" {
		mailer = mail.NewSendGridMailer(cfg.Mail.SendGridKey, cfg.Mail.From, cfg.Mail.FromName)
	} else {
		slog.Warn("SENDGRID_API_KEY not set, emails will only be logged")
	}

	manager := tracker.NewService(repo, templateLoader, broker)
	identity := auth.NewService(repo, store, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), mailer, auth.Config{
		ResetTTL:    cfg.Auth.ResetTTL,
		FrontendURL: cfg.Mail.FrontendURL,
	})
	timer := pomodoro.NewService(store, cfg.Pomodoro.FocusLength)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start daily digest
	if cfg.Digest.Enabled {
		loc, err := cfg.Digest.Location()
		if err != nil {
			slog.Error("failed to load digest timezone", "error", err)
			os.Exit(1)
		}
		worker := digest.NewWorker(repo, manager, broker, mailer, cfg.Digest.At, loc)
		if err := worker.Start(ctx); err != nil {
			slog.Error("failed to start digest worker", "error", err)
			os.Exit(1)
		}
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Deps{
		Tracker:   manager,
		Identity:  identity,
		Pomodoro:  timer,
		Templates: templateLoader,
		Feed:      broker,
		Health:    registry,
	})
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("learning-tracker stopped")
}

// openStore connects the configured database and brings its schema up to date
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	if cfg.Driver == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.DSN)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite store opened", "dsn", cfg.DSN)
		return repo, nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.DSN,
		MaxOpenConns: int32(cfg.MaxOpenConns),
		MaxIdleConns: int32(cfg.MaxIdleConns),
		MaxLifetime:  cfg.MaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), cfg.MigrationsDir); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database connected successfully")
	return repo, nil
}

// openFeed creates the realtime broker selected by FEED_DRIVER
func openFeed(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (feed.Broker, error) {
	switch cfg.Feed.Driver {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis feed requires a redis connection")
		}
		return feed.NewRedisBroker(redisClient), nil
	case "postgres":
		return feed.NewPostgresBroker(ctx, cfg.Database.DSN)
	default:
		return feed.NewHub(), nil
	}
}
