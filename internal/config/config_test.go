package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Pomodoro.FocusLength != 25*time.Minute {
		t.Errorf("focus length = %s", cfg.Pomodoro.FocusLength)
	}
	if cfg.Feed.Driver != "memory" {
		t.Errorf("feed driver = %q", cfg.Feed.Driver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:tracker.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FRONTEND_URL", "https://app.example/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DIGEST_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Mail.FrontendURL != "https://app.example" {
		t.Errorf("frontend url = %q", cfg.Mail.FrontendURL)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
	loc, err := cfg.Digest.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "postgres", DSN: "postgres://x"},
			Feed:     FeedConfig{Driver: "memory"},
			Auth:     AuthConfig{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour},
			Digest:   DigestConfig{Enabled: true, At: "08:00", Timezone: "UTC"},
			Pomodoro: PomodoroConfig{FocusLength: 25 * time.Minute},
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"redis feed without redis", func(c *Config) { c.Feed.Driver = "redis" }},
		{"postgres feed on sqlite", func(c *Config) { c.Feed.Driver = "postgres"; c.Database.Driver = "sqlite" }},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"bad digest time", func(c *Config) { c.Digest.At = "25:00" }},
		{"bad timezone", func(c *Config) { c.Digest.Timezone = "Mars/Olympus" }},
		{"tiny pomodoro", func(c *Config) { c.Pomodoro.FocusLength = time.Second }},
	}

	valid := base()
	if err := valid.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.modify(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
