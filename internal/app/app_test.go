package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"indus/hrportal/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		HTTP: config.HTTPConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		API:             config.APIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Session:         config.SessionConfig{TTL: time.Hour, StateFile: filepath.Join(dir, "sessions.json")},
		Log:             config.LogConfig{Level: "error", Format: "json"},
		Metrics:         config.MetricsConfig{Enabled: true, Path: "/metrics"},
		AuditLogFile:    filepath.Join(dir, "audit.log"),
		SignInRateLimit: "10-M",
		BannerTTL:       3 * time.Second,
	}
}

func TestNewWithFileSessionStore(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.db != nil || a.redis != nil {
		t.Fatalf("expected no database or redis client for file-backed sessions")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() after cancel returned error: %v", err)
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisURL = "not a url"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for invalid redis url")
	}
}

func TestNewRejectsBadRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.SignInRateLimit = "often"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for invalid sign-in rate")
	}
}
