package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FileValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configContent := `{
		"listenAddr": ":9090",
		"logLevel": "debug",
		"gammaBaseUrl": "https://gamma.example.com",
		"upstreamTimeoutSeconds": 5,
		"adminSecret": "hunter2"
	}`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.GammaBaseURL != "https://gamma.example.com" {
		t.Errorf("GammaBaseURL = %q", cfg.GammaBaseURL)
	}
	if cfg.UpstreamTimeout() != 5*time.Second {
		t.Errorf("UpstreamTimeout() = %v, want 5s", cfg.UpstreamTimeout())
	}
	if cfg.AdminSecret != "hunter2" {
		t.Errorf("AdminSecret = %q", cfg.AdminSecret)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.UpstreamMaxRPS != 10 {
		t.Errorf("UpstreamMaxRPS = %v, want 10", cfg.UpstreamMaxRPS)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"listenAddr": ":9090"}`), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	t.Setenv("MARKETBOARD_ADDR", ":7070")
	t.Setenv("MARKETBOARD_ADMIN_SECRET", "from-env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, want env value :7070", cfg.ListenAddr)
	}
	if cfg.AdminSecret != "from-env" {
		t.Errorf("AdminSecret = %q, want from-env", cfg.AdminSecret)
	}
}

func TestLoad_RouteLimitOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	configContent := `{
		"routeLimits": {
			"/api/markets": 10,
			"/api/search": 99
		}
	}`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	t.Setenv("MARKETBOARD_ROUTE_LIMITS", `{"/api/search": 5}`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.RouteLimits["/api/markets"]; got != 10 {
		t.Errorf("RouteLimits[/api/markets] = %d, want file value 10", got)
	}
	if got := cfg.RouteLimits["/api/search"]; got != 5 {
		t.Errorf("RouteLimits[/api/search] = %d, want env value 5", got)
	}
}

func TestLoad_BadRouteLimitsEnvIsError(t *testing.T) {
	t.Setenv("MARKETBOARD_ROUTE_LIMITS", "not-json")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
}
