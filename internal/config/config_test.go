package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TRACKER_CONFIG_FILE", "DB_PATH", "SERVER_PORT",
		"FRONTEND_URL", "SERVER_DEBUG_MODE", "DEV_LOGGING",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "tracking.db" {
		t.Errorf("DBPath = %q, want tracking.db", cfg.DBPath)
	}
	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want 5000", cfg.ServerPort)
	}
	if cfg.FrontendURL != "http://localhost:5000" {
		t.Errorf("FrontendURL = %q, want http://localhost:5000", cfg.FrontendURL)
	}
	if cfg.ServerDebugMode || cfg.DevLogging {
		t.Errorf("debug flags default on: debug=%v dev_logging=%v", cfg.ServerDebugMode, cfg.DevLogging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/custom.db")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SERVER_DEBUG_MODE", "true")
	t.Setenv("DEV_LOGGING", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want /tmp/custom.db", cfg.DBPath)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if !cfg.ServerDebugMode {
		t.Error("ServerDebugMode not picked up from environment")
	}
	if !cfg.DevLogging {
		t.Error("DevLogging not picked up from environment")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tracker.yaml")
	content := []byte("db_path: /var/lib/tracker.db\nserver_port: \"9090\"\ndev_logging: true\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TRACKER_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "/var/lib/tracker.db" {
		t.Errorf("DBPath = %q, want file value", cfg.DBPath)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if !cfg.DevLogging {
		t.Error("DevLogging not picked up from config file")
	}
	// Unset keys keep their defaults.
	if cfg.FrontendURL != "http://localhost:5000" {
		t.Errorf("FrontendURL = %q, want default", cfg.FrontendURL)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte("server_port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TRACKER_CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want env value 7070", cfg.ServerPort)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRACKER_CONFIG_FILE", "/nonexistent/tracker.yaml")

	if _, err := Load(); err == nil {
		t.Error("Load with missing config file succeeded, want error")
	}
}
