package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DBPath          string `yaml:"db_path"`
	ServerPort      string `yaml:"server_port"`
	FrontendURL     string `yaml:"frontend_url"`
	ServerDebugMode bool   `yaml:"server_debug_mode"`
	DevLogging      bool   `yaml:"dev_logging"`
}

// Load builds configuration from an optional YAML file (TRACKER_CONFIG_FILE)
// with environment variables taking precedence over file values.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:      "tracking.db",
		ServerPort:  "5000",
		FrontendURL: "http://localhost:5000",
	}

	if path := os.Getenv("TRACKER_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.DevLogging = getEnvBool("DEV_LOGGING", cfg.DevLogging)

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
