// Package config provides configuration management for rampup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all configuration for the rampup server.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (e.g., ":7090").
	ServerAddr string

	// DataDir is the directory for persistent data (SQLite DB, etc.).
	DataDir string

	// DatabasePath is the full path to the SQLite database file.
	DatabasePath string

	// TogetherAPIKey enables AI plan generation. When empty the server falls
	// back to deterministic template plans.
	TogetherAPIKey string

	// TogetherModel overrides the default chat completion model.
	TogetherModel string

	// GitHubToken is used to import documentation from GitHub repositories.
	// Optional; public repos work unauthenticated at lower rate limits.
	GitHubToken string

	// Slack integration (optional).
	// SlackBotToken is the Bot User OAuth Token (xoxb-...).
	SlackBotToken string
	// SlackChannel is the channel ID approval announcements are posted to.
	SlackChannel string
}

// Load creates a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	dataDir := envOr("RAMPUP_DATA_DIR", defaultDataDir())
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	cfg := &Config{
		ServerAddr:     envOr("RAMPUP_ADDR", ":7090"),
		DataDir:        dataDir,
		DatabasePath:   filepath.Join(dataDir, "rampup.db"),
		TogetherAPIKey: os.Getenv("TOGETHER_API_KEY"),
		TogetherModel:  os.Getenv("TOGETHER_MODEL"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		SlackBotToken:  os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:   os.Getenv("SLACK_CHANNEL"),
	}

	return cfg, nil
}

// Validate checks that partially configured integrations are completed.
// Nothing is strictly required: without a Together key the server serves
// template plans, and Slack and GitHub are optional.
func (c *Config) Validate() error {
	if c.SlackBotToken != "" && c.SlackChannel == "" {
		return fmt.Errorf("SLACK_CHANNEL is required when SLACK_BOT_TOKEN is set")
	}
	return nil
}

// AIEnabled returns true if a Together AI key is configured.
func (c *Config) AIEnabled() bool {
	return c.TogetherAPIKey != ""
}

// SlackEnabled returns true if Slack announcements are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rampup"
	}
	return filepath.Join(home, ".rampup")
}
