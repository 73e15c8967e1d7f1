package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// Database. Empty means history is kept in memory only.
	DatabaseURL string

	// GitHub API
	GitHubAPIURL            string
	GitHubToken             string // empty = anonymous, low rate limits
	GitHubRequestsPerMinute int

	// Scans
	ScanWorkers     int
	ScanMaxRepos    int
	ScanMaxFileSize int64 // bytes

	// API auth. Empty disables authentication.
	APIToken string

	// MCP
	MCPEnabled bool
	MCPPort    string

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "3001"),
		AppName: envOrDefault("APP_NAME", "MarkupLens"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		GitHubAPIURL:            envOrDefault("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:             os.Getenv("GITHUB_TOKEN"),
		GitHubRequestsPerMinute: envOrDefaultInt("GITHUB_RPM", 60),

		ScanWorkers:     envOrDefaultInt("SCAN_WORKERS", 4),
		ScanMaxRepos:    envOrDefaultInt("SCAN_MAX_REPOS", 30),
		ScanMaxFileSize: int64(envOrDefaultInt("SCAN_MAX_FILE_SIZE", 1_000_000)),

		APIToken: os.Getenv("API_TOKEN"),

		MCPEnabled: envOrDefaultBool("MCP_ENABLED", true),
		MCPPort:    envOrDefault("MCP_PORT", "3002"),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
