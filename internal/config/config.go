package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"pppoed/internal/log"
)

// Config holds the application configuration
type Config struct {
	DataDir        string
	ListenAddr     string
	BearerToken    string
	StorageBackend string // "memory" or "sqlite" (default: "sqlite")
	LogLevel       string // trace, debug, info, warn, error
	LogFormat      string // "console" or "json"
	SyncSchedule   string // cron spec for periodic router sync, empty disables
	SweepSchedule  string // cron spec for the notification sweep, empty disables
	Seed           bool   // load the demo dataset on first start
	ConfigFile     string // Path to .env file (if loaded)
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. .env file (if exists)
// 3. Environment variables
// 4. Default values
func Load(opts *Config) *Config {
	cfg := &Config{}

	// First, try to load from .env file
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := loadFromEnvFile(cfg, envFile); err != nil {
			log.Warn("failed to load .env file", "error", err)
		} else {
			cfg.ConfigFile = envFile
		}
	}

	// Then environment variables for anything the .env file left unset,
	// and the defaults last
	cfg.DataDir = coalesce(cfg.DataDir, os.Getenv("PPPOED_DATA_DIR"), "./data")
	cfg.ListenAddr = coalesce(cfg.ListenAddr, os.Getenv("PPPOED_LISTEN_ADDR"), ":8080")
	cfg.BearerToken = coalesce(cfg.BearerToken, os.Getenv("PPPOED_BEARER_TOKEN"))
	cfg.StorageBackend = coalesce(cfg.StorageBackend, os.Getenv("PPPOED_STORAGE_BACKEND"), "sqlite")
	cfg.LogLevel = coalesce(cfg.LogLevel, os.Getenv("PPPOED_LOG_LEVEL"), "info")
	cfg.LogFormat = coalesce(cfg.LogFormat, os.Getenv("PPPOED_LOG_FORMAT"), "console")
	cfg.SyncSchedule = coalesce(cfg.SyncSchedule, os.Getenv("PPPOED_SYNC_SCHEDULE"))
	cfg.SweepSchedule = coalesce(cfg.SweepSchedule, os.Getenv("PPPOED_SWEEP_SCHEDULE"))
	if v := os.Getenv("PPPOED_SEED"); v != "" && !cfg.Seed {
		cfg.Seed = isTruthy(v)
	}

	// Finally, apply CLI opts if provided (highest priority)
	if opts != nil {
		if opts.DataDir != "" {
			cfg.DataDir = opts.DataDir
		}
		if opts.ListenAddr != "" {
			cfg.ListenAddr = opts.ListenAddr
		}
		if opts.BearerToken != "" {
			cfg.BearerToken = opts.BearerToken
		}
		if opts.StorageBackend != "" {
			cfg.StorageBackend = opts.StorageBackend
		}
		if opts.LogLevel != "" {
			cfg.LogLevel = opts.LogLevel
		}
		if opts.LogFormat != "" {
			cfg.LogFormat = opts.LogFormat
		}
		if opts.SyncSchedule != "" {
			cfg.SyncSchedule = opts.SyncSchedule
		}
		if opts.SweepSchedule != "" {
			cfg.SweepSchedule = opts.SweepSchedule
		}
		if opts.Seed {
			cfg.Seed = true
		}
	}

	// Validate storage backend
	if cfg.StorageBackend != "memory" && cfg.StorageBackend != "sqlite" {
		cfg.StorageBackend = "sqlite"
	}

	return cfg
}

// loadFromEnvFile loads configuration from a .env file
func loadFromEnvFile(cfg *Config, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE or KEY="VALUE"
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		switch key {
		case "PPPOED_DATA_DIR":
			cfg.DataDir = value
		case "PPPOED_LISTEN_ADDR":
			cfg.ListenAddr = value
		case "PPPOED_BEARER_TOKEN":
			cfg.BearerToken = value
		case "PPPOED_STORAGE_BACKEND":
			cfg.StorageBackend = value
		case "PPPOED_LOG_LEVEL":
			cfg.LogLevel = value
		case "PPPOED_LOG_FORMAT":
			cfg.LogFormat = value
		case "PPPOED_SYNC_SCHEDULE":
			cfg.SyncSchedule = value
		case "PPPOED_SWEEP_SCHEDULE":
			cfg.SweepSchedule = value
		case "PPPOED_SEED":
			cfg.Seed = isTruthy(value)
		}
	}

	return scanner.Err()
}

// IsMCPAuthEnabled checks if MCP authentication is configured
func (c *Config) IsMCPAuthEnabled() bool {
	return c.BearerToken != ""
}

// String returns a string representation of the config source
func (c *Config) String() string {
	if c.ConfigFile != "" {
		return fmt.Sprintf(".env file (%s)", c.ConfigFile)
	}
	return "environment variables"
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
