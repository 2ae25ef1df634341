// Package config loads Munazzam configuration from command-line flags,
// environment variables, a .env file, and defaults, in that precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Empty-audience policies for campaign export.
const (
	PolicyKeepDraft = "keep-draft"
	PolicyRollback  = "rollback"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "munazzam.db"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Campaign  CampaignConfig
	Import    ImportConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates persistent state.
type DataConfig struct {
	Path string // directory holding munazzam.db
}

// DBPath returns the SQLite database path.
func (d DataConfig) DBPath() string {
	return filepath.Join(d.Path, DatabaseFile)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default 8080
	ReadTimeout  time.Duration // default 15s
	WriteTimeout time.Duration // default 60s; exports stream whole files
	IdleTimeout  time.Duration // default 60s
	CORSOrigins  []string
}

// CampaignConfig controls message personalization and export.
type CampaignConfig struct {
	NamePlaceholder     string // default [NAME]
	ExportFormat        string // xlsx or csv
	EmptyAudiencePolicy string // keep-draft or rollback
}

// ImportConfig controls contact import.
type ImportConfig struct {
	WatchDir       string   // optional drop folder
	WatchTags      []string // tags applied to drop-folder imports
	MaxUploadBytes int64    // default 10 MiB
}

// RateLimitConfig bounds export and import requests per client.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Flags carries values given on the command line. Empty fields fall through
// to the environment.
type Flags struct {
	EnvFile      string
	Env          string
	LogLevel     string
	DataPath     string
	Port         string
	ExportFormat string
	WatchDir     string
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(flags.DataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(flags.Port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ORIGINS", "*")),
		},
		Campaign: CampaignConfig{
			NamePlaceholder:     getConfigValue("", "MESSAGE_NAME_PLACEHOLDER", "[NAME]"),
			ExportFormat:        strings.ToLower(getConfigValue(flags.ExportFormat, "EXPORT_FORMAT", "xlsx")),
			EmptyAudiencePolicy: getConfigValue("", "EMPTY_AUDIENCE_POLICY", PolicyKeepDraft),
		},
		Import: ImportConfig{
			WatchDir:       getConfigValue(flags.WatchDir, "IMPORT_WATCH_DIR", ""),
			WatchTags:      splitList(getConfigValue("", "IMPORT_WATCH_TAGS", "")),
			MaxUploadBytes: int64(getIntConfigValue("", "IMPORT_MAX_UPLOAD_BYTES", 10<<20)),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 2),
			Burst: getIntConfigValue("", "RATE_LIMIT_BURST", 5),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue("SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue("SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue("SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Campaign.ExportFormat {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("invalid export format: %q (must be xlsx or csv)", c.Campaign.ExportFormat)
	}

	switch c.Campaign.EmptyAudiencePolicy {
	case PolicyKeepDraft, PolicyRollback:
	default:
		return fmt.Errorf("invalid empty audience policy: %q (must be %s or %s)",
			c.Campaign.EmptyAudiencePolicy, PolicyKeepDraft, PolicyRollback)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.Path, err = expandPath(c.Data.Path, filepath.Join(homeDir, "Munazzam")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Import.WatchDir != "" {
		if c.Import.WatchDir, err = expandPath(c.Import.WatchDir, ""); err != nil {
			return fmt.Errorf("invalid import watch dir: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDurationConfigValue(envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue("", envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

// splitList parses "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
