package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
)

// Store backends accepted by STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendPebble   = "pebble"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string
	// MetricsAddr is the separate listener for /metrics; empty disables it
	MetricsAddr string

	// Security
	AllowedOrigins []string
	UnlockCode     string

	// Rate Limiting
	RateLimitAuth rate.Limit
	RateLimitAPI  rate.Limit

	// Logging
	LogLevel string

	// Storage
	StoreBackend string
	StorageKey   string
	SQLitePath   string
	PostgresDSN  string
	RedisAddr    string
	PebblePath   string

	// Chat
	MaxMessageSize int
	MaxHistorySize int

	// Assistant
	AssistantAPIKey  string
	AssistantModel   string
	AssistantTimeout time.Duration
}

// fileConfig is the YAML overlay read from CONFIG_FILE. Zero values leave
// the defaults in place.
type fileConfig struct {
	Port           string   `yaml:"port"`
	MetricsAddr    string   `yaml:"metrics_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	UnlockCode     string   `yaml:"unlock_code"`
	LogLevel       string   `yaml:"log_level"`
	RateLimit      struct {
		Auth int `yaml:"auth"`
		API  int `yaml:"api"`
	} `yaml:"rate_limit"`
	Store struct {
		Backend  string `yaml:"backend"`
		Key      string `yaml:"key"`
		SQLite   string `yaml:"sqlite_path"`
		Postgres string `yaml:"postgres_dsn"`
		Redis    string `yaml:"redis_addr"`
		Pebble   string `yaml:"pebble_path"`
	} `yaml:"store"`
	MaxMessageSize int `yaml:"max_message_size"`
	Assistant      struct {
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"assistant"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:             "8080",
		MetricsAddr:      "127.0.0.1:9090",
		AllowedOrigins:   []string{"http://localhost:8080", "http://localhost:3000"},
		UnlockCode:       domain.DefaultUnlockCode,
		RateLimitAuth:    2,
		RateLimitAPI:     10,
		LogLevel:         "info", // Options: debug, info, warn, error, silent
		StoreBackend:     BackendSQLite,
		StorageKey:       domain.StorageKey,
		SQLitePath:       "./data/calcvault.db",
		PebblePath:       "./data/pebble",
		RedisAddr:        "localhost:6379",
		MaxMessageSize:   domain.MaxMessageSize,
		MaxHistorySize:   domain.MaxHistorySize,
		AssistantModel:   domain.AssistantModel,
		AssistantTimeout: domain.AssistantTimeout,
	}
}

// Load builds the configuration: defaults, then the optional YAML file named
// by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.MetricsAddr, fc.MetricsAddr)
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	setString(&c.UnlockCode, fc.UnlockCode)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.RateLimit.Auth > 0 {
		c.RateLimitAuth = rate.Limit(fc.RateLimit.Auth)
	}
	if fc.RateLimit.API > 0 {
		c.RateLimitAPI = rate.Limit(fc.RateLimit.API)
	}
	setString(&c.StoreBackend, fc.Store.Backend)
	setString(&c.StorageKey, fc.Store.Key)
	setString(&c.SQLitePath, fc.Store.SQLite)
	setString(&c.PostgresDSN, fc.Store.Postgres)
	setString(&c.RedisAddr, fc.Store.Redis)
	setString(&c.PebblePath, fc.Store.Pebble)
	if fc.MaxMessageSize > 0 {
		c.MaxMessageSize = fc.MaxMessageSize
	}
	setString(&c.AssistantModel, fc.Assistant.Model)
	if fc.Assistant.Timeout != "" {
		d, err := time.ParseDuration(fc.Assistant.Timeout)
		if err != nil {
			return fmt.Errorf("parse assistant timeout: %w", err)
		}
		c.AssistantTimeout = d
	}
	return nil
}

// ApplyEnv overrides c with any environment variables that are set
func (c *Config) ApplyEnv() {
	// Server
	setString(&c.Port, os.Getenv("PORT"))
	if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
		c.MetricsAddr = addr
	}

	// Security
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = parseOrigins(origins)
	}
	setString(&c.UnlockCode, os.Getenv("UNLOCK_CODE"))

	// Rate Limiting
	if val := envInt("RATE_LIMIT_AUTH"); val > 0 {
		c.RateLimitAuth = rate.Limit(val)
	}
	if val := envInt("RATE_LIMIT_API"); val > 0 {
		c.RateLimitAPI = rate.Limit(val)
	}

	// Logging
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))

	// Storage
	setString(&c.StoreBackend, os.Getenv("STORE_BACKEND"))
	setString(&c.StorageKey, os.Getenv("STORAGE_KEY"))
	setString(&c.SQLitePath, os.Getenv("SQLITE_PATH"))
	setString(&c.PostgresDSN, os.Getenv("POSTGRES_DSN"))
	setString(&c.RedisAddr, os.Getenv("REDIS_ADDR"))
	setString(&c.PebblePath, os.Getenv("PEBBLE_PATH"))

	// Chat
	if val := envInt("MAX_MESSAGE_SIZE"); val > 0 {
		c.MaxMessageSize = val
	}
	if val := envInt("MAX_HISTORY_SIZE"); val > 0 {
		c.MaxHistorySize = val
	}

	// Assistant
	setString(&c.AssistantAPIKey, os.Getenv("API_KEY"))
	setString(&c.AssistantAPIKey, os.Getenv("GEMINI_API_KEY"))
	setString(&c.AssistantModel, os.Getenv("ASSISTANT_MODEL"))
	if raw := os.Getenv("ASSISTANT_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.AssistantTimeout = d
		}
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY cannot be empty")
	}
	if c.UnlockCode == "" {
		return fmt.Errorf("UNLOCK_CODE cannot be empty")
	}
	for _, r := range c.UnlockCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("UNLOCK_CODE must contain digits only")
		}
	}
	if c.AssistantTimeout <= 0 {
		return fmt.Errorf("ASSISTANT_TIMEOUT must be > 0")
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("MAX_MESSAGE_SIZE must be > 0")
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN cannot be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	case BackendPebble:
		if c.PebblePath == "" {
			return fmt.Errorf("PEBBLE_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// IsSilent reports whether logging is switched off
func (c *Config) IsSilent() bool {
	return c.LogLevel == "silent" || c.LogLevel == "off"
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func envInt(key string) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return val
}

// parseOrigins parses comma-separated origins
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
