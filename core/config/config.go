package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// WhatsAppConfig holds gateway credentials and endpoints shared by the whole bot.
type WhatsAppConfig struct {
	APIKey      string `yaml:"api_key" envconfig:"D360_API_KEY"`
	BaseURL     string `yaml:"base_url" envconfig:"D360_BASE_URL"`
	VerifyToken string `yaml:"verify_token" envconfig:"VERIFY_TOKEN"`
}

// ServerConfig specifies the webhook HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen" envconfig:"SERVER_LISTEN"`
	Port   int    `yaml:"port" envconfig:"SERVER_PORT"`
}

// AdminConfig lists the phone identifiers allowed to use admin actions.
type AdminConfig struct {
	IDs []string `yaml:"ids" envconfig:"ADMIN_IDS"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// StateBackendMemory keeps conversation sessions in process memory.
	StateBackendMemory = "memory"
	// StateBackendRedis keeps conversation sessions in Redis.
	StateBackendRedis = "redis"
)

// RedisConfig holds connection settings for the redis state backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// StateConfig selects where per-user conversation state lives.
type StateConfig struct {
	Backend string      `yaml:"backend" envconfig:"STATE_BACKEND"`
	Redis   RedisConfig `yaml:"redis"`
}

// ExportConfig controls the XLSX export subsystem.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"EXPORT_ENABLED"`
	Dir     string `yaml:"dir" envconfig:"EXPORT_DIR"`
	Prefix  string `yaml:"prefix" envconfig:"EXPORT_PREFIX"`
	// IntervalMinutes sets the auto-export period; 0 disables the scheduler.
	IntervalMinutes int `yaml:"interval_minutes" envconfig:"EXPORT_INTERVAL_MINUTES"`
	// PrecreateDays is how many days before month end the next workbook is prepared.
	PrecreateDays int `yaml:"precreate_days" envconfig:"EXPORT_PRECREATE_DAYS"`
}

// RateLimitConfig holds settings for inbound per-sender throttling.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Config aggregates the configuration of the whole service.
type Config struct {
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	State     StateConfig     `yaml:"state"`
	Export    ExportConfig    `yaml:"export"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timezone  string          `yaml:"timezone" envconfig:"TZ"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.WhatsApp.APIKey) == "" {
		return fmt.Errorf("whatsapp.api_key is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.VerifyToken) == "" {
		return fmt.Errorf("whatsapp.verify_token is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.BaseURL) == "" {
		cfg.WhatsApp.BaseURL = "https://waba-v2.360dialog.io"
	}
	cfg.WhatsApp.BaseURL = strings.TrimRight(cfg.WhatsApp.BaseURL, "/")

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = "0.0.0.0"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}

	ids := make([]string, 0, len(cfg.Admin.IDs))
	for _, id := range cfg.Admin.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	cfg.Admin.IDs = ids

	backend := strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if backend == "" {
		backend = StateBackendMemory
	}
	switch backend {
	case StateBackendMemory:
	case StateBackendRedis:
		if strings.TrimSpace(cfg.State.Redis.Addr) == "" {
			return fmt.Errorf("state.redis.addr is required when state.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid state.backend %q; allowed: memory, redis", cfg.State.Backend)
	}
	cfg.State.Backend = backend

	if strings.TrimSpace(cfg.Export.Dir) == "" {
		cfg.Export.Dir = "exports"
	}
	if strings.TrimSpace(cfg.Export.Prefix) == "" {
		cfg.Export.Prefix = "WorkLog"
	}
	if cfg.Export.IntervalMinutes < 0 {
		return fmt.Errorf("export.interval_minutes must be >= 0")
	}
	if cfg.Export.PrecreateDays <= 0 {
		cfg.Export.PrecreateDays = 3
	}

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	if strings.TrimSpace(cfg.Database.Host) == "" {
		cfg.Database.Host = "localhost"
	}
	if strings.TrimSpace(cfg.Database.Port) == "" {
		cfg.Database.Port = "5432"
	}
	if strings.TrimSpace(cfg.Database.SSLMode) == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 10
	}

	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	return nil
}

// IsAdmin reports whether the given phone identifier belongs to an admin.
func (c *Config) IsAdmin(userID string) bool {
	if c == nil {
		return false
	}
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}
