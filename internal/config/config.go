package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solicitudes-backend/internal/domain"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Workflow WorkflowConfig `yaml:"workflow"`
	CORS     CORSConfig     `yaml:"cors"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the store and how to reach it
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // "mongo" or "postgres"
	ConnectionString string `yaml:"connection_string"`
	Name             string `yaml:"name"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// WorkflowConfig holds the approval rules
type WorkflowConfig struct {
	MaxPendingPerUser  int      `yaml:"max_pending_per_user"`
	DefaultNits        []string `yaml:"default_nits"`
	EnforceResponsible bool     `yaml:"enforce_responsible"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// JobsConfig holds the cron schedules (seconds precision, UTC) of background jobs
type JobsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	PendingBacklog string `yaml:"pending_backlog"`
	CounterAudit   string `yaml:"counter_audit"`
}

// LoadEnvFiles loads the dotenv files that exist; variables already set win.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads configuration from a YAML file. A missing file is tolerated so the
// service can run from the environment alone.
func Load(configPath string) (*Config, error) {
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_CONNECTION_STRING"); val != "" {
		c.Database.ConnectionString = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Name = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Workflow
	if val := os.Getenv("MAX_PENDING_PER_USER"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("MAX_PENDING_PER_USER: %w", err)
		}
		c.Workflow.MaxPendingPerUser = n
	}
	if val := os.Getenv("ENFORCE_RESPONSIBLE"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("ENFORCE_RESPONSIBLE: %w", err)
		}
		c.Workflow.EnforceResponsible = b
	}

	// CORS
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORS.AllowedOrigins = splitList(val)
	}

	// Jobs
	if val := os.Getenv("JOBS_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("JOBS_ENABLED: %w", err)
		}
		c.Jobs.Enabled = b
	}
	return nil
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.Driver != DriverMongo && c.Database.Driver != DriverPostgres {
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("database connection string is required")
	}
	if c.Database.Driver == DriverMongo && c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.TimeoutSeconds <= 0 {
		c.Database.TimeoutSeconds = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Workflow.MaxPendingPerUser <= 0 {
		c.Workflow.MaxPendingPerUser = 2
	}
	if len(c.Workflow.DefaultNits) == 0 {
		c.Workflow.DefaultNits = append([]string(nil), domain.DefaultValidNits...)
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.Jobs.PendingBacklog == "" {
		c.Jobs.PendingBacklog = "0 * * * * *"
	}
	if c.Jobs.CounterAudit == "" {
		c.Jobs.CounterAudit = "0 */10 * * * *"
	}

	return nil
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DatabaseTimeout bounds startup and seeding calls against the store.
func (c *Config) DatabaseTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
