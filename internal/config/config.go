package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// expandTilde expands ~ or ~/ at the start of a path to the user's home directory
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Config holds all configuration for the migration service
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Target    TargetConfig    `yaml:"target"`
	Migration MigrationConfig `yaml:"migration"`
	Slack     SlackConfig     `yaml:"slack"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// TargetConfig holds destination database connection settings
type TargetConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Schema         string `yaml:"schema"`
	SSLMode        string `yaml:"ssl_mode"` // disable, require, verify-ca, verify-full (default: require)
	MaxConnections int    `yaml:"max_connections"`
}

// SlackConfig holds Slack notification settings
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
	Enabled    bool   `yaml:"enabled"`
}

// MigrationConfig holds migration behavior settings
type MigrationConfig struct {
	BatchSize            int           `yaml:"batch_size"`             // Rows per window / statements per batch
	BatchPause           time.Duration `yaml:"batch_pause"`            // Pause between batches
	TableSuffix          string        `yaml:"table_suffix"`           // Namespace suffix for shadow tables
	ContinueOnError      bool          `yaml:"continue_on_error"`      // Skip recoverable statement errors
	SourceTag            string        `yaml:"source_tag"`             // migration_source value for bulk runs
	SyncTag              string        `yaml:"sync_tag"`               // migration_source value for incremental sync
	SyncLookback         time.Duration `yaml:"sync_lookback"`          // Default window when no since-timestamp given
	DataDir              string        `yaml:"data_dir"`               // Local run history location
	SourceMaxConnections int           `yaml:"source_max_connections"` // Source pool cap; one query in flight at a time
}

// DSN returns the destination connection string.
func (t *TargetConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		t.User, t.Password, t.Host, t.Port, t.Database, t.SSLMode)
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults are returned so the CLI can run from flags alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(expandTilde(path))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 3 * time.Second
	}

	if c.Target.Port == 0 {
		c.Target.Port = 5432
	}
	if c.Target.Schema == "" {
		c.Target.Schema = "public"
	}
	if c.Target.SSLMode == "" {
		c.Target.SSLMode = "require"
	}
	if c.Target.MaxConnections == 0 {
		c.Target.MaxConnections = 8
	}

	if c.Migration.BatchSize == 0 {
		c.Migration.BatchSize = 500
	}
	if c.Migration.BatchPause == 0 {
		c.Migration.BatchPause = 100 * time.Millisecond
	}
	if c.Migration.TableSuffix == "" {
		c.Migration.TableSuffix = "_pcrm"
	}
	if c.Migration.SourceTag == "" {
		c.Migration.SourceTag = "legacy_admin"
	}
	if c.Migration.SyncTag == "" {
		c.Migration.SyncTag = "legacy_admin_sync"
	}
	if c.Migration.SyncLookback == 0 {
		c.Migration.SyncLookback = time.Hour
	}
	if c.Migration.DataDir == "" {
		c.Migration.DataDir = "~/.legacy-migrate"
	}
	c.Migration.DataDir = expandTilde(c.Migration.DataDir)
	if c.Migration.SourceMaxConnections == 0 {
		c.Migration.SourceMaxConnections = 2
	}
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Target.Host == "" {
		return fmt.Errorf("target.host is required")
	}
	if c.Target.Database == "" {
		return fmt.Errorf("target.database is required")
	}
	if c.Target.User == "" {
		return fmt.Errorf("target.user is required")
	}
	if c.Migration.BatchSize < 1 {
		return fmt.Errorf("migration.batch_size must be positive, got %d", c.Migration.BatchSize)
	}
	if !strings.HasPrefix(c.Migration.TableSuffix, "_") {
		return fmt.Errorf("migration.table_suffix must start with underscore, got %q", c.Migration.TableSuffix)
	}
	switch c.Target.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("target.ssl_mode %q is not a valid sslmode", c.Target.SSLMode)
	}
	return nil
}
