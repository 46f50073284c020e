package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Migration.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", cfg.Migration.BatchSize)
	}
	if cfg.Migration.TableSuffix != "_pcrm" {
		t.Errorf("TableSuffix = %q, want _pcrm", cfg.Migration.TableSuffix)
	}
	if cfg.Migration.SyncLookback != time.Hour {
		t.Errorf("SyncLookback = %v, want 1h", cfg.Migration.SyncLookback)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
target:
  host: db.example.com
  database: pcrm
  user: migrator
  password: secret
migration:
  batch_size: 250
  table_suffix: _legacy
  continue_on_error: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Migration.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", cfg.Migration.BatchSize)
	}
	if cfg.Migration.TableSuffix != "_legacy" {
		t.Errorf("TableSuffix = %q, want _legacy", cfg.Migration.TableSuffix)
	}
	if !cfg.Migration.ContinueOnError {
		t.Error("ContinueOnError = false, want true")
	}
	// Unset fields still get defaults
	if cfg.Target.Port != 5432 {
		t.Errorf("Target.Port = %d, want 5432", cfg.Target.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.ApplyDefaults()
		c.Target.Host = "localhost"
		c.Target.Database = "pcrm"
		c.Target.User = "postgres"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing host", func(c *Config) { c.Target.Host = "" }, "target.host"},
		{"missing database", func(c *Config) { c.Target.Database = "" }, "target.database"},
		{"bad batch size", func(c *Config) { c.Migration.BatchSize = -1 }, "batch_size"},
		{"bad suffix", func(c *Config) { c.Migration.TableSuffix = "pcrm" }, "table_suffix"},
		{"bad sslmode", func(c *Config) { c.Target.SSLMode = "maybe" }, "ssl_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTargetDSN(t *testing.T) {
	cfg := TargetConfig{
		Host: "db.internal", Port: 5432, Database: "pcrm",
		User: "app", Password: "pw", SSLMode: "require",
	}
	want := "postgres://app:pw@db.internal:5432/pcrm?sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
