package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tanic.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "debug: false\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.Timeout != 30*time.Second {
		t.Errorf("catalog.timeout = %v, want 30s", cfg.Catalog.Timeout)
	}
	if cfg.Catalog.ConnectAttempts != 5 {
		t.Errorf("catalog.connect_attempts = %d, want 5", cfg.Catalog.ConnectAttempts)
	}
	if cfg.Catalog.RateBurst != 10 {
		t.Errorf("catalog.rate_burst = %d, want 10", cfg.Catalog.RateBurst)
	}
	if !cfg.Storage.UseSSL {
		t.Error("storage.use_ssl should default to true")
	}
	if cfg.UI.ParquetFooterLimit != 8 {
		t.Errorf("ui.parquet_footer_limit = %d, want 8", cfg.UI.ParquetFooterLimit)
	}
	if len(cfg.Connections) != 0 {
		t.Errorf("connections = %v, want none", cfg.Connections)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
connections:
  - name: local
    uri: http://localhost:8181
  - name: demo
    uri: memory://demo
catalog:
  timeout: 5s
  connect_attempts: 2
ui:
  parquet_footer_limit: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Connections) != 2 {
		t.Fatalf("connections = %v", cfg.Connections)
	}
	conn, ok := cfg.Connection("demo")
	if !ok || conn.URI != "memory://demo" {
		t.Errorf("Connection(demo) = %v, %v", conn, ok)
	}
	if _, ok := cfg.Connection("missing"); ok {
		t.Error("Connection(missing) should not be found")
	}
	if cfg.Catalog.Timeout != 5*time.Second || cfg.Catalog.ConnectAttempts != 2 {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.UI.ParquetFooterLimit != 0 {
		t.Errorf("ui.parquet_footer_limit = %d, want 0", cfg.UI.ParquetFooterLimit)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("TANIC_CATALOG_TOKEN", "secret")
	t.Setenv("TANIC_DEBUG", "true")

	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Catalog.Token != "secret" {
		t.Errorf("catalog.token = %q, want secret", cfg.Catalog.Token)
	}
	if !cfg.Debug {
		t.Error("debug should be set from TANIC_DEBUG")
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func validConfig() *Config {
	return &Config{
		Connections: []ConnectionConfig{{Name: "local", URI: "http://localhost:8181"}},
		Catalog:     CatalogConfig{Timeout: time.Second, RateBurst: 1, ConnectAttempts: 3},
		UI:          UIConfig{DateFormat: time.DateTime, ParquetFooterLimit: 4, LogPanelLines: 3},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty name", func(c *Config) { c.Connections[0].Name = "" }, "name cannot be empty"},
		{"duplicate name", func(c *Config) {
			c.Connections = append(c.Connections, c.Connections[0])
		}, "already defined"},
		{"relative uri", func(c *Config) { c.Connections[0].URI = "localhost" }, "absolute uri"},
		{"negative timeout", func(c *Config) { c.Catalog.Timeout = -time.Second }, "catalog.timeout"},
		{"negative rate", func(c *Config) { c.Catalog.RateLimit = -1 }, "catalog.rate_limit"},
		{"zero burst", func(c *Config) { c.Catalog.RateBurst = 0 }, "catalog.rate_burst"},
		{"zero attempts", func(c *Config) { c.Catalog.ConnectAttempts = 0 }, "catalog.connect_attempts"},
		{"too many attempts", func(c *Config) { c.Catalog.ConnectAttempts = 21 }, "catalog.connect_attempts"},
		{"negative storage timeout", func(c *Config) { c.Storage.Timeout = -1 }, "storage.timeout"},
		{"empty date format", func(c *Config) { c.UI.DateFormat = "" }, "ui.date_format"},
		{"negative footer limit", func(c *Config) { c.UI.ParquetFooterLimit = -1 }, "ui.parquet_footer_limit"},
		{"log panel too tall", func(c *Config) { c.UI.LogPanelLines = 101 }, "ui.log_panel_lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateConfig() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
