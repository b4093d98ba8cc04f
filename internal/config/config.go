package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure
type Config struct {
	Connections []ConnectionConfig `mapstructure:"connections" yaml:"connections"`
	Catalog     CatalogConfig      `mapstructure:"catalog" yaml:"catalog"`
	Storage     StorageConfig      `mapstructure:"storage" yaml:"storage"`
	UI          UIConfig           `mapstructure:"ui" yaml:"ui"`
	LogFile     string             `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Debug       bool               `mapstructure:"debug" yaml:"debug"`
}

// ConnectionConfig is one named entry of the connection library
type ConnectionConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URI  string `mapstructure:"uri" yaml:"uri"`
}

// CatalogConfig holds catalog client settings
type CatalogConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	ConnectAttempts int           `mapstructure:"connect_attempts" yaml:"connect_attempts"`
	Token           string        `mapstructure:"token" yaml:"-"`
	Credential      string        `mapstructure:"credential" yaml:"-"`
	Warehouse       string        `mapstructure:"warehouse" yaml:"warehouse,omitempty"`
}

// StorageConfig holds object storage settings used to read parquet footers
type StorageConfig struct {
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKeyID     string        `mapstructure:"access_key_id" yaml:"-"`
	SecretAccessKey string        `mapstructure:"secret_access_key" yaml:"-"`
	Region          string        `mapstructure:"region" yaml:"region,omitempty"`
	UseSSL          bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// UIConfig holds user interface preferences
type UIConfig struct {
	DateFormat         string `mapstructure:"date_format" yaml:"date_format"`
	ParquetFooterLimit int    `mapstructure:"parquet_footer_limit" yaml:"parquet_footer_limit"`
	LogPanelLines      int    `mapstructure:"log_panel_lines" yaml:"log_panel_lines"`
}

// Connection returns the library entry with the given name.
func (c *Config) Connection(name string) (ConnectionConfig, bool) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return ConnectionConfig{}, false
}

// LoadConfig loads configuration from YAML file and environment variables.
// An explicit path must exist; without one the default locations are searched
// and a missing file falls back to defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tanic")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/tanic")
		v.AddConfigPath(".")
	}

	// Environment variable support
	v.SetEnvPrefix("TANIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ValidateConfig validates the configuration values
func ValidateConfig(cfg *Config) error {
	seen := make(map[string]struct{}, len(cfg.Connections))
	for i, conn := range cfg.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connections[%d].name cannot be empty", i)
		}
		if _, dup := seen[conn.Name]; dup {
			return fmt.Errorf("connections[%d].name %q is already defined", i, conn.Name)
		}
		seen[conn.Name] = struct{}{}

		u, err := url.Parse(conn.URI)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("connections[%d].uri must be an absolute uri, got %q", i, conn.URI)
		}
	}

	// Validate catalog config
	if cfg.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must be >= 0, got %v", cfg.Catalog.Timeout)
	}
	if cfg.Catalog.RateLimit < 0 {
		return fmt.Errorf("catalog.rate_limit must be >= 0, got %v", cfg.Catalog.RateLimit)
	}
	if cfg.Catalog.RateBurst < 1 {
		return fmt.Errorf("catalog.rate_burst must be >= 1, got %d", cfg.Catalog.RateBurst)
	}
	if cfg.Catalog.ConnectAttempts < 1 || cfg.Catalog.ConnectAttempts > 20 {
		return fmt.Errorf("catalog.connect_attempts must be between 1 and 20, got %d", cfg.Catalog.ConnectAttempts)
	}

	if cfg.Storage.Timeout < 0 {
		return fmt.Errorf("storage.timeout must be >= 0, got %v", cfg.Storage.Timeout)
	}

	// Validate UI config
	if cfg.UI.DateFormat == "" {
		return fmt.Errorf("ui.date_format cannot be empty")
	}
	if cfg.UI.ParquetFooterLimit < 0 {
		return fmt.Errorf("ui.parquet_footer_limit must be >= 0, got %d", cfg.UI.ParquetFooterLimit)
	}
	if cfg.UI.LogPanelLines < 0 || cfg.UI.LogPanelLines > 100 {
		return fmt.Errorf("ui.log_panel_lines must be between 0 and 100, got %d", cfg.UI.LogPanelLines)
	}

	return nil
}

// applyDefaults sets default configuration values
func applyDefaults(v *viper.Viper) {
	// Catalog defaults
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.rate_limit", 20.0)
	v.SetDefault("catalog.rate_burst", 10)
	v.SetDefault("catalog.connect_attempts", 5)
	v.SetDefault("catalog.token", "")
	v.SetDefault("catalog.credential", "")
	v.SetDefault("catalog.warehouse", "")

	// Storage defaults
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.timeout", "15s")

	// UI defaults
	v.SetDefault("ui.date_format", "2006-01-02 15:04:05")
	v.SetDefault("ui.parquet_footer_limit", 8)
	v.SetDefault("ui.log_panel_lines", 3)

	v.SetDefault("log_file", "")
	v.SetDefault("debug", false)
}
