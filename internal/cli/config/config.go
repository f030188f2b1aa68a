package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// Config represents the apidocs configuration
type Config struct {
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Server ServerConfig `mapstructure:"server"`
	UI     UIConfig     `mapstructure:"ui"`
}

// FetchConfig controls catalog retrieval
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ServerConfig represents the documentation server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`

	// AllowedOrigins lists browser origins admitted by the session API.
	// Empty means local origins only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowFiles lets sessions load catalogs from the server's disk
	AllowFiles bool `mapstructure:"allow_files"`

	// CatalogHosts restricts the hosts sessions may load catalogs from.
	// Empty means any host.
	CatalogHosts []string `mapstructure:"catalog_hosts"`
}

// UIConfig represents terminal output configuration
type UIConfig struct {
	NoColor bool `mapstructure:"no_color"`
}

// Addr returns the host:port the server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoaderConfig converts the fetch settings for the catalog loader
func (f FetchConfig) LoaderConfig() catalog.LoaderConfig {
	return catalog.LoaderConfig{
		Timeout:   f.Timeout,
		MaxBytes:  f.MaxBytes,
		UserAgent:  f.UserAgent,
		AllowFiles: true,
	}
}

// ServerLoaderConfig returns the loader settings for server sessions.
// Local files are refused unless server.allow_files is set.
func (c *Config) ServerLoaderConfig() catalog.LoaderConfig {
	cfg := c.Fetch.LoaderConfig()
	cfg.AllowFiles = c.Server.AllowFiles
	cfg.AllowedHosts = c.Server.CatalogHosts
	return cfg
}

// Load loads the configuration from apidocs.yml or apidocs.yaml in the
// working directory. A missing file means defaults. Environment variables
// prefixed with APIDOCS_ override both (APIDOCS_SERVER_PORT=9000).
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads the configuration from an explicit path; an empty path
// searches the working directory.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := catalog.DefaultLoaderConfig()
	v.SetDefault("fetch.timeout", defaults.Timeout)
	v.SetDefault("fetch.max_bytes", defaults.MaxBytes)
	v.SetDefault("fetch.user_agent", defaults.UserAgent)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.allow_files", false)
	v.SetDefault("ui.no_color", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("apidocs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("APIDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got: %s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive, got: %d", cfg.Fetch.MaxBytes)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	return nil
}
