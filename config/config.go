// Package config handles servicekit configuration loading. Values are
// layered from built-in defaults, an optional servicekit.yaml file, and
// SERVICEKIT_-prefixed environment variables, in increasing precedence.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultHost is the interface services bind to.
	DefaultHost = "0.0.0.0"
	// DefaultPort is the port services listen on.
	DefaultPort = 8000

	// EnvPrefix namespaces environment variables, e.g. SERVICEKIT_PORT.
	EnvPrefix = "SERVICEKIT_"
)

// Config holds the runtime configuration for a servicekit application.
type Config struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// DatabaseDSN selects the service database: empty or ":memory:" for
	// in-memory SQLite, a file path for on-disk SQLite, or a
	// "duckdb:" prefixed path for DuckDB.
	DatabaseDSN string `koanf:"database_dsn"`

	LogLevel  string `koanf:"log_level"`  // debug, info, warn, error
	LogFormat string `koanf:"log_format"` // json or text

	Env string `koanf:"env"` // "development" (default) or "production"

	// Auth settings. APIKeys empty means auth middleware rejects
	// everything but unauthenticated paths when enabled.
	APIKeys      []string `koanf:"api_keys"`
	APIKeyHeader string   `koanf:"api_key_header"`
	JWTSecret    string   `koanf:"jwt_secret"`

	// Rate limiting
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Jobs
	JobsMaxConcurrency int64 `koanf:"jobs_max_concurrency"`
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn, or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log_format %q (must be json or text)", c.LogFormat)
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("invalid env %q (must be development or production)", c.Env)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must be non-negative")
	}
	return nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"host":                 DefaultHost,
		"port":                 DefaultPort,
		"database_dsn":         "",
		"log_level":            "info",
		"log_format":           "json",
		"env":                  "development",
		"api_key_header":       "X-API-Key",
		"rate_limit_rps":       0.0,
		"rate_limit_burst":     0,
		"cors_allowed_origins": []string{"*"},
		"jobs_max_concurrency": int64(0),
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > servicekit.yaml > servicekit.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"servicekit.yaml", "servicekit.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds a Config from defaults, the given YAML file (or
// servicekit.yaml/yml in the working directory when cfgFile is empty),
// and SERVICEKIT_ environment variables.
func Load(cfgFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	// SERVICEKIT_LOG_LEVEL -> log_level. List-valued keys accept
	// comma-separated values.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.APIKeys = splitList(cfg.APIKeys)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or
// the environment.
func Default() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		LogLevel:           "info",
		LogFormat:          "json",
		Env:                "development",
		APIKeyHeader:       "X-API-Key",
		CORSAllowedOrigins: []string{"*"},
	}
}

// splitList expands comma-separated entries, so both YAML lists and
// SERVICEKIT_API_KEYS=a,b,c work.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
