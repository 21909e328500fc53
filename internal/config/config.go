// Package config loads the mdxsite YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvName overrides the configured environment when set.
const EnvName = "MDXSITE_ENV"

// Config is the complete mdxsite configuration.
type Config struct {
	Environment Environment      `yaml:"environment"`
	Site        SiteConfig       `yaml:"site"`
	Docs        DocsConfig       `yaml:"docs"`
	I18n        I18nConfig       `yaml:"i18n"`
	Security    SecurityConfig   `yaml:"security"`
	Server      ServerConfig     `yaml:"server"`
	Cache       CacheConfig      `yaml:"cache"`
	Monitoring  MonitoringConfig `yaml:"monitoring"`
	MCP         MCPConfig        `yaml:"mcp"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
	BasePath    string `yaml:"base_path"` // URL prefix of document routes, e.g. /docs
}

// DocsConfig locates the versioned docs tree.
type DocsConfig struct {
	Root           string `yaml:"root"`            // Directory holding one folder per version
	DefaultVersion string `yaml:"default_version"` // Used when the root cannot be listed
	Concurrency    int    `yaml:"concurrency"`     // Parallel file reads while listing
	GitLastUpdated bool   `yaml:"git_last_updated"`
}

// SecurityConfig controls content validation and HTTP hardening.
type SecurityConfig struct {
	BlockDangerous        *bool               `yaml:"block_dangerous,omitempty"`
	AllowCustomComponents *bool               `yaml:"allow_custom_components,omitempty"`
	StrictPaths           *bool               `yaml:"strict_paths,omitempty"`
	CSP                   map[string][]string `yaml:"csp,omitempty"` // Directive overrides
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit,omitempty"` // Requests per second per client; zero disables
	Burst           int           `yaml:"burst,omitempty"`
	Compress        *bool         `yaml:"compress,omitempty"`
}

// CompressEnabled reports whether responses are gzip encoded. Defaults to true.
func (s ServerConfig) CompressEnabled() bool { return s.Compress == nil || *s.Compress }

// CacheConfig configures the in-memory cache and its invalidation sources.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TTL          time.Duration `yaml:"ttl"`
	Watch        bool          `yaml:"watch"`         // Invalidate on docs tree changes
	RenderStore  string        `yaml:"render_store"`  // SQLite file for rendered documents; empty disables
	WarmInterval time.Duration `yaml:"warm_interval"` // Periodic listing warm-up; zero disables
	NATS         NATSConfig    `yaml:"nats"`
}

// NATSConfig enables cross-instance cache invalidation.
type NATSConfig struct {
	URL     string      `yaml:"url"`
	Subject string      `yaml:"subject"`
	Connect RetryConfig `yaml:"connect"` // Backoff for the initial connection
}

// RetryConfig describes a backoff policy for transient failures.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"` // fixed, linear or exponential
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// MonitoringConfig represents logging and metrics configuration.
type MonitoringConfig struct {
	Logging MonitoringLogging `yaml:"logging"`
	Metrics MonitoringMetrics `yaml:"metrics"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Transport MCPTransport `yaml:"transport"`
	Addr      string       `yaml:"addr"`
}

// IsProduction reports whether the configuration targets production.
func (c *Config) IsProduction() bool { return c.Environment == EnvironmentProduction }

// IsDevelopment reports whether drafts and relaxed security apply.
func (c *Config) IsDevelopment() bool { return c.Environment == EnvironmentDevelopment }

// BlockDangerousEnabled reports whether dangerous content is rejected or sanitized.
func (s SecurityConfig) BlockDangerousEnabled() bool { return boolOr(s.BlockDangerous, true) }

// CustomComponentsAllowed reports whether unknown components pass validation.
func (s SecurityConfig) CustomComponentsAllowed() bool { return boolOr(s.AllowCustomComponents, true) }

// StrictPathsEnabled reports whether suspicious request paths are refused.
func (s SecurityConfig) StrictPathsEnabled() bool { return boolOr(s.StrictPaths, true) }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first, then
// normalizes, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if env := strings.TrimSpace(os.Getenv(EnvName)); env != "" {
		cfg.Environment = Environment(env)
	}

	res, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
