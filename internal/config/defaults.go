package config

import (
	"math"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// DocsDefaultApplier handles docs and site defaults.
type DocsDefaultApplier struct{}

func (DocsDefaultApplier) Domain() string { return "docs" }

func (DocsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentProduction
	}
	if cfg.Docs.Root == "" {
		cfg.Docs.Root = "docs"
	}
	if cfg.Docs.DefaultVersion == "" {
		cfg.Docs.DefaultVersion = "v1.0.0"
	}
	if cfg.Docs.Concurrency <= 0 {
		cfg.Docs.Concurrency = 8
	}
	if cfg.Site.BasePath == "" {
		cfg.Site.BasePath = "/docs"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation"
	}
	return nil
}

// I18nDefaultApplier fills in the locale set.
type I18nDefaultApplier struct{}

func (I18nDefaultApplier) Domain() string { return "i18n" }

func (I18nDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.I18n.DefaultLocale == "" {
		cfg.I18n.DefaultLocale = "en"
	}
	if len(cfg.I18n.Locales) == 0 {
		cfg.I18n.Locales = []string{cfg.I18n.DefaultLocale}
	}
	return nil
}

// ServerDefaultApplier handles HTTP and MCP server defaults.
type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.Burst == 0 {
		cfg.Server.Burst = max(1, int(math.Ceil(cfg.Server.RateLimit)))
	}
	if cfg.MCP.Transport == "" {
		cfg.MCP.Transport = MCPTransportStdio
	}
	if cfg.MCP.Addr == "" {
		cfg.MCP.Addr = ":8090"
	}
	return nil
}

// CacheDefaultApplier handles cache defaults.
type CacheDefaultApplier struct{}

func (CacheDefaultApplier) Domain() string { return "cache" }

func (CacheDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Cache.NATS.Subject == "" {
		cfg.Cache.NATS.Subject = "mdxsite.cache.invalidate"
	}
	retry := &cfg.Cache.NATS.Connect
	if retry.Backoff == "" {
		retry.Backoff = RetryBackoffExponential
	}
	if retry.Initial == 0 {
		retry.Initial = 500 * time.Millisecond
	}
	if retry.Max == 0 {
		retry.Max = 10 * time.Second
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	return nil
}

// MonitoringDefaultApplier handles logging and metrics defaults.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = "/metrics"
	}
	return nil
}

// defaultAppliers run in order.
var defaultAppliers = []DefaultApplier{
	DocsDefaultApplier{},
	I18nDefaultApplier{},
	ServerDefaultApplier{},
	CacheDefaultApplier{},
	MonitoringDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
