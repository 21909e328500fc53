package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	fallback := true
	example := Config{
		Environment: EnvironmentDevelopment,
		Site: SiteConfig{
			Title:    "My Docs",
			BaseURL:  "https://docs.example.com",
			BasePath: "/docs",
		},
		Docs: DocsConfig{Root: "./docs", DefaultVersion: "v1.0.0", Concurrency: 8},
		I18n: I18nConfig{
			Enabled:           true,
			DefaultLocale:     "en",
			Locales:           []string{"en", "fr"},
			LocaleNames:       map[string]string{"en": "English", "fr": "Français"},
			FallbackToDefault: &fallback,
		},
		Server: ServerConfig{Addr: ":8080", ReadTimeout: 15 * time.Second, WriteTimeout: 30 * time.Second, ShutdownTimeout: 10 * time.Second},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			Watch:   true,
			NATS:    NATSConfig{URL: "${NATS_URL}", Subject: "mdxsite.cache.invalidate"},
		},
		Monitoring: MonitoringConfig{
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
			Metrics: MonitoringMetrics{Enabled: true, Path: "/metrics"},
		},
		MCP: MCPConfig{Transport: MCPTransportStdio, Addr: ":8090"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
