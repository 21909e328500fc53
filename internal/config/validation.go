package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// ValidateConfig validates a configuration that has had defaults applied.
func ValidateConfig(cfg *Config) error {
	cv := &configurationValidator{config: cfg}
	return cv.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateDocs(); err != nil {
		return err
	}
	if err := cv.validateI18n(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	if err := cv.validateCache(); err != nil {
		return err
	}
	return cv.validateMonitoring()
}

func (cv *configurationValidator) validateDocs() error {
	d := cv.config.Docs
	if strings.TrimSpace(d.Root) == "" {
		return errors.New("docs.root must not be empty")
	}
	if strings.ContainsAny(d.DefaultVersion, `/\`) || d.DefaultVersion == ".." || d.DefaultVersion == "." {
		return fmt.Errorf("docs.default_version must be a single directory name: %q", d.DefaultVersion)
	}
	return nil
}

func (cv *configurationValidator) validateI18n() error {
	c := cv.config.I18n
	seen := make(map[string]bool, len(c.Locales))
	for _, l := range c.Locales {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("i18n.locales: invalid locale %q: %w", l, err)
		}
		if seen[l] {
			return fmt.Errorf("i18n.locales: duplicate locale %q", l)
		}
		seen[l] = true
	}
	if !slices.Contains(c.Locales, c.DefaultLocale) {
		return fmt.Errorf("i18n.default_locale %q is not listed in i18n.locales", c.DefaultLocale)
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative: %v", s.RateLimit)
	}
	if s.Burst < 0 {
		return fmt.Errorf("server.burst must not be negative: %d", s.Burst)
	}
	return nil
}

func (cv *configurationValidator) validateCache() error {
	c := cv.config.Cache
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative: %s", c.TTL)
	}
	if c.WarmInterval < 0 {
		return fmt.Errorf("cache.warm_interval must not be negative: %s", c.WarmInterval)
	}
	if r := c.NATS.Connect; r.Initial < 0 || r.Max < 0 || r.MaxRetries < 0 {
		return fmt.Errorf("cache.nats.connect: durations and max_retries must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	if p := cv.config.Monitoring.Metrics.Path; !strings.HasPrefix(p, "/") {
		return fmt.Errorf("monitoring.metrics.path must start with '/': %q", p)
	}
	return nil
}
