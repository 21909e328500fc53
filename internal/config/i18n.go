package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// I18nConfig configures localized documents. In YAML it is either a mapping
// or a plain boolean; `i18n: true` enables a single English locale.
type I18nConfig struct {
	Enabled           bool              `yaml:"enabled"`
	DefaultLocale     string            `yaml:"default_locale"`
	Locales           []string          `yaml:"locales"`
	LocaleNames       map[string]string `yaml:"locale_names,omitempty"`
	PrefixDefault     bool              `yaml:"prefix_default"`
	FallbackToDefault *bool             `yaml:"fallback_to_default,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *I18nConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("line %d: i18n must be a boolean or mapping", value.Line)
		}
		*c = I18nConfig{Enabled: enabled}
		if enabled {
			c.DefaultLocale = "en"
			c.Locales = []string{"en"}
		}
		return nil
	}
	type plain I18nConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = I18nConfig(p)
	// A mapping without an explicit switch is taken as enabled.
	if !hasKey(value, "enabled") {
		c.Enabled = true
	}
	return nil
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Fallback reports whether a missing translation falls back to the default
// locale's document.
func (c I18nConfig) Fallback() bool { return boolOr(c.FallbackToDefault, true) }

// Locale returns locale when it is configured, otherwise the default locale.
func (c I18nConfig) Locale(locale string) string {
	if c.Enabled && locale != "" && slices.Contains(c.Locales, locale) {
		return locale
	}
	return c.DefaultLocale
}

// IsDefault reports whether locale is the default locale.
func (c I18nConfig) IsDefault(locale string) bool {
	return locale == "" || locale == c.DefaultLocale
}

// PrefixFor returns the slug prefix for documents in target locale whose
// file is in fileLocale, or "" when no prefix applies.
func (c I18nConfig) PrefixFor(target, fileLocale string) string {
	if !c.Enabled {
		return ""
	}
	if c.IsDefault(fileLocale) && c.IsDefault(target) && !c.PrefixDefault {
		return ""
	}
	return target + "/"
}
