package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/foundation/normalization"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated fields before defaults are applied.
// It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeEnum(res, "environment", &c.Environment, environmentNormalizer)
	normalizeEnum(res, "monitoring.logging.level", &c.Monitoring.Logging.Level, logLevelNormalizer)
	normalizeEnum(res, "monitoring.logging.format", &c.Monitoring.Logging.Format, logFormatNormalizer)
	normalizeEnum(res, "mcp.transport", &c.MCP.Transport, mcpTransportNormalizer)
	normalizeEnum(res, "cache.nats.connect.backoff", &c.Cache.NATS.Connect.Backoff, retryBackoffNormalizer)

	c.Site.BasePath = strings.TrimRight(strings.TrimSpace(c.Site.BasePath), "/")
	if c.Site.BasePath != "" && !strings.HasPrefix(c.Site.BasePath, "/") {
		c.Site.BasePath = "/" + c.Site.BasePath
	}
	for i, l := range c.I18n.Locales {
		c.I18n.Locales[i] = strings.TrimSpace(l)
	}
	c.I18n.DefaultLocale = strings.TrimSpace(c.I18n.DefaultLocale)
	return res, nil
}

// normalizeEnum leaves empty values for the defaults pass and replaces
// unknown ones with the normalizer's default.
func normalizeEnum[T ~string](res *NormalizationResult, field string, v *T, n *normalization.Normalizer[T]) {
	if strings.TrimSpace(string(*v)) == "" {
		return
	}
	canonical, err := n.NormalizeWithError(string(*v))
	if err != nil {
		canonical = n.Normalize(string(*v))
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v, using %q", field, err, canonical))
	}
	*v = canonical
}
