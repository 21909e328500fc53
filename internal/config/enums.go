package config

import (
	"git.home.luguber.info/inful/mdxsite/internal/foundation/normalization"
)

// Environment selects production or development behavior.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

var environmentNormalizer = normalization.NewNormalizer("environment", map[string]Environment{
	"production":  EnvironmentProduction,
	"prod":        EnvironmentProduction,
	"development": EnvironmentDevelopment,
	"dev":         EnvironmentDevelopment,
}, EnvironmentProduction)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// MCPTransport selects how the MCP server is exposed.
type MCPTransport string

const (
	MCPTransportStdio MCPTransport = "stdio"
	MCPTransportHTTP  MCPTransport = "http"
)

var mcpTransportNormalizer = normalization.NewNormalizer("mcp transport", map[string]MCPTransport{
	"stdio":           MCPTransportStdio,
	"http":            MCPTransportHTTP,
	"streamable-http": MCPTransportHTTP,
}, MCPTransportStdio)

// RetryBackoffMode selects how retry delays grow.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffExponential)

func NormalizeEnvironment(raw string) Environment   { return environmentNormalizer.Normalize(raw) }
func NormalizeLogLevel(raw string) LogLevel         { return logLevelNormalizer.Normalize(raw) }
func NormalizeLogFormat(raw string) LogFormat       { return logFormatNormalizer.Normalize(raw) }
func NormalizeMCPTransport(raw string) MCPTransport { return mcpTransportNormalizer.Normalize(raw) }

func NormalizeRetryBackoff(raw string) RetryBackoffMode { return retryBackoffNormalizer.Normalize(raw) }
