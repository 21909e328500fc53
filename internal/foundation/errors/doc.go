// Package errors provides foundational, type-safe error primitives used across mdxsite.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, not_found, security, render, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "read document").
//		Retryable().
//		WithContext("path", path).
//		Build()
package errors
