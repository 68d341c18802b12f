// Package errors provides foundational, type-safe error primitives used across grapesite.
//
// Key features:
//   - ErrorCategory: broad classification (config, content, render, build, etc.)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit code mapping and user-facing formatting
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryContent, "failed to read page").
//		WithContext("path", path).
//		Build()
package errors
