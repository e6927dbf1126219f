// Package errors provides the classified error primitives used across buildplan.
//
// Key features:
//   - ErrorCategory: broad classification (config, validation, conflict, storage, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether retrying the operation can help
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages for the command line
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryConfig, "read fragment").
//		WithContext("path", path).
//		Build()
package errors
