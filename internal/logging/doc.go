// Package logging provides structured logging utilities for the Workspace
// admin server.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "mcp__gsuite_admin__list_users")
//	logger.Info("listing users",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("credential refreshed",
//	    logging.UserHash(userID))
//
// # Security Considerations
//
// User identifiers are hashed to prevent PII leakage while allowing
// correlation, and tokens are never logged directly.
package logging
