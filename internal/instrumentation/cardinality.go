package instrumentation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with user identifiers.

// ExtractUserDomain extracts the domain part from an email address.
// This reduces cardinality by using the domain instead of the full email.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("user@gmail.com")    // "gmail.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// HashUserEmail reduces a user email to a short stable hash, suitable as a
// metric or span label. Correlating invocations for one user stays possible
// without the raw address leaking into the metrics backend.
//
// The empty string maps to "unknown"; all other inputs map to 16 hex
// characters. Hashing is case-insensitive so "Jane@Example.com" and
// "jane@example.com" collapse to the same label.
func HashUserEmail(email string) string {
	if email == "" {
		return "unknown"
	}

	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:8])
}

// Common operation types for Google API metrics.
// Status, credential, and service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationAction = "action"
	OperationSearch = "search"
)
