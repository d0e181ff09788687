package entigraph

import (
	"strings"
)

// Error type constants for classification
const (
	ErrTypeDatabase   = "database"
	ErrTypeValidation = "validation"
	ErrTypeNotFound   = "notfound"
	ErrTypeUnknown    = "unknown"
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics and traces.
//
// Note that absence of data (no clusters, no path) is not an error in this
// subsystem and never reaches classification; only invalid parameters and
// storage faults do.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	errStrLower := strings.ToLower(err.Error())

	// Check for database errors (SQLite specific)
	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") ||
		strings.Contains(errStrLower, "no such table") ||
		strings.Contains(errStrLower, "transaction") {
		return ErrTypeDatabase
	}

	// Check for not-found errors
	if strings.Contains(errStrLower, "not found") {
		return ErrTypeNotFound
	}

	// Check for validation errors
	if strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "must be") ||
		strings.Contains(errStrLower, "cannot be empty") ||
		strings.Contains(errStrLower, "unknown importance metric") ||
		strings.Contains(errStrLower, "unknown period") ||
		strings.Contains(errStrLower, "threshold") {
		return ErrTypeValidation
	}

	// Default to unknown
	return ErrTypeUnknown
}
