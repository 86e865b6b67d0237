// Package errors provides the standardized error taxonomy for the ranking
// engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Per-product, non-fatal: the product is skipped and the run continues.
	ErrCodeMissingCategory ErrorCode = "MISSING_CATEGORY"

	// Per-text-item: a single classifier call failed. Isolated, never fatal
	// for the product.
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	// Fatal for the affected category+week.
	ErrCodeSnapshotWriteFailed ErrorCode = "SNAPSHOT_WRITE_FAILED"

	// A concurrent run already wrote a newer snapshot for the same key.
	ErrCodeSnapshotWriteConflict ErrorCode = "SNAPSHOT_WRITE_CONFLICT"

	ErrCodeSignalQueryFailed ErrorCode = "SIGNAL_QUERY_FAILED"

	ErrCodeSnapshotInvalid ErrorCode = "SNAPSHOT_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMissingCategoryError marks a product that cannot be ranked. Not
// retryable: the product stays excluded until it gains a category.
func NewMissingCategoryError(productID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCategory,
		Message:   "Product has no category assigned",
		Details:   fmt.Sprintf("productId: %s", productID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError wraps a single classifier call failure.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Sentiment classification failed for one fragment",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotWriteFailedError creates a retryable storage error. The run for
// the affected category must surface this to its caller.
func NewSnapshotWriteFailedError(category, weekID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotWriteFailed,
		Message:   "Weekly ranking snapshot write failed",
		Details:   fmt.Sprintf("category: %s, week: %s, error: %s", category, weekID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotWriteConflictError marks a stale write rejected by the store's
// generatedAt guard. Not retryable: a newer snapshot already exists.
func NewSnapshotWriteConflictError(category, weekID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotWriteConflict,
		Message:   "A newer snapshot already exists for this key",
		Details:   fmt.Sprintf("category: %s, week: %s", category, weekID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignalQueryFailedError creates a retryable signal source error.
func NewSignalQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignalQueryFailed,
		Message:   "Signal source query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotInvalidError marks a snapshot document that failed schema
// validation before persist.
func NewSnapshotInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotInvalid,
		Message:   "Snapshot document failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
