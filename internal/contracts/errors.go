package contracts

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input before anything is persisted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError marks a missing or foreign-owned record
type NotFoundError struct {
	Kind string // "product", "market", "override"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// AggregationError marks a market that cannot be aggregated, typically
// because it has no valid members. Non-fatal within a batch.
type AggregationError struct {
	MarketID string
	Reason   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed for market %s: %s", e.MarketID, e.Reason)
}

// NewAggregationError creates an aggregation error
func NewAggregationError(marketID, reason string) *AggregationError {
	return &AggregationError{MarketID: marketID, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsAggregation reports whether err is an AggregationError
func IsAggregation(err error) bool {
	var ae *AggregationError
	return errors.As(err, &ae)
}
