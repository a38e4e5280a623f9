package helpers

import (
	"fmt"
	"time"

	"quote-board/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// QuoteBoardError is the common wrapping error for the application.
type QuoteBoardError struct {
	Message string
	Cause   error
}

func (e *QuoteBoardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *QuoteBoardError) Unwrap() error {
	return e.Cause
}

// FetchError marks a transport-level failure (timeout, connection, bad
// status, not-found) from an upstream adapter. The reconciler recovers from
// it locally by moving to the next source in the chain.
type FetchError struct{ QuoteBoardError }

// FieldAbsentError marks a specific field missing from an otherwise
// successful fetch, including upstream sentinel "no trade yet" markers.
type FieldAbsentError struct{ QuoteBoardError }

// ConfigurationError marks invalid or missing configuration.
type ConfigurationError struct{ QuoteBoardError }

// DatabaseError marks a storage failure.
type DatabaseError struct{ QuoteBoardError }

// -----------------------------------------------------------------------------

// NewFetchError wraps err as a FetchError.
func NewFetchError(message string, err error) error {
	return &FetchError{QuoteBoardError{Message: message, Cause: err}}
}

// NewFieldAbsentError reports field as absent on symbol.
func NewFieldAbsentError(symbol, field string) error {
	return &FieldAbsentError{QuoteBoardError{Message: fmt.Sprintf("%s: field %s absent", symbol, field)}}
}

// NewConfigurationError wraps err as a ConfigurationError.
func NewConfigurationError(message string, err error) error {
	return &ConfigurationError{QuoteBoardError{Message: message, Cause: err}}
}

// NewDatabaseError wraps err as a DatabaseError.
func NewDatabaseError(message string, err error) error {
	return &DatabaseError{QuoteBoardError{Message: message, Cause: err}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("%s failed (attempt %d/%d): %v, retrying in %v", operation, attempt+1, maxRetries, lastErr, delay)
		time.Sleep(delay)
	}

	return &QuoteBoardError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}
