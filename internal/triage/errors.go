package triage

import (
	"errors"
	"fmt"
)

// TransientError marks oracle unavailability worth retrying with backoff:
// timeouts, rate limiting, connection failures.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient scoring failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable oracle-unavailability failure.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// MalformedOutputError marks oracle output that could not be parsed into
// the expected shape. Retried a small fixed number of times.
type MalformedOutputError struct {
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed scoring output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// Malformed wraps err as a malformed-output failure.
func Malformed(err error) error {
	return &MalformedOutputError{Err: err}
}

// BatchError is terminal: retries were exhausted (or the failure was not
// retryable) for one batch, which aborts the whole run.
type BatchError struct {
	Batch    int
	Attempts int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed after %d attempts: %v", e.Batch, e.Attempts, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// IsTransient reports whether err originated from oracle unavailability.
func IsTransient(err error) bool {
	var target *TransientError
	return errors.As(err, &target)
}

// IsMalformed reports whether err originated from unusable oracle output.
func IsMalformed(err error) bool {
	var target *MalformedOutputError
	return errors.As(err, &target)
}
