package apperrors

import "fmt"

// ValidationError means the request itself is malformed and the caller
// must correct it before retrying.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DateRangeError means a date/time component was out of range. At the HTTP
// boundary it is treated the same as a ValidationError.
type DateRangeError struct {
	Msg string
}

func (e *DateRangeError) Error() string { return e.Msg }

func DateRangef(format string, args ...any) error {
	return &DateRangeError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError indicates a misconfigured slot policy or timezone rule.
// It is fatal at startup, never produced per-request.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func Configf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError means the requested slot is no longer available according
// to the most recent calendar read.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failed calendar-provider call. Retryable by the
// client after backoff.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// AmbiguousError wraps a provider call whose outcome is unknown, e.g. a
// timeout after an insert request was already sent. The operation must not
// be retried automatically; the calendar has to be checked by hand.
type AmbiguousError struct {
	Op  string
	Err error
}

func (e *AmbiguousError) Error() string { return fmt.Sprintf("%s: outcome unknown: %v", e.Op, e.Err) }
func (e *AmbiguousError) Unwrap() error { return e.Err }

func Ambiguous(op string, err error) error {
	return &AmbiguousError{Op: op, Err: err}
}
