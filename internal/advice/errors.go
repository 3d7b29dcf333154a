package advice

import (
	"errors"
	"fmt"
)

/* =================================================================================
							ERROR TAXONOMY
	Every error the core can produce carries enough structured context
	(which field, which domain, which day) to be logged as-is, without
	the caller re-deriving state.
=================================================================================*/

// Validation codes returned by UserProfile.Validate, in check order.
const (
	CodeEmptyNickname         = "emptyNickname"
	CodeNicknameTooLong       = "nicknameTooLong"
	CodeInvalidAge            = "invalidAge"
	CodeInvalidWeight         = "invalidWeight"
	CodeInvalidHeight         = "invalidHeight"
	CodeInvalidInterestsCount = "invalidInterestsCount"
)

// ValidationError reports a profile field violation. It is always surfaced
// to the caller before any request is assembled, never silently corrected.
type ValidationError struct {
	Code    string // one of the Code* constants above
	Field   string // offending profile field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile validation failed: %s (%s)", e.Code, e.Message)
}

// NewValidationError builds a ValidationError for the given code and field.
func NewValidationError(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PreconditionError reports that the request assembler was invoked on an
// unvalidated or incomplete upstream object. This is a programming error,
// fatal to the current request; it is never retried.
type PreconditionError struct {
	Op     string // operation that detected the violation
	Reason string
	Err    error // underlying cause, e.g. the ValidationError, may be nil
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: precondition failed: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// IsPreconditionError reports whether err is (or wraps) a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// SchemaError reports that a generated payload failed structural validation.
// Field names the first offending field in dotted form (e.g.
// "daily_try.title") so callers can decide between retrying generation and
// surfacing a fallback message.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("generated payload invalid: field %q %s", e.Field, e.Reason)
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ProviderError reports a failure of the external generation call.
// Retryable distinguishes transient conditions (timeout, 5xx, throttling)
// from permanent ones (malformed request, authentication); only the former
// are ever retried, and never indefinitely.
type ProviderError struct {
	Op        string // "generate"
	Status    int    // HTTP status when one was received, else 0
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: provider failure (%s, status %d): %v", e.Op, kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: provider failure (%s): %v", e.Op, kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsRetryable reports whether err is a ProviderError marked retryable.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
