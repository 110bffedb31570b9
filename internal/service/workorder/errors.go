package workorder

import (
	"errors"
	"fmt"
)

// Kind classifies why a lifecycle command was rejected. Handlers map kinds to
// HTTP status codes in one place.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindInvalidState
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a rejected lifecycle command. Every rejection carries the command
// name and a human-readable reason; there are no silent no-ops.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func Unauthorized(op, reason string) error {
	return &Error{Kind: KindUnauthorized, Op: op, Reason: reason}
}

func InvalidState(op, reason string) error {
	return &Error{Kind: KindInvalidState, Op: op, Reason: reason}
}

func Validation(op, reason string) error {
	return &Error{Kind: KindValidation, Op: op, Reason: reason}
}

func NotFound(op, reason string) error {
	return &Error{Kind: KindNotFound, Op: op, Reason: reason}
}

// KindOf extracts the rejection kind from an error chain, KindUnknown for
// infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf extracts the human-readable reason, falling back to err.Error().
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
