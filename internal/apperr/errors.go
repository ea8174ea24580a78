// Package apperr defines the typed error taxonomy shared by the booking service.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch on it without string matching.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindInvalidTransition
	KindRemoteRejection
	KindRemoteUnavailable
	KindConflict
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindRemoteRejection:
		return "remote_rejection"
	case KindRemoteUnavailable:
		return "remote_unavailable"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error is a classified error. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports malformed input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports an unresolved entity. The message follows the
// "<Entity> not found" wording callers already depend on.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Err:     fmt.Errorf("%s %q does not exist", entity, id),
	}
}

// NewInvalidTransitionError reports a lifecycle transition the current status does not allow.
func NewInvalidTransitionError(message, from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: message,
		Err:     fmt.Errorf("cannot transition from %s to %s", from, to),
	}
}

// NewRemoteRejectionError reports a collaborator that answered with success=false.
func NewRemoteRejectionError(message string) *Error {
	return &Error{Kind: KindRemoteRejection, Message: message}
}

// NewRemoteUnavailableError reports a collaborator call that could not complete.
func NewRemoteUnavailableError(service string, err error) *Error {
	return &Error{
		Kind:    KindRemoteUnavailable,
		Message: fmt.Sprintf("%s service unavailable", service),
		Err:     err,
	}
}

// NewConflictError reports a concurrent modification.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Wrap classifies err as unexpected unless it is already classified.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
