// Package apperr defines the error taxonomy shared by the gateway, the
// signaling coordinator and the chat collaborators.
//
// Every error that crosses a handler boundary wraps exactly one of the kind
// sentinels below, so callers can classify it with errors.Is and decide
// whether the connection survives (it always does, except for
// ErrAuthentication during the handshake).
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrValidation     = errors.New("invalid request")
	ErrCollaborator   = errors.New("collaborator failure")
	ErrInternal       = errors.New("internal server error")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) error {
	return New(ErrValidation, message)
}

func Authorization(message string) error {
	return New(ErrAuthorization, message)
}

func Authentication(message string, cause error) error {
	return Wrap(ErrAuthentication, message, cause)
}

func Collaborator(message string, cause error) error {
	return Wrap(ErrCollaborator, message, cause)
}

// Message returns the text that is safe to put in a failed acknowledgment.
// Internal and unclassified errors never leak their details.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && !errors.Is(appErr.Kind, ErrInternal) {
		return appErr.Message
	}
	for _, kind := range []error{ErrAuthentication, ErrAuthorization, ErrValidation, ErrCollaborator} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}
