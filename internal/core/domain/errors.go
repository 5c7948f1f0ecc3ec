package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	ErrTransport             = errors.New("cannot reach the server")
	ErrServer                = errors.New("server error")
	ErrUnauthorized          = errors.New("not authenticated")
	ErrForbidden             = errors.New("access forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrRejected              = errors.New("request rejected")
	ErrSignupNotFound        = errors.New("signup not found")
	ErrSignupExpired         = errors.New("your registration expired or the server was reset; start over")
	ErrValidation            = errors.New("invalid input")
	ErrRoleSelectionRequired = errors.New("role selection required")
	ErrSelfDeactivation      = errors.New("cannot deactivate your own account")
	ErrSubmissionInFlight    = errors.New("a submission is already in progress")
	ErrNotAuthenticated      = errors.New("sign in first")
)

// APIError is a non-2xx answer from the platform API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error { return e.Kind }

// ValidationError is raised client-side before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UserMessage extracts the text to show in a screen's message area.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ae *APIError
	if errors.As(err, &ae) {
		if strings.TrimSpace(ae.Message) != "" {
			return ae.Message
		}
		return fallback
	}
	switch {
	case errors.Is(err, ErrTransport):
		return ErrTransport.Error()
	case errors.Is(err, ErrSelfDeactivation),
		errors.Is(err, ErrSignupExpired),
		errors.Is(err, ErrSubmissionInFlight),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrValidation):
		return err.Error()
	}
	return fallback
}
