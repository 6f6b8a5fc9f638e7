package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Sentinel kinds. Callers tell failures apart with errors.Is.
var (
	ErrInvalidTicket  = errors.New("invalid ticket")
	ErrUnknownUser    = errors.New("unknown user")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTransport      = errors.New("transport failure")
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewInvalidTicket reports blank or malformed ticket input.
func NewInvalidTicket(message string, details map[string]any) error {
	return &DomainError{
		Code:       "INVALID_TICKET",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
		Err:        ErrInvalidTicket,
	}
}

// NewUnknownUser reports a username or account manager that cannot be resolved.
func NewUnknownUser(message string, details map[string]any) error {
	return &DomainError{
		Code:       "UNKNOWN_USER",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
		Err:        ErrUnknownUser,
	}
}

func NewTicketNotFound(id int64) error {
	return &DomainError{
		Code:       "TICKET_NOT_FOUND",
		Message:    fmt.Sprintf("no ticket found for id %d", id),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"ticket_id": id},
		Err:        ErrTicketNotFound,
	}
}

// NewTransportError wraps a delivery failure; both ErrTransport and cause match errors.Is.
func NewTransportError(cause error) error {
	return &DomainError{
		Code:       "TRANSPORT_FAILURE",
		Message:    "administrator notification failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        fmt.Errorf("%w: %w", ErrTransport, cause),
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError is ToDomainError typed as error, for return statements.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
