// Package errors holds the API's error catalogue. Services return these values
// (or clones carrying a more specific message) and pkg/response renders them as
// {success:false, message, code} with the matching HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-facing failure. Code is stable and machine readable;
// Message is shown to users; Err keeps the underlying cause for logs.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code, so a clone with a custom message still satisfies
// errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New declares a catalogue entry.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error from explicit parts around a cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WrapAs wraps cause with the code and status of a catalogue entry.
// An empty message keeps the entry's own.
func WrapAs(cause error, kind *Error, message string) *Error {
	if message == "" {
		message = kind.Message
	}
	return Wrap(cause, kind.Code, kind.Status, message)
}

// Clone copies a catalogue entry with a request-specific message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError returns err as an *Error. Anything untyped becomes INTERNAL_ERROR
// so store details never leak into a response message.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapAs(err, ErrInternal, "")
}

// Authentication: bad login, missing or expired bearer token.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid credentials")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "Token expired")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
)

// Authorization and lookup: wrong role or owner, unknown course, lesson,
// assessment, enrollment or submission.
var (
	ErrForbidden = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound  = New("NOT_FOUND", http.StatusNotFound, "resource not found")
)

// Input: payload validation, duplicate email on register, a second enrollment
// in the same course, and uploads over the size ceiling.
var (
	ErrValidation      = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrDuplicate       = New("DUPLICATE", http.StatusBadRequest, "Duplicate field value entered")
	ErrAlreadyEnrolled = New("ALREADY_ENROLLED", http.StatusBadRequest, "Already enrolled in this course")
	ErrPayloadTooLarge = New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "file too large")
)

// ErrInternal covers store and rendering failures.
var ErrInternal = New("INTERNAL_ERROR", http.StatusInternalServerError, "Server Error")

// ErrCacheMiss is returned by cache stores for absent keys. It never reaches clients.
var ErrCacheMiss = errors.New("cache miss")
