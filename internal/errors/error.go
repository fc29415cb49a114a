package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive Category = "reactive"
	CategoryRender   Category = "render"
	CategoryHost     Category = "host"
	CategoryConfig   Category = "config"
	CategoryDevtools Category = "devtools"
)

// LuminaError is a structured error with a stable code, explanation and hint.
type LuminaError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names the thing that failed (a component, a tag, a file).
	Subject string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LuminaError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LuminaError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a LuminaError with the same code.
func (e *LuminaError) Is(target error) bool {
	t, ok := target.(*LuminaError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSubject records what failed.
func (e *LuminaError) WithSubject(s string) *LuminaError {
	e.Subject = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LuminaError) WithSuggestion(s string) *LuminaError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LuminaError) WithDetail(d string) *LuminaError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *LuminaError) Wrap(err error) *LuminaError {
	e.Wrapped = err
	return e
}

// New creates a LuminaError from a registered error code.
func New(code string) *LuminaError {
	template, ok := registry[code]
	if !ok {
		return &LuminaError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LuminaError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new LuminaError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LuminaError {
	return &LuminaError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LuminaError. If err already is or
// wraps a LuminaError, a copy of it is returned, so callers may add context
// with the With* methods without touching shared values such as sentinels.
func FromError(err error, code string) *LuminaError {
	if err == nil {
		return nil
	}
	var le *LuminaError
	if stderrors.As(err, &le) {
		c := *le
		return &c
	}
	return New(code).Wrap(err)
}

// FromPanic converts a recovered panic value into a LuminaError with the
// given code. A panic value that is an error, LuminaErrors included, is
// wrapped rather than adopted.
func FromPanic(code string, recovered any) *LuminaError {
	if err, ok := recovered.(error); ok {
		return New(code).Wrap(err)
	}
	return New(code).Wrap(fmt.Errorf("panic: %v", recovered))
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code string) bool {
	var le *LuminaError
	for err != nil {
		if !stderrors.As(err, &le) {
			return false
		}
		if le.Code == code {
			return true
		}
		err = le.Wrapped
	}
	return false
}
