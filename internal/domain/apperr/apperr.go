package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies failures so transport layers can translate them uniformly.
type Code string

const (
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeRetryable  Code = "retryable"
	CodeInternal   Code = "internal"
)

// Error is the canonical domain error wrapper.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a domain error with explicit code + operation.
func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with domain error semantics.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(code, op, err.Error(), err)
}

func Validation(op, message string) error { return New(CodeValidation, op, message, nil) }
func NotFound(op, message string) error   { return New(CodeNotFound, op, message, nil) }
func Conflict(op, message string) error   { return New(CodeConflict, op, message, nil) }

func Internal(op, message string, cause error) error {
	return New(CodeInternal, op, message, cause)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code Code) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// CodeOf extracts the domain error code when available.
func CodeOf(err error) Code {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return ""
	}
	return appErr.Code
}

// MessageOf extracts the human-readable message, falling back to Error().
func MessageOf(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		if err != nil {
			return err.Error()
		}
		return ""
	}
	if strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return appErr.Error()
}
