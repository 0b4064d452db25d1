package core

import (
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Transports map them to status codes with errors.Is.
var (
	ErrUnauthorized     = errors.New("Unauthorized")
	ErrForbidden        = errors.New("Forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrModelUnavailable = errors.New("ML model not loaded")
)

type kindError struct {
	kind error
	msg  string
}

// NewError returns an error reading msg which matches kind under errors.Is.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (err *kindError) Error() string { return err.msg }
func (err *kindError) Unwrap() error { return err.kind }

// ErrorMessage returns the message of the innermost error built with NewError, if any.
func ErrorMessage(err error) (string, bool) {
	var kerr *kindError
	if errors.As(err, &kerr) {
		return kerr.msg, true
	}
	return "", false
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fld := range err.Fields {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return strings.Join(msgs, "; ")
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
