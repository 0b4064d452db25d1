package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	errGone := NewError(ErrNotFound, "student not found")
	wrapped := errors.Wrap(errGone, "finding student")

	assert.Equal(t, "student not found", errGone.Error())
	assert.True(t, errors.Is(wrapped, errGone))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))

	msg, ok := ErrorMessage(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "student not found", msg)

	_, ok = ErrorMessage(errors.Wrap(ErrForbidden, "authorizing"))
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "Captcha is required", NewValidationError(errors.New("Captcha is required")).Error())
	assert.Equal(t,
		"start: bad date; end: bad date",
		NewValidationError(nil, FieldError{"start", "bad date"}, FieldError{"end", "bad date"}).Error(),
	)

	var vErr *ValidationError
	assert.True(t, errors.As(errors.Wrap(NewValidationError(nil), "validating"), &vErr))
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "saving")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}
