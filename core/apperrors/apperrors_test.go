package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))
	assert.Equal(t, CodeValidation, CodeOf(Validation("bad input")))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", Internal("store failed", errors.New("conn reset")))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Delivery("notify buyer", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "notify buyer")
	assert.Contains(t, err.Error(), "timeout")
}

func TestCodeAccessor(t *testing.T) {
	var coded interface{ Code() string }
	ok := errors.As(Unauthorized("admins only"), &coded)
	assert.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", coded.Code())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "store failed", Reason(Internal("store failed", errors.New("conn reset"))))
	assert.Equal(t, "plain", Reason(errors.New("plain")))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(Validation("x")))
	assert.True(t, IsValidation(Validation("x")))
	assert.False(t, IsValidation(errors.New("x")))
}
