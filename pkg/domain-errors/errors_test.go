package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CodeNotFound, "missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConflict, "dup"))
		assert.True(t, HasCode(err, CodeConflict))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.Equal(t, "dup", MessageOf(err))
	})

	t.Run("plain error", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(cause, CodeUnavailable, "load config")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load config: redis down", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "noop"))
}

func TestToHTTPStatus(t *testing.T) {
	for code, want := range map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeInvalidInput: http.StatusBadRequest,
		CodeNotFound:     http.StatusNotFound,
		CodeInvalidState: http.StatusConflict,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
	} {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
