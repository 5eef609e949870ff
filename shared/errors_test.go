package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		err    *AppError
		status int
	}{
		{NewBadRequestError(cause, "bad"), http.StatusBadRequest},
		{NewUnauthorizedError(cause, "no"), http.StatusUnauthorized},
		{NewNotFoundError(cause, "missing"), http.StatusNotFound},
		{NewConflictError(cause, "taken"), http.StatusConflict},
		{NewInternalError(cause, "broken"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode)
		assert.ErrorIs(t, tt.err, cause)
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewNotFoundError(nil, "missing")

	t.Run("direct", func(t *testing.T) {
		got, ok := GetAppError(appErr)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, got.StatusCode)
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", appErr)
		got, ok := GetAppError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "missing", got.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := GetAppError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := GetAppError(nil)
		assert.False(t, ok)
	})
}
