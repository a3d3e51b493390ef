package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeExpired, http.StatusGone},
		{CodeInvalidJSON, http.StatusBadRequest},
		{CodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{CodeConflict, http.StatusConflict},
		{CodeServer, http.StatusInternalServerError},
		{CodeTimeout, http.StatusRequestTimeout},
		{CodeRateLimited, http.StatusTooManyRequests},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestStore_ClassifiesDeadline(t *testing.T) {
	e := Store("db failed", fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, CodeTimeout, e.Code)
	assert.ErrorIs(t, e, context.DeadlineExceeded)

	e = Store("db failed", errors.New("connection refused"))
	assert.Equal(t, CodeServer, e.Code)
	assert.Equal(t, "db failed", e.Message)
}

func TestAs(t *testing.T) {
	require.Nil(t, As(nil))

	wrapped := fmt.Errorf("outer: %w", NotFound("share not found"))
	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.True(t, IsCode(wrapped, CodeNotFound))

	got = As(errors.New("boom"))
	assert.Equal(t, CodeServer, got.Code)
	assert.False(t, IsCode(errors.New("boom"), CodeServer))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "EXPIRED: gone", Expired("gone").Error())
	assert.Equal(t, "SERVER_ERROR: db: x", Wrap(CodeServer, "db", errors.New("x")).Error())
}
