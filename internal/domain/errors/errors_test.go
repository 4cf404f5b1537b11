package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/streamchat/chat-service/internal/domain/errors"
)

func TestErrorString(t *testing.T) {
	err := domainerrors.NewNotFoundError("thread", "thread-123")
	assert.Equal(t, "NOT_FOUND: thread not found (thread-123)", err.Error())

	noDetails := domainerrors.NewForbiddenError("not your thread")
	assert.Equal(t, "FORBIDDEN: not your thread", noDetails.Error())
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *domainerrors.DomainError
		status int
	}{
		{domainerrors.NewNotFoundError("thread", "t1"), http.StatusNotFound},
		{domainerrors.NewValidationError("bad input", ""), http.StatusBadRequest},
		{domainerrors.NewUnauthorizedError("no token"), http.StatusUnauthorized},
		{domainerrors.NewForbiddenError("denied"), http.StatusForbidden},
		{domainerrors.NewRateLimitError(30), http.StatusTooManyRequests},
		{domainerrors.NewUpstreamError("provider down", nil), http.StatusBadGateway},
		{domainerrors.NewStorageError("insert", nil), http.StatusInternalServerError},
		{domainerrors.NewTimeoutError("model stream"), http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Code)
	}
}

func TestGetDomainErrorThroughWrapping(t *testing.T) {
	inner := domainerrors.NewValidationError("content too long", "max 32000 chars")
	wrapped := fmt.Errorf("handling request: %w", inner)

	domainErr, ok := domainerrors.GetDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, domainerrors.ErrCodeValidation, domainErr.Code)

	_, ok = domainerrors.GetDomainError(errors.New("plain"))
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := domainerrors.NewUpstreamError("provider down", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Details, "connection refused")
}

func TestPredicates(t *testing.T) {
	assert.True(t, domainerrors.IsNotFound(domainerrors.NewNotFoundError("thread", "t1")))
	assert.False(t, domainerrors.IsNotFound(domainerrors.NewValidationError("bad", "")))
	assert.False(t, domainerrors.IsNotFound(errors.New("plain")))

	assert.True(t, domainerrors.IsValidationError(domainerrors.NewValidationError("bad", "")))
	assert.False(t, domainerrors.IsValidationError(domainerrors.NewNotFoundError("thread", "t1")))
}
