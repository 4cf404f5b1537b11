// Package middleware_test provides tests for the HTTP middleware.
package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/services/identity"
	"github.com/streamchat/chat-service/tests/mocks"
)

func newAuthRouter(verifier *mocks.MockVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.NewAuthMiddleware(verifier).Authenticate())
	r.GET("/protected", func(c *gin.Context) {
		user := middleware.GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"uid": user.UID})
	})
	return r
}

// TestAuthenticate_ValidToken tests that a verified token reaches the
// handler with the user in context.
func TestAuthenticate_ValidToken(t *testing.T) {
	verifier := &mocks.MockVerifier{}
	verifier.On("Verify", mock.Anything, "good-token").
		Return(&identity.AuthUser{UID: "user-1"}, nil)

	router := newAuthRouter(verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
}

// TestAuthenticate_MissingHeader tests that requests without credentials
// are rejected.
func TestAuthenticate_MissingHeader(t *testing.T) {
	verifier := &mocks.MockVerifier{}
	router := newAuthRouter(verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

// TestAuthenticate_MalformedHeader tests rejection of non-Bearer schemes
// and empty tokens.
func TestAuthenticate_MalformedHeader(t *testing.T) {
	verifier := &mocks.MockVerifier{}
	router := newAuthRouter(verifier)

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

// TestAuthenticate_RejectedToken tests that verifier failures abort with
// 401.
func TestAuthenticate_RejectedToken(t *testing.T) {
	verifier := &mocks.MockVerifier{}
	verifier.On("Verify", mock.Anything, "bad-token").
		Return(nil, errors.New("token expired"))

	router := newAuthRouter(verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
