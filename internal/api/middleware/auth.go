// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streamchat/chat-service/internal/services/identity"
)

const authUserKey = "auth_user"

// AuthMiddleware authenticates requests by verifying bearer tokens.
type AuthMiddleware struct {
	verifier identity.Verifier
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(verifier identity.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate returns a gin middleware that validates the Bearer token
// and stores the decoded user in the context. It fails closed: any
// missing, malformed, expired, or invalid token aborts with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "missing authorization header",
			})
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid authorization header format",
			})
			return
		}

		user, err := m.verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// GetAuthUser retrieves the authenticated user from the gin context.
func GetAuthUser(c *gin.Context) *identity.AuthUser {
	if user, exists := c.Get(authUserKey); exists {
		return user.(*identity.AuthUser)
	}
	return nil
}
