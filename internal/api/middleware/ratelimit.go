package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	domainerrors "github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/services/ratelimit"
)

// RateLimitMiddleware throttles requests per authenticated user.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit returns a gin middleware that enforces the per-user quota. The
// authenticated user ID keys the quota; unauthenticated requests fall
// back to the client IP. Limiter outages fail open so Redis downtime
// does not take chat down with it.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// A nil limiter means rate limiting is disabled.
		if m.limiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP()
		if user := GetAuthUser(c); user != nil {
			key = user.UID
		}

		result, err := m.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			HandleError(c, domainerrors.NewRateLimitError(retryAfter))
			return
		}

		c.Next()
	}
}
