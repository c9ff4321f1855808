package middleware

import (
	"fmt"
	"math"
	"strconv"

	"driftchat/internal/redis"
	"driftchat/internal/services"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageRateLimitMiddleware limits message sends per user. Apply after
// AuthMiddleware. A nil limiter disables the check.
func MessageRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.AllowMessage(c.Request.Context(), userID)
		if err != nil {
			// fail open
			zap.L().Warn("message rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(result.ResetIn.Seconds())), 10))
			_ = c.Error(fmt.Errorf("%w: message rate limit exceeded", driftchat_errors.ErrRateLimited))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
