package middleware

import (
	"net/http"
	"strconv"

	"askroom/internal/redis"
	"askroom/internal/services"
	"askroom/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthRateLimitMiddleware throttles sign-in attempts per client IP.
func AuthRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubmitRateLimitMiddleware throttles question submissions per principal.
// Apply after auth middleware.
func SubmitRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return perUserLimit(func(c *gin.Context, userID string) (*redis.RateLimitResult, error) {
		return limiter.AllowSubmit(c.Request.Context(), userID)
	}, "submission rate limit exceeded")
}

// VoteRateLimitMiddleware throttles vote toggles per principal.
// Apply after auth middleware.
func VoteRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return perUserLimit(func(c *gin.Context, userID string) (*redis.RateLimitResult, error) {
		return limiter.AllowVote(c.Request.Context(), userID)
	}, "vote rate limit exceeded")
}

func perUserLimit(check func(c *gin.Context, userID string) (*redis.RateLimitResult, error), message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := services.PrincipalFromContext(c.Request.Context())
		if !ok {
			// No principal yet, auth middleware will reject downstream.
			c.Next()
			return
		}

		result, err := check(c, principal.ID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(message, "RATE_LIMITED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(int(result.ResetIn.Seconds())))
}
