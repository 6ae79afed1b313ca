package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/redis"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

// RateLimit throttles by client IP using the Redis sliding window. A
// Redis outage fails open so the API keeps serving.
func RateLimit(logger ectologger.Logger, limiter *redis.RateLimiter, limit int64, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx, span := tracing.StartSpan(ctx, "middleware.RateLimit")
			defer span.End()

			result, err := limiter.Allow(ctx, c.RealIP(), limit, window)
			if err != nil {
				logger.WithContext(ctx).WithError(err).Warn("rate limit check failed, allowing request")
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

			if !result.Allowed {
				if result.RetryIn > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(result.RetryIn.Seconds())+1))
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
