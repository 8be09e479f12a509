package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-catalog-api/internal/service"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
	"github.com/noah-isme/academic-catalog-api/pkg/response"
)

const loginRateLimitPrefix = "ratelimit:login:"

type windowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// LoginRateLimit allows limit attempts per client IP within each fixed window.
// Counter failures let the request through.
func LoginRateLimit(counter windowCounter, limit int, window time.Duration, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	message := fmt.Sprintf("Too many login attempts, please try again after %s", windowPhrase(window))
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		count, ttl, err := counter.IncrWindow(c.Request.Context(), loginRateLimitPrefix+c.ClientIP(), window)
		if err != nil {
			logger.Warn("login rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(limit) {
			metrics.RecordLoginThrottled()
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			}
			response.Abort(c, appErrors.Clone(appErrors.ErrTooManyRequests, message))
			return
		}
		c.Next()
	}
}

// windowPhrase renders window in whole minutes when it divides evenly and in
// seconds otherwise.
func windowPhrase(window time.Duration) string {
	unit, n := "second", int64(math.Ceil(window.Seconds()))
	if window >= time.Minute && window%time.Minute == 0 {
		unit, n = "minute", int64(window/time.Minute)
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
