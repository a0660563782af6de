package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/charity/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/charity/internal/observability/metrics"
	"go.uber.org/zap"
)

const rateLimitReasonIPRate = "ip-rate"

// DonationIntentRateLimit throttles intent creation per client IP. When the
// limiter backend fails the request is let through.
func (s *Server) DonationIntentRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.intentLimiter == nil {
			c.Next()
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		ctx := c.Request.Context()

		result, err := s.intentLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("donation intent rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if result != nil && !result.Allowed {
			denyRateLimit(c, endpoint, rateLimitReasonIPRate, retryAfterSeconds(result.RetryAfter.Seconds()), s.obsMetrics)
			return
		}

		c.Next()
	}
}

func denyRateLimit(c *gin.Context, endpoint, reason string, retryAfter int, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	log.Warn("rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, metrics)

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func retryAfterSeconds(seconds float64) int {
	if seconds < 1 {
		return 1
	}
	return int(seconds + 0.999)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
