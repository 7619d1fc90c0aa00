package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
)

var errRateLimited = errs.New("rate limit exceeded")

type RateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
}

func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, cfg: cfg}
}

// LimitCheckout applies a fixed per-minute window per principal. Redis being
// down fails open: checkout availability wins over throttling accuracy.
func (r *RateLimiter) LimitCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.cfg.Enabled || r.client == nil {
			c.Next()
			return
		}

		principal, ok := GetPrincipal(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:checkout:%s:%s",
			principal.ID(), time.Now().UTC().Format("200601021504"))

		count, err := r.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			slog.Warn("rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			r.client.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(r.cfg.CheckoutPerMinute) {
			httperr.AbortWithError(c, http.StatusTooManyRequests,
				errRateLimited, "rate_limited", "Too many checkout attempts, slow down", nil)
			return
		}
		c.Next()
	}
}
