package security

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit returns a route middleware enforcing a fixed window per caller.
// Dispute creation and transfer submission routes use tight limits since both
// are write actions against the escrow backend.
func (r *RateLimiter) Limit(name string, max int, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		identifier := e.RealIP()
		if e.Auth != nil {
			identifier = fmt.Sprintf("user:%s", e.Auth.Id)
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, identifier)
		ctx := e.Request.Context()

		count, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			// Rate limiting is best-effort; do not block traffic on redis errors.
			log.Printf("Rate limit check failed for %s: %v", key, err)
			return e.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, key, window)
		}
		if count > int64(max) {
			return apis.NewApiError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}

		return e.Next()
	}
}
