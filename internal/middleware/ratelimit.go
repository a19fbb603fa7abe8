package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/redis"
)

type RateLimiter struct {
	redis  *redis.RedisClient
	limit  int
	window time.Duration
	logger *logger.Logger
}

// NewRateLimiter returns a limiter that lets everything through when
// redisClient is nil or limit is not positive.
func NewRateLimiter(redisClient *redis.RedisClient, limit int, window time.Duration, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		logger: log,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil || rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + clientIP(r)

		allowed, retryAfter, err := rl.redis.CheckRateLimit(r.Context(), key, rl.limit, rl.window)
		if err != nil {
			rl.logger.Warn("Rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
