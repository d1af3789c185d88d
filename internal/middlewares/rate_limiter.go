package middlewares

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"zupos_panel/internal/cache"
	"zupos_panel/internal/config"
)

// RateLimitConfig configures a token bucket limiter whose buckets live in a
// cache.Cache, so limits hold across instances when the cache is redis.
type RateLimitConfig struct {
	Cache  cache.Cache
	Logger *slog.Logger

	// Capacity is the burst size. Default: 5
	Capacity int

	// Refill is the time it takes to earn back one token. Default: 12s
	Refill time.Duration

	// KeyPrefix namespaces the buckets in the cache. Default: "rate_limit:"
	KeyPrefix string

	// KeyGenerator picks the bucket for a request. Default: client IP
	KeyGenerator func(r *http.Request) string

	// Skipper lets requests through without spending a token
	Skipper func(r *http.Request) bool

	// Denied writes the rejection. Default: 429 with Retry-After
	Denied func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

	now func() time.Time
}

// tokenBucket is the cached state of one key
type tokenBucket struct {
	Tokens     float64   `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

// LoginRateLimit throttles sign-in attempts per client IP. Only POSTs are
// counted; rendering the form is free.
func LoginRateLimit(c cache.Cache, capacity int, refill time.Duration, logger *slog.Logger) *RateLimitConfig {
	return &RateLimitConfig{
		Cache:     c,
		Logger:    logger,
		Capacity:  capacity,
		Refill:    refill,
		KeyPrefix: "rate_limit:login:",
		Skipper: func(r *http.Request) bool {
			return r.Method != http.MethodPost
		},
	}
}

// RateLimit returns a token bucket rate limiting middleware. A cache error
// lets the request through.
func RateLimit(cfg *RateLimitConfig) func(next http.Handler) http.Handler {
	if cfg == nil || cfg.Cache == nil {
		panic("middlewares: RateLimit needs a cache")
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 5
	}
	if cfg.Refill <= 0 {
		cfg.Refill = 12 * time.Second
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rate_limit:"
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = clientIP
	}
	if cfg.Denied == nil {
		cfg.Denied = defaultDenied
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skipper != nil && cfg.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyPrefix + cfg.KeyGenerator(r)
			allowed, remaining, retryAfter, err := cfg.allow(r.Context(), key)
			if err != nil {
				logger.Error("rate limiter store error", "path", r.URL.Path, "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				logger.Warn("rate limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"key", key,
					"retry_after_seconds", retrySeconds(retryAfter),
				)
				cfg.Denied(w, r, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (cfg *RateLimitConfig) allow(ctx context.Context, key string) (bool, int, time.Duration, error) {
	now := cfg.now()
	perSecond := 1 / cfg.Refill.Seconds()

	bucket := tokenBucket{Tokens: float64(cfg.Capacity), LastRefill: now}
	data, err := cfg.Cache.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &bucket); err != nil {
			return false, 0, 0, fmt.Errorf("failed to unmarshal bucket: %w", err)
		}
	case !cache.IsNotFound(err):
		return false, 0, 0, err
	}

	elapsed := now.Sub(bucket.LastRefill).Seconds()
	if elapsed > 0 {
		bucket.Tokens = math.Min(float64(cfg.Capacity), bucket.Tokens+elapsed*perSecond)
	}
	bucket.LastRefill = now

	allowed := bucket.Tokens >= 1
	var retryAfter time.Duration
	if allowed {
		bucket.Tokens--
	} else {
		retryAfter = time.Duration((1 - bucket.Tokens) / perSecond * float64(time.Second))
	}

	// Keep the key until the bucket would be full again.
	ttl := time.Duration(cfg.Capacity) * cfg.Refill * 2
	if ttl < time.Minute {
		ttl = time.Minute
	}
	raw, err := json.Marshal(bucket)
	if err != nil {
		return false, 0, 0, fmt.Errorf("failed to marshal bucket: %w", err)
	}
	if err := cfg.Cache.Set(ctx, key, raw, ttl); err != nil {
		return false, 0, 0, fmt.Errorf("failed to save bucket: %w", err)
	}
	return allowed, int(bucket.Tokens), retryAfter, nil
}

func retrySeconds(d time.Duration) int {
	return int(d.Seconds()) + 1
}

func defaultDenied(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
	if isAPIRequest(r) {
		_ = config.RespondJSON(w, http.StatusTooManyRequests, config.ErrorResponse{
			Error:      "too_many_requests",
			Message:    "Çok fazla deneme",
			RetryAfter: retrySeconds(retryAfter),
		})
		return
	}
	http.Error(w, "Çok fazla deneme. Lütfen biraz sonra tekrar deneyin.", http.StatusTooManyRequests)
}
