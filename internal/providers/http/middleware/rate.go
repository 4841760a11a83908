package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// PerHost keeps one limiter per target host instead of one overall.
	PerHost bool
	// Metrics, when set, observes time spent waiting.
	Metrics *monitoring.Metrics
}

// DefaultRateLimitConfig returns a per-host limit of 10 requests per second.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		PerHost:           true,
	}
}

// RateLimit delays requests until the limiter grants a token. It never drops
// or retries a request; a cancelled context aborts the wait with its error.
func RateLimit(cfg RateLimitConfig) client.Middleware {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(host string) *rate.Limiter {
		if !cfg.PerHost {
			host = ""
		}
		mu.Lock()
		defer mu.Unlock()
		if _, exists := limiters[host]; !exists {
			limiters[host] = newLimiter(cfg)
		}
		return limiters[host]
	}

	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
			start := time.Now()
			if err := limiterFor(hostOf(url)).Wait(ctx); err != nil {
				return nil, err
			}
			if cfg.Metrics != nil {
				cfg.Metrics.RecordRateLimitWait(time.Since(start))
			}
			return next(ctx, method, url, opts)
		}
	})
}

func newLimiter(cfg RateLimitConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0) // Unlimited
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}
