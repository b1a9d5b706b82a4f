package comms

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-owner inbound rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	MessagesPerMinute int  `yaml:"messages_per_minute"`
	BurstSize         int  `yaml:"burst_size"`
}

// DefaultRateLimitConfig returns the default rate limits.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		MessagesPerMinute: 20,
		BurstSize:         5,
	}
}

// RateLimiter keeps one token bucket per owner.
type RateLimiter struct {
	config   *RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*ownerLimiter
	now      func() time.Time
}

type ownerLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter; nil config means defaults.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*ownerLimiter),
		now:      time.Now,
	}
}

// AllowMessage consumes one token for ownerID and reports whether the
// message may be processed.
func (r *RateLimiter) AllowMessage(ownerID string) bool {
	if !r.config.Enabled || r.config.MessagesPerMinute <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	ol, ok := r.limiters[ownerID]
	if !ok {
		burst := r.config.BurstSize
		if burst <= 0 || burst > r.config.MessagesPerMinute {
			burst = r.config.MessagesPerMinute
		}
		ol = &ownerLimiter{
			lim: rate.NewLimiter(rate.Limit(float64(r.config.MessagesPerMinute)/60.0), burst),
		}
		r.limiters[ownerID] = ol
	}
	ol.lastSeen = now
	return ol.lim.AllowN(now, 1)
}

// Cleanup forgets owners not seen for maxAge.
func (r *RateLimiter) Cleanup(maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	for id, ol := range r.limiters {
		if ol.lastSeen.Before(cutoff) {
			delete(r.limiters, id)
		}
	}
}
