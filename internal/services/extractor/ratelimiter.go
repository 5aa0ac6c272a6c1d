package extractor

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// RateLimiter spaces requests per domain so listing sites never see bursts.
type RateLimiter struct {
	limiters     map[string]*domainLimiter
	mu           sync.RWMutex
	defaultDelay time.Duration
}

type domainLimiter struct {
	lastRequest time.Time
	mu          sync.Mutex
	delay       time.Duration
}

// NewRateLimiter creates a rate limiter with the specified default delay.
func NewRateLimiter(defaultDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:     make(map[string]*domainLimiter),
		defaultDelay: defaultDelay,
	}
}

// Wait blocks until the domain's minimum delay has elapsed since its last
// request, or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	domain := extractDomain(rawURL)
	if domain == "" {
		return nil
	}

	rl.mu.Lock()
	limiter, exists := rl.limiters[domain]
	if !exists {
		limiter = &domainLimiter{
			delay: rl.defaultDelay,
		}
		rl.limiters[domain] = limiter
	}
	rl.mu.Unlock()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	nextAllowed := limiter.lastRequest.Add(limiter.delay)

	if now.Before(nextAllowed) {
		timer := time.NewTimer(nextAllowed.Sub(now))
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	limiter.lastRequest = time.Now()
	return nil
}

// SetDomainDelay sets a custom delay for a specific domain.
func (rl *RateLimiter) SetDomainDelay(domain string, delay time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[domain]
	if !exists {
		rl.limiters[domain] = &domainLimiter{delay: delay}
		return
	}

	limiter.mu.Lock()
	limiter.delay = delay
	limiter.mu.Unlock()
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
