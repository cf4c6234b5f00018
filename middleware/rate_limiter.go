// middleware/rate_limiter.go
package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	skip           map[string]bool
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.Mutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		skip:           map[string]bool{"/health": true, "/metrics": true},
	}

	// Credential and OTP endpoints get strict limits against brute force
	strict := endpointLimit{limit: rate.Every(2 * time.Second), burst: 5}
	for _, path := range []string{
		"/api/admin/login",
		"/api/admin/verify-otp",
		"/api/admin/forgot-password",
		"/api/admin/reset-password",
		"/api/auth/login",
		"/api/auth/verify-otp",
		"/api/auth/verify-email",
		"/api/auth/forgot-password",
		"/api/auth/reset-password",
	} {
		limiter.endpointLimits[path] = strict
	}

	signup := endpointLimit{limit: rate.Every(500 * time.Millisecond), burst: 5}
	limiter.endpointLimits["/api/admin/register"] = signup
	limiter.endpointLimits["/api/auth/register"] = signup

	go limiter.cleanupBlockedIPs()

	return limiter
}

// SetEndpointLimit overrides the limit for a route template.
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(1 * time.Hour)
		r.mu.Lock()
		now := time.Now()
		for key, blockUntil := range r.blockedIPs {
			if now.After(blockUntil) {
				delete(r.blockedIPs, key)
				// Also remove the limiter to reset its state
				delete(r.ips, key)
			}
		}
		r.mu.Unlock()
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if r.skip[path] {
				return next(c)
			}

			// Limiters are kept per IP and route so strict endpoints do not
			// consume the general budget.
			key := c.RealIP() + "|" + path

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(blockUntil)
				}
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}
			limit, burst := r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[path]; ok {
				limit, burst = el.limit, el.burst
			}
			limiter, exists := r.ips[key]
			if !exists {
				limiter = rate.NewLimiter(limit, burst)
				r.ips[key] = limiter
			}
			r.mu.Unlock()

			if !limiter.Allow() {
				blockUntil := time.Now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(blockUntil)
			}

			return next(c)
		}
	}
}

func tooManyRequests(until time.Time) error {
	return apperrors.TooManyRequests("Too many requests").
		WithDetail("retryAfter", until.UTC().Format(time.RFC3339))
}
