package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"veracity/internal/errors"
)

const limiterEvictionAge = 10 * time.Minute

// RateLimiter keeps one token bucket per client key (API key or IP)
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	rejected int64
	done     chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger
}

// NewRateLimiter allows requestsPerMin per client with bursts up to burstCapacity
func NewRateLimiter(requestsPerMin, burstCapacity int, logger *errors.Logger) *RateLimiter {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	m := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go m.cleanupRoutine(limiterEvictionAge)
	return m
}

// Allow reports whether a request from key fits its bucket
func (m *RateLimiter) Allow(key string) bool {
	m.mu.Lock()
	limiter, ok := m.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()
	m.mu.Unlock()

	if limiter.Allow() {
		return true
	}
	m.mu.Lock()
	m.rejected++
	m.mu.Unlock()
	return false
}

// GetStats returns current rate limiter statistics
func (m *RateLimiter) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":           true,
		"active_limiters":   len(m.limiters),
		"rate_per_second":   float64(m.rate),
		"rate_per_minute":   float64(m.rate) * 60.0,
		"burst_capacity":    m.burst,
		"rejected_requests": m.rejected,
	}
}

func (m *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

// cleanup drops limiters idle for longer than evictionAge
func (m *RateLimiter) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
	m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
}

// Close stops the cleanup goroutine
func (m *RateLimiter) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-client budget with 429
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	metrics := s.Observability.GetMetrics()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				kind, _, _ := strings.Cut(key, ":")
				metrics.RecordRateLimitHit(r.Context(), kind)
				s.Logger.Info("Rate limit exceeded",
					"client", kind,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey prefers the API key over the client IP
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
