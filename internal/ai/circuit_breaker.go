package ai

import (
	"github.com/sony/gobreaker/v2"

	"veracity/internal/config"
	"veracity/internal/errors"
)

// CircuitBreaker wraps classifier calls with the circuit breaker pattern.
// A nil *CircuitBreaker runs calls directly.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewCircuitBreaker creates a breaker that trips once at least MinRequests
// calls were seen and the failure ratio reaches FailureThreshold. It returns
// nil when the breaker is disabled.
func NewCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[T] {
	return newBreaker[T](name, cfg, cfg.MinRequests, cfg.FailureThreshold, logger)
}

// newModelBreaker guards model availability probes with more lenient trip settings
func newModelBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[*ModelInfo] {
	return newBreaker[*ModelInfo](name+"-model", cfg, 5, 0.8, logger)
}

func newBreaker[T any](name string, cfg config.CircuitBreakerConfig, minRequests uint32, threshold float64, logger *errors.Logger) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", threshold)
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn with circuit breaker protection
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// State returns the breaker state name, "disabled" for a nil breaker
func (b *CircuitBreaker[T]) State() string {
	if b == nil || b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

// Stats returns circuit breaker statistics
func (b *CircuitBreaker[T]) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	counts := b.cb.Counts()
	return map[string]any{
		"enabled": true,
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts": map[string]uint32{
			"requests":              counts.Requests,
			"total_successes":       counts.TotalSuccesses,
			"total_failures":        counts.TotalFailures,
			"consecutive_successes": counts.ConsecutiveSuccesses,
			"consecutive_failures":  counts.ConsecutiveFailures,
		},
	}
}

// IsHealthy returns true unless the breaker is open or half-open
func (b *CircuitBreaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
